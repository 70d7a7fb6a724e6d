// Package inventory tracks stock levels and movement records for
// materials.
package inventory

import "time"

// Movement directions for stock records.
const (
	MovementIn  = "in"
	MovementOut = "out"
)

// Stock is the current on-hand quantity for a material.
type Stock struct {
	ID            int64     `json:"id"`
	MaterialID    int64     `json:"materialId"`
	MaterialName  string    `json:"materialName,omitempty"`
	Unit          string    `json:"unit,omitempty"`
	Quantity      int64     `json:"quantity"`
	WarnThreshold int64     `json:"warnThreshold"`
	UpdatedAt     time.Time `json:"updateTime,omitzero"`
}

// Low reports whether the stock sits at or under its warning threshold.
// A zero threshold disables the warning.
func (s Stock) Low() bool {
	return s.WarnThreshold > 0 && s.Quantity <= s.WarnThreshold
}

// Record is a single stock movement.
type Record struct {
	ID         int64     `json:"id"`
	MaterialID int64     `json:"materialId"`
	Movement   string    `json:"movement"`
	Quantity   int64     `json:"quantity"`
	OperatorID int64     `json:"operatorId"`
	Remark     string    `json:"remark,omitempty"`
	CreatedAt  time.Time `json:"createTime,omitzero"`
}

// ListFilters narrows stock listings.
type ListFilters struct {
	MaterialName string
	OnlyLow      bool
	Current      int
	Size         int
}

// RecordFilters narrows movement listings.
type RecordFilters struct {
	MaterialID int64
	Movement   string
	Current    int
	Size       int
}
