// Package suppliers manages the supplier directory.
package suppliers

import "time"

// Supplier is a vendor materials are sourced from.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Status    int       `json:"status"`
	Remark    string    `json:"remark,omitempty"`
	CreatedAt time.Time `json:"createTime,omitzero"`
	UpdatedAt time.Time `json:"updateTime,omitzero"`
}

// ListFilters narrows supplier listings.
type ListFilters struct {
	Name    string
	Status  *int
	Current int
	Size    int
}
