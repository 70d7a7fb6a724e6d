// Package materials manages the consumable material catalog.
package materials

import "time"

// Material is a consumable item tracked by the inventory.
type Material struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	CategoryID   int64     `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
	Spec         string    `json:"spec,omitempty"`
	Unit         string    `json:"unit"`
	Price        float64   `json:"price"`
	SupplierID   int64     `json:"supplierId,omitempty"`
	Status       int       `json:"status"`
	Remark       string    `json:"remark,omitempty"`
	CreatedAt    time.Time `json:"createTime,omitzero"`
	UpdatedAt    time.Time `json:"updateTime,omitzero"`
}

// ListFilters narrows material listings.
type ListFilters struct {
	Name       string
	Code       string
	CategoryID int64
	Status     *int
	Current    int
	Size       int
}
