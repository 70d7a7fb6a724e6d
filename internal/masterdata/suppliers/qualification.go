package suppliers

import "time"

// Qualification statuses.
const (
	QualificationExpired = 0
	QualificationValid   = 1
)

// ExpiryWarningWindow is how far ahead of its expiry date a
// qualification counts as expiring soon.
const ExpiryWarningWindow = 30 * 24 * time.Hour

// Qualification is a certificate a supplier holds, such as a business
// license or a quality-system certification. A supplier carries at most
// one qualification per type.
type Qualification struct {
	ID           int64     `json:"id"`
	SupplierID   int64     `json:"supplierId"`
	SupplierName string    `json:"supplierName,omitempty"`
	Type         string    `json:"qualificationType"`
	Name         string    `json:"qualificationName"`
	FileURL      string    `json:"fileUrl,omitempty"`
	FileName     string    `json:"fileName,omitempty"`
	IssueDate    time.Time `json:"issueDate,omitzero"`
	ExpiryDate   time.Time `json:"expiryDate,omitzero"`
	Authority    string    `json:"issuingAuthority,omitempty"`
	Status       int       `json:"status"`
	Description  string    `json:"description,omitempty"`
	ExpiringSoon bool      `json:"expiringSoon"`
	CreatedAt    time.Time `json:"createTime,omitzero"`
	UpdatedAt    time.Time `json:"updateTime,omitzero"`
}

// QualificationFilters narrows qualification listings.
type QualificationFilters struct {
	SupplierID int64
	Type       string
	Status     *int
	Current    int
	Size       int
}
