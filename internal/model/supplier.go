package model

// SupplierStatus is the registration state of a supplier.
type SupplierStatus string

const (
	SupplierActive      SupplierStatus = "active"
	SupplierPending     SupplierStatus = "pending"
	SupplierBlacklisted SupplierStatus = "blacklisted"
)

// Valid reports whether s is one of the known statuses.
func (s SupplierStatus) Valid() bool {
	switch s {
	case SupplierActive, SupplierPending, SupplierBlacklisted:
		return true
	}
	return false
}

// SupplierStatuses lists the statuses in display order.
var SupplierStatuses = []SupplierStatus{SupplierActive, SupplierPending, SupplierBlacklisted}

type Supplier struct {
	BaseModel
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	TaxID          string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"tax_id"`
	RegistrationNo string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"registration_no"`
	Category       string         `gorm:"type:varchar(100);not null;index" json:"category"`
	Status         SupplierStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Address        *string        `gorm:"type:text" json:"address,omitempty"`
}
