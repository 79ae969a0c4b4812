package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // MASTER_ADMIN, PROCUREMENT_OFFICER
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleMasterAdmin        = "MASTER_ADMIN"
	RoleProcurementOfficer = "PROCUREMENT_OFFICER"
	RoleStorekeeper        = "STOREKEEPER"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full system access with all privileges",
	},
	{
		Code:        RoleProcurementOfficer,
		Name:        "Procurement Officer",
		Description: "Maintains suppliers and purchase orders",
	},
	{
		Code:        RoleStorekeeper,
		Name:        "Storekeeper",
		Description: "Records stock receiving and issuance",
	},
}

// DefaultRolePrivileges lists the privilege codes seeded for each non-master role.
// MASTER_ADMIN receives every privilege.
var DefaultRolePrivileges = map[string][]string{
	RoleProcurementOfficer: {
		PrivSupplierView, PrivSupplierCreate, PrivSupplierUpdate, PrivSupplierDelete,
		PrivPOView, PrivPOCreate, PrivPOUpdate, PrivPODelete,
		PrivInventoryView, PrivDashboardView,
	},
	RoleStorekeeper: {
		PrivSupplierView, PrivPOView,
		PrivInventoryView, PrivInventoryManage, PrivDashboardView,
	},
}
