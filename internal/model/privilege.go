package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "po:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Purchase Order"
}

// Privilege codes checked by the route layer
const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"

	PrivSupplierView   = "supplier:view"
	PrivSupplierCreate = "supplier:create"
	PrivSupplierUpdate = "supplier:update"
	PrivSupplierDelete = "supplier:delete"

	PrivPOView   = "po:view"
	PrivPOCreate = "po:create"
	PrivPOUpdate = "po:update"
	PrivPODelete = "po:delete"

	PrivInventoryView   = "inventory:view"
	PrivInventoryManage = "inventory:manage"

	PrivDashboardView = "dashboard:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserUpdatePrivilege, Name: "Update User Privileges"},
	// Supplier registry
	{Code: PrivSupplierView, Name: "View Supplier"},
	{Code: PrivSupplierCreate, Name: "Create Supplier"},
	{Code: PrivSupplierUpdate, Name: "Update Supplier"},
	{Code: PrivSupplierDelete, Name: "Delete Supplier"},
	// Purchase orders
	{Code: PrivPOView, Name: "View Purchase Order"},
	{Code: PrivPOCreate, Name: "Create Purchase Order"},
	{Code: PrivPOUpdate, Name: "Update Purchase Order"},
	{Code: PrivPODelete, Name: "Delete Purchase Order"},
	// Inventory
	{Code: PrivInventoryView, Name: "View Inventory"},
	{Code: PrivInventoryManage, Name: "Manage Inventory"},
	// Dashboard
	{Code: PrivDashboardView, Name: "View Dashboard"},
}
