package models

// Roles known to the order pipeline.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleShipper  = "shipper"
)

// User is an account reference for ownership and role checks. Registration,
// credentials and token issuance live in the auth service.
type User struct {
	BaseModel
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     string  `gorm:"uniqueIndex" json:"phone"`
	Role      string  `gorm:"default:customer" json:"role"`
	Orders    []Order `json:"orders,omitempty"`
}
