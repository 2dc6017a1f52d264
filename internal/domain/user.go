package domain

// User is a marketplace account. PasswordHash belongs to the authentication service.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Rating       float64
}

// Caller is the resolved identity of whoever invokes an operation.
type Caller struct {
	UserID int64
	Role   Role
}

// SystemCaller is the identity background settlement acts under.
var SystemCaller = Caller{UserID: 0, Role: RoleAdmin}
