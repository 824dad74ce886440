package model

// User is the identity injected by the upstream auth layer. Authentication
// itself is out of scope; handlers trust the identity headers set by the
// gateway in front of this service.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserRoleAdmin is the role required for the admin order surface.
const UserRoleAdmin = "ADMIN"
