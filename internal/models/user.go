package models

// User is a user account as stored by the backend. The validate tags apply
// to registration.
type User struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password,omitempty" validate:"required"`
	Income         float32 `json:"income"`
	Accountbalance float32 `json:"accountbalance"`
}

// Identity is the authenticated user held by the session.
type Identity struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
