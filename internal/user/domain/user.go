package domain

import "time"

// User is the account identity the token lifecycle operates on. Account CRUD
// lives elsewhere in the platform; this subsystem only reads users to verify
// credentials and stamp token claims.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string // claim value for access tokens, e.g. "user" or "admin"
	PasswordHash string // bcrypt; never exposed past the credential verifier
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns the fields safe to return to clients after login.
type Public struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Public strips credential material from the user.
func (u *User) Public() Public {
	return Public{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
