package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
	RoleUser  = "user"
)

// Roles lists every role an account may hold.
var Roles = []string{RoleAdmin, RoleAgent, RoleUser}

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Account models a registered actor of the workspace.
//
// Token and TokenExpiresAt cache the last token issued at login. They are
// informational only: token validity is decided by signature and expiry.
type Account struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Role           string     `json:"role"`
	Token          string     `json:"-"`
	TokenExpiresAt *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Identity returns the subset of the account embedded in session tokens.
func (a *Account) Identity() Identity {
	return Identity{
		AccountID: a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
	}
}
