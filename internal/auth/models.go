package auth

import "time"

// User is a registered account. Inactive users cannot sign in.
type User struct {
	ID          int       `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Invitation is a single-use registration code, optionally bound to an email
// address and optionally expiring.
type Invitation struct {
	ID        int        `json:"id"`
	Code      string     `json:"code"`
	Email     *string    `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	UsedBy    *int       `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Used reports whether the invitation has been redeemed.
func (i Invitation) Used() bool {
	return i.UsedBy != nil
}
