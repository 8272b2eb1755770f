package domain

import "time"

// PrincipalKind tells how a principal was resolved.
type PrincipalKind string

const (
	// PrincipalKindToken is built from verified token claims only.
	PrincipalKindToken PrincipalKind = "token"
	// PrincipalKindStoredUser is backed by a fresh user store lookup.
	PrincipalKindStoredUser PrincipalKind = "stored_user"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	Kind      PrincipalKind
	UserID    string
	Username  string
	Roles     []string
	ExpiresAt time.Time
}

// HasRole reports whether the principal carries role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NewStoredUserPrincipal builds a principal from a user record.
func NewStoredUserPrincipal(user *User, expiresAt time.Time) *Principal {
	roles := make([]string, len(user.Roles))
	copy(roles, user.Roles)
	return &Principal{
		Kind:      PrincipalKindStoredUser,
		UserID:    user.ID,
		Username:  user.Username,
		Roles:     roles,
		ExpiresAt: expiresAt,
	}
}
