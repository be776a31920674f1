// internal/domain/session/session.go
package session

import (
	"errors"
	"strings"
)

// Role is the account role stored on the user profile.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleFarmer Role = "farmer"
)

var (
	ErrNotAuthenticated = errors.New("session: not authenticated")
	ErrNotAuthorized    = errors.New("session: not authorized")
)

// Session identifies the acting user for the duration of one request.
// It is built once by the auth middleware and passed explicitly into
// every usecase call; nothing in the application reads it from a global.
type Session struct {
	UID   string
	Email string
	Role  Role
}

// New normalizes and validates a session.
// An empty uid means "no signed-in user".
func New(uid, email string, role Role) (Session, error) {
	s := Session{
		UID:   strings.TrimSpace(uid),
		Email: strings.TrimSpace(email),
		Role:  role,
	}
	if s.UID == "" {
		return Session{}, ErrNotAuthenticated
	}
	if !role.Valid() {
		return Session{}, ErrNotAuthorized
	}
	return s, nil
}

func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleFarmer
}

// Authenticated reports whether the session belongs to a signed-in user.
func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.UID) != ""
}

// RequireBuyer guards buyer-only operations (cart, checkout).
func (s Session) RequireBuyer() error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	if s.Role != RoleBuyer {
		return ErrNotAuthorized
	}
	return nil
}

// RequireFarmer guards seller-only operations (listing products,
// advancing order status).
func (s Session) RequireFarmer() error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	if s.Role != RoleFarmer {
		return ErrNotAuthorized
	}
	return nil
}

// ParseRole maps a stored userType string to a Role.
func ParseRole(v string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(v))) {
	case RoleBuyer:
		return RoleBuyer, true
	case RoleFarmer:
		return RoleFarmer, true
	default:
		return "", false
	}
}
