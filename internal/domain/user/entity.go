// internal/domain/user/entity.go
package user

import (
	"errors"
	"strings"
	"time"

	"farmlink/internal/domain/session"
)

var (
	ErrInvalidID    = errors.New("user: invalid id")
	ErrInvalidEmail = errors.New("user: invalid email")
	ErrInvalidRole  = errors.New("user: invalid userType")

	ErrNotFound = errors.New("user: not found")
)

// Profile is the application-side user record, keyed by the identity
// provider's UID (docId = uid). Authentication itself is external; we
// only store the role and display fields alongside it.
type Profile struct {
	UID       string       `json:"uid"`
	Email     string       `json:"email"`
	Role      session.Role `json:"userType"`
	FullName  string       `json:"fullName,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	FarmName  string       `json:"farmName,omitempty"`
	Location  string       `json:"location,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

func NewProfile(uid, email string, role session.Role, now time.Time) (Profile, error) {
	p := Profile{
		UID:       strings.TrimSpace(uid),
		Email:     strings.TrimSpace(email),
		Role:      role,
		CreatedAt: now.UTC(),
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p *Profile) Validate() error {
	if p == nil || strings.TrimSpace(p.UID) == "" {
		return ErrInvalidID
	}
	if strings.TrimSpace(p.Email) == "" {
		return ErrInvalidEmail
	}
	if !p.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// Session derives the request session for this profile.
func (p Profile) Session() session.Session {
	return session.Session{UID: p.UID, Email: p.Email, Role: p.Role}
}
