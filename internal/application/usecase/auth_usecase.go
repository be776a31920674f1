// internal/application/usecase/auth_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	"farmlink/internal/domain/session"
	userdom "farmlink/internal/domain/user"
)

var (
	ErrAuthInvalidArgument = errors.New("auth_usecase: invalid argument")
	ErrProfileExists       = errors.New("auth_usecase: profile already exists")
)

// AuthUsecase resolves the acting session from a verified identity and
// manages user profiles. Token verification itself happens in the auth
// middleware; here the uid is already trusted.
type AuthUsecase struct {
	users userdom.Repository
	clock Clock
}

func NewAuthUsecase(users userdom.Repository) *AuthUsecase {
	return &AuthUsecase{users: users, clock: systemClock{}}
}

func NewAuthUsecaseWithClock(users userdom.Repository, clock Clock) *AuthUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &AuthUsecase{users: users, clock: clock}
}

// ResolveSession loads the profile for uid and derives the request
// session. A missing profile means the identity exists but was never
// registered here; that is treated as unauthenticated.
func (uc *AuthUsecase) ResolveSession(ctx context.Context, uid string) (session.Session, error) {
	id := strings.TrimSpace(uid)
	if id == "" {
		return session.Session{}, session.ErrNotAuthenticated
	}

	p, err := uc.users.GetByUID(ctx, id)
	if err != nil {
		if errors.Is(err, userdom.ErrNotFound) {
			return session.Session{}, session.ErrNotAuthenticated
		}
		return session.Session{}, err
	}
	return p.Session(), nil
}

// RegisterInput carries sign-up profile fields beyond the identity.
type RegisterInput struct {
	UID      string
	Email    string
	Role     session.Role
	FullName string
	Phone    string
	FarmName string
	Location string
}

// Register creates the profile document for a freshly created identity.
func (uc *AuthUsecase) Register(ctx context.Context, in RegisterInput) (userdom.Profile, error) {
	uid := strings.TrimSpace(in.UID)
	email := strings.TrimSpace(in.Email)
	if uid == "" || email == "" || !in.Role.Valid() {
		return userdom.Profile{}, ErrAuthInvalidArgument
	}

	if _, err := uc.users.GetByUID(ctx, uid); err == nil {
		return userdom.Profile{}, ErrProfileExists
	} else if !errors.Is(err, userdom.ErrNotFound) {
		return userdom.Profile{}, err
	}

	p, err := userdom.NewProfile(uid, email, in.Role, uc.clock.Now())
	if err != nil {
		return userdom.Profile{}, err
	}
	p.FullName = strings.TrimSpace(in.FullName)
	p.Phone = strings.TrimSpace(in.Phone)
	p.FarmName = strings.TrimSpace(in.FarmName)
	p.Location = strings.TrimSpace(in.Location)

	return uc.users.Create(ctx, p)
}
