// internal/application/usecase/auth_usecase_test.go
package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmlink/internal/domain/session"
)

func TestRegisterAndResolveSession(t *testing.T) {
	users := newMemUserRepo()
	uc := NewAuthUsecaseWithClock(users, fixedClock{testNow})

	p, err := uc.Register(context.Background(), RegisterInput{
		UID:      "uid-1",
		Email:    "buyer@example.com",
		Role:     session.RoleBuyer,
		FullName: "Jordan Avery",
		Phone:    "0712345678",
	})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", p.UID)
	assert.Equal(t, session.RoleBuyer, p.Role)
	assert.Equal(t, "Jordan Avery", p.FullName)

	sess, err := uc.ResolveSession(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, session.Session{UID: "uid-1", Email: "buyer@example.com", Role: session.RoleBuyer}, sess)
}

func TestRegisterDuplicate(t *testing.T) {
	users := newMemUserRepo()
	uc := NewAuthUsecaseWithClock(users, fixedClock{testNow})

	in := RegisterInput{UID: "uid-1", Email: "buyer@example.com", Role: session.RoleBuyer}
	_, err := uc.Register(context.Background(), in)
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrProfileExists)
}

func TestRegisterValidation(t *testing.T) {
	uc := NewAuthUsecaseWithClock(newMemUserRepo(), fixedClock{testNow})

	_, err := uc.Register(context.Background(), RegisterInput{Email: "a@b.c", Role: session.RoleBuyer})
	assert.ErrorIs(t, err, ErrAuthInvalidArgument)

	_, err = uc.Register(context.Background(), RegisterInput{UID: "uid-1", Role: session.RoleBuyer})
	assert.ErrorIs(t, err, ErrAuthInvalidArgument)

	_, err = uc.Register(context.Background(), RegisterInput{UID: "uid-1", Email: "a@b.c", Role: "admin"})
	assert.ErrorIs(t, err, ErrAuthInvalidArgument)
}

func TestResolveSessionUnknownIdentity(t *testing.T) {
	uc := NewAuthUsecaseWithClock(newMemUserRepo(), fixedClock{testNow})

	// a verified identity without a profile is unauthenticated here
	_, err := uc.ResolveSession(context.Background(), "ghost")
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)

	_, err = uc.ResolveSession(context.Background(), "  ")
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}
