// internal/adapters/out/firestore/user_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"farmlink/internal/domain/session"
	userdom "farmlink/internal/domain/user"
)

// UserRepositoryFS implements user.Repository using Firestore.
//
// Collection design:
// - collection: users
// - docId: uid from the identity provider (docId is the source of truth)
type UserRepositoryFS struct {
	Client *firestore.Client
}

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client}
}

func (r *UserRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("users")
}

func (r *UserRepositoryFS) GetByUID(ctx context.Context, uid string) (userdom.Profile, error) {
	if r == nil || r.Client == nil {
		return userdom.Profile{}, errors.New("user_repository_fs: firestore client is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.Profile{}, userdom.ErrNotFound
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return userdom.Profile{}, userdom.ErrNotFound
	}
	if err != nil {
		return userdom.Profile{}, err
	}

	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return userdom.Profile{}, err
	}
	p := d.toDomain()
	p.UID = snap.Ref.ID
	return p, nil
}

func (r *UserRepositoryFS) Create(ctx context.Context, p userdom.Profile) (userdom.Profile, error) {
	if r == nil || r.Client == nil {
		return userdom.Profile{}, errors.New("user_repository_fs: firestore client is nil")
	}
	if err := p.Validate(); err != nil {
		return userdom.Profile{}, err
	}
	if _, err := r.col().Doc(p.UID).Create(ctx, userDocFromDomain(p)); err != nil {
		return userdom.Profile{}, err
	}
	return p, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type userDoc struct {
	Email     string    `firestore:"email"`
	UserType  string    `firestore:"userType"`
	FullName  string    `firestore:"fullName"`
	Phone     string    `firestore:"phone"`
	FarmName  string    `firestore:"farmName"`
	Location  string    `firestore:"location"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func userDocFromDomain(p userdom.Profile) userDoc {
	return userDoc{
		Email:     p.Email,
		UserType:  string(p.Role),
		FullName:  p.FullName,
		Phone:     p.Phone,
		FarmName:  p.FarmName,
		Location:  p.Location,
		CreatedAt: p.CreatedAt,
	}
}

func (d userDoc) toDomain() userdom.Profile {
	return userdom.Profile{
		Email:     d.Email,
		Role:      session.Role(d.UserType),
		FullName:  d.FullName,
		Phone:     d.Phone,
		FarmName:  d.FarmName,
		Location:  d.Location,
		CreatedAt: d.CreatedAt,
	}
}
