// internal/domain/user/repository_port.go
package user

import "context"

// Repository is the persistence port for user profiles.
type Repository interface {
	// GetByUID returns (Profile{}, ErrNotFound) when no profile exists.
	GetByUID(ctx context.Context, uid string) (Profile, error)
	Create(ctx context.Context, p Profile) (Profile, error)
}
