package contract

import (
	"context"

	"openbook-be/internal/entity"
)

// ProfileRepository stores one profile snapshot per username.
// Get returns (nil, nil) when no profile is stored.
type ProfileRepository interface {
	Get(ctx context.Context, username string) (*entity.Profile, error)
	Put(ctx context.Context, profile *entity.Profile) error
	Exists(ctx context.Context, username string) (bool, error)
	Delete(ctx context.Context, username string) error
}
