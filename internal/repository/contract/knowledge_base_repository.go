package contract

import (
	"context"

	"openbook-be/internal/entity"
)

// KnowledgeBaseRepository stores one knowledge base per username.
// Put fails with a NotFound error when the owning profile is not stored.
type KnowledgeBaseRepository interface {
	Get(ctx context.Context, username string) (*entity.KnowledgeBase, error)
	Put(ctx context.Context, kb *entity.KnowledgeBase) error
	Exists(ctx context.Context, username string) (bool, error)
	Delete(ctx context.Context, username string) error
}
