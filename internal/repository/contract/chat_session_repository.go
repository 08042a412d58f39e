package contract

import (
	"context"

	"openbook-be/internal/entity"
)

type ChatSessionRepository interface {
	Get(ctx context.Context, sessionId string) (*entity.ChatSession, error)
	Put(ctx context.Context, session *entity.ChatSession) error // full snapshot overwrite
	Exists(ctx context.Context, sessionId string) (bool, error)
	Delete(ctx context.Context, sessionId string) error
	// ListByUsername scans every stored session and returns those owned by username
	ListByUsername(ctx context.Context, username string) ([]*entity.ChatSession, error)
	// ListKeysByUsername scans every stored session and returns the ids owned by username
	ListKeysByUsername(ctx context.Context, username string) ([]string, error)
}
