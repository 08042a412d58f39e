package implementation

import (
	"context"
	"encoding/json"

	"openbook-be/internal/entity"
	"openbook-be/internal/pkg/logger"
	"openbook-be/internal/repository/contract"
	"openbook-be/pkg/blobstore"
)

type ChatSessionRepositoryImpl struct {
	store  blobstore.Store
	prefix string
	logger logger.ILogger
}

func NewChatSessionRepository(store blobstore.Store, prefix string, log logger.ILogger) contract.ChatSessionRepository {
	return &ChatSessionRepositoryImpl{
		store:  store,
		prefix: prefix,
		logger: log,
	}
}

func chatSessionKey(prefix, sessionId string) string {
	return blobstore.Join(prefix, sessionId+".json")
}

func (r *ChatSessionRepositoryImpl) Get(ctx context.Context, sessionId string) (*entity.ChatSession, error) {
	return loadDocument[entity.ChatSession](ctx, r.store, chatSessionKey(r.prefix, sessionId))
}

func (r *ChatSessionRepositoryImpl) Put(ctx context.Context, session *entity.ChatSession) error {
	return saveDocument(ctx, r.store, chatSessionKey(r.prefix, session.SessionId), session)
}

func (r *ChatSessionRepositoryImpl) Exists(ctx context.Context, sessionId string) (bool, error) {
	return r.store.Exists(ctx, chatSessionKey(r.prefix, sessionId))
}

func (r *ChatSessionRepositoryImpl) Delete(ctx context.Context, sessionId string) error {
	return r.store.Delete(ctx, chatSessionKey(r.prefix, sessionId))
}

// ListByUsername decodes every stored session once and keeps those owned by
// username. Blobs that fail to decode are logged and skipped.
func (r *ChatSessionRepositoryImpl) ListByUsername(ctx context.Context, username string) ([]*entity.ChatSession, error) {
	keys, err := r.store.List(ctx, blobstore.Join(r.prefix, ""))
	if err != nil {
		return nil, err
	}

	sessions := make([]*entity.ChatSession, 0)
	for _, key := range keys {
		data, ok, err := r.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		// deleted between List and Get
		if !ok {
			continue
		}

		var session entity.ChatSession
		if err := json.Unmarshal(data, &session); err != nil {
			r.logger.Warn("REPOSITORY", "Skipping undecodable chat session", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			continue
		}
		if session.Username == username {
			sessions = append(sessions, &session)
		}
	}
	return sessions, nil
}

func (r *ChatSessionRepositoryImpl) ListKeysByUsername(ctx context.Context, username string) ([]string, error) {
	sessions, err := r.ListByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.SessionId)
	}
	return ids, nil
}
