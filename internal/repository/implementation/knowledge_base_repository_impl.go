package implementation

import (
	"context"

	"openbook-be/internal/entity"
	"openbook-be/internal/pkg/apperror"
	"openbook-be/internal/repository/contract"
	"openbook-be/pkg/blobstore"
)

type KnowledgeBaseRepositoryImpl struct {
	store    blobstore.Store
	prefix   string
	profiles contract.ProfileRepository
}

func NewKnowledgeBaseRepository(store blobstore.Store, prefix string, profiles contract.ProfileRepository) contract.KnowledgeBaseRepository {
	return &KnowledgeBaseRepositoryImpl{
		store:    store,
		prefix:   prefix,
		profiles: profiles,
	}
}

func knowledgeBaseKey(prefix, username string) string {
	return blobstore.Join(prefix, username+"-kb.json")
}

func (r *KnowledgeBaseRepositoryImpl) Get(ctx context.Context, username string) (*entity.KnowledgeBase, error) {
	return loadDocument[entity.KnowledgeBase](ctx, r.store, knowledgeBaseKey(r.prefix, username))
}

func (r *KnowledgeBaseRepositoryImpl) Put(ctx context.Context, kb *entity.KnowledgeBase) error {
	exists, err := r.profiles.Exists(ctx, kb.Username)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NotFound("profile %q must be stored before its knowledge base", kb.Username)
	}
	return saveDocument(ctx, r.store, knowledgeBaseKey(r.prefix, kb.Username), kb)
}

func (r *KnowledgeBaseRepositoryImpl) Exists(ctx context.Context, username string) (bool, error) {
	return r.store.Exists(ctx, knowledgeBaseKey(r.prefix, username))
}

func (r *KnowledgeBaseRepositoryImpl) Delete(ctx context.Context, username string) error {
	return r.store.Delete(ctx, knowledgeBaseKey(r.prefix, username))
}
