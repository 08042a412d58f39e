package implementation

import (
	"context"

	"openbook-be/internal/entity"
	"openbook-be/internal/repository/contract"
	"openbook-be/pkg/blobstore"
)

type ProfileRepositoryImpl struct {
	store  blobstore.Store
	prefix string
}

func NewProfileRepository(store blobstore.Store, prefix string) contract.ProfileRepository {
	return &ProfileRepositoryImpl{
		store:  store,
		prefix: prefix,
	}
}

func profileKey(prefix, username string) string {
	return blobstore.Join(prefix, username+".json")
}

func (r *ProfileRepositoryImpl) Get(ctx context.Context, username string) (*entity.Profile, error) {
	return loadDocument[entity.Profile](ctx, r.store, profileKey(r.prefix, username))
}

func (r *ProfileRepositoryImpl) Put(ctx context.Context, profile *entity.Profile) error {
	return saveDocument(ctx, r.store, profileKey(r.prefix, profile.Username), profile)
}

func (r *ProfileRepositoryImpl) Exists(ctx context.Context, username string) (bool, error) {
	return r.store.Exists(ctx, profileKey(r.prefix, username))
}

func (r *ProfileRepositoryImpl) Delete(ctx context.Context, username string) error {
	return r.store.Delete(ctx, profileKey(r.prefix, username))
}
