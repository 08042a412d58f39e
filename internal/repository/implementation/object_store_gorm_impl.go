package implementation

import (
	"context"
	"errors"
	"strings"

	"openbook-be/internal/model"
	"openbook-be/pkg/blobstore"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormObjectStore is the Postgres backend of blobstore.Store.
type GormObjectStore struct {
	db *gorm.DB
}

var _ blobstore.Store = &GormObjectStore{}

func NewGormObjectStore(db *gorm.DB) *GormObjectStore {
	return &GormObjectStore{db: db}
}

func (s *GormObjectStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var m model.StoredObject
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(m.Content), true, nil
}

func (s *GormObjectStore) Put(ctx context.Context, key string, data []byte) error {
	m := model.StoredObject{Key: key, Content: data}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(&m).Error
}

func (s *GormObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.StoredObject{}).Where("key = ?", key).Count(&count).Error
	return count > 0, err
}

func (s *GormObjectStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&model.StoredObject{}).Error
}

func (s *GormObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := s.db.WithContext(ctx).
		Model(&model.StoredObject{}).
		Where("key LIKE ?", escapeLike(prefix)+"%").
		Order("key ASC").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
