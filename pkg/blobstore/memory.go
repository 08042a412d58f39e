package blobstore

import (
	"context"
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps objects in process. Nothing ever expires: sessions have
// no TTL, and profiles/knowledge bases are judged stale by the cache layer.
type MemoryStore struct {
	cache *cache.Cache
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	x, found := s.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	return clone(x.([]byte)), true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	s.cache.Set(key, clone(data), cache.NoExpiration)
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	_, found := s.cache.Get(key)
	return found, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
