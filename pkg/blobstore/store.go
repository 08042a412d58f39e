// Package blobstore is the byte level persistence layer behind the profile,
// knowledge base and chat session collections. Keys are slash separated
// paths such as "chat-sessions/<id>.json"; a collection is a key prefix.
package blobstore

import (
	"context"
	"strings"
)

type Store interface {
	// Get returns ok=false, with no error, when the key is absent
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Put creates or fully overwrites the object at key
	Put(ctx context.Context, key string, data []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	// Delete is a no-op for absent keys
	Delete(ctx context.Context, key string) error
	// List returns every key starting with prefix, sorted
	List(ctx context.Context, prefix string) ([]string, error)
}

// Join builds a key from a collection prefix and an object name.
func Join(prefix, name string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
