package implementation

import (
	"context"
	"encoding/json"
	"fmt"

	"openbook-be/pkg/blobstore"
)

// loadDocument decodes the JSON object at key into a new T; (nil, nil) when absent.
func loadDocument[T any](ctx context.Context, store blobstore.Store, key string) (*T, error) {
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &doc, nil
}

func saveDocument(ctx context.Context, store blobstore.Store, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Put(ctx, key, data)
}
