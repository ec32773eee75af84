package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONStore serializes values into a KVStore. Every failure, including
// an unparsable stored value, is reported as ErrStorageUnavailable.
type JSONStore struct {
	kv KVStore
}

func NewJSONStore(kv KVStore) *JSONStore {
	return &JSONStore{kv: kv}
}

// Read decodes the value at key into dst. When the key is absent dst is left
// as the caller prepared it and found is false.
func (s *JSONStore) Read(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: read %q: %v", ErrStorageUnavailable, key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: decode %q: %v", ErrStorageUnavailable, key, err)
	}
	return true, nil
}

func (s *JSONStore) Write(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *JSONStore) Remove(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: remove %q: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}
