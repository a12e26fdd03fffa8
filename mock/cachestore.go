package mock

import (
	"context"

	"github.com/docfed/docfed"
)

var _ docfed.CacheStore = (*CacheStore)(nil)

// CacheStore is a mock implementation of docfed.CacheStore.
type CacheStore struct {
	PutFn    func(ctx context.Context, entry *docfed.CacheEntry) error
	ExistsFn func(ctx context.Context, fingerprint string) (bool, error)
	GetFn    func(ctx context.Context, fingerprint string) (*docfed.CacheEntry, error)
}

func (s *CacheStore) Put(ctx context.Context, entry *docfed.CacheEntry) error {
	return s.PutFn(ctx, entry)
}

func (s *CacheStore) Exists(ctx context.Context, fingerprint string) (bool, error) {
	return s.ExistsFn(ctx, fingerprint)
}

func (s *CacheStore) Get(ctx context.Context, fingerprint string) (*docfed.CacheEntry, error) {
	return s.GetFn(ctx, fingerprint)
}
