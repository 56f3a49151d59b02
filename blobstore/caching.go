package blobstore

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// CachingStore is a read-through cache in front of a remote store. Blob
// contents are materialized into a local store on first open and served from
// there afterwards. Concurrent opens of the same uncached blob share a
// single download.
//
// Blobs are immutable, so cached content never goes stale; Put and Delete
// still invalidate defensively in case a name is reused.
type CachingStore struct {
	remote Store
	cache  *LocalStore
	group  singleflight.Group
}

// NewCachingStore creates a CachingStore backed by remote with cache as the
// local materialization target.
func NewCachingStore(remote Store, cache *LocalStore) *CachingStore {
	return &CachingStore{remote: remote, cache: cache}
}

// Open opens a blob, filling the cache from the remote store on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.cache.Open(ctx, name)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := s.fill(ctx, name); err != nil {
		return nil, err
	}
	return s.cache.Open(ctx, name)
}

// fill downloads a blob into the cache, deduplicating concurrent fills.
func (s *CachingStore) fill(ctx context.Context, name string) error {
	_, err, _ := s.group.Do(name, func() (any, error) {
		blob, err := s.remote.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		defer blob.Close()

		data, err := ReadAll(ctx, blob)
		if err != nil {
			return nil, err
		}
		return nil, s.cache.Put(ctx, name, data)
	})
	return err
}

// Prefetch warms the cache for the named blobs, downloading up to four
// concurrently. Missing blobs fail the whole prefetch.
func (s *CachingStore) Prefetch(ctx context.Context, names ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, name := range names {
		name := name
		g.Go(func() error {
			return s.fill(ctx, name)
		})
	}
	return g.Wait()
}

// Put writes through to the remote store and refreshes the cache.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.remote.Put(ctx, name, data); err != nil {
		return err
	}
	return s.cache.Put(ctx, name, data)
}

// Delete removes the blob from both the remote store and the cache.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	if err := s.remote.Delete(ctx, name); err != nil {
		return err
	}
	return s.cache.Delete(ctx, name)
}

// List lists blobs in the remote store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.remote.List(ctx, prefix)
}
