package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/docfed/docfed"
	"github.com/docfed/docfed/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry(fingerprint string, ttl int) *docfed.CacheEntry {
	now := time.Now().UTC()
	return &docfed.CacheEntry{
		Fingerprint: fingerprint,
		Title:       "useEffect Hook",
		Source:      "https://react.dev/reference/react/useEffect",
		Content:     "# useEffect\n\nSynchronize a component with an external system.",
		ProviderID:  "reactdocs",
		Technology:  "react",
		Priority:    docfed.PriorityHigh,
		TTLSeconds:  ttl,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(ttl) * time.Second),
	}
}

func TestCacheService_Put(t *testing.T) {
	t.Parallel()

	t.Run("stores a retrievable entry", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewCacheService(MustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, testEntry("fp-1", 3600)))

		got, err := s.Get(ctx, "fp-1")
		require.NoError(t, err)
		assert.Equal(t, "useEffect Hook", got.Title)
		assert.Equal(t, "https://react.dev/reference/react/useEffect", got.Source)
		assert.Equal(t, "reactdocs", got.ProviderID)
		assert.Equal(t, "react", got.Technology)
		assert.Equal(t, docfed.PriorityHigh, got.Priority)
		assert.Equal(t, 3600, got.TTLSeconds)
	})

	t.Run("conflicting fingerprint refreshes the stored copy", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewCacheService(MustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, testEntry("fp-2", 60)))

		refreshed := testEntry("fp-2", 7200)
		refreshed.Title = "useEffect Hook (updated)"
		require.NoError(t, s.Put(ctx, refreshed))

		got, err := s.Get(ctx, "fp-2")
		require.NoError(t, err)
		assert.Equal(t, "useEffect Hook (updated)", got.Title)
		assert.Equal(t, 7200, got.TTLSeconds)

		count, err := s.CountEntries(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("rejects an invalid entry", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewCacheService(MustOpenDB(t))

		err := s.Put(context.Background(), &docfed.CacheEntry{Fingerprint: "fp-3"})
		require.Error(t, err)
		assert.Equal(t, docfed.EINVALID, docfed.ErrorCode(err))
	})

	t.Run("fills missing timestamps from the TTL", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewCacheService(MustOpenDB(t))
		ctx := context.Background()

		entry := testEntry("fp-4", 3600)
		entry.CreatedAt = time.Time{}
		entry.ExpiresAt = time.Time{}
		require.NoError(t, s.Put(ctx, entry))

		got, err := s.Get(ctx, "fp-4")
		require.NoError(t, err)
		assert.WithinDuration(t, got.CreatedAt.Add(time.Hour), got.ExpiresAt, time.Second)
	})
}

func TestCacheService_Exists(t *testing.T) {
	t.Parallel()

	s := sqlite.NewCacheService(MustOpenDB(t))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testEntry("fp-live", 3600)))

	expired := testEntry("fp-expired", 3600)
	expired.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	expired.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, s.Put(ctx, expired))

	ok, err := s.Exists(ctx, "fp-live")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "fp-expired")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Exists(ctx, "fp-missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheService_Get(t *testing.T) {
	t.Parallel()

	t.Run("missing fingerprint returns ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewCacheService(MustOpenDB(t))

		_, err := s.Get(context.Background(), "fp-missing")
		require.Error(t, err)
		assert.Equal(t, docfed.ENOTFOUND, docfed.ErrorCode(err))
	})

	t.Run("expired entry returns ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewCacheService(MustOpenDB(t))
		ctx := context.Background()

		expired := testEntry("fp-old", 3600)
		expired.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
		expired.ExpiresAt = time.Now().UTC().Add(-time.Hour)
		require.NoError(t, s.Put(ctx, expired))

		_, err := s.Get(ctx, "fp-old")
		require.Error(t, err)
		assert.Equal(t, docfed.ENOTFOUND, docfed.ErrorCode(err))
	})
}

func TestCacheService_PurgeExpired(t *testing.T) {
	t.Parallel()

	s := sqlite.NewCacheService(MustOpenDB(t))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testEntry("fp-keep", 3600)))

	for _, fp := range []string{"fp-gone-1", "fp-gone-2"} {
		expired := testEntry(fp, 3600)
		expired.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
		expired.ExpiresAt = time.Now().UTC().Add(-time.Hour)
		require.NoError(t, s.Put(ctx, expired))
	}

	purged, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, purged)

	count, err := s.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ok, err := s.Exists(ctx, "fp-keep")
	require.NoError(t, err)
	assert.True(t, ok)
}
