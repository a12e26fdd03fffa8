package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/docfed/docfed"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docfed.CacheStore = (*CacheService)(nil)

// CacheService implements docfed.CacheStore using SQLite. Expiry is
// enforced on read: expired rows are invisible to Exists and Get until
// PurgeExpired removes them.
type CacheService struct {
	db *DB
}

// NewCacheService creates a new CacheService.
func NewCacheService(db *DB) *CacheService {
	return &CacheService{db: db}
}

// Put writes or refreshes an entry keyed by its fingerprint. A
// conflicting fingerprint replaces the stored copy, refreshing its
// retention window.
func (s *CacheService) Put(ctx context.Context, entry *docfed.CacheEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	expiresAt := entry.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = createdAt.Add(time.Duration(entry.TTLSeconds) * time.Second)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (id, fingerprint, title, source, content, provider_id, technology, priority, ttl_seconds, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			title = excluded.title,
			source = excluded.source,
			content = excluded.content,
			provider_id = excluded.provider_id,
			technology = excluded.technology,
			priority = excluded.priority,
			ttl_seconds = excluded.ttl_seconds,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, uuid.New().String(), entry.Fingerprint, entry.Title, entry.Source, entry.Content,
		entry.ProviderID, entry.Technology, int(entry.Priority), entry.TTLSeconds,
		createdAt.Format(time.RFC3339), expiresAt.Format(time.RFC3339))

	return err
}

// Exists reports whether a non-expired entry exists for the fingerprint.
func (s *CacheService) Exists(ctx context.Context, fingerprint string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM cache_entries
		WHERE fingerprint = ? AND expires_at > ?
	`, fingerprint, time.Now().UTC().Format(time.RFC3339)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get retrieves a non-expired entry.
// Returns ENOTFOUND if no such entry exists.
func (s *CacheService) Get(ctx context.Context, fingerprint string) (*docfed.CacheEntry, error) {
	var entry docfed.CacheEntry
	var priority int
	var createdAt, expiresAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, title, source, content, provider_id, technology, priority, ttl_seconds, created_at, expires_at
		FROM cache_entries
		WHERE fingerprint = ? AND expires_at > ?
	`, fingerprint, time.Now().UTC().Format(time.RFC3339)).Scan(
		&entry.Fingerprint, &entry.Title, &entry.Source, &entry.Content,
		&entry.ProviderID, &entry.Technology, &priority, &entry.TTLSeconds,
		&createdAt, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, docfed.Errorf(docfed.ENOTFOUND, "cache entry not found")
	}
	if err != nil {
		return nil, err
	}

	entry.Priority = docfed.Priority(priority)
	if entry.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if entry.ExpiresAt, err = parseRFC3339(expiresAt, "expires_at"); err != nil {
		return nil, err
	}

	return &entry, nil
}

// PurgeExpired deletes all expired entries and returns the number removed.
func (s *CacheService) PurgeExpired(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM cache_entries WHERE expires_at <= ?
	`, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

// CountEntries returns the number of stored entries, expired included.
func (s *CacheService) CountEntries(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cache_entries").Scan(&n)
	return n, err
}
