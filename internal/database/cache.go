package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"label-scanner/internal/scanner"
)

// ScanKey identifies a cached scan: the document digest, the fingerprint of
// the chain that classified it and the recognizer pattern version
type ScanKey struct {
	Digest  string `json:"digest"`
	Chain   string `json:"chain"`
	Version string `json:"version"`
}

// ScanCacheEntry represents a cached scan result row
type ScanCacheEntry struct {
	Key       ScanKey         `json:"key"`
	Result    *scanner.Result `json:"result"`
	CachedAt  time.Time       `json:"cached_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// ScanCacheStore handles database operations for the scan cache
type ScanCacheStore struct {
	db *sql.DB
}

// NewScanCacheStore creates a new scan cache store
func NewScanCacheStore(db *sql.DB) *ScanCacheStore {
	return &ScanCacheStore{db: db}
}

// Get retrieves a cached scan. A miss or an expired entry returns nil, nil.
func (s *ScanCacheStore) Get(key ScanKey) (*scanner.Result, error) {
	query := `SELECT result_data, expires_at FROM scan_cache WHERE digest = ? AND chain = ? AND version = ?`

	var resultData string
	var expiresAt time.Time

	err := s.db.QueryRow(query, key.Digest, key.Chain, key.Version).Scan(&resultData, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached scan: %w", err)
	}

	if !time.Now().UTC().Before(expiresAt) {
		if err := s.Delete(key); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var result scanner.Result
	if err := json.Unmarshal([]byte(resultData), &result); err != nil {
		return nil, fmt.Errorf("failed to deserialize cached scan: %w", err)
	}

	return &result, nil
}

// Set stores a scan result with the given TTL, replacing any previous entry
func (s *ScanCacheStore) Set(key ScanKey, result *scanner.Result, ttl time.Duration) error {
	resultData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize scan: %w", err)
	}

	now := time.Now().UTC()
	query := `INSERT OR REPLACE INTO scan_cache (digest, chain, version, result_data, cached_at, expires_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	if _, err := s.db.Exec(query, key.Digest, key.Chain, key.Version, string(resultData), now, now.Add(ttl)); err != nil {
		return fmt.Errorf("failed to cache scan: %w", err)
	}

	return nil
}

// Delete removes one cached scan
func (s *ScanCacheStore) Delete(key ScanKey) error {
	query := `DELETE FROM scan_cache WHERE digest = ? AND chain = ? AND version = ?`

	if _, err := s.db.Exec(query, key.Digest, key.Chain, key.Version); err != nil {
		return fmt.Errorf("failed to delete cached scan: %w", err)
	}

	return nil
}

// DeleteExpired removes all expired entries and returns how many were removed
func (s *ScanCacheStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM scan_cache WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired entries: %w", err)
	}
	return result.RowsAffected()
}

// DeleteAll empties the cache and returns how many entries were removed
func (s *ScanCacheStore) DeleteAll() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM scan_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear scan cache: %w", err)
	}
	return result.RowsAffected()
}

// LoadAll loads all non-expired entries.
// Used for warming the in-memory cache on startup; undecodable rows are skipped.
func (s *ScanCacheStore) LoadAll() ([]ScanCacheEntry, error) {
	query := `SELECT digest, chain, version, result_data, cached_at, expires_at FROM scan_cache WHERE expires_at > ?`

	rows, err := s.db.Query(query, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load cache entries: %w", err)
	}
	defer rows.Close()

	var entries []ScanCacheEntry
	for rows.Next() {
		var entry ScanCacheEntry
		var resultData string

		if err := rows.Scan(&entry.Key.Digest, &entry.Key.Chain, &entry.Key.Version, &resultData, &entry.CachedAt, &entry.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}

		var result scanner.Result
		if err := json.Unmarshal([]byte(resultData), &result); err != nil {
			continue
		}
		entry.Result = &result
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache entries: %w", err)
	}

	return entries, nil
}

// GetStats returns the total and expired entry counts
func (s *ScanCacheStore) GetStats() (int, int, error) {
	var total, expired int

	if err := s.db.QueryRow("SELECT COUNT(*) FROM scan_cache").Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to get total cache entries: %w", err)
	}

	err := s.db.QueryRow("SELECT COUNT(*) FROM scan_cache WHERE expires_at <= ?", time.Now().UTC()).Scan(&expired)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get expired cache entries: %w", err)
	}

	return total, expired, nil
}
