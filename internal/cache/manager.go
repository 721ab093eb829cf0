package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"label-scanner/internal/carriers"
	"label-scanner/internal/database"
	"label-scanner/internal/scanner"
)

// CachedScan represents an in-memory cached scan with expiry
type CachedScan struct {
	Result    *scanner.Result
	ExpiresAt time.Time
}

// IsExpired checks if the cached scan has expired
func (c *CachedScan) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Manager layers an in-memory cache over the SQLite scan cache.
// Scans are keyed by document digest, chain fingerprint and carriers.Version.
type Manager struct {
	store    *database.ScanCacheStore
	memory   sync.Map // map[database.ScanKey]*CachedScan
	disabled bool
	ttl      time.Duration
	logger   *slog.Logger

	// Cleanup goroutine control
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a new cache manager. store may be nil only when disabled.
func NewManager(store *database.ScanCacheStore, disabled bool, ttl time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	manager := &Manager{
		store:    store,
		disabled: disabled,
		ttl:      ttl,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	if !disabled {
		if err := manager.loadFromDatabase(); err != nil {
			logger.Warn("Failed to load cache from database", "error", err)
		}

		go manager.cleanupLoop()
	}

	return manager
}

// Get retrieves a cached scan; a miss returns nil, nil
func (m *Manager) Get(key database.ScanKey) (*scanner.Result, error) {
	if m.disabled {
		return nil, nil
	}

	if value, ok := m.memory.Load(key); ok {
		cached := value.(*CachedScan)
		if !cached.IsExpired() {
			return cached.Result, nil
		}
		m.memory.Delete(key)
	}

	result, err := m.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get from database cache: %w", err)
	}

	if result != nil {
		m.memory.Store(key, &CachedScan{
			Result:    result,
			ExpiresAt: time.Now().Add(m.ttl),
		})
	}

	return result, nil
}

// Set stores a scan in both memory and database
func (m *Manager) Set(key database.ScanKey, result *scanner.Result) error {
	if m.disabled {
		return nil
	}

	if err := m.store.Set(key, result, m.ttl); err != nil {
		return fmt.Errorf("failed to store in database cache: %w", err)
	}

	m.memory.Store(key, &CachedScan{
		Result:    result,
		ExpiresAt: time.Now().Add(m.ttl),
	})

	return nil
}

// Delete removes a cached scan from both memory and database
func (m *Manager) Delete(key database.ScanKey) error {
	if m.disabled {
		return nil
	}

	m.memory.Delete(key)

	if err := m.store.Delete(key); err != nil {
		return fmt.Errorf("failed to delete from database cache: %w", err)
	}

	return nil
}

// Clear removes every cached scan and returns how many database entries were dropped.
// It works even when the cache is disabled for lookups.
func (m *Manager) Clear() (int64, error) {
	m.memory.Range(func(key, _ any) bool {
		m.memory.Delete(key)
		return true
	})

	if m.store == nil {
		return 0, nil
	}
	removed, err := m.store.DeleteAll()
	if err != nil {
		return 0, fmt.Errorf("failed to clear database cache: %w", err)
	}
	return removed, nil
}

// ScanFile returns the cached scan for path or scans it and caches the result.
// The boolean reports a cache hit.
func (m *Manager) ScanFile(ctx context.Context, s *scanner.Scanner, path string) (*scanner.Result, bool, error) {
	if m.disabled {
		result, err := s.ScanFile(ctx, path)
		return result, false, err
	}

	digest, err := DigestFile(path)
	if err != nil {
		return nil, false, err
	}
	key := database.ScanKey{
		Digest:  digest,
		Chain:   s.Chain().Fingerprint(),
		Version: carriers.Version,
	}

	cached, err := m.Get(key)
	if err != nil {
		m.logger.Warn("Cache lookup failed, scanning", "path", path, "error", err)
	}
	if cached != nil {
		m.logger.Debug("Cache hit", "path", path, "digest", digest, "scan_id", cached.ScanID)
		hit := *cached
		hit.Source = path
		return &hit, true, nil
	}

	result, err := s.ScanFile(ctx, path)
	if err != nil {
		return nil, false, err
	}

	// Page read failures may be transient; such scans are recomputed next time
	if result.HasExtractionFailures() {
		m.logger.Debug("Scan not cached, page extraction failed", "path", path, "scan_id", result.ScanID)
		return result, false, nil
	}

	if err := m.Set(key, result); err != nil {
		m.logger.Warn("Failed to cache scan", "path", path, "error", err)
	}

	return result, false, nil
}

// IsEnabled returns true if caching is enabled
func (m *Manager) IsEnabled() bool {
	return !m.disabled
}

// GetTTL returns the cache TTL duration
func (m *Manager) GetTTL() time.Duration {
	return m.ttl
}

// loadFromDatabase warms memory with all non-expired database entries
func (m *Manager) loadFromDatabase() error {
	entries, err := m.store.LoadAll()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		m.memory.Store(entry.Key, &CachedScan{
			Result:    entry.Result,
			ExpiresAt: entry.ExpiresAt,
		})
	}

	if len(entries) > 0 {
		m.logger.Debug("Loaded cache entries from database", "count", len(entries))
	}

	return nil
}

// cleanupLoop runs periodically to clean up expired entries
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.DeleteExpired()
		}
	}
}

// DeleteExpired removes expired entries from both memory and database
func (m *Manager) DeleteExpired() {
	memoryCount := 0
	m.memory.Range(func(key, value any) bool {
		if value.(*CachedScan).IsExpired() {
			m.memory.Delete(key)
			memoryCount++
		}
		return true
	})

	if m.store == nil {
		return
	}
	removed, err := m.store.DeleteExpired()
	if err != nil {
		m.logger.Warn("Failed to clean up expired database cache entries", "error", err)
	}

	if memoryCount > 0 || removed > 0 {
		m.logger.Debug("Cleaned up expired cache entries", "memory", memoryCount, "database", removed)
	}
}

// GetStats returns cache statistics
func (m *Manager) GetStats() (CacheStats, error) {
	stats := CacheStats{
		Disabled: m.disabled,
		TTL:      m.ttl,
	}

	m.memory.Range(func(_, value any) bool {
		stats.MemoryTotal++
		if value.(*CachedScan).IsExpired() {
			stats.MemoryExpired++
		}
		return true
	})

	if m.store == nil {
		return stats, nil
	}
	dbTotal, dbExpired, err := m.store.GetStats()
	if err != nil {
		return stats, fmt.Errorf("failed to get database stats: %w", err)
	}

	stats.DatabaseTotal = dbTotal
	stats.DatabaseExpired = dbExpired

	return stats, nil
}

// Close shuts down the cache manager and cleanup goroutine
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// CacheStats represents cache statistics
type CacheStats struct {
	Disabled        bool          `json:"disabled"`
	TTL             time.Duration `json:"ttl"`
	MemoryTotal     int           `json:"memory_total"`
	MemoryExpired   int           `json:"memory_expired"`
	DatabaseTotal   int           `json:"database_total"`
	DatabaseExpired int           `json:"database_expired"`
}

// Digest returns the hex SHA-256 of r
func Digest(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash document: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestFile returns the hex SHA-256 of the file at path
func DigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Digest(f)
}
