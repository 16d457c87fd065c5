package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/santican/clinic-intake/internal/domain/patient"
)

// Cache is the local fallback mirror: one JSON array in a single file,
// rewritten in full on every mutation, exactly like the single storage key it
// replaces. It is the only copy the self-service viewer reads. Last write
// wins; there is no merging.
type Cache struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// DefaultCachePath is the fixed storage location of the mirror.
const DefaultCachePath = "data/patients.json"

// NewCache creates the local cache at path.
func NewCache(path string, logger *zap.Logger) *Cache {
	if path == "" {
		path = DefaultCachePath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{path: path, logger: logger}
}

// Load reads the full cached record set. A missing file is an empty set, not
// an error.
func (c *Cache) Load() ([]patient.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

func (c *Cache) load() ([]patient.Record, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache: %w", err)
	}
	var records []patient.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}
	return records, nil
}

func (c *Cache) save(records []patient.Record) error {
	if records == nil {
		records = []patient.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Append mirrors a newly created record into the cache.
func (c *Cache) Append(rec *patient.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	records = append(records, *rec)
	if err := c.save(records); err != nil {
		return err
	}
	c.logger.Debug("record mirrored to cache", zap.String("id", rec.ID), zap.Int("total", len(records)))
	return nil
}

// RemoveByID drops one record from the cache. Removing an id that is not
// cached is not an error; the record may have been created by another
// session.
func (c *Cache) RemoveByID(id string) error {
	return c.RemoveWhere(func(r *patient.Record) bool { return r.ID == id })
}

// RemoveWhere rewrites the cache without the records matching the predicate.
func (c *Cache) RemoveWhere(match func(*patient.Record) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	kept := records[:0]
	for i := range records {
		if !match(&records[i]) {
			kept = append(kept, records[i])
		}
	}
	return c.save(kept)
}
