package skins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nzvengeance/gw2style/internal/models"
)

const (
	DefaultMaxAge      = 30 * 24 * time.Hour
	DefaultSearchLimit = 10
)

// CacheConfig configures a Cache. Store is required; Source is consulted when
// the stored snapshot is missing or stale. With a nil Source, Initialize
// serves a stale snapshot as is and only Replace (the sync job) renews it.
type CacheConfig struct {
	Store  Store
	Source Source
	MaxAge time.Duration
	Now    func() time.Time
}

func (c *CacheConfig) validate() error {
	if c.Store == nil {
		return errors.New("skin cache store cannot be nil")
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("skin cache max age cannot be negative: %s", c.MaxAge)
	}
	if c.MaxAge == 0 {
		c.MaxAge = DefaultMaxAge
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

// Info summarises the snapshot currently held by the cache.
type Info struct {
	Loaded      bool           `json:"loaded"`
	Version     string         `json:"version,omitempty"`
	GeneratedAt *time.Time     `json:"generated_at,omitempty"`
	Count       int            `json:"count"`
	Valid       bool           `json:"valid"`
	ByType      map[string]int `json:"by_type"`
}

// Cache serves skin lookups from an in-memory snapshot backed by a Store.
type Cache struct {
	cfg CacheConfig

	mu   sync.RWMutex
	snap *models.SkinSnapshot
}

func NewCache(cfg CacheConfig) (*Cache, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Cache{cfg: cfg}, nil
}

// Initialize loads the stored snapshot and refreshes it from the Source when
// it is missing or older than MaxAge. A stale snapshot stays in service if
// the refresh fails.
func (c *Cache) Initialize(ctx context.Context) error {
	snap, err := c.cfg.Store.Load(ctx)
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		log.Warn().Err(err).Msg("failed to load stored skin snapshot")
	}
	if snap != nil {
		c.set(snap)
		if c.IsValid() {
			log.Info().Str("version", snap.Version).Int("count", snap.Count).Msg("loaded skin snapshot")
			return nil
		}
		log.Info().Str("version", snap.Version).Msg("stored skin snapshot is stale")
	}

	if c.cfg.Source == nil {
		if snap == nil {
			return ErrNoSnapshot
		}
		log.Warn().Str("version", snap.Version).Msg("no skin source configured, serving stale snapshot until the next sync")
		return nil
	}

	if err := c.Refresh(ctx); err != nil {
		if snap != nil {
			log.Warn().Err(err).Msg("skin refresh failed, serving stale snapshot")
			return nil
		}
		return err
	}
	return nil
}

// IsValid reports whether a snapshot is loaded and younger than MaxAge.
func (c *Cache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return false
	}
	return c.cfg.Now().Sub(c.snap.GeneratedAt) < c.cfg.MaxAge
}

// Refresh pulls a new snapshot from the Source, persists it and swaps it in.
func (c *Cache) Refresh(ctx context.Context) error {
	if c.cfg.Source == nil {
		return errors.New("skin cache has no source")
	}
	snap, err := c.cfg.Source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching skin snapshot: %w", err)
	}
	return c.Replace(ctx, snap)
}

// Replace persists snap and makes it the served snapshot.
func (c *Cache) Replace(ctx context.Context, snap *models.SkinSnapshot) error {
	if snap == nil {
		return errors.New("skin snapshot cannot be nil")
	}
	if err := c.cfg.Store.Save(ctx, snap); err != nil {
		return fmt.Errorf("saving skin snapshot: %w", err)
	}
	c.set(snap)
	log.Info().Str("version", snap.Version).Int("count", snap.Count).Msg("skin snapshot replaced")
	return nil
}

func (c *Cache) set(snap *models.SkinSnapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

// Snapshot returns the served snapshot, or nil.
func (c *Cache) Snapshot() *models.SkinSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Search matches skins whose name contains query, ignoring case, optionally
// restricted to one type. A non-positive limit uses DefaultSearchLimit.
func (c *Cache) Search(query, skinType string, limit int) []models.SnapshotSkin {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	q := strings.ToLower(strings.TrimSpace(query))

	c.mu.RLock()
	defer c.mu.RUnlock()

	results := []models.SnapshotSkin{}
	if c.snap == nil || q == "" {
		return results
	}
	for _, s := range c.snap.Skins {
		if skinType != "" && !strings.EqualFold(s.Type, skinType) {
			continue
		}
		if !strings.Contains(strings.ToLower(s.Name), q) {
			continue
		}
		results = append(results, s)
		if len(results) == limit {
			break
		}
	}
	return results
}

// ByType returns every skin of the given type.
func (c *Cache) ByType(skinType string) []models.SnapshotSkin {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := []models.SnapshotSkin{}
	if c.snap == nil {
		return results
	}
	for _, s := range c.snap.Skins {
		if strings.EqualFold(s.Type, skinType) {
			results = append(results, s)
		}
	}
	return results
}

func (c *Cache) CountByType() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CountByType(c.snap)
}

func (c *Cache) Info() Info {
	valid := c.IsValid()

	c.mu.RLock()
	defer c.mu.RUnlock()

	info := Info{Valid: valid, ByType: CountByType(c.snap)}
	if c.snap == nil {
		return info
	}
	generated := c.snap.GeneratedAt
	info.Loaded = true
	info.Version = c.snap.Version
	info.GeneratedAt = &generated
	info.Count = len(c.snap.Skins)
	return info
}

// Clear drops the served snapshot and removes it from the Store.
func (c *Cache) Clear(ctx context.Context) error {
	c.set(nil)
	if err := c.cfg.Store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing skin snapshot: %w", err)
	}
	log.Info().Msg("skin cache cleared")
	return nil
}
