package skins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nzvengeance/gw2style/internal/models"
)

// ErrNoSnapshot is returned by a Store that holds no snapshot.
var ErrNoSnapshot = errors.New("no skin snapshot stored")

// Store persists a single skin snapshot.
type Store interface {
	Load(ctx context.Context) (*models.SkinSnapshot, error)
	Save(ctx context.Context, snap *models.SkinSnapshot) error
	Clear(ctx context.Context) error
}

// Source produces a snapshot when the cache needs one.
type Source interface {
	Fetch(ctx context.Context) (*models.SkinSnapshot, error)
}

// StoreSource exposes a Store as a Source, e.g. to read the snapshot file
// written by the fetch job.
type StoreSource struct {
	Store Store
}

func (s StoreSource) Fetch(ctx context.Context) (*models.SkinSnapshot, error) {
	return s.Store.Load(ctx)
}

// --- Memory ---

type MemoryStore struct {
	mu   sync.RWMutex
	snap *models.SkinSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (*models.SkinSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		return nil, ErrNoSnapshot
	}
	return m.snap, nil
}

func (m *MemoryStore) Save(ctx context.Context, snap *models.SkinSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}

// --- File ---

// FileStore keeps the snapshot as an indented JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(ctx context.Context) (*models.SkinSnapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}

	var snap models.SkinSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot file %s: %w", f.path, err)
	}
	return &snap, nil
}

// Save writes to a temporary file first so readers never see a partial snapshot.
func (f *FileStore) Save(ctx context.Context, snap *models.SkinSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing snapshot file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing snapshot file: %w", err)
	}
	return nil
}
