// Package save persists arbitrary values as YAML documents in per-user
// application storage. Vec3 and Quat values go through their own compact
// encoders, everything else uses the default YAML mapping.
package save

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-surface-scatter/pkg/core"
	"github.com/df07/go-surface-scatter/pkg/scene"
)

// savesObject groups all save files in storage
const savesObject = "saves"

var (
	// ErrNotFound is returned when loading a save that does not exist
	ErrNotFound = errors.New("save: not found")
	// ErrInvalidName is returned for save names storage cannot hold
	ErrInvalidName = errors.New("save: invalid name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Storage is the key/value backend. *gdata.Manager implements it.
type Storage interface {
	ObjectPropExists(objectKey, propKey string) bool
	LoadObjectProp(objectKey, propKey string) ([]byte, error)
	SaveObjectProp(objectKey, propKey string, data []byte) error
}

// Manager saves and loads named documents
type Manager struct {
	storage Storage
	logger  core.Logger
}

// Open creates a manager backed by gdata storage for appName
func Open(appName string, logger core.Logger) (*Manager, error) {
	gm, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open save storage for %q: %w", appName, err)
	}
	return NewManager(gm, logger), nil
}

// NewManager creates a manager on top of storage. A nil storage falls back
// to an in-memory store, so saving still works but nothing outlives the process.
func NewManager(storage Storage, logger core.Logger) *Manager {
	if logger == nil {
		logger = core.NewDiscardLogger()
	}
	if storage == nil {
		logger.Printf("Warning: no persistent storage, saves are kept in memory\n")
		storage = NewMemoryStorage()
	}
	return &Manager{storage: storage, logger: logger}
}

// Save encodes data and stores it under name
func (m *Manager) Save(name string, data any) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	encoded, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal save %q: %w", name, err)
	}
	if err := m.storage.SaveObjectProp(savesObject, name, encoded); err != nil {
		return fmt.Errorf("failed to save %q: %w", name, err)
	}

	m.logger.Printf("Saved %q (%d bytes)\n", name, len(encoded))
	return nil
}

// Load decodes the save stored under name into out
func (m *Manager) Load(name string, out any) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !m.storage.ObjectPropExists(savesObject, name) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	data, err := m.storage.LoadObjectProp(savesObject, name)
	if err != nil {
		m.logger.Printf("Failed to load save %q: %v\n", name, err)
		return fmt.Errorf("failed to load %q: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		m.logger.Printf("Failed to decode save %q: %v\n", name, err)
		return fmt.Errorf("failed to unmarshal %q: %w", name, err)
	}
	return nil
}

// Exists reports whether a save with name exists
func (m *Manager) Exists(name string) bool {
	return validName.MatchString(name) && m.storage.ObjectPropExists(savesObject, name)
}

// SaveScene stores a snapshot of s under name and clears its dirty flag
func (m *Manager) SaveScene(name string, s *scene.Scene) error {
	if err := m.Save(name, s.Snapshot()); err != nil {
		return err
	}
	s.ClearDirty()
	return nil
}

// LoadScene replaces the content of s with the snapshot stored under name
func (m *Manager) LoadScene(name string, s *scene.Scene) error {
	var data scene.Data
	if err := m.Load(name, &data); err != nil {
		return err
	}
	return s.Restore(data)
}

// MemoryStorage is an in-process Storage
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func memoryKey(objectKey, propKey string) string {
	return objectKey + "/" + propKey
}

func (s *MemoryStorage) ObjectPropExists(objectKey, propKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[memoryKey(objectKey, propKey)]
	return ok
}

func (s *MemoryStorage) LoadObjectProp(objectKey, propKey string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[memoryKey(objectKey, propKey)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStorage) SaveObjectProp(objectKey, propKey string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[memoryKey(objectKey, propKey)] = append([]byte(nil), data...)
	return nil
}
