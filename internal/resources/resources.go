// Package resources keeps the GPU and file resources scenes refer to by
// GUID. Resources are declared in manifest files:
//
//	{ "<TypeName>": { "<guid>": { ...type specific... } } }
package resources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"resonance/internal/logging"
)

var (
	ErrUnknownType = errors.New("unknown resource type")
	ErrNotFound    = errors.New("resource not found")
)

// LoadContext is handed to a Factory for each manifest entry.
type LoadContext struct {
	GUID uuid.UUID
	// Dir is the manifest's directory; relative paths resolve against it.
	Dir string
}

// Resolve turns a manifest-relative path into one usable from the process.
func (c LoadContext) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// Factory builds one resource from its raw manifest entry.
type Factory func(ctx LoadContext, raw json.RawMessage) (any, error)

// Lookup finds a loaded resource by GUID.
type Lookup interface {
	Get(id uuid.UUID) (any, bool)
}

type entry struct {
	typeName string
	value    any
}

// Manager owns every loaded resource.
type Manager struct {
	mu        sync.RWMutex
	factories map[string]Factory
	items     map[uuid.UUID]entry
}

func NewManager() *Manager {
	return &Manager{
		factories: make(map[string]Factory),
		items:     make(map[uuid.UUID]entry),
	}
}

// RegisterType installs the factory for a manifest type name, replacing any
// previous one.
func (m *Manager) RegisterType(typeName string, f Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[typeName] = f
}

// Add stores an already built resource.
func (m *Manager) Add(typeName string, id uuid.UUID, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = entry{typeName: typeName, value: value}
}

func (m *Manager) Get(id uuid.UUID) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.items[id]
	return e.value, ok
}

// Len is the number of loaded resources.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Each calls fn for every resource of typeName, ordered by GUID.
func (m *Manager) Each(typeName string, fn func(id uuid.UUID, value any)) {
	m.mu.RLock()
	var ids []uuid.UUID
	for id, e := range m.items {
		if e.typeName == typeName {
			ids = append(ids, id)
		}
	}
	values := make([]any, len(ids))
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	for i, id := range ids {
		values[i] = m.items[id].value
	}
	m.mu.RUnlock()

	for i, id := range ids {
		fn(id, values[i])
	}
}

// LoadManifest builds every resource the manifest at path declares. GUIDs
// that are already loaded are kept as they are. Entries are built in a
// stable order so failures are reproducible. Nothing is added unless every
// entry builds; on failure the entries built so far are closed.
func (m *Manager) LoadManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var doc map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse manifest %s: %w", path, err)
	}

	typeNames := make([]string, 0, len(doc))
	for name := range doc {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	dir := filepath.Dir(path)
	built := make(map[uuid.UUID]entry)
	for _, typeName := range typeNames {
		m.mu.RLock()
		factory, ok := m.factories[typeName]
		m.mu.RUnlock()
		if !ok {
			discard(built)
			return fmt.Errorf("%w %q in %s", ErrUnknownType, typeName, path)
		}

		entries := doc[typeName]
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			id, err := uuid.Parse(key)
			if err != nil {
				discard(built)
				return fmt.Errorf("%s resource %q: %w", typeName, key, err)
			}
			if _, exists := m.Get(id); exists {
				continue
			}
			if _, exists := built[id]; exists {
				continue
			}
			value, err := factory(LoadContext{GUID: id, Dir: dir}, entries[key])
			if err != nil {
				discard(built)
				return fmt.Errorf("%s resource %s: %w", typeName, id, err)
			}
			built[id] = entry{typeName: typeName, value: value}
		}
	}

	m.mu.Lock()
	for id, e := range built {
		m.items[id] = e
	}
	m.mu.Unlock()
	logging.Debug("Loaded %d resources from %s", len(built), path)
	return nil
}

// discard releases resources from a manifest that failed part way.
func discard(built map[uuid.UUID]entry) {
	for id, e := range built {
		if c, ok := e.value.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logging.Warn("Discarding %s %s: %v", e.typeName, id, err)
			}
		}
	}
}

// Close releases every resource that holds something to release.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for id, e := range m.items {
		if c, ok := e.value.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s %s: %w", e.typeName, id, err))
			}
		}
		delete(m.items, id)
	}
	return errors.Join(errs...)
}
