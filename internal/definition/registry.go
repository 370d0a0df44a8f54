package definition

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Registry owns the set of loaded IndexerDefinitions. Rebuilding replaces
// the whole map atomically under write lock; lookups take the read lock.
// Mirrors the mutex-guarded-map pattern used elsewhere in the codebase for
// similar process-wide shared state.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*IndexerDefinition
}

// NewRegistry returns an empty, ready-to-load registry.
func NewRegistry() *Registry {
	return &Registry{byID: map[string]*IndexerDefinition{}}
}

// Load walks dir (expected to be "<config>/active/native") for *.yml/*.yaml
// files and replaces the registry's contents atomically. A definition that
// fails to parse is logged at warn and skipped; the rest still load.
func (r *Registry) Load(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.mu.Lock()
			r.byID = map[string]*IndexerDefinition{}
			r.mu.Unlock()
			return nil
		}
		return fmt.Errorf("definition: read dir %s: %w", dir, err)
	}

	next := map[string]*IndexerDefinition{}
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		def, err := loadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("skipping unparsable indexer definition")
			continue
		}
		if def.ID == "" {
			def.ID = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		}
		next[def.ID] = def
	}

	r.mu.Lock()
	r.byID = next
	r.mu.Unlock()
	return nil
}

func isYAML(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yml" || ext == ".yaml"
}

func loadFile(path string) (*IndexerDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var def IndexerDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if def.CanonicalBase() == "" {
		return nil, fmt.Errorf("definition %q has no links", def.ID)
	}
	return &def, nil
}

// Get returns the definition for id, or nil if not loaded.
func (r *Registry) Get(id string) *IndexerDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// All returns a snapshot slice of every loaded definition.
func (r *Registry) All() []*IndexerDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*IndexerDefinition, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	return out
}

// IDs returns the sorted set of loaded definition ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AvailableFile describes one catalog entry under the "available/"
// upstream cache directory without activating it.
type AvailableFile struct {
	ID   string
	Path string
}

// Available lists the upstream definitions catalog directory.
func Available(dir string) ([]AvailableFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("definition: read available dir: %w", err)
	}
	out := make([]AvailableFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		out = append(out, AvailableFile{
			ID:   strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	return out, nil
}
