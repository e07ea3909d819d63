// Package registry provides a global registry of playable levels.
// Built-in campaign levels and level files from disk are registered at
// startup so commands can look levels up by ID without knowing where they
// came from.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/powergrid/internal/levels"
)

// SourceBuiltin marks levels compiled into the binary.
const SourceBuiltin = "builtin"

// LevelInfo contains metadata about a registered level.
type LevelInfo struct {
	ID     string
	Title  string
	Number int
	Source string // "builtin" or the file the level was loaded from
}

var (
	descriptors = make(map[string]levels.Descriptor)
	sources     = make(map[string]string)
	mu          sync.RWMutex
)

// Register adds a level to the registry.
// Panics if a level with the same ID is already registered.
func Register(d levels.Descriptor, source string) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := descriptors[d.ID]; exists {
		panic(fmt.Sprintf("registry: level %q already registered", d.ID))
	}
	descriptors[d.ID] = d
	sources[d.ID] = source
}

// RegisterBuiltin registers the campaign levels. It is safe to call more
// than once.
func RegisterBuiltin() error {
	all, err := levels.Builtin()
	if err != nil {
		return err
	}
	for _, d := range all {
		if Exists(d.ID) {
			continue
		}
		Register(d, SourceBuiltin)
	}
	return nil
}

// RegisterDir registers every valid level file under dir. Levels whose ID
// is already taken are skipped and returned.
func RegisterDir(dir string) (skipped []string, err error) {
	lvls, err := levels.NewLoader(dir).LoadAll()
	if err != nil {
		return nil, err
	}
	for _, d := range lvls {
		if Exists(d.ID) {
			skipped = append(skipped, d.ID)
			continue
		}
		Register(d, d.FilePath)
	}
	return skipped, nil
}

// List returns information about all registered levels: campaign levels in
// order first, then free-standing levels sorted by ID.
func List() []LevelInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]LevelInfo, 0, len(descriptors))
	for id, d := range descriptors {
		result = append(result, LevelInfo{
			ID:     id,
			Title:  d.Title(),
			Number: d.Number,
			Source: sources[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		switch {
		case a.Number > 0 && b.Number > 0 && a.Number != b.Number:
			return a.Number < b.Number
		case a.Number > 0 && b.Number == 0:
			return true
		case a.Number == 0 && b.Number > 0:
			return false
		}
		return a.ID < b.ID
	})
	return result
}

// Get returns the level registered under id.
// Returns an error if the level ID is not registered.
func Get(id string) (levels.Descriptor, error) {
	mu.RLock()
	defer mu.RUnlock()

	d, ok := descriptors[id]
	if !ok {
		return levels.Descriptor{}, fmt.Errorf("registry: unknown level %q", id)
	}
	return d, nil
}

// Exists checks if a level with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := descriptors[id]
	return ok
}

// reset empties the registry. Tests only.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	descriptors = make(map[string]levels.Descriptor)
	sources = make(map[string]string)
}
