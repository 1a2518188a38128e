package blueprint

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Catalog stores blueprints by class name. It is populated by explicit
// registration or by scanning a directory of manifests.
type Catalog struct {
	blueprints map[string]*Blueprint
	mu         sync.RWMutex
	scans      atomic.Uint32
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		blueprints: make(map[string]*Blueprint),
	}
}

// Register adds a blueprint, replacing any previous one of the same name.
func (c *Catalog) Register(bp *Blueprint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.blueprints[bp.Name] = bp
}

// Get returns the blueprint registered under name.
func (c *Catalog) Get(name string) (*Blueprint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bp, ok := c.blueprints[name]
	return bp, ok
}

// List returns all blueprints sorted by name.
func (c *Catalog) List() []*Blueprint {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Blueprint, 0, len(c.blueprints))
	for _, bp := range c.blueprints {
		out = append(out, bp)
	}
	slices.SortFunc(out, func(a, b *Blueprint) int { return strings.Compare(a.Name, b.Name) })

	return out
}

// ScanCount returns how many directory scans have completed.
func (c *Catalog) ScanCount() uint32 {
	return c.scans.Load()
}

// ScanDir registers every class declared by the *.yaml and *.yml manifests
// in dir. Blueprints previously loaded from dir that are no longer declared
// are dropped. Invalid manifests are logged and skipped.
func (c *Catalog) ScanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read blueprints directory %s: %w", dir, err)
	}

	found := make(map[string]*Blueprint)
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		m, err := ReadManifest(path)
		if err != nil {
			slog.Warn("Skipping blueprint manifest", "path", path, "error", err)
			continue
		}

		for _, class := range m.Classes() {
			bp, err := m.Blueprint(class)
			if err != nil {
				slog.Warn("Skipping blueprint", "path", path, "class", class, "error", err)
				continue
			}
			bp.Source = path

			if prev, ok := found[class]; ok {
				slog.Warn("Blueprint declared twice, keeping the last", "class", class, "first", prev.Source, "second", path)
			}
			found[class] = bp
		}
	}

	c.mu.Lock()
	for name, bp := range c.blueprints {
		if bp.Source != "" && filepath.Dir(bp.Source) == filepath.Clean(dir) {
			if _, ok := found[name]; !ok {
				delete(c.blueprints, name)
			}
		}
	}
	for name, bp := range found {
		c.blueprints[name] = bp
	}
	c.mu.Unlock()

	count := c.scans.Add(1)
	slog.Info("Blueprints scanned", "dir", dir, "classes", len(found), "count", count)

	return nil
}

// Watch rescans dir whenever a manifest in it is created, written, renamed
// or removed, until ctx is done.
func (c *Catalog) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch blueprints directory %s: %w", dir, err)
	}

	var (
		timer   *time.Timer
		pending sync.WaitGroup
	)
	const debounce = 200 * time.Millisecond
	const relevant = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

	// A scan that was stopped before firing is settled here; one already
	// running is waited for, so no scan outlives Watch.
	defer func() {
		if timer != nil && timer.Stop() {
			pending.Done()
		}
		pending.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&relevant != 0 {
				if timer != nil && timer.Stop() {
					pending.Done()
				}

				pending.Add(1)
				timer = time.AfterFunc(debounce, func() {
					defer pending.Done()
					if err := c.ScanDir(dir); err != nil {
						slog.Error("Failed to rescan blueprints", "dir", dir, "error", err)
					}
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			slog.Error("Watcher error", "error", err)
		}
	}
}
