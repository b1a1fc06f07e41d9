package limits

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/enginewatch/enginewatch/internal/telemetry"
)

type fileEntry struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// File serves ranges from a YAML table keyed by parameter mnemonic:
//
//	EGT:       {min: -60, max: 1100}
//	OIL_PRESS: {min: 5, max: 95}
//
// Parameters absent from the file fall back to the built-in table. The
// whole table is swapped atomically on reload.
type File struct {
	path string

	mu    sync.RWMutex
	table [telemetry.ParamCount]Range
	has   [telemetry.ParamCount]bool
}

// OpenFile loads path and returns a provider backed by it.
func OpenFile(path string) (*File, error) {
	f := &File{path: path}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Reload re-reads the file. On any error the previous table stays active.
func (f *File) Reload() error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("limits: read %s: %w", f.path, err)
	}
	var doc map[string]fileEntry
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("limits: parse %s: %w", f.path, err)
	}

	var table [telemetry.ParamCount]Range
	var has [telemetry.ParamCount]bool
	for name, e := range doc {
		id, ok := telemetry.ParamIDByName(name)
		if !ok {
			return fmt.Errorf("limits: %s: unknown parameter %q: %w",
				f.path, name, telemetry.ErrConfig)
		}
		if e.Min >= e.Max {
			return fmt.Errorf("limits: %s: %s: min %g not below max %g: %w",
				f.path, name, e.Min, e.Max, telemetry.ErrConfig)
		}
		table[id] = Range{Min: e.Min, Max: e.Max}
		has[id] = true
	}

	f.mu.Lock()
	f.table, f.has = table, has
	f.mu.Unlock()
	return nil
}

func (f *File) Range(p telemetry.ParamID) (Range, bool) {
	if !p.Valid() {
		return Range{}, false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.has[p] {
		return f.table[p], true
	}
	return defaultTable[p], true
}

// Watch follows the file until ctx is cancelled, reloading on each write.
// A failed reload is logged and the previous table remains active.
func (f *File) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(f.path); err != nil {
		return err
	}

	slog.Info("limits: watching for changes", "path", f.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, which lands as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := f.Reload(); err != nil {
				slog.Error("limits: reload failed, keeping previous table",
					"path", f.path, "err", err)
				continue
			}
			slog.Info("limits: reloaded", "path", f.path)

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(f.path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("limits: watcher error", "err", err)
		}
	}
}
