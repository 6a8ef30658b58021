// Package inventory maintains the process-wide set of installed
// binaries the command validator (C7) and template registry (C5)
// consult. It is refreshed on startup and invalidated on observed
// filesystem events in the tool directories — an explicit messaging
// layer rather than an implicit cycle with the fact store (spec §9).
package inventory

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchedPaths lists the directories scanned for tool binaries.
var WatchedPaths = []string{
	"/usr/sbin", "/usr/bin", "/usr/local/bin", "/usr/local/sbin", "/bin", "/sbin",
}

// Event is emitted on the Events channel whenever a binary appears or
// disappears from a watched directory. Subscribers (e.g. the fact
// store) use it to invalidate facts mentioning that binary, instead of
// calling back into inventory directly.
type Event struct {
	Binary string
	Added  bool
}

// Inventory is a process-wide, lock-protected set of installed tool
// names, refreshed at startup and kept current by a fsnotify watcher.
type Inventory struct {
	mu      sync.RWMutex
	tools   map[string]bool
	log     *zap.SugaredLogger
	watcher *fsnotify.Watcher
	events  chan Event
}

// New scans WatchedPaths once and returns a populated Inventory. Call
// Watch to start following filesystem events afterward.
func New(log *zap.SugaredLogger) *Inventory {
	inv := &Inventory{
		tools:  make(map[string]bool),
		log:    log,
		events: make(chan Event, 32),
	}
	inv.scan()
	return inv
}

// NewWithTools builds an Inventory from an explicit tool set without
// touching the filesystem, for tests and for seeding known-good state.
func NewWithTools(tools map[string]bool) *Inventory {
	set := make(map[string]bool, len(tools))
	for k, v := range tools {
		if v {
			set[k] = true
		}
	}
	return &Inventory{tools: set, events: make(chan Event, 32)}
}

// Events exposes the add/remove stream for subscribers such as the
// fact store's invalidate-on-uninstall logic.
func (inv *Inventory) Events() <-chan Event { return inv.events }

func (inv *Inventory) scan() {
	found := make(map[string]bool)
	for _, dir := range WatchedPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			found[e.Name()] = true
		}
	}
	inv.mu.Lock()
	inv.tools = found
	inv.mu.Unlock()
}

// Has reports whether tool is currently installed.
func (inv *Inventory) Has(tool string) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.tools[tool]
}

// Snapshot returns a copy of the currently known tool set, safe for a
// caller to hand to a collaborator (e.g. the planner's known-tools
// list) without holding a reference into Inventory's internals.
func (inv *Inventory) Snapshot() map[string]bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make(map[string]bool, len(inv.tools))
	for k, v := range inv.tools {
		out[k] = v
	}
	return out
}

// PackageManager reports which of pacman/yay/paru is available, in
// that preference order, or "" if none are.
func (inv *Inventory) PackageManager() string {
	for _, pm := range []string{"pacman", "yay", "paru"} {
		if inv.Has(pm) {
			return pm
		}
	}
	return ""
}

// Watch starts an fsnotify watcher on every existing WatchedPaths
// directory and emits Event values as binaries are created or removed.
// It runs until ctx-equivalent Close is called; errors watching
// individual directories are logged and skipped (a missing /sbin on a
// merged-usr system is normal, not fatal).
func (inv *Inventory) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	inv.watcher = w

	for _, dir := range WatchedPaths {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := w.Add(dir); err != nil && inv.log != nil {
			inv.log.Warnw("inventory: failed to watch directory", "dir", dir, "error", err)
		}
	}

	go inv.watchLoop()
	return nil
}

func (inv *Inventory) watchLoop() {
	for {
		select {
		case ev, ok := <-inv.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			switch {
			case ev.Op&(fsnotify.Create) != 0:
				inv.mu.Lock()
				inv.tools[name] = true
				inv.mu.Unlock()
				inv.emit(Event{Binary: name, Added: true})
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				inv.mu.Lock()
				delete(inv.tools, name)
				inv.mu.Unlock()
				inv.emit(Event{Binary: name, Added: false})
			}
		case err, ok := <-inv.watcher.Errors:
			if !ok {
				return
			}
			if inv.log != nil {
				inv.log.Warnw("inventory: watcher error", "error", err)
			}
		}
	}
}

func (inv *Inventory) emit(ev Event) {
	select {
	case inv.events <- ev:
	default:
		// Subscriber is behind; drop the event rather than block the
		// watcher. The tool set itself was already updated above.
	}
}

// Close stops the underlying fsnotify watcher, if started.
func (inv *Inventory) Close() error {
	if inv.watcher == nil {
		return nil
	}
	return inv.watcher.Close()
}
