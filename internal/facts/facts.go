// Package facts implements the fact store (C2): a keyed, verifiable
// set of typed facts with timestamps and source provenance, persisted
// atomically as a single JSON file.
package facts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// KeyKind is a closed enumeration of fact key shapes. Runtime-strung
// variants are avoided per spec §9 — only the Custom/UnitExists/
// MountExists/BinaryAvailable payload is a string.
type KeyKind int

const (
	PreferredEditor KeyKind = iota
	NetworkPrimaryInterface
	UnitExists
	MountExists
	BinaryAvailable
	Custom
)

// Key identifies a fact slot. Param carries the argument for
// parameterised kinds (UnitExists, MountExists, BinaryAvailable,
// Custom); it is ignored for the other kinds.
type Key struct {
	Kind  KeyKind
	Param string
}

// String renders a Key as a stable map key for JSON persistence.
func (k Key) String() string {
	switch k.Kind {
	case PreferredEditor:
		return "preferred_editor"
	case NetworkPrimaryInterface:
		return "network_primary_interface"
	case UnitExists:
		return "unit_exists:" + k.Param
	case MountExists:
		return "mount_exists:" + k.Param
	case BinaryAvailable:
		return "binary_available:" + k.Param
	case Custom:
		return "custom:" + k.Param
	default:
		return "unknown"
	}
}

// Source is one of {user-asserted, probed, inferred}.
type Source int

const (
	UserAsserted Source = iota
	Probed
	Inferred
)

// Freshness bands: fresh < 1h, recent 1-24h, stale > 24h.
type Freshness int

const (
	Fresh Freshness = iota
	Recent
	Stale
)

// Fact is (key, value, source, verified_at, trust).
type Fact struct {
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	Source     Source  `json:"source"`
	VerifiedAt int64   `json:"verified_at"`
	Trust      float64 `json:"trust"`
}

func (f Fact) age(now time.Time) time.Duration {
	return now.Sub(time.Unix(f.VerifiedAt, 0))
}

// FreshnessOf classifies f's age at the given instant.
func FreshnessOf(f Fact, now time.Time) Freshness {
	age := f.age(now)
	switch {
	case age < time.Hour:
		return Fresh
	case age < 24*time.Hour:
		return Recent
	default:
		return Stale
	}
}

// TrustThreshold is the minimum trust for a fact to be surfaced as
// ground truth; below it, the pipeline demotes to Tier-2 or asks
// clarification (spec §3 invariants).
const TrustThreshold = 0.5

// Store is the process-wide fact store, guarded by a single exclusive
// lock per spec §5 ("protected by a single exclusive lock").
type Store struct {
	mu    sync.Mutex
	path  string
	facts map[string]Fact
}

// Open loads path if it exists, or starts empty.
func Open(path string) (*Store, error) {
	s := &Store{path: path, facts: make(map[string]Fact)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("facts: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.facts); err != nil {
		return nil, fmt.Errorf("facts: parse %s: %w", path, err)
	}
	return s, nil
}

// GetVerified returns a fact only if its trust is at least
// TrustThreshold and it is not Stale. The fact's Source is not
// consulted: a user assertion stored with enough trust is returned.
func (s *Store) GetVerified(key Key) (Fact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.facts[key.String()]
	if !ok {
		return Fact{}, false
	}
	if f.Trust < TrustThreshold {
		return Fact{}, false
	}
	if FreshnessOf(f, time.Now()) == Stale {
		return Fact{}, false
	}
	return f, true
}

// HasVerified is a boolean convenience wrapper around GetVerified.
func (s *Store) HasVerified(key Key) bool {
	_, ok := s.GetVerified(key)
	return ok
}

// Snapshot returns every stored fact that is currently verified (trust
// at or above TrustThreshold and not Stale), for callers that need to
// summarize the whole store rather than look up one key — the
// planner's rolling telemetry summary (spec §4.10 step 3).
func (s *Store) Snapshot() []Fact {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	out := make([]Fact, 0, len(s.facts))
	for _, f := range s.facts {
		if f.Trust < TrustThreshold {
			continue
		}
		if FreshnessOf(f, now) == Stale {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Put upserts a fact and bumps verified_at to now, then persists
// atomically.
func (s *Store) Put(key Key, value string, source Source, trust float64) error {
	s.mu.Lock()
	s.facts[key.String()] = Fact{
		Key: key.String(), Value: value, Source: source,
		VerifiedAt: time.Now().Unix(), Trust: trust,
	}
	snapshot := s.cloneLocked()
	s.mu.Unlock()
	return persistAtomic(s.path, snapshot)
}

// Invalidate removes a single fact.
func (s *Store) Invalidate(key Key) error {
	s.mu.Lock()
	delete(s.facts, key.String())
	snapshot := s.cloneLocked()
	s.mu.Unlock()
	return persistAtomic(s.path, snapshot)
}

// InvalidateOnUninstall removes every fact whose key or value mentions
// binaryName — e.g. BinaryAvailable(binaryName) or any Custom key
// referencing it. This is the explicit messaging-layer reaction to an
// inventory "binary-removed" event (spec §9).
func (s *Store) InvalidateOnUninstall(binaryName string) error {
	s.mu.Lock()
	for k, f := range s.facts {
		if strings.Contains(k, binaryName) || strings.Contains(f.Value, binaryName) {
			delete(s.facts, k)
		}
	}
	snapshot := s.cloneLocked()
	s.mu.Unlock()
	return persistAtomic(s.path, snapshot)
}

func (s *Store) cloneLocked() map[string]Fact {
	out := make(map[string]Fact, len(s.facts))
	for k, v := range s.facts {
		out[k] = v
	}
	return out
}

func persistAtomic(path string, data map[string]Fact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("facts: mkdir: %w", err)
	}
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("facts: marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return fmt.Errorf("facts: write temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("facts: rename: %w", err)
	}
	return nil
}
