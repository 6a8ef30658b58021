// Package snapshot implements the snapshot engine (C3): point-in-time
// capture of disks, memory, and failed services, persisted atomically,
// and diffed against the previous snapshot to produce ordered
// DeltaItems.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/parser"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/probe"
)

// Memory is total/used bytes at capture time.
type Memory struct {
	TotalBytes uint64 `json:"total_bytes"`
	UsedBytes  uint64 `json:"used_bytes"`
}

// UsedPercent returns used/total as an integer 0-100, or 0 if total is 0.
func (m Memory) UsedPercent() int {
	if m.TotalBytes == 0 {
		return 0
	}
	return int(m.UsedBytes * 100 / m.TotalBytes)
}

// Snapshot is (captured_at, disks, memory, failed_services, boot_ms?).
// Immutable once captured.
type Snapshot struct {
	CapturedAt     int64          `json:"captured_at"`
	Disks          map[string]int `json:"disks"` // mount -> percent used
	Memory         Memory         `json:"memory"`
	FailedServices []string       `json:"failed_services"`
	BootMs         *int64         `json:"boot_ms,omitempty"`
}

// Thresholds configures the severity bands diff uses; defaults mirror
// spec §4.8's DISK_CRITICAL/WARN and MEMORY_HIGH thresholds.
type Thresholds struct {
	DiskWarn     int
	DiskCritical int
	MemoryHigh   int
}

// DefaultThresholds matches the spec's named constants.
var DefaultThresholds = Thresholds{DiskWarn: 80, DiskCritical: 90, MemoryHigh: 85}

// Engine captures and persists Snapshots using the probe executor.
type Engine struct {
	path     string
	exec     *probe.Executor
	deadline time.Duration
}

// NewEngine builds an Engine that persists snapshots at path.
func NewEngine(path string, exec *probe.Executor, deadline time.Duration) *Engine {
	return &Engine{path: path, exec: exec, deadline: deadline}
}

// Capture samples disks (df), memory (free) and failed services
// (systemctl --failed) via the probe executor.
func (e *Engine) Capture(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		CapturedAt: time.Now().Unix(),
		Disks:      make(map[string]int),
	}

	if res, err := e.exec.Run(ctx, "df", []string{"-P"}, e.deadline); err == nil {
		if disks, perr := parser.Parse("df", res.Stdout); perr == nil {
			for _, d := range disks.(parser.DiskUsageList).Disks {
				snap.Disks[d.Mount] = d.UsedPercent
			}
		}
	}

	if res, err := e.exec.Run(ctx, "free", []string{"-b"}, e.deadline); err == nil {
		if mem, perr := parser.Parse("free", res.Stdout); perr == nil {
			m := mem.(parser.MemoryInfo)
			snap.Memory = Memory{TotalBytes: m.TotalBytes, UsedBytes: m.UsedBytes}
		}
	}

	if res, err := e.exec.Run(ctx, "systemctl", []string{"--failed", "--no-pager", "--plain"}, e.deadline); err == nil {
		if svcs, perr := parser.Parse("systemctl --failed", res.Stdout); perr == nil {
			snap.FailedServices = svcs.(parser.ServiceList).Units
		}
	}

	return snap, nil
}

// Save persists snap atomically, overwriting any previous snapshot.
func (e *Engine) Save(snap *Snapshot) error {
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return fmt.Errorf("snapshot: mkdir: %w", err)
	}
	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return fmt.Errorf("snapshot: write temp: %w", err)
	}
	return os.Rename(tmp, e.path)
}

// LoadPrevious reads the last persisted snapshot, or (nil, nil) if
// none exists yet.
func (e *Engine) LoadPrevious() (*Snapshot, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: read %s: %w", e.path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("snapshot: parse %s: %w", e.path, err)
	}
	return &snap, nil
}
