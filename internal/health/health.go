// Package health implements the relevant-health-summary view (C13)
// for "how is my computer" queries: minimal, actionable output that
// stays silent when nothing needs attention.
package health

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/snapshot"
)

// Severity ranks a HealthItem; Critical sorts before Warning before Note.
type Severity int

const (
	Critical Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case Warning:
		return "warning"
	default:
		return "note"
	}
}

// Category groups HealthItems for presentation ordering: Disk, then
// Memory, then Services, then Changes.
type Category int

const (
	CategoryDisk Category = iota
	CategoryMemory
	CategoryServices
	CategoryChanges
)

// Item is a single health issue or note.
type Item struct {
	Severity Severity
	Message  string
	Category Category
	SortKey  uint32
}

func CriticalItem(cat Category, message string, sortKey uint32) Item {
	return Item{Severity: Critical, Message: message, Category: cat, SortKey: sortKey}
}

func WarningItem(cat Category, message string, sortKey uint32) Item {
	return Item{Severity: Warning, Message: message, Category: cat, SortKey: sortKey}
}

// Format renders one item with its severity icon.
func (i Item) Format() string {
	icon := "ℹ"
	switch i.Severity {
	case Critical:
		icon = "🔴"
	case Warning:
		icon = "⚠"
	}
	return icon + " " + i.Message
}

// Change is one observed difference since the previous snapshot.
type Change struct {
	Description string
	Positive    bool
}

// Summary is the relevant, actionable health view.
type Summary struct {
	Critical          []Item
	Warnings          []Item
	Notes             []string
	ChangedSinceLast  []Change
	NothingToReport   bool
}

// Healthy returns an empty summary.
func Healthy() Summary {
	return Summary{NothingToReport: true}
}

// IssueCount is the total number of critical+warning items.
func (s Summary) IssueCount() int {
	return len(s.Critical) + len(s.Warnings)
}

// Sort orders Critical and Warnings by category, then by SortKey
// descending — deterministic presentation order.
func (s *Summary) Sort() {
	byCategoryThenSortKeyDesc := func(items []Item) func(i, j int) bool {
		return func(i, j int) bool {
			if items[i].Category != items[j].Category {
				return items[i].Category < items[j].Category
			}
			return items[i].SortKey > items[j].SortKey
		}
	}
	sort.SliceStable(s.Critical, byCategoryThenSortKeyDesc(s.Critical))
	sort.SliceStable(s.Warnings, byCategoryThenSortKeyDesc(s.Warnings))
}

// Format renders the summary as user-facing text: critical first,
// then warnings, then changes, then notes. Silent ("no critical
// issues... no warnings...") when there is nothing to report and no
// changes to mention.
func (s Summary) Format() string {
	if s.NothingToReport && len(s.ChangedSinceLast) == 0 {
		return "No critical issues detected. No warnings detected."
	}

	var lines []string

	for _, item := range s.Critical {
		lines = append(lines, item.Format())
	}
	for _, item := range s.Warnings {
		lines = append(lines, item.Format())
	}

	if len(s.ChangedSinceLast) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "Changes since last check:")
		for _, c := range s.ChangedSinceLast {
			icon := "⚡"
			if c.Positive {
				icon = "✅"
			}
			lines = append(lines, fmt.Sprintf("  %s %s", icon, c.Description))
		}
	}

	if len(s.Notes) > 0 && len(lines) > 0 {
		for _, n := range s.Notes {
			lines = append(lines, "ℹ "+n)
		}
	}

	if len(lines) == 0 {
		return "No critical issues detected. No warnings detected."
	}
	return strings.Join(lines, "\n")
}

// Build derives a relevant Summary from snap and its optional
// predecessor, applying snapshot.DefaultThresholds.
func Build(snap *snapshot.Snapshot, prev *snapshot.Snapshot) Summary {
	return BuildWithThresholds(snap, prev, snapshot.DefaultThresholds)
}

// BuildWithThresholds is Build with an explicit Thresholds override.
func BuildWithThresholds(snap *snapshot.Snapshot, prev *snapshot.Snapshot, th snapshot.Thresholds) Summary {
	var s Summary

	mounts := make([]string, 0, len(snap.Disks))
	for m := range snap.Disks {
		mounts = append(mounts, m)
	}
	sort.Strings(mounts)

	for _, mount := range mounts {
		pct := snap.Disks[mount]
		switch {
		case pct >= th.DiskCritical:
			s.Critical = append(s.Critical, CriticalItem(CategoryDisk, fmt.Sprintf("Disk %s is CRITICAL at %d%% used", mount, pct), uint32(pct)))
		case pct >= th.DiskWarn:
			s.Warnings = append(s.Warnings, WarningItem(CategoryDisk, fmt.Sprintf("Disk %s is at %d%% used", mount, pct), uint32(pct)))
		}
	}

	memPct := snap.Memory.UsedPercent()
	if memPct >= th.MemoryHigh {
		s.Warnings = append(s.Warnings, WarningItem(CategoryMemory, fmt.Sprintf("Memory usage is high at %d%%", memPct), uint32(memPct)))
	}

	for _, svc := range snap.FailedServices {
		s.Critical = append(s.Critical, CriticalItem(CategoryServices, fmt.Sprintf("Service %s is failed", svc), 0))
	}

	if prev != nil {
		prevFailed := toSet(prev.FailedServices)
		currFailed := toSet(snap.FailedServices)

		for _, svc := range snap.FailedServices {
			if !prevFailed[svc] {
				s.ChangedSinceLast = append(s.ChangedSinceLast, Change{Description: fmt.Sprintf("Service %s started failing", svc)})
			}
		}
		for _, svc := range prev.FailedServices {
			if !currFailed[svc] {
				s.ChangedSinceLast = append(s.ChangedSinceLast, Change{Description: fmt.Sprintf("Service %s recovered", svc), Positive: true})
			}
		}

		for _, mount := range mounts {
			currPct := snap.Disks[mount]
			prevPct, ok := prev.Disks[mount]
			if ok && currPct >= prevPct+5 && currPct >= th.DiskWarn {
				s.ChangedSinceLast = append(s.ChangedSinceLast, Change{
					Description: fmt.Sprintf("Disk %s increased from %d%% to %d%%", mount, prevPct, currPct),
				})
			}
		}
	}

	s.NothingToReport = len(s.Critical) == 0 && len(s.Warnings) == 0
	s.Sort()
	return s
}

// HasIssues is a quick check for whether snap has anything worth
// reporting, without building the full Summary.
func HasIssues(snap *snapshot.Snapshot, th snapshot.Thresholds) bool {
	for _, pct := range snap.Disks {
		if pct >= th.DiskWarn {
			return true
		}
	}
	if snap.Memory.UsedPercent() >= th.MemoryHigh {
		return true
	}
	return len(snap.FailedServices) > 0
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}
