// Package profile implements the per-user interaction profile (C11):
// streaks, tool/topic usage counters, and the personalized patterns
// and greeting annactl prints at the top of each invocation.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// UserProfile tracks a user's interaction history with Anna.
type UserProfile struct {
	ToolUsage        map[string]int `json:"tool_usage"`
	TopicInterests   map[string]int `json:"topic_interests"`
	PreferredEditor  string         `json:"preferred_editor,omitempty"`
	StreakDays       int            `json:"streak_days"`
	LastSessionAt    int64          `json:"last_session_at"`
	TotalSessions    int            `json:"total_sessions"`
}

// editors is consulted when computing the "top non-editor tool"
// pattern so an editor doesn't double-count against itself.
var editors = map[string]bool{
	"vim": true, "nvim": true, "nano": true, "emacs": true,
	"helix": true, "micro": true, "code": true,
}

// New returns a zero-value profile for a user with no history.
func New() *UserProfile {
	return &UserProfile{
		ToolUsage:      map[string]int{},
		TopicInterests: map[string]int{},
	}
}

// DefaultPath is the profile's location in the daemon's state directory.
func DefaultPath() string {
	return "/var/lib/anna/user_profile.json"
}

// Load reads a profile from path, returning a fresh one if it does
// not yet exist.
func Load(path string) (*UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("profile: read %s: %w", path, err)
	}

	p := New()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("profile: unmarshal %s: %w", path, err)
	}
	if p.ToolUsage == nil {
		p.ToolUsage = map[string]int{}
	}
	if p.TopicInterests == nil {
		p.TopicInterests = map[string]int{}
	}
	return p, nil
}

// Save persists the profile to path atomically.
func (p *UserProfile) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("profile: create dir %s: %w", dir, err)
		}
	}

	encoded, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("profile: marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return fmt.Errorf("profile: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("profile: rename into place: %w", err)
	}
	return nil
}

// RecordSession updates streak and session counters given now (Unix
// seconds). A session less than 24 hours after the last one leaves the
// streak unchanged; one 24 to 48 hours after extends it; a longer gap,
// or no previous session (LastSessionAt 0), sets it to 1.
func (p *UserProfile) RecordSession(now int64) {
	const day = 86400

	if p.LastSessionAt > 0 {
		gapDays := (now - p.LastSessionAt) / day
		switch {
		case gapDays == 0:
			// same day, streak unchanged
		case gapDays == 1:
			p.StreakDays++
		default:
			p.StreakDays = 1
		}
	} else {
		p.StreakDays = 1
	}

	p.LastSessionAt = now
	p.TotalSessions++
}

// RecordTool increments a tool's usage counter. When the tool is an
// editor, it becomes PreferredEditor if none is set yet or if it is now
// used more than the current PreferredEditor.
func (p *UserProfile) RecordTool(tool string) {
	p.ToolUsage[tool]++
	if editors[tool] {
		if p.PreferredEditor == "" || p.ToolUsage[tool] > p.ToolUsage[p.PreferredEditor] {
			p.PreferredEditor = tool
		}
	}
}

// RecordTopic increments a topic's interest counter.
func (p *UserProfile) RecordTopic(topic string) {
	p.TopicInterests[topic]++
}

// TopTopic returns the most-asked-about topic, or "" if there is none.
func (p *UserProfile) TopTopic() string {
	return maxKey(p.TopicInterests)
}

// TopNonEditorTool returns the most-used tool that isn't an editor, or
// "" if there is none.
func (p *UserProfile) TopNonEditorTool() (string, int) {
	best := ""
	bestCount := 0
	// Deterministic iteration: sort keys so ties resolve the same way
	// every time, which the map-ordered Rust original (HashMap) did
	// not need to guarantee but tests here do.
	keys := make([]string, 0, len(p.ToolUsage))
	for k := range p.ToolUsage {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if editors[k] {
			continue
		}
		if p.ToolUsage[k] > bestCount {
			best, bestCount = k, p.ToolUsage[k]
		}
	}
	return best, bestCount
}

func maxKey(counts map[string]int) string {
	best := ""
	bestCount := 0
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}
