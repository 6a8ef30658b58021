package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSessionStreak(t *testing.T) {
	p := New()
	p.RecordSession(1000)
	assert.Equal(t, 1, p.StreakDays)

	p.RecordSession(1000 + 86400) // next day
	assert.Equal(t, 2, p.StreakDays)

	p.RecordSession(1000 + 86400*10) // big gap, resets
	assert.Equal(t, 1, p.StreakDays)
}

func TestRecordSessionSameDayDoesNotExtendStreak(t *testing.T) {
	p := New()
	p.RecordSession(0)
	p.RecordSession(100)
	assert.Equal(t, 1, p.StreakDays)
	assert.Equal(t, 2, p.TotalSessions)
}

func TestRecordToolUpdatesPreferredEditor(t *testing.T) {
	p := New()
	p.RecordTool("vim")
	p.RecordTool("vim")
	p.RecordTool("vim")
	assert.Equal(t, "vim", p.PreferredEditor)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")

	p := New()
	p.RecordTool("htop")
	p.RecordTopic("disk")
	p.RecordSession(1000)
	require.NoError(t, p.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.ToolUsage["htop"])
	assert.Equal(t, 1, loaded.TopicInterests["disk"])
	assert.EqualValues(t, 1000, loaded.LastSessionAt)
}

func TestLoadMissingFileReturnsFreshProfile(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalSessions)
}

func TestCalculateInteractionInfoFirstTime(t *testing.T) {
	info := CalculateInteractionInfo(0, 1000)
	assert.True(t, info.IsFirstTime)
	assert.False(t, info.HasHours)
}

func TestCalculateInteractionInfoDays(t *testing.T) {
	info := CalculateInteractionInfo(1000, 1000+86400*3)
	assert.False(t, info.IsFirstTime)
	require.True(t, info.HasDays)
	assert.EqualValues(t, 3, info.DaysSinceLast)
}

func TestUserPatternsEmptyWhenNoHistory(t *testing.T) {
	p := New()
	assert.Empty(t, UserPatterns(p))
}

func TestUserPatternsStreakFireAboveSevenDays(t *testing.T) {
	p := New()
	p.StreakDays = 10
	patterns := UserPatterns(p)
	require.NotEmpty(t, patterns)
	assert.Contains(t, patterns[0], "🔥")
}

func TestUserPatternsCappedAtThree(t *testing.T) {
	p := New()
	p.StreakDays = 10
	p.PreferredEditor = "vim"
	p.ToolUsage["vim"] = 5
	p.RecordTopic("disk")
	p.RecordTopic("disk")
	p.RecordTopic("disk")
	p.ToolUsage["htop"] = 5
	patterns := UserPatterns(p)
	assert.LessOrEqual(t, len(patterns), maxPatternsShown)
}

func TestShowSinceLastTime(t *testing.T) {
	assert.True(t, ShowSinceLastTime(InteractionInfo{HasHours: true, HoursSinceLast: 5}))
	assert.False(t, ShowSinceLastTime(InteractionInfo{HasHours: true, HoursSinceLast: 1}))
	assert.False(t, ShowSinceLastTime(InteractionInfo{IsFirstTime: true}))
}

func TestProfileSaveCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "profile.json")
	p := New()
	require.NoError(t, p.Save(path))
	_, err := os.Stat(path)
	require.NoError(t, err)
}
