package eventlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBuilder(t *testing.T) {
	r := NewRecord("test-123", "memory_usage", 1_700_000_000).
		Verified(85).
		WithTeam("Performance").
		WithDuration(1500)

	assert.Equal(t, Verified, r.Outcome)
	assert.EqualValues(t, 85, r.Reliability)
	assert.Equal(t, "Performance", r.Team)
	assert.EqualValues(t, 1500, r.DurationMs)
}

func TestAggregateEmpty(t *testing.T) {
	agg := Aggregate(nil)
	assert.EqualValues(t, 0, agg.TotalRequests)
	assert.Equal(t, "Apprentice Troubleshooter", agg.Title)
}

func TestAggregateXPCalculation(t *testing.T) {
	records := []Record{
		NewRecord("1", "memory", 1).Verified(90).WithTeam("Performance"),
		NewRecord("2", "disk", 2).Verified(85).WithTeam("Storage"),
		NewRecord("3", "network", 3).MarkFailed().WithTeam("Network"),
	}

	agg := Aggregate(records)
	assert.EqualValues(t, 3, agg.TotalRequests)
	assert.EqualValues(t, 2, agg.VerifiedCount)
	assert.EqualValues(t, 1, agg.FailedCount)
	assert.Greater(t, agg.XP, uint64(0))
	assert.GreaterOrEqual(t, agg.Level, uint32(1))
}

func TestXPToLevelProgression(t *testing.T) {
	assert.EqualValues(t, 1, xpToLevel(0))
	assert.EqualValues(t, 2, xpToLevel(100))
	assert.EqualValues(t, 5, xpToLevel(1000))
	assert.EqualValues(t, 11, xpToLevel(100000))
}

func TestLevelTitleTerminal(t *testing.T) {
	assert.Equal(t, terminalTitle, levelTitle(11))
	assert.Equal(t, terminalTitle, levelTitle(42))
	assert.Equal(t, "IT Grandmaster", levelTitle(10))
}

func TestAppendAndReadAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	log := Open(path, DefaultMaxEntries)

	require.NoError(t, log.Append(NewRecord("r1", "disk", 100).Verified(90)))
	require.NoError(t, log.Append(NewRecord("r2", "memory", 200).MarkFailed()))

	records, err := log.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].RequestID)
	assert.Equal(t, "r2", records[1].RequestID)
}

func TestReadAllToleratesMalformedTrailingLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	log := Open(path, DefaultMaxEntries)
	require.NoError(t, log.Append(NewRecord("r1", "disk", 100).Verified(90)))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not valid json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := log.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r1", records[0].RequestID)
}

func TestRotationKeepsNewest75Percent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	log := Open(path, 4)

	for i := 0; i < 6; i++ {
		require.NoError(t, log.Append(NewRecord(string(rune('a'+i)), "disk", int64(i))))
	}

	records, err := log.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "c", records[0].RequestID)
}

func TestReadRecentFiltersByCutoff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	log := Open(path, DefaultMaxEntries)

	require.NoError(t, log.Append(NewRecord("old", "disk", 0)))
	require.NoError(t, log.Append(NewRecord("new", "disk", 1_000_000)))

	recent, err := log.ReadRecent(1, 1_000_100)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new", recent[0].RequestID)
}
