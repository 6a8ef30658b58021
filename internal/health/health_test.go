package health

import (
	"strings"
	"testing"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(disks map[string]int, totalBytes, usedBytes uint64, failed ...string) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Disks:          disks,
		Memory:         snapshot.Memory{TotalBytes: totalBytes, UsedBytes: usedBytes},
		FailedServices: failed,
	}
}

func TestHealthySystem(t *testing.T) {
	s := snap(map[string]int{"/": 50}, 16_000_000_000, 8_000_000_000)
	summary := Build(s, nil)

	assert.True(t, summary.NothingToReport)
	assert.Empty(t, summary.Critical)
	assert.Empty(t, summary.Warnings)
	assert.Equal(t, "No critical issues detected. No warnings detected.", summary.Format())
}

func TestDiskWarningOnly(t *testing.T) {
	s := snap(map[string]int{"/": 87}, 16_000_000_000, 8_000_000_000)
	summary := Build(s, nil)

	assert.False(t, summary.NothingToReport)
	assert.Empty(t, summary.Critical)
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Format(), "87%")
}

func TestCriticalDisk(t *testing.T) {
	s := snap(map[string]int{"/": 96}, 0, 0)
	summary := Build(s, nil)

	require.Len(t, summary.Critical, 1)
	assert.Contains(t, summary.Format(), "CRITICAL")
}

func TestFailedServices(t *testing.T) {
	s := snap(map[string]int{}, 0, 0, "nginx.service", "docker.service")
	summary := Build(s, nil)

	require.Len(t, summary.Critical, 2)
	formatted := summary.Format()
	assert.Contains(t, formatted, "nginx.service")
	assert.Contains(t, formatted, "docker.service")
}

func TestMixedIssuesSorted(t *testing.T) {
	s := snap(map[string]int{"/": 96, "/home": 87}, 16_000_000_000, 14_000_000_000, "nginx.service")
	summary := Build(s, nil)

	assert.Len(t, summary.Critical, 2) // disk critical + service
	assert.Len(t, summary.Warnings, 2) // disk warning + memory

	formatted := summary.Format()
	criticalPos := strings.Index(formatted, "CRITICAL")
	warningPos := strings.Index(formatted, "⚠")
	require.NotEqual(t, -1, criticalPos)
	require.NotEqual(t, -1, warningPos)
	assert.Less(t, criticalPos, warningPos)
}

func TestChangeDetection(t *testing.T) {
	prev := snap(map[string]int{}, 0, 0, "nginx.service")
	curr := snap(map[string]int{}, 0, 0, "docker.service")

	summary := Build(curr, prev)
	require.Len(t, summary.ChangedSinceLast, 2)

	var recovered *Change
	for i := range summary.ChangedSinceLast {
		if summary.ChangedSinceLast[i].Positive {
			recovered = &summary.ChangedSinceLast[i]
		}
	}
	require.NotNil(t, recovered)
	assert.Contains(t, recovered.Description, "nginx")
}

func TestHasHealthIssues(t *testing.T) {
	healthy := snap(map[string]int{"/": 50}, 0, 0)
	assert.False(t, HasIssues(healthy, snapshot.DefaultThresholds))

	warning := snap(map[string]int{"/": 87}, 0, 0)
	assert.True(t, HasIssues(warning, snapshot.DefaultThresholds))

	failed := snap(map[string]int{}, 0, 0, "test.service")
	assert.True(t, HasIssues(failed, snapshot.DefaultThresholds))
}
