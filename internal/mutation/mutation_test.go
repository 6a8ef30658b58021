package mutation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskForPackageInstall(t *testing.T) {
	assert.Equal(t, planner.Low, RiskForPackageInstall(1))
	assert.Equal(t, planner.Low, RiskForPackageInstall(5))
	assert.Equal(t, planner.Medium, RiskForPackageInstall(6))
}

func TestRiskForPackageRemove(t *testing.T) {
	risk, protected := RiskForPackageRemove([]string{"htop"})
	assert.Equal(t, planner.Medium, risk)
	assert.False(t, protected)

	risk, protected = RiskForPackageRemove([]string{"systemd"})
	assert.Equal(t, planner.High, risk)
	assert.True(t, protected)

	many := []string{"a", "b", "c", "d", "e", "f"}
	risk, protected = RiskForPackageRemove(many)
	assert.Equal(t, planner.High, risk)
	assert.False(t, protected)
}

func TestRiskForService(t *testing.T) {
	risk, ok := RiskForService("NetworkManager")
	require.True(t, ok)
	assert.Equal(t, planner.High, risk)

	_, ok = RiskForService("some-unknown-unit")
	assert.False(t, ok)
}

func TestAggregateRiskTakesMax(t *testing.T) {
	recipe := ChangeRecipe{
		Actions: []ChangeAction{
			{Kind: InstallPackages, Packages: []string{"htop"}, Risk: planner.Low},
			{Kind: DisableService, ServiceUnit: "NetworkManager", Risk: planner.High},
		},
	}
	assert.Equal(t, planner.High, recipe.AggregateRisk())
}

func TestNewPlanCollectsInstalledPackagesForRollback(t *testing.T) {
	recipe := ChangeRecipe{
		Actions: []ChangeAction{
			{Kind: InstallPackages, Packages: []string{"htop", "btop"}, Risk: planner.Low},
		},
	}
	plan := NewPlan("plan-1", recipe)
	assert.Equal(t, Created, plan.State)
	assert.Equal(t, []string{"htop", "btop"}, plan.InstalledPackages)
}

func TestIsProtectedConfigPath(t *testing.T) {
	assert.True(t, IsProtectedConfigPath("/etc/shadow"))
	assert.False(t, IsProtectedConfigPath("/etc/hosts"))
}

func TestApplyEditAppendIfMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(path, []byte("existing line\n"), 0o644))

	err := applyEdit(ChangeAction{
		Kind:     EditFile,
		Path:     path,
		Strategy: AppendIfMissing,
		Lines:    []string{"existing line", "new line"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing line\nnew line\n", string(data))
}

func TestApplyEditReplaceSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	initial := "before\n# ANNA-START\nold\n# ANNA-END\nafter\n"
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o644))

	err := applyEdit(ChangeAction{
		Kind:        EditFile,
		Path:        path,
		Strategy:    ReplaceSection,
		StartMarker: "# ANNA-START",
		EndMarker:   "# ANNA-END",
		Body:        "new",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "new")
	assert.NotContains(t, string(data), "old")
	assert.Contains(t, string(data), "before")
	assert.Contains(t, string(data), "after")
}

func TestApplyEditRejectsProtectedPath(t *testing.T) {
	err := applyEdit(ChangeAction{Kind: EditFile, Path: "/etc/shadow", Strategy: ReplaceEntire, Body: "x"})
	assert.Error(t, err)
}

func TestExecuteRequiresConfirmedState(t *testing.T) {
	plan := NewPlan("plan-2", ChangeRecipe{Actions: []ChangeAction{{Kind: RunReadOnly, Command: "true"}}})
	exec := NewExecutor(Pacman, true, nil)
	err := exec.Execute(context.Background(), plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not Confirmed")
}
