package validator_test

import (
	"testing"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/inventory"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/validator"
)

func seeded(tools ...string) *inventory.Inventory {
	set := make(map[string]bool, len(tools))
	for _, t := range tools {
		set[t] = true
	}
	return inventory.NewWithTools(set)
}

func TestAcceptValidFree(t *testing.T) {
	got, err := validator.Validate(validator.PlannedCommand{Command: "free", Args: []string{"-m"}}, seeded("free"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cmdline != "free -m" {
		t.Errorf("cmdline = %q", got.Cmdline)
	}
}

func TestRejectBrokenAwkFlag(t *testing.T) {
	_, err := validator.Validate(validator.PlannedCommand{
		Command: "sh",
		Args:    []string{"-c", "free -m | awk '{print $3}' -m"},
	}, seeded("free", "awk"))
	assertKind(t, err, validator.SuspiciousSyntax)
}

func TestRejectPacmanPipeGrep(t *testing.T) {
	_, err := validator.Validate(validator.PlannedCommand{
		Command: "sh",
		Args:    []string{"-c", "pacman -Q | grep games"},
	}, seeded("pacman"))
	assertKind(t, err, validator.SuspiciousSyntax)
}

func TestRejectUnknownTool(t *testing.T) {
	_, err := validator.Validate(validator.PlannedCommand{Command: "nonexistent_tool"}, seeded())
	assertKind(t, err, validator.UnknownTool)
}

func TestRejectWriteOperationRm(t *testing.T) {
	_, err := validator.Validate(validator.PlannedCommand{
		Command: "rm", Args: []string{"-rf", "/tmp/test"},
	}, seeded())
	assertKind(t, err, validator.ForbiddenOperation)
}

func TestRejectPacmanInstall(t *testing.T) {
	_, err := validator.Validate(validator.PlannedCommand{
		Command: "pacman", Args: []string{"-S", "steam"},
	}, seeded("pacman"))
	assertKind(t, err, validator.ForbiddenOperation)
}

func TestAcceptValidLscpu(t *testing.T) {
	_, err := validator.Validate(validator.PlannedCommand{Command: "lscpu"}, seeded("lscpu"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAcceptGrepProcCpuinfo(t *testing.T) {
	_, err := validator.Validate(validator.PlannedCommand{
		Command: "grep", Args: []string{"-i", "sse2", "/proc/cpuinfo"},
	}, seeded())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertKind(t *testing.T, err error, want validator.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	ve, ok := err.(*validator.ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if ve.Kind != want {
		t.Errorf("kind = %v, want %v", ve.Kind, want)
	}
}
