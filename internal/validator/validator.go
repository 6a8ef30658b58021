// Package validator implements the command validation and safety gate
// (C7): every Recipe a planner proposes passes through these checks
// before becoming a ValidatedCommand. The validator never mutates
// intent — it only rejects or approves.
package validator

import (
	"fmt"
	"strings"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/inventory"
)

// ErrorKind is a closed enumeration of validation failure reasons.
type ErrorKind int

const (
	EmptyCommand ErrorKind = iota
	UnknownTool
	SuspiciousSyntax
	ForbiddenOperation
)

// ValidationError carries a one-line explanation suitable for display
// to the user alongside its enumerated kind.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newErr(kind ErrorKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ValidatedCommand is a Recipe that passed every C7 check.
type ValidatedCommand struct {
	Cmdline string
	Tool    string
	Args    []string
}

// PlannedCommand is the input shape the validator checks: a proposed
// invocation from either the template registry or the recipe planner.
type PlannedCommand struct {
	Command string
	Args    []string
}

// alwaysAvailable tools need no inventory entry — they ship with any
// POSIX base system.
var alwaysAvailable = map[string]bool{
	"sh": true, "bash": true, "cat": true, "grep": true,
	"awk": true, "sed": true, "head": true, "tail": true,
}

var forbiddenWriteTools = map[string]bool{
	"rm": true, "mv": true, "cp": true, "dd": true,
	"mkfs": true, "fdisk": true, "parted": true,
}

var forbiddenEditors = map[string]bool{
	"nano": true, "vim": true, "vi": true, "emacs": true, "ed": true,
}

var packageManagers = map[string]bool{"pacman": true, "yay": true, "paru": true}

var packageWriteFlags = map[string]bool{
	"-S": true, "-R": true, "-U": true,
	"--sync": true, "--remove": true, "--upgrade": true,
}

// Validate runs the C7 rule chain against plan and inv.
//
// Rule order is empty -> operation-safety -> tool-exists -> syntax.
// Operation safety runs before tool-exists so a forbidden verb (e.g.
// "rm -rf /tmp/x") is rejected as ForbiddenOperation even when "rm" is
// not itself in the tool inventory — this matches the documented
// end-to-end scenarios (§8) and the exact rejection requirement for
// "rm -rf /tmp/x" and "pacman -S steam" in read-only mode.
func Validate(plan PlannedCommand, inv *inventory.Inventory) (*ValidatedCommand, error) {
	if plan.Command == "" {
		return nil, &ValidationError{Kind: EmptyCommand, Message: "empty command"}
	}

	tool := extractPrimaryTool(plan.Command, plan.Args)

	var cmdline string
	if len(plan.Args) == 0 {
		cmdline = plan.Command
	} else {
		cmdline = plan.Command + " " + strings.Join(plan.Args, " ")
	}

	if err := validateOperationSafety(tool, plan.Args, cmdline); err != nil {
		return nil, err
	}
	if err := validateToolExists(tool, inv); err != nil {
		return nil, err
	}
	if err := validateSyntax(cmdline); err != nil {
		return nil, err
	}

	return &ValidatedCommand{Cmdline: cmdline, Tool: tool, Args: plan.Args}, nil
}

// extractPrimaryTool handles shell invocations like `sh -c "pacman -Qq | grep games"`
// by looking at the first word of the embedded shell string.
func extractPrimaryTool(command string, args []string) string {
	if command == "sh" && len(args) >= 2 && args[0] == "-c" {
		fields := strings.Fields(args[1])
		if len(fields) > 0 {
			return fields[0]
		}
	}
	return command
}

func validateToolExists(tool string, inv *inventory.Inventory) error {
	if alwaysAvailable[tool] {
		return nil
	}
	if inv != nil && inv.Has(tool) {
		return nil
	}
	return newErr(UnknownTool, "Unknown tool: %s (not installed or not in PATH)", tool)
}

func validateSyntax(cmdline string) error {
	if strings.Contains(cmdline, "| |") || strings.HasSuffix(cmdline, "|") || strings.HasPrefix(cmdline, "|") {
		return newErr(SuspiciousSyntax, "Suspicious syntax: Empty or trailing pipe")
	}

	if strings.Contains(cmdline, "awk '{print") || strings.Contains(cmdline, "awk {print") {
		parts := strings.SplitN(cmdline, "awk", 2)
		if len(parts) == 2 {
			after := parts[1]
			if strings.Contains(after, "}' -") || strings.Contains(after, "} -") {
				return newErr(SuspiciousSyntax, "Suspicious syntax: Trailing flag after awk output block (e.g., awk '{print $3}' -m)")
			}
		}
	}

	if strings.Contains(cmdline, "pacman -Q |") && strings.Contains(cmdline, "grep") && !strings.Contains(cmdline, "pacman -Qq") {
		return newErr(SuspiciousSyntax, "Suspicious syntax: Use 'pacman -Qs <pattern>' instead of 'pacman -Q | grep <pattern>'")
	}

	if strings.Contains(cmdline, "| grep") {
		_, after, _ := strings.Cut(cmdline, "| grep")
		after = strings.TrimSpace(after)
		if after == "" || strings.HasPrefix(after, "|") {
			return newErr(SuspiciousSyntax, "Suspicious syntax: grep without pattern in pipe")
		}
	}

	return nil
}

func validateOperationSafety(tool string, args []string, cmdline string) error {
	if forbiddenWriteTools[tool] {
		return newErr(ForbiddenOperation, "Forbidden operation: %s is a write operation (forbidden in read-only mode)", tool)
	}

	if packageManagers[tool] {
		for _, a := range args {
			if packageWriteFlags[a] {
				return newErr(ForbiddenOperation, "Forbidden operation: %s %s is a package modification (forbidden in read-only mode)", tool, a)
			}
		}
	}

	if forbiddenEditors[tool] {
		return newErr(ForbiddenOperation, "Forbidden operation: %s is a file editor (forbidden in read-only mode)", tool)
	}

	if strings.Contains(cmdline, ">") && !strings.Contains(cmdline, "/dev/null") {
		return newErr(ForbiddenOperation, "Forbidden operation: File redirection forbidden (use read-only commands)")
	}

	return nil
}
