// Package render turns annactl's RPC responses into terminal output:
// either a human-readable rendering tuned per response type, or
// indented JSON when --json is set. It owns presentation only — every
// value it formats was already decided by the daemon.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/consent"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/health"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/mutation"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/pipeline"
)

// JSON writes v to w as indented JSON, matching the daemon's own wire
// encoding style (two-space indent, HTML escaping left on since this
// is a terminal, not a browser).
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Answer renders a pipeline.Answer for a terminal: the resolved tier,
// the command that would run, and — when risk requires it — the exact
// confirmation phrase the user must type next.
func Answer(a *pipeline.Answer) string {
	var b strings.Builder

	switch {
	case a.ClarifyRequired:
		if a.Clarify != nil {
			b.WriteString(a.Clarify.FormatMenu())
			b.WriteString("\n")
			return b.String()
		}
		fmt.Fprintf(&b, "I couldn't find a safe way to answer that automatically.\n")
		if a.Reason != "" {
			fmt.Fprintf(&b, "  %s\n", a.Reason)
		}
		return b.String()
	case a.Cmdline != "":
		fmt.Fprintf(&b, "[%s, %s confidence]\n", a.Tier, a.Confidence)
		fmt.Fprintf(&b, "  $ %s\n", a.Cmdline)
		if a.Output != "" {
			fmt.Fprintf(&b, "%s\n", a.Output)
		}
	}

	if a.Recipe != nil && a.Recipe.Purpose != "" {
		fmt.Fprintf(&b, "  %s\n", a.Recipe.Purpose)
	}

	if a.NeedsConfirm && a.Recipe != nil {
		phrase := consent.ExpectedPhrase(a.Recipe.Risk)
		fmt.Fprintf(&b, "\nThis changes system state (risk: %s). To proceed, confirm with:\n", riskLabel(a.Recipe.Risk))
		fmt.Fprintf(&b, "  %s\n", phrase)
	}

	return b.String()
}

// riskLabel mirrors planner.RiskLevel.String() without importing
// planner here just for a label; kept intentionally narrow.
func riskLabel(r interface{ String() string }) string {
	return r.String()
}

// Health renders a health.Summary using its own Format, which already
// matches the original health_view.rs presentation order and icons.
func Health(s health.Summary) string {
	return s.Format()
}

// MutationPlan renders a preview of a plan awaiting confirmation: the
// recipe's title/summary, every action it will take, and its
// aggregate risk.
func MutationPlan(p *mutation.MutationPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Recipe.Title)
	if p.Recipe.Summary != "" {
		fmt.Fprintf(&b, "  %s\n", p.Recipe.Summary)
	}
	if p.Recipe.WhyItMatters != "" {
		fmt.Fprintf(&b, "  Why this matters: %s\n", p.Recipe.WhyItMatters)
	}
	fmt.Fprintf(&b, "\nSteps:\n")
	for i, a := range p.Recipe.Actions {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, describeAction(a))
	}
	fmt.Fprintf(&b, "\nRisk: %s\n", p.Risk)
	if len(p.VerificationChecks) > 0 {
		fmt.Fprintf(&b, "Will verify: %s\n", strings.Join(p.VerificationChecks, "; "))
	}
	return b.String()
}

func describeAction(a mutation.ChangeAction) string {
	switch a.Kind {
	case mutation.EditFile:
		return fmt.Sprintf("edit %s", a.Path)
	case mutation.InstallPackages:
		return fmt.Sprintf("install %s", strings.Join(a.Packages, ", "))
	case mutation.RemovePackages:
		return fmt.Sprintf("remove %s", strings.Join(a.Packages, ", "))
	case mutation.EnableService:
		return fmt.Sprintf("enable %s", a.ServiceUnit)
	case mutation.DisableService:
		return fmt.Sprintf("disable %s", a.ServiceUnit)
	case mutation.SetWallpaper:
		return fmt.Sprintf("set wallpaper to %s", a.WallpaperPath)
	default:
		if a.Command != "" {
			return fmt.Sprintf("run %s %s", a.Command, strings.Join(a.Args, " "))
		}
		return fmt.Sprintf("run %s", a.VerificationCmd)
	}
}
