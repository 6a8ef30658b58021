// Package pipeline implements the query-answer pipeline (C12): the
// three-tier resolver that tries the template registry first, then
// the recipe planner with its critic. When neither upstream tier
// produces a validated command, Tier 3 returns a clarification prompt;
// it makes no LLM call and produces no prose answer.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/clarify"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/facts"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/inventory"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/planner"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/probe"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/template"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/validator"
	"go.uber.org/zap"
)

// Tier identifies which resolver stage ultimately answered a request.
type Tier int

const (
	TierTemplate Tier = iota
	TierPlanner
	TierGenerative
)

func (t Tier) String() string {
	switch t {
	case TierTemplate:
		return "template"
	case TierPlanner:
		return "planner"
	default:
		return "generative"
	}
}

// Confidence buckets a fast-path answer's reliability, mirroring the
// fact store's freshness/trust bands.
type Confidence int

const (
	ConfidenceHigh Confidence = iota
	ConfidenceMedium
	ConfidenceLow
	ConfidenceNeedsProbing
)

// ConfidenceFromScore maps a 0-100 score onto the fixed bands: High
// 90-100, Medium 70-89, Low 1-69, NeedsProbing at 0.
func ConfidenceFromScore(score int) Confidence {
	switch {
	case score >= 90:
		return ConfidenceHigh
	case score >= 70:
		return ConfidenceMedium
	case score > 0:
		return ConfidenceLow
	default:
		return ConfidenceNeedsProbing
	}
}

// CanAnswerDirectly reports whether this confidence is good enough to
// skip probing and answer from facts alone.
func (c Confidence) CanAnswerDirectly() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium
}

// Answer is the pipeline's final output for one request.
type Answer struct {
	Tier            Tier
	Confidence      Confidence
	Cmdline         string
	ValidatedCmd    *validator.ValidatedCommand
	Recipe          *planner.Recipe
	Output          string
	NeedsConfirm    bool
	ClarifyRequired bool
	Clarify         *clarify.ClarifyPrompt
	Reason          string
}

// Pipeline wires together the three resolver tiers and the safety
// gate every proposed command passes through before becoming an Answer.
type Pipeline struct {
	inventory     *inventory.Inventory
	store         *facts.Store
	plan          *planner.Planner
	probeExec     *probe.Executor
	probeDeadline time.Duration
	log           *zap.SugaredLogger
}

// New builds a Pipeline around its collaborators. probeExec runs the
// validated command a read-intent answer resolves to, so Tier 1/Tier 2
// return real output rather than a proposed command line alone.
func New(inv *inventory.Inventory, store *facts.Store, plan *planner.Planner, probeExec *probe.Executor, probeDeadline time.Duration, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{inventory: inv, store: store, plan: plan, probeExec: probeExec, probeDeadline: probeDeadline, log: log}
}

// Resolve runs request through Tier 1 (template match), then Tier 2
// (planner+critic), stopping at the first tier that produces a
// validated command. Otherwise Tier 3 answers with ClarifyRequired and
// a clarify.ClarifyPrompt built from request; no LLM is asked.
func (p *Pipeline) Resolve(ctx context.Context, request string, slots map[string]string) (*Answer, error) {
	if tpl, ok := template.Match(request); ok {
		cmdline := template.Instantiate(tpl, slots)
		validated, err := p.validateTemplate(cmdline)
		if err == nil {
			if p.log != nil {
				p.log.Infow("pipeline: resolved via template", "template", tpl.ID)
			}
			ans := &Answer{
				Tier:         TierTemplate,
				Confidence:   ConfidenceHigh,
				Cmdline:      cmdline,
				ValidatedCmd: validated,
			}
			p.runValidated(ctx, validated, ans)
			return ans, nil
		}
		if p.log != nil {
			p.log.Warnw("pipeline: template matched but failed validation, falling through", "template", tpl.ID, "error", err)
		}
	}

	if p.plan != nil {
		outcome := p.plan.Plan(ctx, request, p.telemetrySummary())
		if !outcome.Failed && outcome.Recipe != nil {
			plannedCmd := validator.PlannedCommand{Command: outcome.Recipe.Command, Args: outcome.Recipe.Args}
			validated, err := validator.Validate(plannedCmd, p.inventory)
			if err == nil {
				if p.log != nil {
					p.log.Infow("pipeline: resolved via planner", "command", outcome.Recipe.Command)
				}
				ans := &Answer{
					Tier:         TierPlanner,
					Confidence:   ConfidenceMedium,
					Cmdline:      validated.Cmdline,
					ValidatedCmd: validated,
					Recipe:       outcome.Recipe,
					NeedsConfirm: outcome.Recipe.Risk >= planner.Medium,
				}
				// A write-intent recipe still needs confirmation (§4.10 step
				// 3); only a read-intent recipe runs straight away.
				if !ans.NeedsConfirm {
					p.runValidated(ctx, validated, ans)
				}
				return ans, nil
			}
			if p.log != nil {
				p.log.Warnw("pipeline: planner recipe failed validation, falling through", "error", err)
			}
		}
	}

	prompt := clarify.New("fallback_"+shortDigest(request), "Need More Detail", request).
		WithReason("neither the template registry nor the recipe planner could produce a safe, validated command")
	return &Answer{
		Tier:            TierGenerative,
		Confidence:      ConfidenceLow,
		ClarifyRequired: true,
		Clarify:         &prompt,
		Reason:          "neither the template registry nor the recipe planner could produce a safe, validated command",
	}, nil
}

// runValidated executes a validated read-intent command through the
// probe executor and attaches its output to ans. A probe failure is
// logged and leaves ans.Output empty rather than failing the request —
// the caller already has a safe, validated command line to show.
func (p *Pipeline) runValidated(ctx context.Context, validated *validator.ValidatedCommand, ans *Answer) {
	if p.probeExec == nil {
		return
	}
	deadline := p.probeDeadline
	if deadline <= 0 {
		deadline = DefaultTargetedProbing.Timeout
	}
	res, err := p.probeExec.Run(ctx, validated.Tool, validated.Args, deadline)
	if err != nil {
		if p.log != nil {
			p.log.Warnw("pipeline: probe execution failed", "tool", validated.Tool, "error", err)
		}
		return
	}
	ans.Output = strings.TrimRight(res.Stdout, "\n")
}

// shortDigest renders a short, stable, non-random identifier for a
// clarify prompt raised from free-form request text.
func shortDigest(s string) string {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return fmt.Sprintf("%08x", h)
}

func (p *Pipeline) validateTemplate(cmdline string) (*validator.ValidatedCommand, error) {
	fields := splitFields(cmdline)
	if len(fields) == 0 {
		return nil, fmt.Errorf("pipeline: empty template command")
	}
	return validator.Validate(validator.PlannedCommand{Command: fields[0], Args: fields[1:]}, p.inventory)
}

func splitFields(s string) []string {
	var out []string
	var cur []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' {
			if len(cur) > 0 {
				out = append(out, string(cur))
				cur = nil
			}
			continue
		}
		cur = append(cur, c)
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

// telemetrySummary renders a compact snapshot of verified facts for
// the planner's system prompt. Stale or unverified facts are omitted.
func (p *Pipeline) telemetrySummary() string {
	if p.store == nil {
		return ""
	}
	snap := p.store.Snapshot()
	if len(snap) == 0 {
		return ""
	}
	sort.Slice(snap, func(i, j int) bool { return snap[i].Key < snap[j].Key })

	var b strings.Builder
	for i, f := range snap {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s=%s", f.Key, f.Value)
	}
	return b.String()
}

// ProbeOutcome is the result of running one targeted probe to fill a
// knowledge gap identified during fast-path assessment.
type ProbeOutcome struct {
	Tool     string
	Result   *probe.Result
	Err      error
	Duration time.Duration
}

// TargetedProbing bounds how many probes Tier 1 may run while trying
// to close a knowledge gap before handing off to Tier 2.
type TargetedProbing struct {
	MaxProbes int
	Timeout   time.Duration
}

// DefaultTargetedProbing matches the original pipeline's conservative
// defaults: at most 3 probes, 5s each.
var DefaultTargetedProbing = TargetedProbing{MaxProbes: 3, Timeout: 5 * time.Second}
