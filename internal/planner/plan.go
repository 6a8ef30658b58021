package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/llm"
	"go.uber.org/zap"
)

// Planner drives the LLM through up to MaxPlanningRounds rounds,
// feeding the critic's complaint back into the next prompt on failure.
type Planner struct {
	client     *llm.Client
	knownTools map[string]bool
	log        *zap.SugaredLogger
}

// New builds a Planner around client. knownTools is consulted by the
// critic to reject commands outside the whitelist.
func New(client *llm.Client, knownTools map[string]bool, log *zap.SugaredLogger) *Planner {
	return &Planner{client: client, knownTools: knownTools, log: log}
}

// Plan takes (utterance, telemetrySummary) and produces an Outcome.
func (p *Planner) Plan(ctx context.Context, utterance, telemetrySummary string) Outcome {
	var lastComplaint string

	for round := 0; round < MaxPlanningRounds; round++ {
		system := buildSystemPrompt(telemetrySummary, lastComplaint)
		reply, _, err := p.client.Chat(ctx, system, utterance)
		if err != nil {
			if p.log != nil {
				p.log.Warnw("planner: llm call failed", "round", round, "error", err)
			}
			lastComplaint = fmt.Sprintf("the previous call failed: %v", err)
			continue
		}

		clean := llm.StripFences(reply)
		recipe, err := Critique(clean, p.knownTools)
		if err != nil {
			lastComplaint = err.Error()
			if p.log != nil {
				p.log.Infow("planner: critic rejected reply", "round", round, "complaint", lastComplaint)
			}
			continue
		}

		return Outcome{Recipe: recipe}
	}

	return Outcome{Failed: true, Reason: fmt.Sprintf("exhausted %d planning rounds: %s", MaxPlanningRounds, lastComplaint)}
}

// buildSystemPrompt assembles the recipe-JSON-schema prompt plus a
// compact telemetry summary, and — on a retry round — the critic's
// complaint from the previous attempt.
func buildSystemPrompt(telemetrySummary, previousComplaint string) string {
	var sb strings.Builder
	sb.WriteString("You are Anna, a local IT assistant for a Linux workstation. ")
	sb.WriteString("Reply with exactly one JSON object matching this schema:\n")
	sb.WriteString(`{"command":"string","args":["string"],"purpose":"string",` +
		`"risk":"read-only|low|medium|high","writes_files":bool,"requires_root":bool,` +
		`"expected_outcome":"string","validation_hint":"string"}`)
	sb.WriteString("\nNo prose, no markdown fences, just the JSON object.\n\n")

	if telemetrySummary != "" {
		sb.WriteString("Current system telemetry:\n")
		sb.WriteString(telemetrySummary)
		sb.WriteString("\n\n")
	}

	if previousComplaint != "" {
		sb.WriteString("Your previous reply was rejected: ")
		sb.WriteString(previousComplaint)
		sb.WriteString("\nFix this and reply again with a single corrected JSON object.\n")
	}

	return sb.String()
}
