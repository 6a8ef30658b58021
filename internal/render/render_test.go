package render

import (
	"bytes"
	"testing"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/mutation"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/pipeline"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONWritesIndented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"a": 1}))
	assert.Contains(t, buf.String(), "\n")
}

func TestAnswerRendersCommand(t *testing.T) {
	a := &pipeline.Answer{Tier: pipeline.TierTemplate, Confidence: pipeline.ConfidenceHigh, Cmdline: "free -h"}
	out := Answer(a)
	assert.Contains(t, out, "free -h")
	assert.Contains(t, out, "template")
}

func TestAnswerRendersClarifyRequired(t *testing.T) {
	a := &pipeline.Answer{ClarifyRequired: true, Reason: "ambiguous request"}
	out := Answer(a)
	assert.Contains(t, out, "ambiguous request")
}

func TestAnswerRendersConfirmationPrompt(t *testing.T) {
	a := &pipeline.Answer{
		Tier:         pipeline.TierPlanner,
		Cmdline:      "systemctl restart nginx",
		NeedsConfirm: true,
		Recipe:       &planner.Recipe{Command: "systemctl", Risk: planner.Medium},
	}
	out := Answer(a)
	assert.Contains(t, out, "I CONFIRM (medium risk)")
}

func TestMutationPlanRendersSteps(t *testing.T) {
	recipe := mutation.ChangeRecipe{
		Title: "Restart nginx",
		Actions: []mutation.ChangeAction{
			{Kind: mutation.EnableService, ServiceUnit: "nginx", Risk: planner.Medium},
		},
	}
	plan := mutation.NewPlan("test-id", recipe)
	out := MutationPlan(plan)
	assert.Contains(t, out, "Restart nginx")
	assert.Contains(t, out, "enable nginx")
}
