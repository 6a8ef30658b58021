package clarify

import (
	"testing"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIncludesCancelAndOther(t *testing.T) {
	p := New("id", "Title", "Question?")
	_, hasCancel := p.GetOption(KeyCancel)
	_, hasOther := p.GetOption(KeyOther)
	assert.True(t, hasCancel)
	assert.True(t, hasOther)
}

func TestWithOptionsSortsAndKeepsEscapeOptionsLast(t *testing.T) {
	p := New("id", "Title", "Q?").WithOptions([]MenuOption{
		NewOption(2, "Second"),
		NewOption(1, "First"),
	})
	require.Len(t, p.Options, 4)
	assert.Equal(t, uint8(1), p.Options[0].Key)
	assert.Equal(t, uint8(2), p.Options[1].Key)
	assert.Equal(t, KeyCancel, p.Options[2].Key)
	assert.Equal(t, KeyOther, p.Options[3].Key)
}

func TestFormatMenuMarksDefault(t *testing.T) {
	p := New("id", "Editor", "Which editor?").
		WithOptions([]MenuOption{NewOption(1, "Vim")}).
		WithDefault(1).
		WithReason("need to configure it")

	menu := p.FormatMenu()
	assert.Contains(t, menu, "[1] Vim ←")
	assert.Contains(t, menu, "need to configure it")
	assert.Contains(t, menu, "╭─ Editor ─╮")
}

func TestOutcomeIsSuccess(t *testing.T) {
	assert.True(t, Outcome{Kind: Answered}.IsSuccess())
	assert.True(t, Outcome{Kind: Other}.IsSuccess())
	assert.False(t, Outcome{Kind: Cancelled}.IsSuccess())
	assert.False(t, Outcome{Kind: VerificationFailed}.IsSuccess())
}

func TestEditorMenuPromptOnlyListsInstalled(t *testing.T) {
	inv := inventory.NewWithTools(map[string]bool{"vim": true, "nano": true})
	p := EditorMenuPrompt(inv)

	labels := map[string]bool{}
	for _, o := range p.Options {
		labels[o.Label] = true
	}
	assert.True(t, labels["Vim"])
	assert.True(t, labels["Nano"])
	assert.False(t, labels["Emacs"])
}

func TestFindInstalledAlternative(t *testing.T) {
	inv := inventory.NewWithTools(map[string]bool{"nvim": true})
	assert.Equal(t, "nvim", FindInstalledAlternative("vim", inv))

	inv2 := inventory.NewWithTools(map[string]bool{})
	assert.Equal(t, "", FindInstalledAlternative("vim", inv2))
}
