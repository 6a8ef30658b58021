package consent

import (
	"testing"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/planner"
	"github.com/stretchr/testify/assert"
)

func TestExpectedPhraseByRisk(t *testing.T) {
	assert.Equal(t, ConfirmLow, ExpectedPhrase(planner.Low))
	assert.Equal(t, ConfirmMedium, ExpectedPhrase(planner.Medium))
	assert.Equal(t, ConfirmHigh, ExpectedPhrase(planner.High))
	assert.Equal(t, ConfirmHigh, ExpectedPhrase(planner.ReadOnly))
}

func TestPhraseMatchesIsExactAndCaseInsensitive(t *testing.T) {
	assert.True(t, ConfirmLow.Matches("i confirm (low risk)"))
	assert.True(t, ConfirmLow.Matches("  I CONFIRM (low risk)  "))
	assert.False(t, ConfirmLow.Matches("I confirm low risk"))
	assert.False(t, ConfirmLow.Matches("yes"))
}

func TestProbePrivilegeRootWins(t *testing.T) {
	assert.Equal(t, Root, ProbePrivilege(0))
}

func TestStatsRecord(t *testing.T) {
	var s Stats
	s.Record(OutcomeSuccess)
	s.Record(OutcomeRolledBack)
	s.Record(OutcomeSuccess)

	assert.Equal(t, 2, s.Successful)
	assert.Equal(t, 1, s.RolledBack)
	assert.True(t, s.LastOutcomeIsSet)
	assert.Equal(t, OutcomeSuccess, s.LastOutcome)
}

func TestManualCommandFor(t *testing.T) {
	assert.Equal(t, "sudo pacman -S htop", ManualCommandFor("pacman -S htop"))
}
