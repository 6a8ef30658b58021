package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchFirstWins(t *testing.T) {
	tpl, ok := Match("how much RAM do I have left")
	require.True(t, ok)
	assert.Equal(t, "check_memory", tpl.ID)
}

func TestMatchRespectsMustNotContain(t *testing.T) {
	tpl, ok := Match("how much memory space is used on disk")
	require.True(t, ok)
	assert.NotEqual(t, "check_disk", tpl.ID)
}

func TestMatchNoneFound(t *testing.T) {
	_, ok := Match("what is the meaning of life")
	assert.False(t, ok)
}

func TestInstantiateSubstitutesSlot(t *testing.T) {
	tpl, ok := Match("what is the status of nginx")
	require.True(t, ok)
	cmd := Instantiate(tpl, map[string]string{"service": "nginx"})
	assert.Equal(t, "systemctl is-active nginx", cmd)
}

func TestRegistryIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, tpl := range Registry {
		assert.False(t, seen[tpl.ID], "duplicate template id %q", tpl.ID)
		seen[tpl.ID] = true
	}
	assert.GreaterOrEqual(t, len(Registry), 35)
}
