package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	e, ok := c.Lookup("patronSummons", "")
	require.True(t, ok)
	assert.NotEmpty(t, e.Title)

	assert.Equal(t, 12, c.Cooldowns()["assassinationAttempt"])
	assert.Contains(t, c.Gates(), "militaryUnrest")
}

func TestLookupFallsBackToGeneralEntry(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	keyed, ok := c.Lookup("consequenceCallback", "purgeTrial")
	require.True(t, ok)
	assert.Equal(t, "purgeTrial", keyed.Key)

	general, ok := c.Lookup("consequenceCallback", "unknownKey")
	require.True(t, ok)
	assert.Empty(t, general.Key)
}

func TestPayload(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	p := c.Payload("foodCrisis", "")
	assert.Equal(t, "foodCrisis", p["type"])
	assert.Equal(t, "Bread Lines", p["title"])

	unknown := c.Payload("nothing", "k")
	assert.Equal(t, map[string]any{"type": "nothing", "key": "k"}, unknown)

	var nilCatalog *Catalog
	assert.Equal(t, map[string]any{"type": "x"}, nilCatalog.Payload("x", ""))
	assert.Empty(t, nilCatalog.Gates())
}

func TestParseRejectsBadEntries(t *testing.T) {
	_, err := Parse([]byte("incidents:\n  - title: no type\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("incidents:\n  - type: a\n  - type: a\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("incidents: [unterminated"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("incidents:\n  - type: npcAction\n    title: Custom\n    cooldown: 0\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	e, ok := c.Lookup("npcAction", "")
	require.True(t, ok)
	assert.Equal(t, "Custom", e.Title)
	cd, ok := c.Cooldowns()["npcAction"]
	assert.True(t, ok)
	assert.Zero(t, cd)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
