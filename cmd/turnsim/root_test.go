package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/politburo/internal/config"
	"github.com/talgya/politburo/internal/persistence"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Seed = 7
	cfg.DBPath = filepath.Join(t.TempDir(), "game.db")
	return cfg
}

func TestEngineConfigCarriesSettings(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.DeficitPenalty = 4
	cfg.ConsequenceGrace = 9
	cfg.CongressInterval = 12

	ec := engineConfig(cfg)
	assert.Equal(t, 4, ec.DeficitPenalty)
	assert.Equal(t, 9, ec.ConsequenceGrace)
	assert.Equal(t, 12, ec.Scheduler.CongressInterval)
	assert.Equal(t, cfg.Pacing, ec.Scheduler.Pacing)
}

func TestSessionStartsThenResumes(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	s, err := openSession(ctx, cfg, false)
	require.NoError(t, err)
	assert.False(t, s.resumed)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.db.SaveReport(s.game.AdvanceTurn()))
	}
	s.save("test")
	s.Close()

	s, err = openSession(ctx, cfg, false)
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, s.resumed)
	assert.Equal(t, 3, s.game.Turn())
	require.NotNil(t, s.game.LastReport())
	assert.Equal(t, 3, s.game.LastReport().Turn)

	seed, err := s.db.GetMeta(persistence.MetaSeed)
	require.NoError(t, err)
	assert.Equal(t, "7", seed)
}

func TestFreshIgnoresSavedGame(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	s, err := openSession(ctx, cfg, false)
	require.NoError(t, err)
	s.game.AdvanceTurn()
	s.save("test")
	s.Close()

	s, err = openSession(ctx, cfg, true)
	require.NoError(t, err)
	defer s.Close()
	assert.False(t, s.resumed)
	assert.Equal(t, 0, s.game.Turn())
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.True(t, strings.HasPrefix(buf.String(), "turnsim dev"))
}
