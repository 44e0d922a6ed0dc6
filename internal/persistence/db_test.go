package persistence

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/politburo/internal/engine"
	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/state"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// sameJSON compares values by their encoded form, since payload maps come
// back from storage with generic element types.
func sameJSON(t *testing.T, want, got any) {
	t.Helper()
	w, err := json.Marshal(want)
	require.NoError(t, err)
	g, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(w), string(g))
}

func newGame(t *testing.T, seed int64) *engine.Game {
	t.Helper()
	sc, err := engine.DefaultScenario()
	require.NoError(t, err)
	s, err := sc.Store()
	require.NoError(t, err)
	g, err := engine.New(engine.DefaultConfig(), s, nil, entropy.NewSeeded(seed))
	require.NoError(t, err)
	return g
}

func TestEmptyDatabase(t *testing.T) {
	db := openTemp(t)
	assert.False(t, db.HasGameState())

	r, err := db.LatestReport()
	require.NoError(t, err)
	assert.Nil(t, r)

	_, _, err = db.LoadState()
	assert.Error(t, err)
}

func TestSaveAndLoadGame(t *testing.T) {
	db := openTemp(t)
	g := newGame(t, 21)
	for i := 0; i < 4; i++ {
		g.AdvanceTurn()
	}
	require.NoError(t, db.SaveGame(g))
	assert.True(t, db.HasGameState())

	s, sched, err := db.LoadState()
	require.NoError(t, err)
	assert.Equal(t, 4, s.Turn)
	sameJSON(t, g.SchedulerState(), sched)

	want, err := g.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, want.Stats(), s.Stats())
	assert.Equal(t, want.Flags(), s.Flags())
	assert.Len(t, s.Countries, len(want.Countries))
	gs, ok := s.Character("ostrov")
	require.True(t, ok)
	assert.Equal(t, state.PositionGeneralSecretary, gs.Position)

	last, err := db.GetMeta(MetaLastTurn)
	require.NoError(t, err)
	assert.Equal(t, "4", last)
}

func TestResumedGameKeepsProgress(t *testing.T) {
	db := openTemp(t)
	a := newGame(t, 33)
	b := newGame(t, 33)
	for i := 0; i < 3; i++ {
		a.AdvanceTurn()
		b.AdvanceTurn()
	}
	require.NoError(t, db.SaveGame(a))

	s, sched, err := db.LoadState()
	require.NoError(t, err)
	resumed, err := engine.New(engine.DefaultConfig(), s, nil, entropy.NewSeeded(33))
	require.NoError(t, err)
	resumed.RestoreScheduler(sched)

	assert.Equal(t, b.Turn(), resumed.Turn())
	sameJSON(t, b.SchedulerState(), resumed.SchedulerState())
}

func TestReportsAndEvents(t *testing.T) {
	db := openTemp(t)
	g := newGame(t, 5)
	var events int
	for i := 0; i < 3; i++ {
		r := g.AdvanceTurn()
		events += len(r.Events())
		require.NoError(t, db.SaveReport(r))
	}

	r, err := db.Report(2)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 2, r.Turn)

	missing, err := db.Report(99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	latest, err := db.LatestReport()
	require.NoError(t, err)
	assert.Equal(t, 3, latest.Turn)

	turns, err := db.RecentTurns(10)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, 3, turns[0].Turn)

	rows, err := db.RecentEvents(1000)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(rows), events)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Turn, rows[i].Turn)
	}
}

func TestSaveReportIsIdempotent(t *testing.T) {
	db := openTemp(t)
	r := newGame(t, 9).AdvanceTurn()
	require.NoError(t, db.SaveReport(r))
	require.NoError(t, db.SaveReport(r))

	turns, err := db.RecentTurns(10)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}

func TestMeta(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, db.SaveMeta(MetaSeed, "1917"))
	require.NoError(t, db.SaveMeta(MetaSeed, "1918"))
	v, err := db.GetMeta(MetaSeed)
	require.NoError(t, err)
	assert.Equal(t, "1918", v)

	_, err = db.GetMeta("absent")
	assert.Error(t, err)
}

func TestSaveGameDuringPlayStaysConsistent(t *testing.T) {
	db := openTemp(t)
	g := newGame(t, 88)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 25; i++ {
			g.AdvanceTurn()
		}
	}()

	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		require.NoError(t, db.SaveGame(g))

		s, sched, err := db.LoadState()
		require.NoError(t, err)
		assert.LessOrEqual(t, sched.Pacing.LastFiredTurn, s.Turn)
		for _, h := range sched.History {
			assert.LessOrEqual(t, h.Turn, s.Turn)
		}
		if s.Turn > 0 {
			r, err := db.Report(s.Turn)
			require.NoError(t, err)
			require.NotNil(t, r, "report for saved turn %d", s.Turn)
		}
	}
}
