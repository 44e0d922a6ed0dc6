package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/politburo/internal/engine"
	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/persistence"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	sc, err := engine.DefaultScenario()
	require.NoError(t, err)
	st, err := sc.Store()
	require.NoError(t, err)
	g, err := engine.New(engine.DefaultConfig(), st, nil, entropy.NewSeeded(4))
	require.NoError(t, err)
	return &Server{Game: g, AdminKey: "secret"}
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatusAndCountries(t *testing.T) {
	h := newServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/status", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, float64(0), status["turn"])
	assert.Equal(t, float64(5), status["countries"])

	rec = do(t, h, http.MethodGet, "/api/v1/countries", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var countries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &countries))
	assert.Len(t, countries, 5)

	rec = do(t, h, http.MethodGet, "/api/v1/country/eastland", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bloc": "socialist"`)

	rec = do(t, h, http.MethodGet, "/api/v1/country/atlantis", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPoliciesAndCharacters(t *testing.T) {
	h := newServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/policies", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id": "succession"`)

	rec = do(t, h, http.MethodGet, "/api/v1/characters", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var chars []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chars))
	require.NotEmpty(t, chars)
	assert.Equal(t, "generalSecretary", chars[0]["position"])
}

func TestReportBeforeAndAfterTurn(t *testing.T) {
	s := newServer(t)
	h := s.Handler()

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/report", "", "").Code)

	var hooked int
	s.OnTurn = func(r *engine.TurnReport) { hooked = r.Turn }
	rec := do(t, h, http.MethodPost, "/api/v1/turn", "secret", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, hooked)

	rec = do(t, h, http.MethodGet, "/api/v1/report", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, float64(1), rep["turn"])

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/report/1", "", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/report/7", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/report/x", "", "").Code)
}

func TestAdminAuth(t *testing.T) {
	s := newServer(t)
	h := s.Handler()

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/v1/turn", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/v1/turn", "wrong", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/v1/turn", "", "").Code)
	assert.Equal(t, 0, s.Game.Turn())

	s.AdminKey = ""
	assert.Equal(t, http.StatusForbidden, do(t, s.Handler(), http.MethodPost, "/api/v1/turn", "", "").Code)
}

func TestQueueTreaty(t *testing.T) {
	s := newServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/treaty", "secret", `{"country_id":"meridia","type":"culturalExchange"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/v1/treaty", "secret", `{"country_id":"meridia","type":"alliance"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/v1/treaty", "secret", `{"type":"aidPackage"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/v1/treaty", "secret", `{`).Code)

	rep := s.Game.AdvanceTurn()
	require.Len(t, rep.Diplomacy.Proposals, 1)
}

func TestSpeed(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, s.Handler(), http.MethodGet, "/api/v1/speed", "", "").Code)

	s.Runner = engine.NewRunner(s.Game, time.Second)
	h := s.Handler()
	rec := do(t, h, http.MethodPost, "/api/v1/speed", "secret", `{"speed": 4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4.0, s.Runner.Speed())
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/v1/speed", "secret", `{"speed": -1}`).Code)
}

func TestHistoryAndEvents(t *testing.T) {
	s := newServer(t)
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	defer db.Close()
	s.DB = db
	h := s.Handler()

	for i := 0; i < 3; i++ {
		require.NoError(t, db.SaveReport(s.Game.AdvanceTurn()))
	}

	rec := do(t, h, http.MethodGet, "/api/v1/history?limit=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hist []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.LessOrEqual(t, len(hist), 2)

	rec = do(t, h, http.MethodGet, "/api/v1/events?limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var evs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &evs))
	assert.LessOrEqual(t, len(evs), 5)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/report/2", "", "").Code)
}

func TestOversizedLimits(t *testing.T) {
	s := newServer(t)
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	defer db.Close()
	s.DB = db
	h := s.Handler()
	for i := 0; i < 5; i++ {
		require.NoError(t, db.SaveReport(s.Game.AdvanceTurn()))
	}
	fired := len(s.Game.SchedulerState().History)

	for _, limit := range []string{"999999999999999", "1000000000"} {
		rec := do(t, h, http.MethodGet, "/api/v1/history?limit="+limit, "", "")
		require.Equal(t, http.StatusOK, rec.Code, limit)
		var hist []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
		assert.Len(t, hist, fired)

		rec = do(t, h, http.MethodGet, "/api/v1/events?limit="+limit, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, limit)
	}
}

func TestQueryIntCapped(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?limit=999999999999999&n=7&bad=-3", nil)
	assert.Equal(t, maxLimit, queryInt(req, "limit", 50))
	assert.Equal(t, 7, queryInt(req, "n", 50))
	assert.Equal(t, 50, queryInt(req, "bad", 50))
	assert.Equal(t, 50, queryInt(req, "missing", 50))
}

func TestRateLimitedReads(t *testing.T) {
	s := newServer(t)
	s.Limit = 2
	h := s.Handler()
	defer s.Close()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/status", "", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/status", "", "").Code)
	rec := do(t, h, http.MethodGet, "/api/v1/status", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestCORS(t *testing.T) {
	s := newServer(t)
	s.Origins = []string{"https://politburo.example"}
	h := s.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "https://politburo.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://politburo.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
