// Package api provides the HTTP API for observing and steering a game.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/politburo/internal/engine"
	"github.com/talgya/politburo/internal/events"
	"github.com/talgya/politburo/internal/persistence"
	"github.com/talgya/politburo/internal/state"
)

// Server serves the game over HTTP.
type Server struct {
	Game     *engine.Game
	Runner   *engine.Runner  // optional; enables /speed
	DB       *persistence.DB // optional; enables stored reports and the event log
	Port     int
	AdminKey string   // Bearer token for POST endpoints. Empty = POST disabled.
	Origins  []string // extra CORS origins
	Limit    int      // GET requests per minute per IP; 0 disables limiting

	// OnTurn runs after a turn advanced through the API.
	OnTurn func(r *engine.TurnReport)

	limiter *ReadLimiter
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	read := func(h http.HandlerFunc) http.HandlerFunc { return h }
	if s.Limit > 0 {
		if s.limiter == nil {
			s.limiter = NewReadLimiter(s.Limit, time.Minute)
		}
		read = func(h http.HandlerFunc) http.HandlerFunc { return limitReads(s.limiter, h) }
	}

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", read(s.handleStatus))
	mux.HandleFunc("/api/v1/countries", read(s.handleCountries))
	mux.HandleFunc("/api/v1/country/", read(s.handleCountryDetail))
	mux.HandleFunc("/api/v1/policies", read(s.handlePolicies))
	mux.HandleFunc("/api/v1/characters", read(s.handleCharacters))
	mux.HandleFunc("/api/v1/history", read(s.handleHistory))
	mux.HandleFunc("/api/v1/events", read(s.handleEvents))
	mux.HandleFunc("/api/v1/report", read(s.handleReport))
	mux.HandleFunc("/api/v1/report/", read(s.handleReportByTurn))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/turn", s.adminOnly(s.handleTurn))
	mux.HandleFunc("/api/v1/treaty", s.adminOnly(s.handleTreaty))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	return corsMiddleware(s.Origins, mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "rate_limit", s.Limit)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Close()
	}
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(extra []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range extra {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no POLITBURO_ADMIN_TOKEN set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"name": "Politburo"}
	s.Game.View(func(st *state.Store) {
		status["turn"] = st.Turn
		player := st.Player
		player.AllyIDs = append([]string(nil), player.AllyIDs...)
		status["player"] = player
		status["stats"] = st.Stats()
		status["flags"] = st.Flags()
		status["economy"] = st.Economy
		status["countries"] = len(st.Countries)
		status["pending_consequences"] = len(st.Consequences)
	})
	if s.Runner != nil {
		status["speed"] = s.Runner.Speed()
	}
	if last := s.Game.LastReport(); last != nil {
		status["quiet"] = last.Incidents.Quiet
		status["consecutive"] = last.Incidents.Consecutive
	}
	writeJSON(w, status)
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	type countrySummary struct {
		ID           string           `json:"id"`
		Name         string           `json:"name"`
		Bloc         state.Bloc       `json:"bloc"`
		Government   state.Government `json:"government"`
		Relationship int              `json:"relationship"`
		Tension      int              `json:"tension"`
		TradeVolume  int              `json:"trade_volume"`
		Treaties     int              `json:"treaties"`
		Embargo      bool             `json:"embargo"`
	}

	var result []countrySummary
	s.Game.View(func(st *state.Store) {
		for _, c := range st.Countries {
			result = append(result, countrySummary{
				ID:           c.ID,
				Name:         c.Name,
				Bloc:         c.Bloc,
				Government:   c.Government,
				Relationship: c.Relationship,
				Tension:      c.Tension,
				TradeVolume:  c.TradeVolume,
				Treaties:     len(c.Treaties),
				Embargo:      c.Embargo,
			})
		}
	})
	writeJSON(w, result)
}

func (s *Server) handleCountryDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/country/")
	if id == "" {
		http.Error(w, "missing country id", http.StatusBadRequest)
		return
	}

	var body []byte
	var err error
	found := false
	s.Game.View(func(st *state.Store) {
		c, ok := st.Country(id)
		if !ok {
			return
		}
		found = true
		// Encode under the lock; treaties and espionage are mutated each turn.
		body, err = json.MarshalIndent(c, "", "  ")
	})
	if !found {
		http.Error(w, "country not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handlePolicies(w http.ResponseWriter, r *http.Request) {
	type policySummary struct {
		ID       string               `json:"id"`
		Name     string               `json:"name"`
		Category state.PolicyCategory `json:"category"`
		Current  string               `json:"current"`
		Options  []string             `json:"options"`
		Pending  *state.Proposal      `json:"pending,omitempty"`
		Changes  int                  `json:"changes"`
	}

	var result []policySummary
	s.Game.View(func(st *state.Store) {
		for _, p := range st.Policies {
			ps := policySummary{
				ID:       p.ID,
				Name:     p.Name,
				Category: p.Category,
				Current:  p.Current,
				Changes:  len(p.History),
			}
			for _, o := range p.Options {
				ps.Options = append(ps.Options, o.ID)
			}
			if p.Pending != nil {
				pending := *p.Pending
				ps.Pending = &pending
			}
			result = append(result, ps)
		}
	})
	writeJSON(w, result)
}

func (s *Server) handleCharacters(w http.ResponseWriter, r *http.Request) {
	type characterSummary struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Position state.Position  `json:"position"`
		Faction  state.FactionID `json:"faction"`
		Alive    bool            `json:"alive"`
	}

	var result []characterSummary
	s.Game.View(func(st *state.Store) {
		for _, c := range st.Characters {
			result = append(result, characterSummary{
				ID:       c.ID,
				Name:     c.Name,
				Position: c.Position,
				Faction:  c.Faction,
				Alive:    c.Alive,
			})
		}
	})
	sort.SliceStable(result, func(i, j int) bool { return result[i].Position > result[j].Position })
	writeJSON(w, result)
}

// handleHistory returns the incidents the scheduler has surfaced, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries := s.Game.SchedulerState().History
	limit := min(queryInt(r, "limit", 50), len(entries))
	out := make([]events.HistoryEntry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	writeJSON(w, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		last := s.Game.LastReport()
		if last == nil {
			writeJSON(w, []state.Event{})
			return
		}
		writeJSON(w, last.Events())
		return
	}
	rows, err := s.DB.RecentEvents(queryInt(r, "limit", 100))
	if err != nil {
		slog.Error("failed to load events", "error", err)
		http.Error(w, "failed to load events", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	last := s.Game.LastReport()
	if last == nil {
		http.Error(w, "no turn has been played", http.StatusNotFound)
		return
	}
	writeJSON(w, last)
}

func (s *Server) handleReportByTurn(w http.ResponseWriter, r *http.Request) {
	turn, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/v1/report/"))
	if err != nil {
		http.Error(w, "invalid turn", http.StatusBadRequest)
		return
	}
	if last := s.Game.LastReport(); last != nil && last.Turn == turn {
		writeJSON(w, last)
		return
	}
	if s.DB == nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}
	rep, err := s.DB.Report(turn)
	if err != nil {
		slog.Error("failed to load report", "turn", turn, "error", err)
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}
	if rep == nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}
	writeJSON(w, rep)
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	report := s.Game.AdvanceTurn()
	if s.OnTurn != nil {
		s.OnTurn(report)
	}
	slog.Info("turn advanced via API", "turn", report.Turn)
	writeJSON(w, report)
}

func (s *Server) handleTreaty(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		CountryID string           `json:"country_id"`
		Type      state.TreatyType `json:"type"`
		Secret    bool             `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.CountryID == "" {
		http.Error(w, "country_id is required", http.StatusBadRequest)
		return
	}
	err := s.Game.QueueTreaty(state.TreatyRequest{CountryID: req.CountryID, Type: req.Type, Secret: req.Secret})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Info("treaty queued", "country", req.CountryID, "type", req.Type)
	writeJSONStatus(w, http.StatusAccepted, map[string]any{"queued": true, "country_id": req.CountryID, "type": req.Type})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		http.Error(w, "no runner attached", http.StatusNotFound)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Runner.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Runner.Speed()})
}

// maxLimit caps list sizes requested through ?limit=.
const maxLimit = 1000

func queryInt(r *http.Request, key string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v > 0 {
		return min(v, maxLimit)
	}
	return def
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
