// Package persistence provides SQLite-based game storage: the store snapshot,
// the scheduler's memory, turn reports and an event log.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/politburo/internal/engine"
	"github.com/talgya/politburo/internal/events"
	"github.com/talgya/politburo/internal/state"
)

// Meta keys.
const (
	MetaLastTurn = "last_turn"
	MetaSeed     = "seed"
)

// DB wraps a SQLite connection for game persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS game_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		turn INTEGER NOT NULL,
		store_json TEXT NOT NULL,
		scheduler_json TEXT NOT NULL,
		saved_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS turn_reports (
		turn INTEGER PRIMARY KEY,
		quiet INTEGER NOT NULL,
		incidents INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		turn INTEGER NOT NULL,
		category TEXT NOT NULL,
		kind TEXT NOT NULL,
		description TEXT NOT NULL,
		failed INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveState writes the store and scheduler memory (full replace).
func (db *DB) SaveState(s *state.Store, sched events.State) error {
	storeJSON, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	schedJSON, err := json.Marshal(sched)
	if err != nil {
		return fmt.Errorf("encode scheduler: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT OR REPLACE INTO game_state (id, turn, store_json, scheduler_json, saved_at)
		VALUES (1, ?, ?, ?, ?)`,
		s.Turn, string(storeJSON), string(schedJSON), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		MetaLastTurn, strconv.Itoa(s.Turn)); err != nil {
		return err
	}
	return tx.Commit()
}

// HasGameState reports whether a saved game exists.
func (db *DB) HasGameState() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM game_state"); err != nil {
		return false
	}
	return n > 0
}

// LoadState reads the saved store and scheduler memory.
func (db *DB) LoadState() (*state.Store, events.State, error) {
	var row struct {
		StoreJSON     string `db:"store_json"`
		SchedulerJSON string `db:"scheduler_json"`
	}
	if err := db.conn.Get(&row, "SELECT store_json, scheduler_json FROM game_state WHERE id = 1"); err != nil {
		return nil, events.State{}, fmt.Errorf("load game state: %w", err)
	}

	var snap state.Snapshot
	if err := json.Unmarshal([]byte(row.StoreJSON), &snap); err != nil {
		return nil, events.State{}, fmt.Errorf("decode store: %w", err)
	}
	var sched events.State
	if err := json.Unmarshal([]byte(row.SchedulerJSON), &sched); err != nil {
		return nil, events.State{}, fmt.Errorf("decode scheduler: %w", err)
	}
	return state.FromSnapshot(snap), sched, nil
}

// SaveReport stores a turn report and appends its events to the log.
func (db *DB) SaveReport(r *engine.TurnReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	quiet := 0
	if r.Incidents.Quiet {
		quiet = 1
	}
	if _, err := tx.Exec("INSERT OR REPLACE INTO turn_reports (turn, quiet, incidents, report_json) VALUES (?, ?, ?, ?)",
		r.Turn, quiet, len(r.Incidents.Selected), string(data)); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO events (id, turn, category, kind, description, failed)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range r.Events() {
		failed := 0
		if e.Failed {
			failed = 1
		}
		if _, err := stmt.Exec(e.ID, e.Turn, e.Category, e.Kind, e.Description, failed); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Report loads the report for a turn. A missing turn returns (nil, nil).
func (db *DB) Report(turn int) (*engine.TurnReport, error) {
	var data string
	err := db.conn.Get(&data, "SELECT report_json FROM turn_reports WHERE turn = ?", turn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r engine.TurnReport
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("decode report %d: %w", turn, err)
	}
	return &r, nil
}

// LatestReport loads the most recent report, nil if none has been saved.
func (db *DB) LatestReport() (*engine.TurnReport, error) {
	var turn int
	err := db.conn.Get(&turn, "SELECT turn FROM turn_reports ORDER BY turn DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return db.Report(turn)
}

// TurnSummary is one row of the report index.
type TurnSummary struct {
	Turn      int  `db:"turn" json:"turn"`
	Quiet     bool `db:"quiet" json:"quiet"`
	Incidents int  `db:"incidents" json:"incidents"`
}

// RecentTurns lists the most recent N reports, newest first.
func (db *DB) RecentTurns(limit int) ([]TurnSummary, error) {
	var out []TurnSummary
	err := db.conn.Select(&out,
		"SELECT turn, quiet, incidents FROM turn_reports ORDER BY turn DESC LIMIT ?",
		limit,
	)
	return out, err
}

// EventRow is one logged event.
type EventRow struct {
	ID          string `db:"id" json:"id"`
	Turn        int    `db:"turn" json:"turn"`
	Category    string `db:"category" json:"category"`
	Kind        string `db:"kind" json:"kind"`
	Description string `db:"description" json:"description"`
	Failed      bool   `db:"failed" json:"failed"`
}

// RecentEvents returns the most recent N events, newest turn first.
func (db *DB) RecentEvents(limit int) ([]EventRow, error) {
	var out []EventRow
	err := db.conn.Select(&out,
		"SELECT id, turn, category, kind, description, failed FROM events ORDER BY turn DESC, rowid ASC LIMIT ?",
		limit,
	)
	return out, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveGame performs a full save of the game and its last report.
func (db *DB) SaveGame(g *engine.Game) error {
	cp, err := g.Checkpoint()
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	s := cp.Store
	slog.Info("saving game state", "turn", s.Turn, "countries", len(s.Countries), "characters", len(s.Characters))

	if err := db.SaveState(s, cp.Scheduler); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if r := cp.Report; r != nil {
		if err := db.SaveReport(r); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
	}

	slog.Info("game state saved", "turn", s.Turn)
	return nil
}
