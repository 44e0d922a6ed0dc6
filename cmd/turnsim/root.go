package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/talgya/politburo/internal/catalog"
	"github.com/talgya/politburo/internal/config"
	"github.com/talgya/politburo/internal/engine"
	"github.com/talgya/politburo/internal/entropy"
	"github.com/talgya/politburo/internal/events"
	"github.com/talgya/politburo/internal/persistence"
	"github.com/talgya/politburo/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "turnsim",
	Short: "Political-economic strategy turn engine",
	Long: `turnsim advances a single-party state one turn at a time: the economy,
foreign relations and the leadership's maneuvering, followed by the incidents
that reach the player.

Settings come from an optional YAML file and POLITBURO_* environment
variables. A .env file in the working directory is loaded first.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file if present (non-fatal).
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
}

// loadConfig reads settings and installs the default logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	return cfg, nil
}

func engineConfig(cfg config.Config) engine.Config {
	ec := engine.DefaultConfig()
	ec.DeficitPenalty = cfg.DeficitPenalty
	ec.ConsequenceGrace = cfg.ConsequenceGrace
	ec.Scheduler = events.Config{
		Pacing:           cfg.Pacing,
		HistoryLimit:     cfg.HistoryLimit,
		CongressInterval: cfg.CongressInterval,
	}
	return ec
}

// session is an opened game with its storage and telemetry.
type session struct {
	cfg     config.Config
	game    *engine.Game
	db      *persistence.DB
	resumed bool

	otelShutdown telemetry.Shutdown
}

func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
	if err := s.otelShutdown(context.Background()); err != nil {
		slog.Warn("telemetry shutdown", "error", err)
	}
}

// save writes the game and logs failures without stopping play.
func (s *session) save(reason string) {
	if err := s.db.SaveGame(s.game); err != nil {
		slog.Error("save failed", "reason", reason, "error", err)
	}
}

// openSession restores the saved game or starts a new one from the scenario.
func openSession(ctx context.Context, cfg config.Config, fresh bool) (*session, error) {
	shutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	slog.Info("database opened", "path", cfg.DBPath)

	s := &session{cfg: cfg, db: db, otelShutdown: shutdown}
	if err := s.build(fresh); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) build(fresh bool) error {
	cat, err := loadCatalog(s.cfg.Catalog)
	if err != nil {
		return err
	}

	seed := s.cfg.Seed
	if seed == 0 && !fresh {
		if v, err := s.db.GetMeta(persistence.MetaSeed); err == nil {
			seed, _ = strconv.ParseInt(v, 10, 64)
		}
	}
	src := entropy.NewSeeded(seed)
	seed = src.Seed()

	metrics := telemetry.NewMetrics(telemetry.Meter("politburo/engine"))

	if !fresh && s.db.HasGameState() {
		store, sched, err := s.db.LoadState()
		if err != nil {
			return err
		}
		// Offset by turn so a resumed game does not replay the opening draws.
		src = entropy.NewSeeded(seed + int64(store.Turn))
		g, err := engine.New(engineConfig(s.cfg), store, cat, src, engine.WithMetrics(metrics))
		if err != nil {
			return err
		}
		g.RestoreScheduler(sched)
		if last, err := s.db.LatestReport(); err == nil && last != nil {
			g.SetLastReport(last)
		}
		s.game, s.resumed = g, true
		slog.Info("game restored", "turn", store.Turn, "seed", seed)
		return nil
	}

	sc, err := loadScenario(s.cfg.Scenario)
	if err != nil {
		return err
	}
	store, err := sc.Store()
	if err != nil {
		return err
	}
	g, err := engine.New(engineConfig(s.cfg), store, cat, src, engine.WithMetrics(metrics))
	if err != nil {
		return err
	}
	s.game = g
	if err := s.db.SaveMeta(persistence.MetaSeed, strconv.FormatInt(seed, 10)); err != nil {
		return fmt.Errorf("save seed: %w", err)
	}
	slog.Info("new game", "scenario", scenarioName(s.cfg.Scenario), "seed", seed,
		"countries", len(store.Countries), "characters", len(store.Characters))
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func loadScenario(path string) (*engine.Scenario, error) {
	if path == "" {
		return engine.DefaultScenario()
	}
	return engine.LoadScenario(path)
}

func scenarioName(path string) string {
	if path == "" {
		return "default"
	}
	return filepath.Base(path)
}

var errNoReport = errors.New("no report stored")
