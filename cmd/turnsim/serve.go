package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/politburo/internal/api"
	"github.com/talgya/politburo/internal/engine"
)

var serveFresh bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Advance turns on a timer and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		s, err := openSession(ctx, cfg, serveFresh)
		if err != nil {
			return err
		}
		defer s.Close()

		if !s.resumed {
			s.save("initial")
		}

		afterTurn := func(r *engine.TurnReport) {
			if err := s.db.SaveReport(r); err != nil {
				slog.Error("report save failed", "turn", r.Turn, "error", err)
			}
			if cfg.SaveEvery > 0 && r.Turn%cfg.SaveEvery == 0 {
				s.save("periodic")
			}
		}

		runner := engine.NewRunner(s.game, cfg.TurnInterval)
		runner.SetSpeed(cfg.Speed)
		runner.OnTurn = afterTurn

		if cfg.AdminToken == "" {
			slog.Warn("POLITBURO_ADMIN_TOKEN not set; admin POST endpoints will be disabled")
		}
		apiServer := &api.Server{
			Game:     s.game,
			Runner:   runner,
			DB:       s.db,
			Port:     cfg.Port,
			AdminKey: cfg.AdminToken,
			Origins:  cfg.CORSOrigins,
			Limit:    cfg.RateLimit,
			OnTurn:   afterTurn,
		}
		srv := apiServer.Start()
		defer apiServer.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "API: http://localhost:%d/api/v1/status\n", cfg.Port)
		if s.resumed {
			fmt.Fprintf(cmd.OutOrStdout(), "Resuming from turn %d\n", s.game.Turn())
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Starting turn runner... (Ctrl+C to stop)")

		runner.Run(ctx, 0)

		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP shutdown", "error", err)
		}

		slog.Info("final save...")
		s.save("final")
		fmt.Fprintln(cmd.OutOrStdout(), "Runner stopped. Game state saved.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveFresh, "fresh", false, "ignore any saved game and start from the scenario")
}
