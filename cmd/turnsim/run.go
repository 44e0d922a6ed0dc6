package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	runTurns int
	runFresh bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Advance a number of turns and print each report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		s, err := openSession(ctx, cfg, runFresh)
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		for i := 0; i < runTurns && ctx.Err() == nil; i++ {
			r := s.game.AdvanceTurn()
			fmt.Fprint(out, r.Summary())
			if err := s.db.SaveReport(r); err != nil {
				fmt.Fprintf(os.Stderr, "save report: %v\n", err)
			}
			if cfg.SaveEvery > 0 && r.Turn%cfg.SaveEvery == 0 {
				s.save("periodic")
			}
		}
		s.save("final")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runTurns, "turns", "n", 10, "number of turns to advance")
	runCmd.Flags().BoolVar(&runFresh, "fresh", false, "ignore any saved game and start from the scenario")
}
