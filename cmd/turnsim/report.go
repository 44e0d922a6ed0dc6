package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talgya/politburo/internal/engine"
	"github.com/talgya/politburo/internal/persistence"
)

var (
	reportTurn int
	reportJSON bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a stored turn report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfg.DBPath); err != nil {
			return fmt.Errorf("no saved game at %s: %w", filepath.Clean(cfg.DBPath), err)
		}
		db, err := persistence.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		var r *engine.TurnReport
		if reportTurn > 0 {
			r, err = db.Report(reportTurn)
		} else {
			r, err = db.LatestReport()
		}
		if err != nil {
			return err
		}
		if r == nil {
			return errNoReport
		}

		out := cmd.OutOrStdout()
		if reportJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		}
		fmt.Fprint(out, r.Summary())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVarP(&reportTurn, "turn", "t", 0, "turn to show (default latest)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the full report as JSON")
}
