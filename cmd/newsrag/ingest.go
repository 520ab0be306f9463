package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"newsrag/internal/logger"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Fetch the configured feeds once, index them and print the report",
		RunE:  runIngest,
	}
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	ctx := cmd.Context()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.service.Ingest(ctx)
	if err != nil {
		return err
	}
	stats, err := a.service.Stats(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"report": report, "indexedPoints": stats.IndexedPoints})
}
