package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"newsrag/internal/logger"
	"newsrag/internal/tui"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ingest the configured feeds and chat about them in the terminal",
		RunE:  runChat,
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the TUI owns the terminal
	log := logger.New(cfg.Log.Level, cfg.Log.Format, io.Discard)
	ctx := cmd.Context()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "Fetching and indexing articles...")
	report, err := a.service.Ingest(ctx)
	if err != nil {
		return err
	}
	summary := fmt.Sprintf("%d articles indexed in %d batches", report.Articles, report.Batches)
	if report.FallbackBatches > 0 {
		summary += fmt.Sprintf(" (%d with fallback embeddings)", report.FallbackBatches)
	}

	m := tui.New(ctx, a.service, summary)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
