package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsrag/internal/config"
)

// NewRootCmd builds the newsrag command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "newsrag",
		Short:         "Retrieval-augmented news assistant",
		Long:          "Ingest news feeds into a vector index and answer questions about them with citations.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to YAML config file (default ./config.yaml or ~/.config/newsrag/config.yaml)")

	root.AddCommand(newServeCmd(), newChatCmd(), newIngestCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	config.LoadEnv()
	path, _ := cmd.Flags().GetString("config")
	var (
		cfg *config.AppConfig
		err error
	)
	if path == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
