// Command srest serves a demo SRest application and inspects its routes.
package main

import (
	"fmt"
	"os"

	"github.com/Suhaibinator/SRest/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	var envFiles []string

	rootCmd := &cobra.Command{
		Use:   "srest",
		Short: "Run and inspect an SRest application",
		Long: `srest runs a demo application on the SRest dispatcher.

Routes are matched by a segment trie, wrapped with aspects, and either run
inline or offloaded to named worker queues. Configuration is read from
SREST_* environment variables and optional .env files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, ".env files to load (default ./.env if present)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(envFiles...)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}

	rootCmd.AddCommand(
		serveCmd(load),
		routesCmd(load),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
