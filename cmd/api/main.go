package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/sermonchat/internal/config"
	"github.com/markdave123-py/sermonchat/internal/logging"
)

const (
	Version = "0.1.0"
	appName = "sermonchat"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Sermon chat proxy and sermon catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(serveCmd(), sermonsCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

// loadConfig reads configuration and installs the JSON logger on logOut.
// A nil logOut means stdout.
func loadConfig(logOut io.Writer) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if logOut == nil {
		logging.Init(cfg.LogLevel)
	} else {
		logging.New(logOut, cfg.LogLevel)
	}
	return cfg, nil
}
