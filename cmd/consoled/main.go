package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"hotel-console-backend/config"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "consoled",
		Short:         "Hotel parking and taxi console backend",
		Long:          "consoled serves the hotel front-desk console: vehicle log, exports, parking and taxi operations.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "path to config file (default $CONFIG_PATH or ./config/config.yaml)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newExportCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "consoled %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// configPath resolves the config file: flag, then CONFIG_PATH, then the
// local development default.
func configPath(cmd *cobra.Command) string {
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "./config/config.yaml"
}

func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path := configPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	return cfg, path, nil
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
