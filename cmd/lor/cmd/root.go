package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/lor/internal/app"
	"github.com/corey/lor/internal/config"
	"github.com/corey/lor/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "lor",
	Short:         "lor — Library of Ruina page lookup",
	Long:          "Exact, fuzzy and autocomplete lookup of abnormality, combat and key pages and passives.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// loadConfig reads .lor/config.yaml under root, or the defaults.
func loadConfig(root string) (*config.Config, error) {
	return config.Load(app.NewPaths(root).Config)
}

// cliLogger logs to stderr for one-shot commands.
func cliLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(cfg.Logging("cli"))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(autocompleteCmd)
	rootCmd.AddCommand(disambiguationCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(exportCmd)
}
