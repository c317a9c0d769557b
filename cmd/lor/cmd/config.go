package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/lor/internal/adapters/socket"
	"github.com/corey/lor/internal/app"
	"github.com/corey/lor/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows resolved paths, lookup settings and daemon status. No daemon required.",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default .lor/config.yaml",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	sockPath := socket.SocketPath(root)
	dbPath := paths.DB
	if cfg.DBPath != "" {
		dbPath = config.Resolve(root, cfg.DBPath)
	}

	cfgStatus := fmt.Sprintf("%s(defaults, no file)%s", colorGray, colorReset)
	if _, err := os.Stat(paths.Config); err == nil {
		cfgStatus = paths.Config
	}

	client := socket.NewClient(sockPath)
	daemonRunning := client.Ping()
	daemonStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if daemonRunning {
		daemonStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}

	fmt.Printf("%s⚡ lor config%s\n", colorBold, colorReset)
	fmt.Printf("  Root:         %s\n", root)
	fmt.Printf("  Config:       %s\n", cfgStatus)
	fmt.Printf("  Data:         %s\n", config.Resolve(root, cfg.DataDir))
	fmt.Printf("  DB:           %s\n", dbPath)
	fmt.Printf("  Socket:       %s\n", sockPath)
	fmt.Printf("  Policy:       %s\n", cfg.Build.ReleaseGroupPolicy)
	fmt.Printf("  Fuzzy:        %d edits\n", cfg.Lookup.FuzzyThreshold)
	fmt.Printf("  Autocomplete: %d entries\n", cfg.Lookup.AutocompleteLimit)
	fmt.Printf("  Daemon:       %s\n", daemonStatus)

	if daemonRunning {
		if portData, err := os.ReadFile(paths.PortFile); err == nil {
			fmt.Printf("  Web:          http://localhost:%s\n", strings.TrimSpace(string(portData)))
		}
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	paths := app.NewPaths(projectRoot())
	if _, err := os.Stat(paths.Config); err == nil {
		fmt.Printf("⚡ %s already exists\n", paths.Config)
		return nil
	}
	if err := config.Save(paths.Config, config.Default()); err != nil {
		return err
	}
	fmt.Printf("⚡ wrote %s\n", paths.Config)
	return nil
}
