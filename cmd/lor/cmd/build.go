package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/lor/internal/app"
	"github.com/corey/lor/internal/config"
)

var (
	buildOut           string
	buildSkipMalformed bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the lookup index from the data directory",
	Long: "Reads <data>/<locale>/*.json and collectables.yaml, resolves name\n" +
		"collisions and stores the index in .lor/lor.db. With a running daemon\n" +
		"the daemon rebuilds instead.",
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "also write the JSON artifacts to this directory")
	buildCmd.Flags().BoolVar(&buildSkipMalformed, "skip-malformed", false, "log and skip malformed entities instead of aborting")
}

func runBuild(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("skip-malformed") {
		cfg.Build.SkipMalformed = buildSkipMalformed
	}
	dataDir := config.Resolve(root, cfg.DataDir)
	log := cliLogger(cfg)

	if client := daemonClient(root); client != nil {
		res, err := client.Reindex()
		if err != nil {
			return err
		}
		fmt.Print(formatReindex(res))
		if buildOut == "" {
			return nil
		}
		// The daemon holds the store; build the export in memory.
		_, snap, err := app.BuildSnapshot(cmd.Context(), cfg, dataDir, log)
		if err != nil {
			return err
		}
		return writeExport(buildOut, snap)
	}

	start := time.Now()
	res, snap, err := app.BuildSnapshot(cmd.Context(), cfg, dataDir, log)
	if err != nil {
		return err
	}
	store, err := openStore(root, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.SaveSnapshot(app.SnapshotName, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	out := app.ReindexResult(res.Report, time.Since(start))
	fmt.Print(formatReindex(&out))
	if buildOut != "" {
		return writeExport(buildOut, snap)
	}
	return nil
}
