package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/lor/internal/adapters/snapshotjson"
	"github.com/corey/lor/internal/app"
	"github.com/corey/lor/internal/ports"
)

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Write the stored index as JSON artifacts",
	Long: "Writes queryLookupResults.json, autocomplete.json, ambiguousResults.json,\n" +
		"entities.json and manifest.json. Defaults to .lor/export.",
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	dir := app.NewPaths(root).ExportDir
	if len(args) == 1 {
		dir = args[0]
	}
	snap, err := loadLocalSnapshot(root, cfg)
	if err != nil {
		return err
	}
	return writeExport(dir, snap)
}

func writeExport(dir string, snap *ports.Snapshot) error {
	if err := snapshotjson.Write(dir, snap); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Printf("⚡ exported %d keys to %s\n", snap.Index.Len(), dir)
	return nil
}
