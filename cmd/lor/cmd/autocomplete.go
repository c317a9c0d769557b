package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var autocompleteLimit int

var autocompleteCmd = &cobra.Command{
	Use:   "autocomplete <prefix...>",
	Short: "Suggest page names for a prefix",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAutocomplete,
}

func init() {
	autocompleteCmd.Flags().IntVarP(&autocompleteLimit, "limit", "n", 0, "max suggestions (0 = configured default)")
}

func runAutocomplete(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	prefix := strings.Join(args, " ")

	if client := daemonClient(root); client != nil {
		entries, err := client.Autocomplete(prefix, autocompleteLimit)
		if err != nil {
			return err
		}
		fmt.Print(formatAutocomplete(prefix, entries))
		return nil
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	svc, err := localService(root, cfg)
	if err != nil {
		return err
	}
	limit := autocompleteLimit
	if limit <= 0 {
		limit = cfg.Lookup.AutocompleteLimit
	}
	fmt.Print(formatAutocomplete(prefix, svc.AutocompleteN(prefix, limit)))
	return nil
}
