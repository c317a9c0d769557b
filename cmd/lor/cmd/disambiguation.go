package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/lor/internal/adapters/socket"
	"github.com/corey/lor/internal/domain/lookup"
)

var disambiguationCmd = &cobra.Command{
	Use:   "disambiguation <id>",
	Short: "Show the pages behind a disambiguation id",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisambiguation,
}

func runDisambiguation(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	id := args[0]

	if client := daemonClient(root); client != nil {
		res, err := client.Disambiguation(id)
		if err != nil {
			return err
		}
		fmt.Print(formatDisambiguation(res))
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
	set, err := svc.Disambiguation(id)
	if errors.Is(err, lookup.ErrNotFound) {
		fmt.Print(formatDisambiguation(&socket.DisambiguationResult{}))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Print(formatDisambiguation(&socket.DisambiguationResult{Found: true, Set: set}))
	return nil
}
