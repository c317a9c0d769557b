package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/lor/internal/adapters/socket"
	"github.com/corey/lor/internal/ports"
)

var lookupLocale string

var lookupCmd = &cobra.Command{
	Use:   "lookup <name...>",
	Short: "Look up a page by name",
	Long: "Resolves a page name exactly, or to the nearest name within two edits.\n" +
		"Uses the running daemon when available, else the stored index.",
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVarP(&lookupLocale, "locale", "l", "en", "preferred locale (en, kr, jp, cn, trcn or a client tag like zh-TW)")
}

func runLookup(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	q := strings.Join(args, " ")

	if client := daemonClient(root); client != nil {
		res, err := client.Lookup(q, lookupLocale)
		if err != nil {
			return err
		}
		fmt.Print(formatLookup(res))
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
	start := time.Now()
	a, err := svc.Answer(q, ports.FromClientLocale(lookupLocale))
	if err != nil {
		return err
	}
	res, err := socket.NewLookupResult(a)
	if err != nil {
		return err
	}
	res.Elapsed = time.Since(start).String()
	fmt.Print(formatLookup(&res))
	return nil
}
