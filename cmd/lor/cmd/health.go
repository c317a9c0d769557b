package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/lor/internal/app"
	"github.com/corey/lor/internal/domain/status"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check daemon status",
	Long:  "Queries the running daemon, or shows the last recorded rebuild when it is down.",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	client := daemonClient(root)
	if client == nil {
		fmt.Println("⚡ lor daemon is not running")
		if sd, err := status.ReadJSON(app.NewPaths(root).Status); err == nil {
			fmt.Print(formatStatus(sd))
		}
		return nil
	}

	health, err := client.Health()
	if err != nil {
		return err
	}
	fmt.Print(formatHealth(health))
	return nil
}
