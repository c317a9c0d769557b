package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/lor/internal/adapters/socket"
	"github.com/corey/lor/internal/app"
	"github.com/corey/lor/internal/logging"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the lor daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in the foreground",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)

	client := socket.NewClient(sockPath)
	if client.Ping() {
		fmt.Println("⚡ daemon already running")
		return nil
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	paths := app.NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	if n, err := paths.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "[warning] migrate .lor layout: %v\n", err)
	} else if n > 0 {
		fmt.Printf("⚡ moved %d runtime files under %s\n", n, paths.Root)
	}

	logFile, err := os.OpenFile(paths.DaemonLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer logFile.Close()
	lc := cfg.Logging("daemon")
	lc.JSONFormat = true
	lc.Output = logFile

	a, err := app.New(app.Config{ProjectRoot: root, Settings: cfg, Logger: logging.NewLogger(lc)})
	if err != nil {
		if isDBLockError(err) {
			return errors.New(diagnoseDBLock(root))
		}
		return fmt.Errorf("init: %w", err)
	}
	if err := a.Start(); err != nil {
		a.Stop()
		return err
	}
	if err := os.WriteFile(paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "[warning] write pid file: %v\n", err)
	}
	defer paths.CleanEphemeral()

	fmt.Printf("⚡ lor daemon started at %s\n", sockPath)
	if a.WebServer.Port() > 0 {
		fmt.Printf("  Web:  %s\n", a.WebServer.URL())
	}
	fmt.Printf("  Log:  %s\n", paths.DaemonLog)

	// Exit on a signal or a remote `lor daemon stop`
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-a.ShutdownCh():
	}

	fmt.Println("\n⚡ shutting down...")
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	client := socket.NewClient(socket.SocketPath(root))

	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}
	if err := client.Shutdown(); err != nil {
		return err
	}
	fmt.Println("⚡ daemon stopped")
	return nil
}
