package app

import (
	"os"
	"path/filepath"

	"github.com/corey/lor/internal/domain/status"
)

// Paths holds all resolved filesystem paths for the .lor/ project directory.
type Paths struct {
	Root   string // .lor/
	DB     string // .lor/lor.db
	Config string // .lor/config.yaml
	Status string // .lor/status.json

	LogDir    string // .lor/log/
	DaemonLog string // .lor/log/daemon.log

	RunDir   string // .lor/run/
	PIDFile  string // .lor/run/daemon.pid
	PortFile string // .lor/run/http.port

	ExportDir string // .lor/export/
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".lor")
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "lor.db"),
		Config: filepath.Join(root, "config.yaml"),
		Status: filepath.Join(root, status.StatusFile),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		RunDir:   filepath.Join(root, "run"),
		PIDFile:  filepath.Join(root, "run", "daemon.pid"),
		PortFile: filepath.Join(root, "run", "http.port"),

		ExportDir: filepath.Join(root, "export"),
	}
}

// EnsureDirs creates all subdirectories under .lor/. Idempotent.
// The export dir is created by the exporter's swap.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// Migrate moves runtime files left directly under .lor/ by early builds into
// log/ and run/. Returns the number of files moved. Idempotent: skips if the
// source is missing or the destination already exists.
func (p *Paths) Migrate() (int, error) {
	moves := []struct {
		oldName string
		newPath string
	}{
		{"daemon.log", p.DaemonLog},
		{"daemon.pid", p.PIDFile},
		{"http.port", p.PortFile},
	}

	count := 0
	for _, m := range moves {
		oldPath := filepath.Join(p.Root, m.oldName)
		if _, err := os.Stat(oldPath); err != nil {
			continue
		}
		if _, err := os.Stat(m.newPath); err == nil {
			continue
		}
		if err := os.Rename(oldPath, m.newPath); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// CleanEphemeral removes ephemeral runtime files (PID file and port file).
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.PortFile)
}
