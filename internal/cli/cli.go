// Package cli implements the blockvault command-line interface.
//
// This package provides commands for running the vault server, uploading and
// downloading files as encrypted blocks, verifying stored blocks, searching
// by keyword tags, and linting dependency manifests. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - serve: Run the HTTP API server
//   - upload: Seal a file into encrypted blocks and upload it
//   - download: Reassemble a stored file
//   - verify: Prove local content matches stored blocks
//   - search: Find blocks by keyword tag
//   - manifest: Parse and validate dependency manifests
//   - cache: Manage the local response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/parthk/blockvault/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/parthk/blockvault/pkg/buildinfo"
	"github.com/parthk/blockvault/pkg/cache"
	"github.com/parthk/blockvault/pkg/config"
	"github.com/parthk/blockvault/pkg/seal"
)

// appName is the application name used for directories and display.
const appName = "blockvault"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "BlockVault stores files as encrypted, verifiable blocks",
		Long:         `BlockVault splits files into fixed-size blocks, seals each block with AES-CBC and a CBC-MAC authentication tag, and stores ciphertext in an object store with searchable keyword tags. Plaintext never leaves the client.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.uploadCommand())
	root.AddCommand(c.downloadCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.manifestCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newSealer builds a sealer from the BLOCKVAULT_KEY passphrase and the
// configured salt.
func newSealer(cfg config.Config) (*seal.Sealer, error) {
	passphrase, err := config.Passphrase()
	if err != nil {
		return nil, err
	}
	return seal.NewFromPassphrase(passphrase, cfg.Seal.Salt)
}

// newLocalCache returns the CLI's file cache, or a null cache when disabled.
func newLocalCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/blockvault/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
