package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/parthk/blockvault/pkg/client"
	"github.com/parthk/blockvault/pkg/config"
)

// uploadCommand creates the upload command.
func (c *CLI) uploadCommand() *cobra.Command {
	var (
		serverURL string
		blockSize int
		workers   int
		plain     bool
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Seal a file into encrypted blocks and upload it",
		Long: `Upload splits the file into fixed-size blocks, encrypts each block
locally with the vault key, and uploads only ciphertext plus verification
metadata. Blocks upload concurrently; the file ID printed at the end is
needed for download, info, and verify.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			logger := loggerFromContext(cmd.Context())

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			vc, err := newVaultClient(serverURL, blockSize, workers)
			if err != nil {
				return err
			}

			track := newProgress(logger)
			progressFn, finish := uploadProgress(plain)
			result, err := vc.Upload(cmd.Context(), filepath.Base(path), f, progressFn)
			finish(err == nil)
			if err != nil {
				return err
			}

			track.done("Upload complete")
			printSuccess("Uploaded %s (%d blocks, %d bytes)", filepath.Base(path), len(result.BlockIDs), result.Bytes)
			printKeyValue("file id", result.FileID)
			printDetail("verify with: %s verify %s %s", appName, result.FileID, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "vault server URL")
	cmd.Flags().IntVar(&blockSize, "block-size", 0, "block size in bytes (default 1 MiB)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent block uploads")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable the progress bar")

	return cmd
}

// newVaultClient builds a client from flags and the environment passphrase.
func newVaultClient(serverURL string, blockSize, workers int) (*client.Client, error) {
	cfg := config.Default()
	sealer, err := newSealer(cfg)
	if err != nil {
		return nil, err
	}
	return client.New(serverURL, sealer, client.Options{
		BlockSize: blockSize,
		Workers:   workers,
	}), nil
}
