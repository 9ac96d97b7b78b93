package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// downloadCommand creates the download command.
func (c *CLI) downloadCommand() *cobra.Command {
	var (
		serverURL string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "download <file-id>",
		Short: "Download and reassemble a stored file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileID := args[0]
			logger := loggerFromContext(cmd.Context())

			vc, err := newVaultClient(serverURL, 0, 0)
			if err != nil {
				return err
			}

			// Resolve the original name when no output path is given.
			path := output
			if path == "" {
				info, err := vc.Info(cmd.Context(), fileID)
				if err != nil {
					return err
				}
				path = info.Metadata.Name
				if path == "" {
					path = fileID
				}
			}

			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()

			spinner := newSpinnerWithContext(cmd.Context(), "downloading "+fileID)
			spinner.Start()
			track := newProgress(logger)
			n, err := vc.Download(cmd.Context(), fileID, f)
			if err != nil {
				spinner.StopWithError("Download failed")
				os.Remove(path)
				return err
			}
			spinner.Stop()

			track.done("Download complete")
			printSuccess("Downloaded %d bytes", n)
			printFile(path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "vault server URL")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (defaults to the stored name)")

	return cmd
}
