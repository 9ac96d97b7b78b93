package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// verifyCommand creates the verify command.
func (c *CLI) verifyCommand() *cobra.Command {
	var (
		serverURL string
		blockSize int
		blockIDs  []string
	)

	cmd := &cobra.Command{
		Use:   "verify <file-id> <file>",
		Short: "Prove local content matches the stored blocks",
		Long: `Verify fetches auth tags and digests from the server, recomputes the
CBC-MAC over the local file's blocks with the vault key, and compares in
constant time. Nothing is downloaded; a mismatch means the local file and
the stored blocks have diverged.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileID, path := args[0], args[1]

			vc, err := newVaultClient(serverURL, blockSize, 0)
			if err != nil {
				return err
			}

			ids := blockIDs
			if len(ids) == 0 {
				// Default to every block of the file, in index order.
				blocks, err := vc.Blocks(cmd.Context(), fileID)
				if err != nil {
					return err
				}
				for _, b := range blocks {
					ids = append(ids, b.BlockID)
				}
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			spinner := newSpinnerWithContext(cmd.Context(), "verifying "+strings.TrimSpace(path))
			spinner.Start()
			err = vc.VerifyReader(cmd.Context(), fileID, ids, f)
			if err != nil {
				spinner.StopWithError("Verification failed")
				return err
			}

			spinner.StopWithSuccess("All blocks verified")
			printDetail("%d blocks match their stored tags", len(ids))
			return nil
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "vault server URL")
	cmd.Flags().IntVar(&blockSize, "block-size", 0, "block size used at upload time")
	cmd.Flags().StringSliceVar(&blockIDs, "blocks", nil, "verify only these block IDs")

	return cmd
}
