package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "info <file-id>",
		Short: "Show a stored file's metadata and block URLs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vc, err := newVaultClient(serverURL, 0, 0)
			if err != nil {
				return err
			}

			info, err := vc.Info(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(info.Metadata.Name))
			printKeyValue("file id", info.FileID)
			printKeyValue("mime type", info.Metadata.MIMEType)
			printKeyValue("size", strconv.FormatInt(info.Metadata.Size, 10)+" bytes")
			printKeyValue("blocks", strconv.Itoa(info.Metadata.BlockCount))
			printKeyValue("created", info.Metadata.CreatedAt.Format("2006-01-02 15:04:05"))
			printNewline()
			for _, u := range info.URLs {
				printFile(u)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "vault server URL")

	return cmd
}
