package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parthk/blockvault/pkg/errors"
	"github.com/parthk/blockvault/pkg/manifest"
)

// manifestCommand creates the manifest command group.
func (c *CLI) manifestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Work with dependency manifests",
	}

	cmd.AddCommand(c.manifestLintCommand())

	return cmd
}

// manifestLintCommand creates the "manifest lint" subcommand.
func (c *CLI) manifestLintCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "lint <file>",
		Short: "Parse and validate a requirements-style manifest",
		Long: `Lint parses a line-oriented dependency manifest (requirements.txt
grammar: package name plus optional version comparator, # comments,
duplicates permitted) and reports every line that does not match the
grammar. The exit code is non-zero when violations are found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.ParseFile(args[0])
			if err != nil {
				return err
			}

			if !quiet {
				printEntries(m)
			}

			if dupes := m.Duplicates(); len(dupes) > 0 {
				printWarning("%d duplicated packages (allowed, kept in file order)", len(dupes))
				for _, name := range dupes {
					printDetail("%s", name)
				}
			}

			if len(m.Skipped) > 0 && !quiet {
				printInfo("%d lines skipped (options, URLs)", len(m.Skipped))
			}

			if !m.Valid() {
				printError("%d grammar violations", len(m.Violations))
				for _, v := range m.Violations {
					printDetail("line %d: %s (%s)", v.Line, v.Text, v.Err)
				}
				return errors.New(errors.ErrCodeInvalidManifest,
					"%s has %d invalid lines", args[0], len(m.Violations))
			}

			printSuccess("%d entries, no violations", len(m.Entries))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report problems")

	return cmd
}

func printEntries(m *manifest.Manifest) {
	for _, e := range m.Entries {
		version := StyleDim.Render("any version")
		if e.Op != "" {
			version = StyleValue.Render(e.Op + " " + e.Version)
		}
		fmt.Printf("  %s %s\n", StyleHighlight.Render(e.Name), version)
	}
}
