package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomobiledoc/internal/ui/pretty"
	"github.com/yaklabco/gomobiledoc/pkg/fsutil"
)

type inspectFlags struct {
	from  string
	stats bool
}

func newInspectCommand(globals *globalOptions) *cobra.Command {
	flags := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "Print the section tree of a post",
		Long: `Parse a post and print its sections, list items and markers as a tree, with the
markups and atoms of each marker. With --stats a table of counts follows.

Examples:
  gomobiledoc inspect post.json
  gomobiledoc inspect README.md --stats`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := fsutil.StdioPath
			if len(args) == 1 {
				input = args[0]
			}
			return runInspect(cmd, globals, flags, input)
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "auto", "input format: auto, mobiledoc, markdown, html")
	cmd.Flags().BoolVar(&flags.stats, "stats", false, "print section, marker and tag counts")

	return cmd
}

func runInspect(cmd *cobra.Command, globals *globalOptions, flags *inspectFlags, input string) error {
	from, err := parseInputFormat(flags.from)
	if err != nil {
		return err
	}
	cfg, err := globals.loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	post, err := readPost(commandContext(cmd), cfg, input, from, cmd.InOrStdin())
	if err != nil {
		return err
	}

	styles := globals.styles(cmd)
	out := cmd.OutOrStdout()
	if _, err := io.WriteString(out, styles.FormatPost(displayName(input), post)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if flags.stats {
		if _, err := io.WriteString(out, "\n"+styles.FormatStats(pretty.CollectStats(post))); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}
