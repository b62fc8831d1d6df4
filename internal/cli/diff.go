package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomobiledoc/pkg/textdiff"
)

type diffFlags struct {
	from    string
	context int
}

func newDiffCommand(globals *globalOptions) *cobra.Command {
	flags := &diffFlags{}

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two posts section by section",
		Long: `Parse two posts and print a unified diff of their outlines. The outline has one
line per section or list item with markups spelled out as tags, so differences
in formatting show up as well as differences in text. The posts may be in
different formats.

Exits with status 1 when the posts differ.

Examples:
  gomobiledoc diff draft.json published.json
  gomobiledoc diff post.md post.json --context 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, globals, flags, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "auto", "input format of both posts: auto, mobiledoc, markdown, html")
	cmd.Flags().IntVarP(&flags.context, "context", "U", textdiff.DefaultContext, "number of unchanged lines around each change")

	return cmd
}

func runDiff(cmd *cobra.Command, globals *globalOptions, flags *diffFlags, oldPath, newPath string) error {
	from, err := parseInputFormat(flags.from)
	if err != nil {
		return err
	}
	if flags.context < 0 {
		return fmt.Errorf("%w: --context must be >= 0", ErrInvalidUsage)
	}
	cfg, err := globals.loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	oldPost, err := readPost(ctx, cfg, oldPath, from, cmd.InOrStdin())
	if err != nil {
		return err
	}
	newPost, err := readPost(ctx, cfg, newPath, from, cmd.InOrStdin())
	if err != nil {
		return err
	}

	d := textdiff.Compare(displayName(oldPath), outline(oldPost), displayName(newPath), outline(newPost), flags.context)
	if _, err := io.WriteString(cmd.OutOrStdout(), globals.styles(cmd).FormatDiff(d)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if d.HasChanges() {
		return ErrDifferencesFound
	}
	return nil
}
