package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomobiledoc/internal/logging"
	"github.com/yaklabco/gomobiledoc/pkg/codec"
	"github.com/yaklabco/gomobiledoc/pkg/config"
	"github.com/yaklabco/gomobiledoc/pkg/fsutil"
)

type convertFlags struct {
	from    string
	to      string
	version string
	flavor  string
	output  string
	backup  bool
}

func newConvertCommand(globals *globalOptions) *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert [input]",
		Short: "Convert a post between mobiledoc, Markdown, HTML and text",
		Long: `Read a post from a file (or stdin when the input is omitted or "-") and write
it as mobiledoc JSON, rendered HTML or plain text.

The input format is taken from the file extension or sniffed from the content
unless --from is given. Mobiledoc output defaults to version 0.3.2; earlier
versions drop features they cannot express.

Examples:
  gomobiledoc convert post.md                        Markdown to mobiledoc on stdout
  gomobiledoc convert post.json --to html            Render a post as HTML
  gomobiledoc convert post.json --mobiledoc-version 0.2.0 -o old.json
  cat page.html | gomobiledoc convert --to text      Extract the text of an HTML page`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := fsutil.StdioPath
			if len(args) == 1 {
				input = args[0]
			}
			return runConvert(cmd, globals, flags, input)
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "auto", "input format: auto, mobiledoc, markdown, html")
	cmd.Flags().StringVar(&flags.to, "to", "", "output format: mobiledoc, html, text (default from config)")
	cmd.Flags().StringVar(&flags.version, "mobiledoc-version", "", "mobiledoc version to write: 0.2.0, 0.3.0, 0.3.1, 0.3.2")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "", "Markdown flavor of the input: commonmark, gfm")
	cmd.Flags().StringVarP(&flags.output, "output", "o", fsutil.StdioPath, "output file path (\"-\" for stdout)")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep a .bak copy of an overwritten output file")

	return cmd
}

func (f *convertFlags) overrides() (*config.Config, error) {
	overrides := &config.Config{
		Version:  f.version,
		Markdown: config.MarkdownConfig{Flavor: config.Flavor(f.flavor)},
	}
	if f.version != "" && !codec.IsSupported(f.version) {
		return nil, fmt.Errorf("%w: unsupported mobiledoc version %q", ErrInvalidUsage, f.version)
	}
	if f.to != "" {
		format, err := config.ParseFormat(f.to)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidUsage, err)
		}
		overrides.Format = format
	}
	return overrides, nil
}

func runConvert(cmd *cobra.Command, globals *globalOptions, flags *convertFlags, input string) error {
	from, err := parseInputFormat(flags.from)
	if err != nil {
		return err
	}
	overrides, err := flags.overrides()
	if err != nil {
		return err
	}
	cfg, err := globals.loadConfig(cmd, overrides)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	post, err := readPost(ctx, cfg, input, from, cmd.InOrStdin())
	if err != nil {
		return err
	}

	out, err := formatPost(post, cfg, logger)
	if err != nil {
		return err
	}

	if flags.output == fsutil.StdioPath {
		if _, err := cmd.OutOrStdout().Write(out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	if flags.backup {
		if _, err := fsutil.CreateBackup(ctx, flags.output); err != nil {
			return err
		}
	}
	written, err := fsutil.WriteIfChanged(ctx, flags.output, out, fsutil.DefaultFileMode)
	if err != nil {
		return fmt.Errorf("write %s: %w", flags.output, err)
	}

	logger.Debug("converted post",
		logging.FieldInput, displayName(input),
		logging.FieldOutput, flags.output,
		logging.FieldFormat, cfg.Format,
		logging.FieldVersion, cfg.Version,
		"written", written,
	)
	return nil
}
