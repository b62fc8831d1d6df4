// Package cli provides the Cobra command structure for gomobiledoc.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomobiledoc/internal/configloader"
	"github.com/yaklabco/gomobiledoc/internal/logging"
	"github.com/yaklabco/gomobiledoc/internal/ui/pretty"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	debug      bool
	configPath string
	color      string
}

// NewRootCommand creates the root gomobiledoc command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	globals := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "gomobiledoc",
		Short: "Convert, inspect and compare mobiledoc posts",
		Long: `gomobiledoc works with mobiledoc, the JSON format for rich-text posts.

It converts Markdown, HTML and mobiledoc into any supported mobiledoc version,
rendered HTML or plain text, prints the section tree of a post and diffs two
posts section by section.

` + environmentHelp(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !pretty.IsValidColorMode(globals.color) {
				return fmt.Errorf("%w: --color must be auto, always or never, got %q", ErrInvalidUsage, globals.color)
			}
			if globals.debug {
				logging.SetLevel("debug")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&globals.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globals.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&globals.color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newConvertCommand(globals))
	rootCmd.AddCommand(newInspectCommand(globals))
	rootCmd.AddCommand(newDiffCommand(globals))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	NewHelpFormatter("auto").ApplyToCommand(rootCmd)

	return rootCmd
}

// environmentHelp lists the GOMOBILEDOC_* variables for the long help.
func environmentHelp() string {
	help := configloader.ListEnvVars()
	var b strings.Builder
	b.WriteString("Environment variables:\n")
	for _, name := range configloader.EnvVarNames() {
		fmt.Fprintf(&b, "  %-34s %s\n", name, help[name])
	}
	return strings.TrimSuffix(b.String(), "\n")
}
