package cli

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gomobiledoc/internal/ui/pretty"
)

// HelpStyles contains Lipgloss styles for command help formatting.
type HelpStyles struct {
	Command     lipgloss.Style
	Heading     lipgloss.Style
	Subcommand  lipgloss.Style
	Flag        lipgloss.Style
	Description lipgloss.Style
	Example     lipgloss.Style
	Dim         lipgloss.Style
}

// NewHelpStyles creates help styles based on color mode.
func NewHelpStyles(colorEnabled bool) *HelpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &HelpStyles{
			Command: plain, Heading: plain, Subcommand: plain, Flag: plain,
			Description: plain, Example: plain, Dim: plain,
		}
	}
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return &HelpStyles{
		Command:     fg("14").Bold(true),
		Heading:     fg("11").Bold(true),
		Subcommand:  fg("10"),
		Flag:        fg("12"),
		Description: lipgloss.NewStyle(),
		Example:     fg("8"),
		Dim:         fg("8"),
	}
}

// HelpFormatter provides styled help output for Cobra commands.
type HelpFormatter struct {
	defaultMode string
}

// NewHelpFormatter creates a help formatter. The --color flag of the command
// being helped overrides colorMode once flags are parsed.
func NewHelpFormatter(colorMode string) *HelpFormatter {
	return &HelpFormatter{defaultMode: colorMode}
}

func (h *HelpFormatter) stylesFor(cmd *cobra.Command) *HelpStyles {
	mode := h.defaultMode
	if flag := cmd.Flags().Lookup("color"); flag != nil && flag.Changed {
		mode = flag.Value.String()
	}
	return NewHelpStyles(pretty.IsColorEnabled(mode, cmd.OutOrStdout()))
}

func (h *HelpFormatter) funcs(styles *HelpStyles) template.FuncMap {
	return template.FuncMap{
		"command":     styles.Command.Render,
		"heading":     styles.Heading.Render,
		"subcommand":  styles.Subcommand.Render,
		"description": styles.Description.Render,
		"example":     styles.Example.Render,
		"dim":         styles.Dim.Render,
		"flags": func(set interface{ FlagUsages() string }) string {
			return styleFlagUsages(styles, set.FlagUsages())
		},
		"rpad": rpad,
		"join": strings.Join,
		"trim": trimTrailingWhitespaces,
	}
}

const usageTemplate = `{{ heading "Usage:" }}
{{- if .Runnable}}
  {{ command .UseLine }}{{end}}
{{- if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}

{{- if gt (len .Aliases) 0}}

{{ heading "Aliases:" }}
  {{ dim (join .Aliases ", ") }}
{{- end}}

{{- if .HasExample}}

{{ heading "Examples:" }}
{{ example .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ description .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{with (or .Long .Short)}}{{ trim . }}

{{end}}` + usageTemplate

// ApplyToCommand installs the styled help and usage functions on cmd. Cobra
// hands them down to every subcommand.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	execute := func(name, text string, command *cobra.Command) error {
		tmpl, err := template.New(name).Funcs(h.funcs(h.stylesFor(command))).Parse(text)
		if err != nil {
			return fmt.Errorf("parse %s template: %w", name, err)
		}
		return tmpl.Execute(command.OutOrStdout(), command)
	}

	cmd.SetUsageFunc(func(command *cobra.Command) error {
		return execute("usage", usageTemplate, command)
	})
	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		if err := execute("help", helpTemplate, command); err != nil {
			command.PrintErrln(err)
		}
	})
}

// styleFlagUsages colors the flag names of pflag's usage block and dims the
// value type. Descriptions are left alone.
func styleFlagUsages(styles *HelpStyles, usages string) string {
	lines := strings.Split(strings.TrimSuffix(usages, "\n"), "\n")
	for i, line := range lines {
		flagPart, desc, ok := splitFlagLine(line)
		if !ok {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		tokens := strings.Fields(flagPart)
		for j, token := range tokens {
			if strings.HasPrefix(token, "-") {
				name := strings.TrimSuffix(token, ",")
				tokens[j] = styles.Flag.Render(name) + token[len(name):]
			} else {
				tokens[j] = styles.Dim.Render(token)
			}
		}
		lines[i] = indent + strings.Join(tokens, " ") + "   " + styles.Description.Render(desc)
	}
	return strings.Join(lines, "\n")
}

// splitFlagLine splits "  -o, --output string   Output path" at the first run
// of two or more spaces after the flag names.
func splitFlagLine(line string) (string, string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	idx := strings.Index(trimmed, "  ")
	if trimmed == "" || idx < 0 {
		return "", "", false
	}
	desc := strings.TrimLeft(trimmed[idx:], " ")
	if desc == "" {
		return "", "", false
	}
	return trimmed[:idx], desc, true
}

func rpad(s string, padding int) string {
	if len(s) >= padding {
		return s
	}
	return s + strings.Repeat(" ", padding-len(s))
}

func trimTrailingWhitespaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
