package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every option and lists the known cards.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string

	// Cards describes the cards offered in the allow list.
	Cards []CardInfo
}

// CardInfo describes a card for template generation.
type CardInfo struct {
	Name        string
	Description string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	var content []byte
	if opts.Full {
		content = generateFullTemplate(opts)
	} else {
		content = generateMinimalTemplate()
	}
	if opts.Format == "json" {
		return templateToJSON(content)
	}
	return content, nil
}

func generateMinimalTemplate() []byte {
	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	fmt.Fprintf(&buf, `

config_version: %d

# Mobiledoc version written by convert: 0.2.0, 0.3.0, 0.3.1 or 0.3.2
version: 0.3.2

markdown:
  flavor: gfm
  detect_code_language: true

# editor:
#   undo_depth: 5
#   undo_block_timeout: 5s
`, CurrentVersion)
	return buf.Bytes()
}

func generateFullTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	fmt.Fprintf(&buf, `
#
# This template documents every option with its default value.

config_version: %d

# Mobiledoc version written by convert: 0.2.0, 0.3.0, 0.3.1 or 0.3.2
version: 0.3.2

# Log level: debug, info, warn or error
log_level: warn

editor:
  # Number of undo steps kept (negative disables history)
  undo_depth: 5
  # Consecutive typing within this window is one undo step
  undo_block_timeout: 5s
  # Place the cursor at the head of the post on render
  autofocus: false
  # placeholder: "Write something"

markdown:
  # Markdown flavor: commonmark or gfm
  flavor: gfm
  # Guess the language of fenced code blocks without an info string
  detect_code_language: true

cards:
  # What to render for cards without a definition: error or placeholder
  unknown: placeholder
`, CurrentVersion)

	cards := append([]CardInfo(nil), opts.Cards...)
	sort.Slice(cards, func(i, j int) bool { return cards[i].Name < cards[j].Name })
	if len(cards) > 0 {
		buf.WriteString("  # Cards to register (empty registers all)\n")
		buf.WriteString("  allow:\n")
		for _, card := range cards {
			if card.Description != "" {
				fmt.Fprintf(&buf, "    # %s\n", wrapComment(card.Description, commentWrapWidth))
			}
			fmt.Fprintf(&buf, "    - %s\n", card.Name)
		}
	}
	return buf.Bytes()
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	currentLine := ""
	for _, word := range strings.Fields(text) {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n    # ")
}

// templateToJSON converts a YAML template to JSON. Comments are lost.
func templateToJSON(yamlContent []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(yamlContent, &doc); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(jsonBytes, '\n'), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# gomobiledoc configuration
# See: https://github.com/yaklabco/gomobiledoc`
}
