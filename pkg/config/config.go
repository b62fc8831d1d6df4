// Package config defines the configuration types of gomobiledoc.
// These types are plain data; loading and merging live in internal/configloader.
package config

import "time"

// CurrentVersion is the config schema version written by init.
const CurrentVersion = 1

// Flavor specifies the Markdown flavor used when importing Markdown.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// OutputFormat specifies what convert writes.
type OutputFormat string

const (
	FormatMobiledoc OutputFormat = "mobiledoc"
	FormatHTML      OutputFormat = "html"
	FormatText      OutputFormat = "text"
)

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatMobiledoc, FormatHTML, FormatText:
		return true
	default:
		return false
	}
}

// UnknownCardPolicy controls how cards without a definition are rendered.
type UnknownCardPolicy string

const (
	// UnknownCardsError fails rendering on an unknown card.
	UnknownCardsError UnknownCardPolicy = "error"
	// UnknownCardsPlaceholder renders unknown cards as a labelled placeholder.
	UnknownCardsPlaceholder UnknownCardPolicy = "placeholder"
)

// EditorConfig holds the editor options.
type EditorConfig struct {
	// UndoDepth bounds the undo stack. Negative disables history.
	UndoDepth int `mapstructure:"undo_depth" yaml:"undo_depth"`

	// UndoBlockTimeout groups consecutive typing into one undo step.
	UndoBlockTimeout time.Duration `mapstructure:"undo_block_timeout" yaml:"undo_block_timeout"`

	Autofocus   bool   `mapstructure:"autofocus" yaml:"autofocus"`
	Placeholder string `mapstructure:"placeholder" yaml:"placeholder,omitempty"`
}

// MarkdownConfig controls Markdown import.
type MarkdownConfig struct {
	Flavor Flavor `mapstructure:"flavor" yaml:"flavor"`

	// DetectCodeLanguage guesses the language of fenced code without an info string.
	DetectCodeLanguage bool `mapstructure:"detect_code_language" yaml:"detect_code_language"`
}

// CardsConfig controls which cards render.
type CardsConfig struct {
	// Allow limits the built-in cards that are registered. Empty allows all.
	Allow []string `mapstructure:"allow" yaml:"allow,omitempty"`

	Unknown UnknownCardPolicy `mapstructure:"unknown" yaml:"unknown"`
}

// Config is the root configuration structure.
type Config struct {
	// ConfigVersion is the schema version of the file.
	ConfigVersion int `mapstructure:"config_version" yaml:"config_version"`

	// Version is the mobiledoc version written by convert.
	Version string `mapstructure:"version" yaml:"version"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	Editor   EditorConfig   `mapstructure:"editor" yaml:"editor"`
	Markdown MarkdownConfig `mapstructure:"markdown" yaml:"markdown"`
	Cards    CardsConfig    `mapstructure:"cards" yaml:"cards"`

	// CLI-level options (not persisted to config files).

	// Format specifies the convert output format.
	Format OutputFormat `mapstructure:"-" yaml:"-"`

	// Debug forces debug logging.
	Debug bool `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		ConfigVersion: CurrentVersion,
		Version:       "0.3.2",
		LogLevel:      "warn",
		Editor: EditorConfig{
			UndoDepth:        5,
			UndoBlockTimeout: 5 * time.Second,
		},
		Markdown: MarkdownConfig{
			Flavor:             FlavorGFM,
			DetectCodeLanguage: true,
		},
		Cards: CardsConfig{
			Unknown: UnknownCardsPlaceholder,
		},
		Format: FormatMobiledoc,
	}
}

// CardAllowed reports whether the card named name may be registered.
func (c *Config) CardAllowed(name string) bool {
	if len(c.Cards.Allow) == 0 {
		return true
	}
	for _, allowed := range c.Cards.Allow {
		if allowed == name {
			return true
		}
	}
	return false
}
