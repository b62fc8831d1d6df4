package configloader

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gomobiledoc/pkg/cards"
	"github.com/yaklabco/gomobiledoc/pkg/codec"
	"github.com/yaklabco/gomobiledoc/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "editor.undo_block_timeout").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., unknown card names).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownFlavors = map[config.Flavor]bool{
	config.FlavorCommonMark: true,
	config.FlavorGFM:        true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownPolicies = map[config.UnknownCardPolicy]bool{
	config.UnknownCardsError:       true,
	config.UnknownCardsPlaceholder: true,
}

// Validate checks a configuration for errors and warnings. Zero values are
// accepted so that partial file layers validate on their own.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.ConfigVersion > config.CurrentVersion {
		result.fail("config_version", cfg.ConfigVersion,
			fmt.Sprintf("config_version %d is newer than supported version %d", cfg.ConfigVersion, config.CurrentVersion))
	}
	if cfg.Version != "" && !codec.IsSupported(cfg.Version) {
		result.fail("version", cfg.Version,
			fmt.Sprintf("unsupported mobiledoc version %q; must be one of: 0.2.0, 0.3.0, 0.3.1, 0.3.2", cfg.Version))
	}
	if cfg.LogLevel != "" && !knownLogLevels[cfg.LogLevel] {
		result.fail("log_level", cfg.LogLevel,
			fmt.Sprintf("invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.fail("format", cfg.Format,
			fmt.Sprintf("invalid format %q; must be one of: mobiledoc, html, text", cfg.Format))
	}
	if cfg.Editor.UndoBlockTimeout < 0 {
		result.fail("editor.undo_block_timeout", cfg.Editor.UndoBlockTimeout, "undo_block_timeout must be >= 0")
	}
	if cfg.Markdown.Flavor != "" && !knownFlavors[cfg.Markdown.Flavor] {
		result.fail("markdown.flavor", cfg.Markdown.Flavor,
			fmt.Sprintf("invalid flavor %q; must be one of: commonmark, gfm", cfg.Markdown.Flavor))
	}
	if cfg.Cards.Unknown != "" && !knownPolicies[cfg.Cards.Unknown] {
		result.fail("cards.unknown", cfg.Cards.Unknown,
			fmt.Sprintf("invalid policy %q; must be one of: error, placeholder", cfg.Cards.Unknown))
	}

	validateCards(cfg, result)

	return result
}

func validateCards(cfg *config.Config, result *ValidationResult) {
	known := make(map[string]bool)
	for _, def := range cards.Builtin() {
		known[def.Name] = true
	}
	for i, name := range cfg.Cards.Allow {
		if known[canonicalCardName(name)] {
			continue
		}
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   fmt.Sprintf("cards.allow[%d]", i),
			Value:   name,
			Message: fmt.Sprintf("unknown card %q; it will be ignored", name),
		})
	}
}

func (r *ValidationResult) fail(field string, value any, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: message})
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidFlavor returns true if the flavor is valid.
func IsValidFlavor(f config.Flavor) bool {
	return knownFlavors[f]
}

// IsValidLogLevel returns true if the level is one of debug, info, warn or error.
func IsValidLogLevel(level string) bool {
	return knownLogLevels[level]
}
