package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/gomobiledoc/pkg/config"
)

const envVarPrefix = "GOMOBILEDOC_"

// envVar binds GOMOBILEDOC_<suffix> to one config field.
type envVar struct {
	suffix string
	field  string
	help   string
	set    func(cfg *config.Config, raw string) error
}

func stringVar(fn func(*config.Config, string)) func(*config.Config, string) error {
	return func(cfg *config.Config, raw string) error {
		fn(cfg, raw)
		return nil
	}
}

func boolVar(fn func(*config.Config, bool)) func(*config.Config, string) error {
	return func(cfg *config.Config, raw string) error {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("want true or false, got %q", raw)
		}
		fn(cfg, v)
		return nil
	}
}

func intVar(fn func(*config.Config, int)) func(*config.Config, string) error {
	return func(cfg *config.Config, raw string) error {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("want an integer, got %q", raw)
		}
		fn(cfg, v)
		return nil
	}
}

func durationVar(fn func(*config.Config, time.Duration)) func(*config.Config, string) error {
	return func(cfg *config.Config, raw string) error {
		v, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("want a duration such as 5s, got %q", raw)
		}
		fn(cfg, v)
		return nil
	}
}

// listVar splits on commas and drops empty elements.
func listVar(fn func(*config.Config, []string)) func(*config.Config, string) error {
	return func(cfg *config.Config, raw string) error {
		var items []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		fn(cfg, items)
		return nil
	}
}

//nolint:gochecknoglobals // Read-only lookup table.
var envVars = []envVar{
	{"VERSION", "version", "Mobiledoc version written by convert",
		stringVar(func(c *config.Config, v string) { c.Version = v })},
	{"LOG_LEVEL", "log_level", "Log level: debug, info, warn or error",
		stringVar(func(c *config.Config, v string) { c.LogLevel = v })},
	{"FORMAT", "format", "Convert output format: mobiledoc, html or text",
		stringVar(func(c *config.Config, v string) { c.Format = config.OutputFormat(v) })},
	{"UNDO_DEPTH", "editor.undo_depth", "Number of undo steps kept",
		intVar(func(c *config.Config, v int) { c.Editor.UndoDepth = v })},
	{"UNDO_BLOCK_TIMEOUT", "editor.undo_block_timeout", "Undo grouping window, e.g. 5s",
		durationVar(func(c *config.Config, v time.Duration) { c.Editor.UndoBlockTimeout = v })},
	{"AUTOFOCUS", "editor.autofocus", "Place the cursor on render: true or false",
		boolVar(func(c *config.Config, v bool) { c.Editor.Autofocus = v })},
	{"MARKDOWN_FLAVOR", "markdown.flavor", "Markdown flavor: commonmark or gfm",
		stringVar(func(c *config.Config, v string) { c.Markdown.Flavor = config.Flavor(v) })},
	{"DETECT_CODE_LANGUAGE", "markdown.detect_code_language", "Guess fenced code languages: true or false",
		boolVar(func(c *config.Config, v bool) { c.Markdown.DetectCodeLanguage = v })},
	{"CARDS_ALLOW", "cards.allow", "Comma-separated list of cards to register",
		listVar(func(c *config.Config, v []string) { c.Cards.Allow = v })},
	{"CARDS_UNKNOWN", "cards.unknown", "Unknown card handling: error or placeholder",
		stringVar(func(c *config.Config, v string) { c.Cards.Unknown = config.UnknownCardPolicy(v) })},
}

// LoadFromEnv overrides fields of cfg from set GOMOBILEDOC_* variables.
// Empty variables are ignored.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	for _, v := range envVars {
		name := envVarPrefix + v.suffix
		raw := os.Getenv(name)
		if raw == "" {
			continue
		}
		if err := v.set(cfg, raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// GetEnvVarName returns the variable that sets field, or "".
func GetEnvVarName(field string) string {
	for _, v := range envVars {
		if v.field == field {
			return envVarPrefix + v.suffix
		}
	}
	return ""
}

// ListEnvVars maps every supported variable to its description.
func ListEnvVars() map[string]string {
	out := make(map[string]string, len(envVars))
	for _, v := range envVars {
		out[envVarPrefix+v.suffix] = v.help
	}
	return out
}

// EnvVarNames returns the supported variables in sorted order.
func EnvVarNames() []string {
	names := make([]string, 0, len(envVars))
	for _, v := range envVars {
		names = append(names, envVarPrefix+v.suffix)
	}
	sort.Strings(names)
	return names
}
