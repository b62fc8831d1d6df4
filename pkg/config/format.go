package config

import (
	"fmt"
	"strings"
)

// ParseFormat resolves a convert output format name. The empty name means mobiledoc.
func ParseFormat(name string) (OutputFormat, error) {
	if name == "" {
		return FormatMobiledoc, nil
	}
	format := OutputFormat(strings.ToLower(name))
	if !format.IsValid() {
		return "", fmt.Errorf("unknown output format %q; must be one of: mobiledoc, html, text", name)
	}
	return format, nil
}
