package configloader

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gomobiledoc/pkg/cards"
	"github.com/yaklabco/gomobiledoc/pkg/config"
)

// cardAliases maps alternative card names found in other editors' documents
// to the names of the built-in cards.
//
//nolint:gochecknoglobals // Read-only lookup table.
var cardAliases = map[string]string{
	"horizontal-rule": cards.HRName,
	"horizontalrule":  cards.HRName,
	"divider":         cards.HRName,
	"separator":       cards.HRName,
	"codeblock":       cards.CodeName,
	"code-block":      cards.CodeName,
	"code_block":      cards.CodeName,
	"pre":             cards.CodeName,
}

// canonicalCardName resolves an alias to its card name. Matching is
// case-insensitive; unknown names are returned lowercased.
func canonicalCardName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := cardAliases[lower]; ok {
		return canonical
	}
	return lower
}

// normalizeCardNames rewrites cards.allow to canonical names and removes
// duplicates, recording a warning for each one dropped.
func normalizeCardNames(cfg *config.Config, result *LoadResult) {
	if len(cfg.Cards.Allow) == 0 {
		return
	}

	seen := make(map[string]string, len(cfg.Cards.Allow))
	normalized := make([]string, 0, len(cfg.Cards.Allow))
	for _, name := range cfg.Cards.Allow {
		canonical := canonicalCardName(name)
		if first, dup := seen[canonical]; dup {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("cards.allow: %q duplicates %q (both name card %q)", name, first, canonical))
			continue
		}
		seen[canonical] = name
		normalized = append(normalized, canonical)
	}
	cfg.Cards.Allow = normalized
}

// GetCardAliases returns a copy of the alias table.
func GetCardAliases() map[string]string {
	out := make(map[string]string, len(cardAliases))
	for alias, name := range cardAliases {
		out[alias] = name
	}
	return out
}
