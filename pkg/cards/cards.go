// Package cards holds the built-in card definitions used by the importers and the
// CLI: fenced code, horizontal rules and a placeholder for unknown cards.
package cards

import (
	"fmt"

	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/render"
)

// Card names.
const (
	CodeName = "code"
	HRName   = "hr"
)

// Payload keys of the code card.
const (
	CodeKey     = "code"
	LanguageKey = "language"
)

// Code renders a code card as pre > code, tagging the language as a class.
func Code() render.CardDefinition {
	return render.CardDefinition{
		Name: CodeName,
		Type: render.TypeDOM,
		Render: func(env render.CardEnv) (*dom.Node, error) {
			pre := env.Document.CreateElement("pre")
			code := env.Document.CreateElement("code")
			if lang := PayloadString(env.Payload, LanguageKey); lang != "" {
				code.SetAttribute("class", "language-"+lang)
			}
			code.AppendChild(env.Document.CreateText(PayloadString(env.Payload, CodeKey)))
			pre.AppendChild(code)
			return pre, nil
		},
	}
}

// HR renders a horizontal rule.
func HR() render.CardDefinition {
	return render.CardDefinition{
		Name: HRName,
		Type: render.TypeDOM,
		Render: func(env render.CardEnv) (*dom.Node, error) {
			return env.Document.CreateElement("hr"), nil
		},
	}
}

// Builtin returns every built-in definition.
func Builtin() []render.CardDefinition {
	return []render.CardDefinition{Code(), HR()}
}

// Placeholder renders unknown cards as an inert labelled box.
func Placeholder(env render.CardEnv) (*dom.Node, error) {
	div := env.Document.CreateElement("div")
	div.SetAttribute("class", "__mobiledoc-card-placeholder")
	div.SetAttribute("data-card-name", env.Name)
	div.AppendChild(env.Document.CreateText(fmt.Sprintf("[%s card]", env.Name)))
	return div, nil
}

// AtomText renders atoms without a definition as their text value.
func AtomText(env render.AtomEnv) (*dom.Node, error) {
	span := env.Document.CreateElement("span")
	span.SetAttribute("data-atom-name", env.Name)
	span.AppendChild(env.Document.CreateText(env.Value))
	return span, nil
}

// PayloadString reads a string value from a card payload.
func PayloadString(payload map[string]any, key string) string {
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}
