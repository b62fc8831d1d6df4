package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomobiledoc/pkg/cards"
	"github.com/yaklabco/gomobiledoc/pkg/codec"
	"github.com/yaklabco/gomobiledoc/pkg/config"
	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/editor"
	"github.com/yaklabco/gomobiledoc/pkg/model"
	"github.com/yaklabco/gomobiledoc/pkg/render"
)

// formatPost renders post in the configured output format.
func formatPost(post *model.Post, cfg *config.Config, logger *log.Logger) ([]byte, error) {
	switch cfg.Format {
	case config.FormatHTML:
		out, err := renderHTML(post, cfg, logger)
		if err != nil {
			return nil, err
		}
		return []byte(out + "\n"), nil
	case config.FormatText:
		return []byte(plainText(post)), nil
	default:
		data, err := codec.Marshal(post, cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("serialize post: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// renderHTML mounts post in a throwaway editor and returns the surface markup.
func renderHTML(post *model.Post, cfg *config.Config, logger *log.Logger) (string, error) {
	opts := editor.Options{
		Post:               post,
		Cards:              allowedCards(cfg),
		UnknownAtomHandler: cards.AtomText,
		UndoDepth:          -1,
		Placeholder:        cfg.Editor.Placeholder,
		Logger:             logger,
	}
	if cfg.Cards.Unknown == config.UnknownCardsPlaceholder {
		opts.UnknownCardHandler = cards.Placeholder
	}

	doc := dom.NewDocument()
	ed, err := editor.New(doc, opts)
	if err != nil {
		return "", fmt.Errorf("create editor: %w", err)
	}
	root := doc.CreateElement("div")
	if err := ed.Render(root); err != nil {
		return "", fmt.Errorf("render post: %w", err)
	}
	defer ed.Destroy()
	return dom.InnerHTML(root), nil
}

func allowedCards(cfg *config.Config) []render.CardDefinition {
	var defs []render.CardDefinition
	for _, def := range cards.Builtin() {
		if cfg.CardAllowed(def.Name) {
			defs = append(defs, def)
		}
	}
	return defs
}

// plainText renders the text of post, one block per paragraph. Atoms show
// their value and cards a short label.
func plainText(post *model.Post) string {
	var blocks []string
	post.Sections.ForEach(func(s *model.Section, _ int) {
		switch {
		case s.IsListSection():
			var lines []string
			s.Items.ForEach(func(item *model.Section, i int) {
				bullet := "- "
				if s.TagName == model.TagOL {
					bullet = fmt.Sprintf("%d. ", i+1)
				}
				lines = append(lines, bullet+markerText(item))
			})
			blocks = append(blocks, strings.Join(lines, "\n"))
		case s.IsCardSection():
			blocks = append(blocks, cardText(s))
		case s.IsImageSection():
			blocks = append(blocks, "[image: "+s.Src+"]")
		default:
			blocks = append(blocks, markerText(s))
		}
	})
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func markerText(s *model.Section) string {
	var b strings.Builder
	s.Markers.ForEach(func(m *model.Marker, _ int) {
		b.WriteString(m.Value)
	})
	return b.String()
}

func cardText(s *model.Section) string {
	switch s.Name {
	case cards.CodeName:
		return strings.TrimSuffix(cards.PayloadString(s.Payload, cards.CodeKey), "\n")
	case cards.HRName:
		return "---"
	default:
		return "[" + s.Name + "]"
	}
}

// outline renders one line per leaf section with inline markups spelled out
// as tags. Diff compares posts through it.
func outline(post *model.Post) string {
	var b strings.Builder
	post.Sections.ForEach(func(s *model.Section, _ int) {
		switch {
		case s.IsListSection():
			s.Items.ForEach(func(item *model.Section, _ int) {
				fmt.Fprintf(&b, "%s > %s: %s\n", s.TagName, item.TagName, inlineMarkup(item))
			})
		case s.IsCardSection():
			payload, err := json.Marshal(s.Payload)
			if err != nil || s.Payload == nil {
				payload = []byte("{}")
			}
			fmt.Fprintf(&b, "card %s %s\n", s.Name, payload)
		case s.IsImageSection():
			fmt.Fprintf(&b, "img %s\n", s.Src)
		default:
			fmt.Fprintf(&b, "%s%s: %s\n", s.TagName, attributeSuffix(s), inlineMarkup(s))
		}
	})
	return b.String()
}

func inlineMarkup(s *model.Section) string {
	var b strings.Builder
	s.Markers.ForEach(func(m *model.Marker, _ int) {
		for _, markup := range m.Markups {
			b.WriteString("<" + markup.TagName)
			pairs := markup.AttributePairs()
			for i := 0; i+1 < len(pairs); i += 2 {
				fmt.Fprintf(&b, " %s=%q", pairs[i], pairs[i+1])
			}
			b.WriteString(">")
		}
		if m.IsAtom() {
			fmt.Fprintf(&b, "<atom:%s %q>", m.Name, m.Value)
		} else {
			b.WriteString(m.Value)
		}
		for i := len(m.Markups) - 1; i >= 0; i-- {
			b.WriteString("</" + m.Markups[i].TagName + ">")
		}
	})
	return b.String()
}

func attributeSuffix(s *model.Section) string {
	if len(s.Attributes) == 0 {
		return ""
	}
	data, err := json.Marshal(s.Attributes)
	if err != nil {
		return ""
	}
	return " " + string(data)
}
