package pretty

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// maxTextWidth bounds the quoted text of a marker in the tree.
const maxTextWidth = 48

// FormatPost renders post as a tree: sections, list items and their markers
// with markups and atoms.
func (s *Styles) FormatPost(title string, post *model.Post) string {
	root := s.node(s.Bold.Render(title))

	post.Sections.ForEach(func(section *model.Section, _ int) {
		root.Child(s.sectionNode(section))
	})
	return root.String() + "\n"
}

func (s *Styles) node(label string) *tree.Tree {
	return tree.Root(label).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(s.Guide)
}

func (s *Styles) sectionNode(section *model.Section) any {
	switch {
	case section.IsCardSection():
		label := s.Card.Render("card " + section.Name)
		if len(section.Payload) > 0 {
			label += " " + s.Dim.Render(payloadSummary(section.Payload))
		}
		return label
	case section.IsImageSection():
		return s.Section.Render("img") + " " + s.Dim.Render(section.Src)
	case section.IsListSection():
		node := s.node(s.Section.Render(section.TagName))
		section.Items.ForEach(func(item *model.Section, _ int) {
			node.Child(s.markerableNode(item))
		})
		return node
	default:
		return s.markerableNode(section)
	}
}

func (s *Styles) markerableNode(section *model.Section) any {
	label := s.Section.Render(section.TagName)
	if len(section.Attributes) > 0 {
		label += " " + s.Dim.Render(attributeSummary(section.Attributes))
	}
	if section.Markers.IsEmpty() {
		return label + " " + s.Dim.Render("(blank)")
	}
	node := s.node(label)
	section.Markers.ForEach(func(marker *model.Marker, _ int) {
		node.Child(s.markerLabel(marker))
	})
	return node
}

func (s *Styles) markerLabel(marker *model.Marker) string {
	var b strings.Builder
	if marker.IsAtom() {
		b.WriteString(s.Atom.Render("atom " + marker.Name))
		if marker.Value != "" {
			b.WriteString(" " + s.Text.Render(quote(marker.Value)))
		}
	} else {
		b.WriteString(s.Text.Render(quote(marker.Value)))
	}
	for _, markup := range marker.Markups {
		tag := markup.TagName
		pairs := markup.AttributePairs()
		for i := 0; i+1 < len(pairs); i += 2 {
			tag += fmt.Sprintf(" %s=%q", pairs[i], pairs[i+1])
		}
		b.WriteString(" " + s.Markup.Render("<"+tag+">"))
	}
	return b.String()
}

func quote(text string) string {
	runes := []rune(text)
	if len(runes) > maxTextWidth {
		text = string(runes[:maxTextWidth-1]) + "…"
	}
	return strconv.Quote(text)
}

func attributeSummary(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+attrs[k])
	}
	return strings.Join(parts, " ")
}

func payloadSummary(payload map[string]any) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "{" + strings.Join(keys, ", ") + "}"
}
