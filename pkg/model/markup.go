package model

import (
	"sort"
	"strings"
)

// Markup tag names accepted by the Builder.
const (
	MarkupB      = "b"
	MarkupI      = "i"
	MarkupStrong = "strong"
	MarkupEm     = "em"
	MarkupA      = "a"
	MarkupU      = "u"
	MarkupSub    = "sub"
	MarkupSup    = "sup"
	MarkupS      = "s"
	MarkupCode   = "code"
)

//nolint:gochecknoglobals // Read-only lookup table.
var validMarkupTags = map[string]bool{
	MarkupB: true, MarkupI: true, MarkupStrong: true, MarkupEm: true, MarkupA: true,
	MarkupU: true, MarkupSub: true, MarkupSup: true, MarkupS: true, MarkupCode: true,
}

// IsValidMarkupTag reports whether tag can be used for a Markup.
func IsValidMarkupTag(tag string) bool {
	return validMarkupTags[normalizeTag(tag)]
}

// Markup is an inline annotation shared by reference across markers.
// Markups are immutable once built; two markers carry the same markup only if they
// hold the same instance.
type Markup struct {
	TagName    string
	Attributes map[string]string
}

// HasTag reports whether the markup has the given tag name.
func (m *Markup) HasTag(tag string) bool {
	return m.TagName == normalizeTag(tag)
}

// Attribute returns the value of the named attribute.
func (m *Markup) Attribute(name string) string {
	return m.Attributes[name]
}

// AttributePairs returns the attributes as a flat, key-sorted name/value list.
func (m *Markup) AttributePairs() []string {
	return attributePairs(m.Attributes)
}

func attributePairs(attrs map[string]string) []string {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, k, attrs[k])
	}
	return out
}

func markupKey(tag string, attrs map[string]string) string {
	var b strings.Builder
	b.WriteString(tag)
	for _, part := range attributePairs(attrs) {
		b.WriteByte(0)
		b.WriteString(part)
	}
	return b.String()
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func copyAttributes(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
