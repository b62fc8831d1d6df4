package model

import (
	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/linkedlist"
)

// MarkerKind distinguishes text leaves from atoms.
type MarkerKind uint8

const (
	// MarkerText is a run of plain text.
	MarkerText MarkerKind = iota

	// MarkerAtom is an opaque inline object rendered by a host component.
	MarkerAtom
)

// AtomText stands in for an atom in section text so that text length always equals
// the sum of leaf lengths.
const AtomText = "\uFFFC"

const atomRune = '\uFFFC'

// atomLength is the offset width of every atom.
const atomLength = 1

// Marker is a leaf of a markerable section: either a text run or an atom.
type Marker struct {
	Kind MarkerKind

	// Value is the text of a text marker, or the host-defined value of an atom.
	Value string

	// Name is the atom name. Empty for text markers.
	Name string

	// Payload is the host-defined atom payload. Nil for text markers.
	Payload map[string]any

	// Markups are the active inline annotations, outermost first.
	Markups []*Markup

	// Section is the owning markerable section, maintained by the section's list.
	Section *Section

	builder *Builder
	link    linkedlist.Link[*Marker]
}

// ListLink implements linkedlist.Linkable.
func (m *Marker) ListLink() *linkedlist.Link[*Marker] {
	return &m.link
}

// Next returns the following marker in the section, or nil.
func (m *Marker) Next() *Marker {
	return m.link.Next()
}

// Prev returns the preceding marker in the section, or nil.
func (m *Marker) Prev() *Marker {
	return m.link.Prev()
}

// IsAtom reports whether this leaf is an atom.
func (m *Marker) IsAtom() bool {
	return m.Kind == MarkerAtom
}

// Length returns the offset width of the leaf: UTF-16 code units for text, one for atoms.
func (m *Marker) Length() int {
	if m.IsAtom() {
		return atomLength
	}
	return UnitLen(m.Value)
}

// IsBlank reports whether this is an empty text marker.
func (m *Marker) IsBlank() bool {
	return !m.IsAtom() && m.Value == ""
}

// Text returns the text the leaf contributes to its section.
func (m *Marker) Text() string {
	if m.IsAtom() {
		return AtomText
	}
	return m.Value
}

// Clone returns an unlinked copy sharing the same markup instances.
func (m *Marker) Clone() *Marker {
	if m.IsAtom() {
		return m.builder.CreateAtom(m.Name, m.Value, copyPayload(m.Payload), m.Markups...)
	}
	return m.builder.CreateMarker(m.Value, m.Markups...)
}

// DeleteValueAtOffset deletes the logical character at offset and returns the number
// of code units removed. Surrogate pairs are removed whole whichever half offset names.
func (m *Marker) DeleteValueAtOffset(offset int) int {
	errs.Assert(!m.IsAtom(), "cannot delete a value inside an atom")
	units := toUnits(m.Value)
	errs.Assert(offset >= 0 && offset < len(units), "offset %d out of range for marker of length %d", offset, len(units))

	width := 1
	switch {
	case isHighSurrogate(units[offset]):
		if offset+1 < len(units) && isLowSurrogate(units[offset+1]) {
			width = 2
		}
	case isLowSurrogate(units[offset]):
		if offset > 0 && isHighSurrogate(units[offset-1]) {
			offset--
			width = 2
		}
	}

	m.Value = fromUnits(append(units[:offset:offset], units[offset+width:]...))
	return width
}

// Split cuts the marker at offset and endOffset into exactly three markers
// (before, middle, after), any of which may be blank. Each keeps all markups.
func (m *Marker) Split(offset, endOffset int) [3]*Marker {
	if m.IsAtom() {
		blank := func() *Marker { return m.builder.CreateMarker("", m.Markups...) }
		return [3]*Marker{blank(), m.Clone(), blank()}
	}
	length := m.Length()
	offset = clamp(offset, 0, length)
	endOffset = clamp(endOffset, offset, length)
	return [3]*Marker{
		m.builder.CreateMarker(UnitSlice(m.Value, 0, offset), m.Markups...),
		m.builder.CreateMarker(UnitSlice(m.Value, offset, endOffset), m.Markups...),
		m.builder.CreateMarker(UnitSlice(m.Value, endOffset, length), m.Markups...),
	}
}

// SplitAtOffset cuts the marker into exactly two markers at offset.
func (m *Marker) SplitAtOffset(offset int) [2]*Marker {
	if m.IsAtom() {
		blank := m.builder.CreateMarker("", m.Markups...)
		if offset <= 0 {
			return [2]*Marker{blank, m.Clone()}
		}
		return [2]*Marker{m.Clone(), blank}
	}
	parts := m.Split(offset, m.Length())
	return [2]*Marker{parts[0], parts[1]}
}

// CanJoin reports whether other can merge into this marker. Markup arrays must hold
// the identical instances in the same order; equivalent but distinct markups do not
// merge.
func (m *Marker) CanJoin(other *Marker) bool {
	if other == nil || m.IsAtom() || other.IsAtom() {
		return false
	}
	if len(m.Markups) != len(other.Markups) {
		return false
	}
	for i := range m.Markups {
		if m.Markups[i] != other.Markups[i] {
			return false
		}
	}
	return true
}

// Join returns a new marker holding this marker's value followed by other's.
func (m *Marker) Join(other *Marker) *Marker {
	errs.Assert(m.CanJoin(other), "markers with different markups cannot be joined")
	return m.builder.CreateMarker(m.Value+other.Value, m.Markups...)
}

// HasMarkup reports whether the marker carries a markup with the given tag.
func (m *Marker) HasMarkup(tag string) bool {
	return m.MarkupWithTag(tag) != nil
}

// HasMarkupInstance reports whether the marker carries exactly this markup.
func (m *Marker) HasMarkupInstance(markup *Markup) bool {
	for _, existing := range m.Markups {
		if existing == markup {
			return true
		}
	}
	return false
}

// MarkupWithTag returns the first markup with the given tag, or nil.
func (m *Marker) MarkupWithTag(tag string) *Markup {
	for _, existing := range m.Markups {
		if existing.HasTag(tag) {
			return existing
		}
	}
	return nil
}

// AddMarkup appends markup unless the marker already carries it.
func (m *Marker) AddMarkup(markup *Markup) {
	if m.HasMarkupInstance(markup) {
		return
	}
	m.Markups = append(m.Markups[:len(m.Markups):len(m.Markups)], markup)
}

// RemoveMarkup drops markup from the marker.
func (m *Marker) RemoveMarkup(markup *Markup) {
	kept := make([]*Markup, 0, len(m.Markups))
	for _, existing := range m.Markups {
		if existing != markup {
			kept = append(kept, existing)
		}
	}
	m.Markups = kept
}

// RemoveMarkupsWithTag drops every markup with the given tag.
func (m *Marker) RemoveMarkupsWithTag(tag string) {
	kept := make([]*Markup, 0, len(m.Markups))
	for _, existing := range m.Markups {
		if !existing.HasTag(tag) {
			kept = append(kept, existing)
		}
	}
	m.Markups = kept
}

func copyPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	return out
}
