// Package codec serializes posts to and from the versioned mobiledoc JSON format.
//
// Versions 0.3.0, 0.3.1 and 0.3.2 share one layout: a document holds tables of atoms,
// cards and markups, and sections refer into them by index. 0.3.2 adds section
// attributes. Version 0.2.0 predates atoms and writes cards inline.
//
// Serialization runs in two steps. Visit walks a post and emits opcodes; a compiler
// replays them into a Document for the requested version. Deserialize goes the other
// way and validates every index and tag before building anything.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/yaklabco/gomobiledoc/pkg/errs"
)

// Supported versions.
const (
	Version020 = "0.2.0"
	Version030 = "0.3.0"
	Version031 = "0.3.1"
	Version032 = "0.3.2"

	// Latest is the version written by default.
	Latest = Version032
)

// IsSupported reports whether version has a codec.
func IsSupported(version string) bool {
	switch version {
	case Version020, Version030, Version031, Version032:
		return true
	}
	return false
}

// SectionType is the leading number of a serialized section.
type SectionType int

// Section type identifiers.
const (
	SectionTypeMarkup SectionType = 1
	SectionTypeImage  SectionType = 2
	SectionTypeList   SectionType = 3
	SectionTypeCard   SectionType = 10
)

// MarkerType is the leading number of a 0.3.x marker.
type MarkerType int

// Marker type identifiers.
const (
	MarkerTypeText MarkerType = 0
	MarkerTypeAtom MarkerType = 1
)

// Document is a serialized post. The same shape carries every version; fields a
// version has no room for stay empty.
type Document struct {
	Version string

	// Atoms and Cards are empty in 0.2.0.
	Atoms []AtomEntry
	Cards []CardEntry

	// Markups is the markup table. 0.2.0 calls it the marker types.
	Markups []MarkupEntry

	Sections []SectionEntry
}

// MarkupEntry is [tagName] or [tagName, [key, value, ...]].
type MarkupEntry struct {
	Tag        string
	Attributes []string
}

// AtomEntry is [name, value, payload].
type AtomEntry struct {
	Name    string
	Value   string
	Payload map[string]any
}

// CardEntry is [name, payload].
type CardEntry struct {
	Name    string
	Payload map[string]any
}

// SectionEntry is one serialized section.
type SectionEntry struct {
	Type SectionType

	// Tag is the tag of markup and list sections.
	Tag string

	// Markers holds the leaves of a markup section.
	Markers []MarkerEntry

	// Items holds the leaves of each list item.
	Items [][]MarkerEntry

	// Src is the image source.
	Src string

	// Card indexes Document.Cards in 0.3.x.
	Card int

	// CardName and Payload carry an inline 0.2.0 card.
	CardName string
	Payload  map[string]any

	// Attributes is a flat key, value list. 0.3.2 only.
	Attributes []string
}

// MarkerEntry is one serialized leaf: [type, opened, closed, value] in 0.3.x and
// [opened, closed, value] in 0.2.0.
type MarkerEntry struct {
	Type MarkerType

	// Open lists the markup indexes opened before this leaf.
	Open []int

	// Closed counts the markups closed after this leaf.
	Closed int

	// Text is the value of a text marker.
	Text string

	// Atom indexes Document.Atoms.
	Atom int
}

// MarshalJSON writes [tag] or [tag, attributes].
func (m MarkupEntry) MarshalJSON() ([]byte, error) {
	if len(m.Attributes) == 0 {
		return json.Marshal([]any{m.Tag})
	}
	return json.Marshal([]any{m.Tag, m.Attributes})
}

// UnmarshalJSON reads [tag] or [tag, attributes].
func (m *MarkupEntry) UnmarshalJSON(data []byte) error {
	parts, err := tuple(data, 1, "markup")
	if err != nil {
		return err
	}
	if err := field(parts, 0, &m.Tag, "markup tag"); err != nil {
		return err
	}
	if len(parts) > 1 {
		return field(parts, 1, &m.Attributes, "markup attributes")
	}
	return nil
}

// MarshalJSON writes [name, value, payload].
func (a AtomEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.Name, a.Value, payloadOrEmpty(a.Payload)})
}

// UnmarshalJSON reads [name, value, payload].
func (a *AtomEntry) UnmarshalJSON(data []byte) error {
	parts, err := tuple(data, 3, "atom")
	if err != nil {
		return err
	}
	if err := field(parts, 0, &a.Name, "atom name"); err != nil {
		return err
	}
	if err := field(parts, 1, &a.Value, "atom value"); err != nil {
		return err
	}
	return field(parts, 2, &a.Payload, "atom payload")
}

// MarshalJSON writes [name, payload].
func (c CardEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Name, payloadOrEmpty(c.Payload)})
}

// UnmarshalJSON reads [name, payload].
func (c *CardEntry) UnmarshalJSON(data []byte) error {
	parts, err := tuple(data, 2, "card")
	if err != nil {
		return err
	}
	if err := field(parts, 0, &c.Name, "card name"); err != nil {
		return err
	}
	return field(parts, 1, &c.Payload, "card payload")
}

type documentV3 struct {
	Version  string        `json:"version"`
	Atoms    []AtomEntry   `json:"atoms"`
	Cards    []CardEntry   `json:"cards"`
	Markups  []MarkupEntry `json:"markups"`
	Sections []any         `json:"sections"`
}

type documentV2 struct {
	Version  string `json:"version"`
	Sections [2]any `json:"sections"`
}

// MarshalJSON writes the layout of d.Version.
func (d Document) MarshalJSON() ([]byte, error) {
	if !IsSupported(d.Version) {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedVersion, d.Version)
	}
	sections := make([]any, 0, len(d.Sections))
	for i := range d.Sections {
		sections = append(sections, d.Sections[i].encode(d.Version))
	}
	markups := d.Markups
	if markups == nil {
		markups = []MarkupEntry{}
	}
	if d.Version == Version020 {
		return json.Marshal(documentV2{Version: d.Version, Sections: [2]any{markups, sections}})
	}
	atoms, cards := d.Atoms, d.Cards
	if atoms == nil {
		atoms = []AtomEntry{}
	}
	if cards == nil {
		cards = []CardEntry{}
	}
	return json.Marshal(documentV3{Version: d.Version, Atoms: atoms, Cards: cards, Markups: markups, Sections: sections})
}

// UnmarshalJSON reads any supported layout.
func (d *Document) UnmarshalJSON(data []byte) error {
	var head struct {
		Version  string          `json:"version"`
		Atoms    []AtomEntry     `json:"atoms"`
		Cards    []CardEntry     `json:"cards"`
		Markups  []MarkupEntry   `json:"markups"`
		Sections json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrMalformedDocument, err)
	}
	if !IsSupported(head.Version) {
		return fmt.Errorf("%w: %q", errs.ErrUnsupportedVersion, head.Version)
	}

	out := Document{Version: head.Version}
	rawSections := head.Sections
	if head.Version == Version020 {
		parts, err := tuple(head.Sections, 2, "0.2.0 sections")
		if err != nil {
			return err
		}
		if err := field(parts, 0, &out.Markups, "marker types"); err != nil {
			return err
		}
		rawSections = parts[1]
	} else {
		out.Atoms, out.Cards, out.Markups = head.Atoms, head.Cards, head.Markups
	}

	var sections []json.RawMessage
	if err := json.Unmarshal(rawSections, &sections); err != nil {
		return fmt.Errorf("%w: sections: %w", errs.ErrMalformedDocument, err)
	}
	for i, raw := range sections {
		s, err := decodeSection(raw, head.Version)
		if err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
		out.Sections = append(out.Sections, s)
	}
	*d = out
	return nil
}

func (s *SectionEntry) encode(version string) []any {
	switch s.Type {
	case SectionTypeMarkup:
		out := []any{s.Type, s.Tag, encodeMarkers(s.Markers, version)}
		if version == Version032 && len(s.Attributes) > 0 {
			out = append(out, s.Attributes)
		}
		return out
	case SectionTypeList:
		items := make([]any, 0, len(s.Items))
		for _, item := range s.Items {
			items = append(items, encodeMarkers(item, version))
		}
		out := []any{s.Type, s.Tag, items}
		if version == Version032 && len(s.Attributes) > 0 {
			out = append(out, s.Attributes)
		}
		return out
	case SectionTypeImage:
		return []any{s.Type, s.Src}
	case SectionTypeCard:
		if version == Version020 {
			return []any{s.Type, s.CardName, payloadOrEmpty(s.Payload)}
		}
		return []any{s.Type, s.Card}
	}
	return []any{s.Type}
}

func encodeMarkers(markers []MarkerEntry, version string) []any {
	out := make([]any, 0, len(markers))
	for _, m := range markers {
		open := m.Open
		if open == nil {
			open = []int{}
		}
		switch {
		case version == Version020:
			out = append(out, []any{open, m.Closed, m.Text})
		case m.Type == MarkerTypeAtom:
			out = append(out, []any{m.Type, open, m.Closed, m.Atom})
		default:
			out = append(out, []any{m.Type, open, m.Closed, m.Text})
		}
	}
	return out
}

func decodeSection(raw json.RawMessage, version string) (SectionEntry, error) {
	var s SectionEntry
	parts, err := tuple(raw, 2, "section")
	if err != nil {
		return s, err
	}
	if err := field(parts, 0, &s.Type, "section type"); err != nil {
		return s, err
	}

	switch s.Type {
	case SectionTypeMarkup, SectionTypeList:
		if len(parts) < 3 {
			return s, fmt.Errorf("%w: section has %d fields, want 3", errs.ErrMalformedDocument, len(parts))
		}
		if err := field(parts, 1, &s.Tag, "section tag"); err != nil {
			return s, err
		}
		if len(parts) > 3 && version == Version032 {
			if err := field(parts, 3, &s.Attributes, "section attributes"); err != nil {
				return s, err
			}
		}
		if s.Type == SectionTypeMarkup {
			s.Markers, err = decodeMarkers(parts[2], version)
			return s, err
		}
		var items []json.RawMessage
		if err := field(parts, 2, &items, "list items"); err != nil {
			return s, err
		}
		for _, item := range items {
			markers, err := decodeMarkers(item, version)
			if err != nil {
				return s, err
			}
			s.Items = append(s.Items, markers)
		}
		return s, nil

	case SectionTypeImage:
		return s, field(parts, 1, &s.Src, "image src")

	case SectionTypeCard:
		if version == Version020 {
			if err := field(parts, 1, &s.CardName, "card name"); err != nil {
				return s, err
			}
			if len(parts) > 2 {
				return s, field(parts, 2, &s.Payload, "card payload")
			}
			return s, nil
		}
		return s, field(parts, 1, &s.Card, "card index")
	}
	return s, fmt.Errorf("%w: unknown section type %d", errs.ErrMalformedDocument, s.Type)
}

func decodeMarkers(raw json.RawMessage, version string) ([]MarkerEntry, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: markers: %w", errs.ErrMalformedDocument, err)
	}
	out := make([]MarkerEntry, 0, len(entries))
	for _, entry := range entries {
		var m MarkerEntry
		if version == Version020 {
			parts, err := tuple(entry, 3, "marker")
			if err != nil {
				return nil, err
			}
			if err := decodeMarkerFields(parts, 0, &m); err != nil {
				return nil, err
			}
			if err := field(parts, 2, &m.Text, "marker text"); err != nil {
				return nil, err
			}
			out = append(out, m)
			continue
		}

		parts, err := tuple(entry, 4, "marker")
		if err != nil {
			return nil, err
		}
		if err := field(parts, 0, &m.Type, "marker type"); err != nil {
			return nil, err
		}
		if err := decodeMarkerFields(parts, 1, &m); err != nil {
			return nil, err
		}
		switch m.Type {
		case MarkerTypeText:
			err = field(parts, 3, &m.Text, "marker text")
		case MarkerTypeAtom:
			err = field(parts, 3, &m.Atom, "atom index")
		default:
			err = fmt.Errorf("%w: unknown marker type %d", errs.ErrMalformedDocument, m.Type)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeMarkerFields(parts []json.RawMessage, at int, m *MarkerEntry) error {
	if err := field(parts, at, &m.Open, "opened markups"); err != nil {
		return err
	}
	return field(parts, at+1, &m.Closed, "closed markup count")
}

// tuple splits a JSON array into its elements and requires at least minLen of them.
func tuple(data []byte, minLen int, what string) ([]json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrMalformedDocument, what, err)
	}
	if len(parts) < minLen {
		return nil, fmt.Errorf("%w: %s has %d fields, want %d", errs.ErrMalformedDocument, what, len(parts), minLen)
	}
	return parts, nil
}

func field(parts []json.RawMessage, i int, v any, what string) error {
	if i >= len(parts) {
		return fmt.Errorf("%w: missing %s", errs.ErrMalformedDocument, what)
	}
	if err := json.Unmarshal(parts[i], v); err != nil {
		return fmt.Errorf("%w: %s: %w", errs.ErrMalformedDocument, what, err)
	}
	return nil
}

func payloadOrEmpty(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	return payload
}
