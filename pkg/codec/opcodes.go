package codec

import (
	"sort"

	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// OpCode names one serialization step.
type OpCode uint8

// Opcodes. A section opener ends the previous section; markups and leaves attach to
// the most recently opened markerable section.
const (
	OpOpenPost OpCode = iota
	OpOpenMarkupSection
	OpOpenListSection
	OpOpenListItem
	OpOpenImageSection
	OpOpenCardSection
	OpOpenMarkup
	OpOpenMarker
	OpOpenAtom
)

var opNames = [...]string{
	OpOpenPost:          "openPost",
	OpOpenMarkupSection: "openMarkupSection",
	OpOpenListSection:   "openListSection",
	OpOpenListItem:      "openListItem",
	OpOpenImageSection:  "openImageSection",
	OpOpenCardSection:   "openCardSection",
	OpOpenMarkup:        "openMarkup",
	OpOpenMarker:        "openMarker",
	OpOpenAtom:          "openAtom",
}

func (c OpCode) String() string {
	if int(c) < len(opNames) {
		return opNames[c]
	}
	return "unknown"
}

// Op is one opcode with its operands. Which fields are set depends on Code.
type Op struct {
	Code OpCode

	// Tag and Attributes describe sections and markups. Attributes is a flat sorted
	// key, value list.
	Tag        string
	Attributes []string

	// Src is the image source.
	Src string

	// Name and Payload describe cards and atoms.
	Name    string
	Payload map[string]any

	// Text is the marker text or atom value.
	Text string

	// Closed counts the markups a leaf closes.
	Closed int
}

// Visit walks post and returns the opcodes that rebuild it.
func Visit(post *model.Post) []Op {
	ops := []Op{{Code: OpOpenPost}}
	post.Sections.ForEach(func(s *model.Section, _ int) {
		ops = visitSection(ops, s)
	})
	return ops
}

func visitSection(ops []Op, s *model.Section) []Op {
	switch s.Kind {
	case model.SectionMarkup:
		ops = append(ops, Op{Code: OpOpenMarkupSection, Tag: s.TagName, Attributes: flatten(s.Attributes)})
		return visitMarkers(ops, s)
	case model.SectionList:
		ops = append(ops, Op{Code: OpOpenListSection, Tag: s.TagName, Attributes: flatten(s.Attributes)})
		s.Items.ForEach(func(item *model.Section, _ int) {
			ops = append(ops, Op{Code: OpOpenListItem})
			ops = visitMarkers(ops, item)
		})
		return ops
	case model.SectionImage:
		return append(ops, Op{Code: OpOpenImageSection, Src: s.Src})
	case model.SectionCard:
		return append(ops, Op{Code: OpOpenCardSection, Name: s.Name, Payload: s.Payload})
	case model.SectionListItem:
		// A list item is only reachable through its list.
	}
	return ops
}

// visitMarkers emits each leaf preceded by the markups it opens. Markups are a stack
// ordered outermost first: a leaf opens what it does not share with the previous
// leaf and closes what it does not share with the next.
func visitMarkers(ops []Op, s *model.Section) []Op {
	s.Markers.ForEach(func(m *model.Marker, _ int) {
		shared := 0
		if prev := m.Prev(); prev != nil {
			shared = commonPrefix(m.Markups, prev.Markups)
		}
		for _, markup := range m.Markups[shared:] {
			ops = append(ops, Op{Code: OpOpenMarkup, Tag: markup.TagName, Attributes: markup.AttributePairs()})
		}

		kept := 0
		if next := m.Next(); next != nil {
			kept = commonPrefix(m.Markups, next.Markups)
		}
		closed := len(m.Markups) - kept

		if m.IsAtom() {
			ops = append(ops, Op{Code: OpOpenAtom, Name: m.Name, Text: m.Value, Payload: m.Payload, Closed: closed})
			return
		}
		ops = append(ops, Op{Code: OpOpenMarker, Text: m.Value, Closed: closed})
	})
	return ops
}

func commonPrefix(a, b []*model.Markup) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func flatten(attrs map[string]string) []string {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, k, attrs[k])
	}
	return out
}
