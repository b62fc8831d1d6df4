package codec

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gomobiledoc/pkg/errs"
)

// compiler replays opcodes into a Document of one version.
type compiler struct {
	version  string
	doc      *Document
	sections []*SectionEntry

	markupIndex map[string]int
	pending     []int

	// markers receives the leaves of the open markerable section or list item.
	markers *[]MarkerEntry
	list    *SectionEntry
}

// Compile replays ops into a document of the given version.
func Compile(ops []Op, version string) (*Document, error) {
	if !IsSupported(version) {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedVersion, version)
	}
	c := &compiler{
		version:     version,
		doc:         &Document{Version: version},
		markupIndex: make(map[string]int),
	}
	for i, op := range ops {
		if err := c.apply(op); err != nil {
			return nil, fmt.Errorf("opcode %d (%s): %w", i, op.Code, err)
		}
	}
	for _, s := range c.sections {
		c.doc.Sections = append(c.doc.Sections, *s)
	}
	return c.doc, nil
}

//nolint:cyclop // One case per opcode.
func (c *compiler) apply(op Op) error {
	switch op.Code {
	case OpOpenPost:
		c.sections, c.markers, c.list = nil, nil, nil

	case OpOpenMarkupSection:
		s := c.openSection(SectionTypeMarkup)
		s.Tag = op.Tag
		s.Attributes = c.sectionAttributes(op.Attributes)
		c.markers = &s.Markers

	case OpOpenListSection:
		s := c.openSection(SectionTypeList)
		s.Tag = op.Tag
		s.Attributes = c.sectionAttributes(op.Attributes)
		c.list = s

	case OpOpenListItem:
		if c.list == nil {
			return fmt.Errorf("%w: list item outside a list", errs.ErrMalformedDocument)
		}
		c.list.Items = append(c.list.Items, []MarkerEntry{})
		c.markers = &c.list.Items[len(c.list.Items)-1]
		c.pending = nil

	case OpOpenImageSection:
		s := c.openSection(SectionTypeImage)
		s.Src = op.Src

	case OpOpenCardSection:
		s := c.openSection(SectionTypeCard)
		if c.version == Version020 {
			s.CardName, s.Payload = op.Name, op.Payload
			return nil
		}
		s.Card = len(c.doc.Cards)
		c.doc.Cards = append(c.doc.Cards, CardEntry{Name: op.Name, Payload: op.Payload})

	case OpOpenMarkup:
		c.pending = append(c.pending, c.markupFor(op.Tag, op.Attributes))

	case OpOpenMarker:
		return c.leaf(MarkerEntry{Type: MarkerTypeText, Text: op.Text, Closed: op.Closed})

	case OpOpenAtom:
		if c.version == Version020 {
			return fmt.Errorf("%w: atom %q cannot be written as %s", errs.ErrUnsupportedVersion, op.Name, Version020)
		}
		entry := MarkerEntry{Type: MarkerTypeAtom, Atom: len(c.doc.Atoms), Closed: op.Closed}
		c.doc.Atoms = append(c.doc.Atoms, AtomEntry{Name: op.Name, Value: op.Text, Payload: op.Payload})
		return c.leaf(entry)

	default:
		return fmt.Errorf("%w: unknown opcode", errs.ErrMalformedDocument)
	}
	return nil
}

func (c *compiler) openSection(t SectionType) *SectionEntry {
	s := &SectionEntry{Type: t}
	c.sections = append(c.sections, s)
	c.markers, c.list, c.pending = nil, nil, nil
	return s
}

func (c *compiler) leaf(entry MarkerEntry) error {
	if c.markers == nil {
		return fmt.Errorf("%w: leaf outside a markerable section", errs.ErrMalformedDocument)
	}
	entry.Open = c.pending
	c.pending = nil
	*c.markers = append(*c.markers, entry)
	return nil
}

// markupFor returns the table index of a markup, adding it on first use.
func (c *compiler) markupFor(tag string, attrs []string) int {
	key := tag + "\x00" + strings.Join(attrs, "\x00")
	if i, ok := c.markupIndex[key]; ok {
		return i
	}
	i := len(c.doc.Markups)
	c.doc.Markups = append(c.doc.Markups, MarkupEntry{Tag: tag, Attributes: attrs})
	c.markupIndex[key] = i
	return i
}

// sectionAttributes drops attributes the version cannot carry.
func (c *compiler) sectionAttributes(attrs []string) []string {
	if c.version != Version032 {
		return nil
	}
	return attrs
}
