package model

import (
	"strings"

	"github.com/yaklabco/gomobiledoc/pkg/linkedlist"
)

// SectionKind classifies a Section.
type SectionKind uint8

// Section kinds. MarkupSection and ListItem are markerable.
const (
	SectionMarkup SectionKind = iota
	SectionListItem
	SectionList
	SectionImage
	SectionCard
)

// String returns the lower-case kind name.
func (k SectionKind) String() string {
	switch k {
	case SectionMarkup:
		return "markup-section"
	case SectionListItem:
		return "list-item"
	case SectionList:
		return "list-section"
	case SectionImage:
		return "image-section"
	case SectionCard:
		return "card-section"
	default:
		return "unknown"
	}
}

// Section tag names.
const (
	TagP          = "p"
	TagH1         = "h1"
	TagH2         = "h2"
	TagH3         = "h3"
	TagH4         = "h4"
	TagH5         = "h5"
	TagH6         = "h6"
	TagBlockquote = "blockquote"
	TagAside      = "aside"
	TagPullQuote  = "pull-quote"
	TagUL         = "ul"
	TagOL         = "ol"
	TagLI         = "li"
	TagImg        = "img"
)

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	validMarkupSectionTags = map[string]bool{
		TagP: true, TagH1: true, TagH2: true, TagH3: true, TagH4: true, TagH5: true, TagH6: true,
		TagBlockquote: true, TagAside: true, TagPullQuote: true,
	}
	validListSectionTags = map[string]bool{TagUL: true, TagOL: true}
)

// IsValidMarkupSectionTag reports whether tag names a markup section.
func IsValidMarkupSectionTag(tag string) bool {
	return validMarkupSectionTags[normalizeTag(tag)]
}

// IsValidListSectionTag reports whether tag names a list section.
func IsValidListSectionTag(tag string) bool {
	return validListSectionTags[normalizeTag(tag)]
}

// IsHeadingTag reports whether tag is one of h1-h6.
func IsHeadingTag(tag string) bool {
	tag = normalizeTag(tag)
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

// Section is a block of the post. It is a closed tagged variant: Kind selects which
// of the kind-specific fields are meaningful.
type Section struct {
	Kind SectionKind

	// TagName is the lower-case tag (p, h2, ul, li...). Empty for cards and images.
	TagName string

	// Attributes holds optional section attributes (for example data-md-text-align).
	Attributes map[string]string

	// Markers holds the leaves of a markerable section.
	Markers *linkedlist.List[*Marker]

	// Items holds the list items of a list section.
	Items *linkedlist.List[*Section]

	// Src is the image source of an image section.
	Src string

	// Name and Payload describe a card section.
	Name    string
	Payload map[string]any

	// Parent is the owning list section of a list item.
	Parent *Section

	// Post is the owning post of a top-level section.
	Post *Post

	builder *Builder
	link    linkedlist.Link[*Section]
}

// ListLink implements linkedlist.Linkable.
func (s *Section) ListLink() *linkedlist.Link[*Section] {
	return &s.link
}

// Next returns the following sibling section, or nil.
func (s *Section) Next() *Section {
	return s.link.Next()
}

// Prev returns the preceding sibling section, or nil.
func (s *Section) Prev() *Section {
	return s.link.Prev()
}

// IsMarkerable reports whether the section holds marker leaves.
func (s *Section) IsMarkerable() bool {
	return s.Kind == SectionMarkup || s.Kind == SectionListItem
}

// IsNested reports whether the section lives inside a list section.
func (s *Section) IsNested() bool {
	return s.Kind == SectionListItem
}

// IsCardSection reports whether the section is a card.
func (s *Section) IsCardSection() bool {
	return s.Kind == SectionCard
}

// IsListSection reports whether the section is a list.
func (s *Section) IsListSection() bool {
	return s.Kind == SectionList
}

// IsImageSection reports whether the section is an image.
func (s *Section) IsImageSection() bool {
	return s.Kind == SectionImage
}

// IsCardLike reports whether the section is an opaque single-position block.
func (s *Section) IsCardLike() bool {
	return s.Kind == SectionCard || s.Kind == SectionImage
}

// IsLeafSection reports whether positions can address the section directly.
func (s *Section) IsLeafSection() bool {
	return s.Kind != SectionList
}

// IsBlank reports whether the section has no content.
func (s *Section) IsBlank() bool {
	switch s.Kind {
	case SectionMarkup, SectionListItem:
		return s.Markers.Every(func(m *Marker) bool { return m.IsBlank() })
	case SectionList:
		return s.Items.IsEmpty()
	default:
		return false
	}
}

// Length returns the number of addressable offsets past the head. Card-like sections
// have length one: offset 0 is before the block and offset 1 after it.
func (s *Section) Length() int {
	switch s.Kind {
	case SectionMarkup, SectionListItem:
		n := 0
		s.Markers.ForEach(func(m *Marker, _ int) { n += m.Length() })
		return n
	case SectionImage, SectionCard:
		return 1
	default:
		return 0
	}
}

// Text returns the concatenated leaf text of a markerable section.
func (s *Section) Text() string {
	if !s.IsMarkerable() {
		return ""
	}
	var b strings.Builder
	s.Markers.ForEach(func(m *Marker, _ int) { b.WriteString(m.Text()) })
	return b.String()
}

// Container returns the list that holds the section: the parent list's items for a
// list item, the post's sections otherwise. Nil for a detached section.
func (s *Section) Container() *linkedlist.List[*Section] {
	if s.Parent != nil {
		return s.Parent.Items
	}
	if s.Post != nil {
		return s.Post.Sections
	}
	return nil
}

// TopLevel returns the top-level section containing s (the parent list for items).
func (s *Section) TopLevel() *Section {
	if s.Parent != nil {
		return s.Parent
	}
	return s
}

// OwningPost returns the post the section belongs to, directly or via its list.
func (s *Section) OwningPost() *Post {
	return s.TopLevel().Post
}

// HeadPosition returns the position at offset zero.
func (s *Section) HeadPosition() Position {
	return Position{Section: s, Offset: 0}
}

// TailPosition returns the position after the last offset.
func (s *Section) TailPosition() Position {
	return Position{Section: s, Offset: s.Length()}
}

// ToPosition returns the position at offset.
func (s *Section) ToPosition(offset int) Position {
	return Position{Section: s, Offset: offset}
}

// ToRange returns a range spanning the whole section.
func (s *Section) ToRange() Range {
	return NewRange(s.HeadPosition(), s.TailPosition(), SameNode)
}

// NextLeafSection returns the next addressable section in document order,
// descending into lists and climbing out of them as needed.
func (s *Section) NextLeafSection() *Section {
	for next := s.Next(); next != nil; next = next.Next() {
		if leaf := firstLeaf(next); leaf != nil {
			return leaf
		}
	}
	if s.Parent != nil {
		return s.Parent.NextLeafSection()
	}
	return nil
}

// PrevLeafSection returns the previous addressable section in document order.
func (s *Section) PrevLeafSection() *Section {
	for prev := s.Prev(); prev != nil; prev = prev.Prev() {
		if leaf := lastLeaf(prev); leaf != nil {
			return leaf
		}
	}
	if s.Parent != nil {
		return s.Parent.PrevLeafSection()
	}
	return nil
}

func firstLeaf(s *Section) *Section {
	if s.IsListSection() {
		return s.Items.Head()
	}
	return s
}

func lastLeaf(s *Section) *Section {
	if s.IsListSection() {
		return s.Items.Tail()
	}
	return s
}

// IndexPath returns the section's address from the post root: one index for
// top-level sections, two for list items.
func (s *Section) IndexPath() []int {
	container := s.Container()
	if container == nil {
		return nil
	}
	index := container.IndexOf(s)
	if s.Parent != nil {
		return append(s.Parent.IndexPath(), index)
	}
	return []int{index}
}

// Clone returns a detached deep copy. Leaves are cloned, markups are shared.
func (s *Section) Clone() *Section {
	b := s.builder
	switch s.Kind {
	case SectionMarkup:
		return b.CreateMarkupSection(s.TagName, cloneMarkers(s), copyAttributes(s.Attributes))
	case SectionListItem:
		return b.CreateListItem(cloneMarkers(s))
	case SectionList:
		items := make([]*Section, 0, s.Items.Len())
		s.Items.ForEach(func(item *Section, _ int) { items = append(items, item.Clone()) })
		return b.CreateListSection(s.TagName, items, copyAttributes(s.Attributes))
	case SectionImage:
		return b.CreateImageSection(s.Src)
	default:
		return b.CreateCardSection(s.Name, copyPayload(s.Payload))
	}
}

// SetAttribute sets a section attribute.
func (s *Section) SetAttribute(key, value string) {
	if s.Attributes == nil {
		s.Attributes = make(map[string]string)
	}
	s.Attributes[key] = value
}

// RemoveAttribute deletes a section attribute.
func (s *Section) RemoveAttribute(key string) {
	delete(s.Attributes, key)
}

// Builder returns the builder that created the section.
func (s *Section) Builder() *Builder {
	return s.builder
}

func cloneMarkers(s *Section) []*Marker {
	markers := make([]*Marker, 0, s.Markers.Len())
	s.Markers.ForEach(func(m *Marker, _ int) { markers = append(markers, m.Clone()) })
	return markers
}
