package model

import (
	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/linkedlist"
)

// Builder constructs every model node. Nodes remember their builder so that clones
// and splits share its markup interning table.
type Builder struct {
	markups map[string]*Markup
}

// NewBuilder creates a builder with an empty markup table.
func NewBuilder() *Builder {
	return &Builder{markups: make(map[string]*Markup)}
}

// CreatePost creates a post holding sections in order.
func (b *Builder) CreatePost(sections ...*Section) *Post {
	post := &Post{builder: b}
	post.Sections = linkedlist.New(linkedlist.Options[*Section]{
		Adopt: func(s *Section) {
			errs.Assert(!s.IsNested(), "a list item cannot be a top-level section")
			s.Post = post
			s.Parent = nil
		},
		Free: func(s *Section) { s.Post = nil },
	})
	for _, s := range sections {
		post.Sections.Append(s)
	}
	return post
}

// CreateMarkupSection creates a markerable block. An empty tag means p.
func (b *Builder) CreateMarkupSection(tag string, markers []*Marker, attrs map[string]string) *Section {
	if tag == "" {
		tag = TagP
	}
	tag = normalizeTag(tag)
	errs.Assert(IsValidMarkupSectionTag(tag), "invalid markup section tag %q", tag)

	s := &Section{Kind: SectionMarkup, TagName: tag, Attributes: copyAttributes(attrs), builder: b}
	s.Markers = b.newMarkerList(s)
	for _, m := range markers {
		s.Markers.Append(m)
	}
	return s
}

// CreateListItem creates a markerable list item.
func (b *Builder) CreateListItem(markers []*Marker) *Section {
	s := &Section{Kind: SectionListItem, TagName: TagLI, builder: b}
	s.Markers = b.newMarkerList(s)
	for _, m := range markers {
		s.Markers.Append(m)
	}
	return s
}

// CreateListSection creates a ul or ol holding items. An empty tag means ul.
func (b *Builder) CreateListSection(tag string, items []*Section, attrs map[string]string) *Section {
	if tag == "" {
		tag = TagUL
	}
	tag = normalizeTag(tag)
	errs.Assert(IsValidListSectionTag(tag), "invalid list section tag %q", tag)

	s := &Section{Kind: SectionList, TagName: tag, Attributes: copyAttributes(attrs), builder: b}
	s.Items = linkedlist.New(linkedlist.Options[*Section]{
		Adopt: func(item *Section) {
			errs.Assert(item.IsNested(), "a list can only hold list items, got %s", item.Kind)
			item.Parent = s
		},
		Free: func(item *Section) { item.Parent = nil },
	})
	for _, item := range items {
		s.Items.Append(item)
	}
	return s
}

// CreateImageSection creates an image block.
func (b *Builder) CreateImageSection(src string) *Section {
	return &Section{Kind: SectionImage, Src: src, builder: b}
}

// CreateCardSection creates a card block. The payload is owned by the section.
func (b *Builder) CreateCardSection(name string, payload map[string]any) *Section {
	errs.Assert(name != "", "a card section needs a name")
	if payload == nil {
		payload = map[string]any{}
	}
	return &Section{Kind: SectionCard, Name: name, Payload: payload, builder: b}
}

// CreateMarker creates a text leaf carrying markups.
func (b *Builder) CreateMarker(value string, markups ...*Markup) *Marker {
	return &Marker{Kind: MarkerText, Value: value, Markups: copyMarkups(markups), builder: b}
}

// CreateAtom creates an atom leaf.
func (b *Builder) CreateAtom(name, value string, payload map[string]any, markups ...*Markup) *Marker {
	errs.Assert(name != "", "an atom needs a name")
	if payload == nil {
		payload = map[string]any{}
	}
	return &Marker{
		Kind:    MarkerAtom,
		Name:    name,
		Value:   value,
		Payload: payload,
		Markups: copyMarkups(markups),
		builder: b,
	}
}

// CreateMarkup returns the interned markup for tag and attrs. Repeated requests with
// the same tag and attributes return the same instance.
func (b *Builder) CreateMarkup(tag string, attrs map[string]string) *Markup {
	tag = normalizeTag(tag)
	errs.Assert(IsValidMarkupTag(tag), "invalid markup tag %q", tag)

	key := markupKey(tag, attrs)
	if existing, ok := b.markups[key]; ok {
		return existing
	}
	markup := &Markup{TagName: tag, Attributes: copyAttributes(attrs)}
	b.markups[key] = markup
	return markup
}

func (b *Builder) newMarkerList(s *Section) *linkedlist.List[*Marker] {
	return linkedlist.New(linkedlist.Options[*Marker]{
		Adopt: func(m *Marker) {
			if m.builder == nil {
				m.builder = b
			}
			m.Section = s
		},
		Free: func(m *Marker) { m.Section = nil },
	})
}

func copyMarkups(markups []*Markup) []*Markup {
	if len(markups) == 0 {
		return nil
	}
	out := make([]*Markup, len(markups))
	copy(out, markups)
	return out
}
