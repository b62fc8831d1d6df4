package model

import "github.com/yaklabco/gomobiledoc/pkg/linkedlist"

// Post is the root of a document: an ordered list of top-level sections.
type Post struct {
	Sections *linkedlist.List[*Section]

	builder *Builder
}

// Builder returns the builder that created the post.
func (p *Post) Builder() *Builder {
	return p.builder
}

// IsBlank reports whether the post has no sections.
func (p *Post) IsBlank() bool {
	return p.Sections.IsEmpty()
}

// FirstLeafSection returns the first addressable section, or nil.
func (p *Post) FirstLeafSection() *Section {
	for s := p.Sections.Head(); s != nil; s = s.Next() {
		if leaf := firstLeaf(s); leaf != nil {
			return leaf
		}
	}
	return nil
}

// LastLeafSection returns the last addressable section, or nil.
func (p *Post) LastLeafSection() *Section {
	for s := p.Sections.Tail(); s != nil; s = s.Prev() {
		if leaf := lastLeaf(s); leaf != nil {
			return leaf
		}
	}
	return nil
}

// HeadPosition returns the head of the first leaf section, or the blank position.
func (p *Post) HeadPosition() Position {
	if first := p.FirstLeafSection(); first != nil {
		return first.HeadPosition()
	}
	return BlankPosition()
}

// TailPosition returns the tail of the last leaf section, or the blank position.
func (p *Post) TailPosition() Position {
	if last := p.LastLeafSection(); last != nil {
		return last.TailPosition()
	}
	return BlankPosition()
}

// ToRange returns the range spanning the whole post.
func (p *Post) ToRange() Range {
	return NewRange(p.HeadPosition(), p.TailPosition(), SameNode)
}

// LeafSections returns every addressable section in document order.
func (p *Post) LeafSections() []*Section {
	var out []*Section
	for s := p.FirstLeafSection(); s != nil; s = s.NextLeafSection() {
		out = append(out, s)
	}
	return out
}

// WalkLeafSections calls fn for every leaf section from the range head's section
// through the range tail's section.
func (p *Post) WalkLeafSections(rng Range, fn func(*Section)) {
	if rng.IsBlank() {
		return
	}
	for s := rng.Head.Section; s != nil; {
		next := s.NextLeafSection()
		fn(s)
		if s == rng.Tail.Section {
			return
		}
		s = next
	}
}

// WalkMarkerableSections is WalkLeafSections restricted to markerable sections.
func (p *Post) WalkMarkerableSections(rng Range, fn func(*Section)) {
	p.WalkLeafSections(rng, func(s *Section) {
		if s.IsMarkerable() {
			fn(s)
		}
	})
}

// SectionsContainedBy returns the top-level sections strictly between the top-level
// sections holding the range's head and tail.
func (p *Post) SectionsContainedBy(rng Range) []*Section {
	head, tail := rng.Head.Section.TopLevel(), rng.Tail.Section.TopLevel()
	if head == tail {
		return nil
	}
	var out []*Section
	for s := head.Next(); s != nil && s != tail; s = s.Next() {
		out = append(out, s)
	}
	return out
}

// MarkersContainedByRange returns the leaves overlapping the range, in order.
func (p *Post) MarkersContainedByRange(rng Range) []*Marker {
	var out []*Marker
	p.WalkMarkerableSections(rng, func(s *Section) {
		trimmed := rng.TrimTo(s)
		s.MarkersInRange(trimmed.Head.Offset, trimmed.Tail.Offset, func(m *Marker, _ MarkerRangeInfo) {
			out = append(out, m)
		})
	})
	return out
}

// MarkupsInRange returns the distinct markups active in the range, in first-seen
// order. For a collapsed range these are the markups a typed character would get:
// the leaf before the cursor's markups, except links ending at the cursor.
func (p *Post) MarkupsInRange(rng Range) []*Markup {
	if rng.IsBlank() {
		return nil
	}
	seen := make(map[*Markup]bool)
	var out []*Markup
	add := func(m *Markup) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}

	if rng.IsCollapsed() {
		marker, offset := rng.Head.MarkerPosition()
		if marker == nil {
			return nil
		}
		atEnd := offset == marker.Length() && offset > 0
		for _, m := range marker.Markups {
			if atEnd && m.HasTag(MarkupA) {
				continue
			}
			add(m)
		}
		return out
	}

	for _, marker := range p.MarkersContainedByRange(rng) {
		for _, m := range marker.Markups {
			add(m)
		}
	}
	return out
}

// TrimTo copies the content of rng into a new post. Consecutive list items keep a
// shared list; card-like sections are cloned whole.
func (p *Post) TrimTo(rng Range) *Post {
	b := p.builder
	out := b.CreatePost()
	var list, source *Section
	p.WalkLeafSections(rng, func(s *Section) {
		if !s.IsMarkerable() {
			list = nil
			out.Sections.Append(s.Clone())
			return
		}
		trimmed := rng.TrimTo(s)
		markers := s.MarkersFor(trimmed.Head.Offset, trimmed.Tail.Offset)
		if s.IsNested() {
			if list == nil || source != s.Parent {
				list, source = b.CreateListSection(s.Parent.TagName, nil, s.Parent.Attributes), s.Parent
				out.Sections.Append(list)
			}
			list.Items.Append(b.CreateListItem(markers))
			return
		}
		list = nil
		out.Sections.Append(b.CreateMarkupSection(s.TagName, markers, s.Attributes))
	})
	return out
}

// Clone returns a deep copy sharing markups.
func (p *Post) Clone() *Post {
	out := p.builder.CreatePost()
	p.Sections.ForEach(func(s *Section, _ int) { out.Sections.Append(s.Clone()) })
	return out
}

// SectionAtPath resolves an index path produced by Section.IndexPath.
func (p *Post) SectionAtPath(path []int) *Section {
	if len(path) == 0 {
		return nil
	}
	s := p.Sections.At(path[0])
	for _, index := range path[1:] {
		if s == nil || !s.IsListSection() {
			return nil
		}
		s = s.Items.At(index)
	}
	return s
}
