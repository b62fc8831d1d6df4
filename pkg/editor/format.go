package editor

import (
	"strings"

	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// AddMarkupToRange applies markup to every marker inside rng.
func (pe *PostEditor) AddMarkupToRange(rng model.Range, markup *model.Markup) {
	pe.eachMarkerIn(rng, func(m *model.Marker) { m.AddMarkup(markup) })
}

// RemoveMarkupFromRange removes the markup instance from every marker inside rng.
func (pe *PostEditor) RemoveMarkupFromRange(rng model.Range, markup *model.Markup) {
	pe.eachMarkerIn(rng, func(m *model.Marker) { m.RemoveMarkup(markup) })
}

// RemoveMarkupsWithTag removes every markup named tag from the markers inside rng.
func (pe *PostEditor) RemoveMarkupsWithTag(rng model.Range, tag string) {
	pe.eachMarkerIn(rng, func(m *model.Marker) { m.RemoveMarkupsWithTag(tag) })
}

// ToggleMarkup removes markup's tag from rng when every marker inside already
// carries it, and adds markup otherwise.
func (pe *PostEditor) ToggleMarkup(markup *model.Markup, rng model.Range) {
	if rng.IsCollapsed() {
		return
	}
	markers := pe.post.MarkersContainedByRange(rng)
	all := len(markers) > 0
	for _, m := range markers {
		if !m.HasMarkup(markup.TagName) {
			all = false
			break
		}
	}
	if all {
		pe.RemoveMarkupsWithTag(rng, markup.TagName)
	} else {
		pe.AddMarkupToRange(rng, markup)
	}
	pe.SetRange(rng)
}

// ToggleMarkupTag toggles the attribute-less markup named tag over rng.
func (pe *PostEditor) ToggleMarkupTag(tag string, rng model.Range) {
	pe.ToggleMarkup(pe.builder.CreateMarkup(tag, nil), rng)
}

func (pe *PostEditor) eachMarkerIn(rng model.Range, fn func(*model.Marker)) {
	if rng.IsCollapsed() {
		return
	}
	touched := make(map[*model.Section]bool)
	for _, m := range pe.SplitMarkers(rng) {
		fn(m)
		pe.markDirty(m)
		touched[m.Section] = true
	}
	for s := range touched {
		pe.compact(s)
	}
}

// compact joins neighbouring markers whose markups are identical and drops blank
// markers, leaving at least one.
func (pe *PostEditor) compact(s *model.Section) {
	for m := s.Markers.Head(); m != nil; {
		next := m.Next()
		switch {
		case m.IsBlank() && s.Markers.Len() > 1:
			pe.removeMarker(m)
		case next != nil && m.CanJoin(next):
			m.Value += next.Value
			pe.removeMarker(next)
			pe.markDirty(m)
			continue
		}
		m = next
	}
}

// ToggleSection switches the markerable sections in rng to tag. A markup section
// tag turns them back into paragraphs when they all already have it; a list tag
// unwraps them when they are all items of such lists. The converted sections
// replace the originals and the range follows them.
func (pe *PostEditor) ToggleSection(tag string, rng model.Range) {
	tag = strings.ToLower(tag)
	var leaves []*model.Section
	pe.post.WalkMarkerableSections(rng, func(s *model.Section) { leaves = append(leaves, s) })
	if len(leaves) == 0 {
		return
	}

	var replaced []*model.Section
	if model.IsValidListSectionTag(tag) {
		inLists := true
		for _, s := range leaves {
			if !s.IsNested() || s.Parent.TagName != tag {
				inLists = false
				break
			}
		}
		if inLists {
			for _, s := range leaves {
				replaced = append(replaced, pe.unwrapListItem(s, model.TagP))
			}
		} else {
			replaced = pe.wrapInList(leaves, tag)
		}
	} else {
		errs.Assert(model.IsValidMarkupSectionTag(tag), "invalid section tag %q", tag)
		target := tag
		all := true
		for _, s := range leaves {
			if s.IsNested() || s.TagName != tag {
				all = false
				break
			}
		}
		if all {
			target = model.TagP
		}
		for _, s := range leaves {
			if s.IsNested() {
				replaced = append(replaced, pe.unwrapListItem(s, target))
				continue
			}
			s.TagName = target
			pe.markDirty(s)
			replaced = append(replaced, s)
		}
	}

	head, tail := replaced[0], replaced[len(replaced)-1]
	headOffset, tailOffset := 0, tail.Length()
	if rng.Head.Section == leaves[0] {
		headOffset = min(rng.Head.Offset, head.Length())
	}
	if rng.Tail.Section == leaves[len(leaves)-1] {
		tailOffset = min(rng.Tail.Offset, tail.Length())
	}
	pe.SetRange(model.SectionRange(head, headOffset, tail, tailOffset, rng.Direction))
}

// unwrapListItem turns item into a markup section placed after its list. Items
// after it move to a new list after the section.
func (pe *PostEditor) unwrapListItem(item *model.Section, tag string) *model.Section {
	list := item.Parent
	errs.Assert(list != nil, "section is not a list item")
	section := pe.builder.CreateMarkupSection(tag, pe.importMarkers(item), nil)

	var rest []*model.Section
	for next := item.Next(); next != nil; next = next.Next() {
		rest = append(rest, next)
	}
	after := list.Next()
	pe.InsertSectionBefore(pe.post.Sections, section, after)
	if len(rest) > 0 {
		for _, r := range rest {
			list.Items.Remove(r)
		}
		pe.markDirty(list)
		pe.InsertSectionBefore(pe.post.Sections, pe.builder.CreateListSection(list.TagName, rest, list.Attributes), after)
	}
	pe.RemoveSection(item)
	return section
}

// wrapInList turns leaves into items of lists named tag. Consecutive sections share
// a list, which extends a preceding list of the same tag. Items of other lists are
// retagged in place.
func (pe *PostEditor) wrapInList(leaves []*model.Section, tag string) []*model.Section {
	var out []*model.Section
	var list *model.Section
	for _, s := range leaves {
		if s.IsNested() {
			if s.Parent.TagName != tag {
				s.Parent.TagName = tag
				pe.markDirty(s.Parent)
			}
			out = append(out, s)
			list = nil
			continue
		}
		if list == nil {
			if prev := s.Prev(); prev != nil && prev.IsListSection() && prev.TagName == tag {
				list = prev
			} else {
				list = pe.builder.CreateListSection(tag, nil, nil)
				pe.InsertSectionBefore(pe.post.Sections, list, s)
			}
		}
		item := pe.builder.CreateListItem(pe.importMarkers(s))
		pe.InsertSectionBefore(list.Items, item, nil)
		pe.RemoveSection(s)
		out = append(out, item)
	}
	return out
}

// SetAttribute sets a section attribute on the top-level sections in rng. Bare keys
// get the data-md- prefix.
func (pe *PostEditor) SetAttribute(key, value string, rng model.Range) {
	key = attributeKey(key)
	for _, s := range pe.topLevelSections(rng) {
		s.SetAttribute(key, value)
		pe.markDirty(s)
	}
}

// RemoveAttribute removes a section attribute from the top-level sections in rng.
func (pe *PostEditor) RemoveAttribute(key string, rng model.Range) {
	key = attributeKey(key)
	for _, s := range pe.topLevelSections(rng) {
		if _, ok := s.Attributes[key]; !ok {
			continue
		}
		s.RemoveAttribute(key)
		pe.markDirty(s)
	}
}

func (pe *PostEditor) topLevelSections(rng model.Range) []*model.Section {
	var out []*model.Section
	seen := make(map[*model.Section]bool)
	pe.post.WalkLeafSections(rng, func(s *model.Section) {
		top := s.TopLevel()
		if top.IsCardLike() || seen[top] {
			return
		}
		seen[top] = true
		out = append(out, top)
	})
	return out
}
