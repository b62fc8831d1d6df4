package editor

import (
	"strings"

	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/linkedlist"
	"github.com/yaklabco/gomobiledoc/pkg/model"
	"github.com/yaklabco/gomobiledoc/pkg/render"
)

// Unit selects how much DeleteAtPosition removes.
type Unit uint8

// Deletion units.
const (
	UnitChar Unit = iota
	UnitWord
)

// editAction classifies a transaction for undo grouping.
type editAction uint8

const (
	actionNone editAction = iota
	actionInsertText
	actionDelete
)

// PostEditor mutates the post inside one transaction. Every operation flags the
// nodes it touched for the next render pass and leaves the resulting cursor in
// Range. A PostEditor is only valid inside the Run callback that received it.
type PostEditor struct {
	editor  *Editor
	post    *model.Post
	builder *model.Builder

	rng       model.Range
	didChange bool
	action    editAction
	scheduled []func()
}

func newPostEditor(e *Editor) *PostEditor {
	return &PostEditor{editor: e, post: e.post, builder: e.post.Builder(), rng: e.rng}
}

// apply runs fn, turning assertion panics into returned errors.
func (pe *PostEditor) apply(fn func(*PostEditor) error) (err error) {
	defer errs.Recover(&err)
	return fn(pe)
}

// Post returns the post being edited.
func (pe *PostEditor) Post() *model.Post {
	return pe.post
}

// Builder returns the builder new nodes must come from.
func (pe *PostEditor) Builder() *model.Builder {
	return pe.builder
}

// Range returns the cursor the transaction will leave behind.
func (pe *PostEditor) Range() model.Range {
	return pe.rng
}

// SetRange sets the cursor the transaction will leave behind.
func (pe *PostEditor) SetRange(rng model.Range) {
	pe.rng = rng
}

// Schedule queues fn to run after the transaction has rendered and notified.
func (pe *PostEditor) Schedule(fn func()) {
	pe.scheduled = append(pe.scheduled, fn)
}

func (pe *PostEditor) markDirty(m any) {
	pe.didChange = true
	if t := pe.editor.tree; t != nil {
		t.MarkDirty(m)
	}
}

// markContainerDirty flags whatever holds s: its list, or the post.
func (pe *PostEditor) markContainerDirty(s *model.Section) {
	if s.Parent != nil {
		pe.markDirty(s.Parent)
		return
	}
	pe.markDirty(pe.post)
}

func (pe *PostEditor) scheduleForRemoval(m any) {
	pe.didChange = true
	if t := pe.editor.tree; t != nil {
		t.ScheduleForRemoval(m)
	}
}

func (pe *PostEditor) assertInPost(s *model.Section) {
	errs.Assert(s != nil && s.OwningPost() == pe.post, "section is not part of the edited post")
}

func (pe *PostEditor) assertPosition(pos model.Position) {
	pe.assertInPost(pos.Section)
	errs.Assert(pos.Offset >= 0 && pos.Offset <= pos.Section.Length(),
		"offset %d out of range for section of length %d", pos.Offset, pos.Section.Length())
}

// InsertText inserts text at pos with the markups a character typed there would get.
func (pe *PostEditor) InsertText(pos model.Position, text string) model.Position {
	return pe.InsertTextWithMarkups(pos, text, pe.post.MarkupsInRange(pos.ToRange()))
}

// InsertTextWithMarkups inserts text at pos carrying exactly markups. Text joins a
// neighbouring marker with the same markups instead of creating a new one.
func (pe *PostEditor) InsertTextWithMarkups(pos model.Position, text string, markups []*model.Markup) model.Position {
	pe.assertPosition(pos)
	s := pos.Section
	errs.Assert(s.IsMarkerable(), "can only insert text into a markerable section, got %s", s.Kind)
	if text == "" {
		return pos
	}

	if m, offset := joinableMarker(s, pos.Offset, markups); m != nil {
		m.Value = model.UnitInsert(m.Value, offset, text)
		pe.markDirty(m)
	} else {
		pe.insertMarkersAt(s, pos.Offset, []*model.Marker{pe.builder.CreateMarker(text, markups...)})
	}
	next := s.ToPosition(pos.Offset + model.UnitLen(text))
	pe.SetRange(next.ToRange())
	return next
}

// joinableMarker finds a text marker touching offset whose markups are exactly
// markups, and the offset inside it.
func joinableMarker(s *model.Section, offset int, markups []*model.Markup) (*model.Marker, int) {
	m, inMarker := s.MarkerPositionAtOffset(offset)
	if m == nil {
		return nil, 0
	}
	if !m.IsAtom() && sameMarkups(m.Markups, markups) {
		return m, inMarker
	}
	if inMarker == m.Length() {
		if next := m.Next(); next != nil && !next.IsAtom() && sameMarkups(next.Markups, markups) {
			return next, 0
		}
	}
	return nil, 0
}

// InsertMarkers inserts markers at pos and returns the position after them.
func (pe *PostEditor) InsertMarkers(pos model.Position, markers []*model.Marker) model.Position {
	pe.assertPosition(pos)
	errs.Assert(pos.Section.IsMarkerable(), "can only insert markers into a markerable section, got %s", pos.Section.Kind)
	pe.insertMarkersAt(pos.Section, pos.Offset, markers)

	width := 0
	for _, m := range markers {
		width += m.Length()
	}
	next := pos.Section.ToPosition(pos.Offset + width)
	pe.SetRange(next.ToRange())
	return next
}

func (pe *PostEditor) insertMarkersAt(s *model.Section, offset int, markers []*model.Marker) {
	s.SplitMarkerAtOffset(offset)
	ref, err := s.MarkerBeforeOffset(offset)
	errs.Assert(err == nil, "no marker boundary at offset %d", offset)
	for _, m := range markers {
		s.Markers.InsertAfter(m, ref)
		ref = m
	}
	pe.markDirty(s)
}

// InsertAtom inserts an atom at pos carrying the markups of the text before it.
func (pe *PostEditor) InsertAtom(pos model.Position, name, value string, payload map[string]any) *model.Marker {
	atom := pe.builder.CreateAtom(name, value, payload, pe.post.MarkupsInRange(pos.ToRange())...)
	pe.InsertMarkers(pos, []*model.Marker{atom})
	return atom
}

// InsertSectionBefore links section into list before ref. A nil ref appends.
func (pe *PostEditor) InsertSectionBefore(list *linkedlist.List[*model.Section], section, ref *model.Section) {
	list.InsertBefore(section, ref)
	pe.markDirty(section)
}

// InsertSectionAtEnd appends a top-level section to the post.
func (pe *PostEditor) InsertSectionAtEnd(section *model.Section) {
	pe.InsertSectionBefore(pe.post.Sections, section, nil)
}

// InsertSection inserts a top-level section after the section holding the cursor,
// replacing that section when it is a blank paragraph. Without a cursor the section
// goes to the end. The cursor moves to the end of the new section.
func (pe *PostEditor) InsertSection(section *model.Section) {
	switch {
	case pe.rng.IsBlank():
		pe.InsertSectionAtEnd(section)
	default:
		current := pe.rng.Tail.Section.TopLevel()
		if current.IsMarkerable() && current.IsBlank() {
			pe.ReplaceSection(current, section)
		} else {
			pe.InsertSectionBefore(pe.post.Sections, section, current.Next())
		}
	}
	pe.SetRange(sectionTail(section).ToRange())
}

// RemoveSection unlinks section. A list left without items is removed too.
func (pe *PostEditor) RemoveSection(section *model.Section) {
	pe.assertInPost(section)
	container := section.Container()
	parent := section.Parent
	pe.scheduleForRemoval(section)
	pe.markContainerDirty(section)
	container.Remove(section)
	if parent != nil && parent.Items.IsEmpty() {
		pe.RemoveSection(parent)
	}
}

// ReplaceSection puts replacement where old was. A nil old appends replacement.
func (pe *PostEditor) ReplaceSection(old, replacement *model.Section) {
	if old == nil {
		pe.InsertSectionAtEnd(replacement)
		return
	}
	pe.assertInPost(old)
	pe.InsertSectionBefore(old.Container(), replacement, old)
	pe.RemoveSection(old)
}

// SplitSection breaks the section at pos in two and puts the cursor at the head of
// the second half. On a card-like section a blank paragraph is added on the side of
// pos instead. A blank list item leaves its list as a paragraph; the first result is
// nil then.
func (pe *PostEditor) SplitSection(pos model.Position) [2]*model.Section {
	pe.assertPosition(pos)
	s := pos.Section

	if s.IsCardLike() {
		blank := pe.builder.CreateMarkupSection(model.TagP, nil, nil)
		if pos.Offset == 0 {
			pe.InsertSectionBefore(s.Container(), blank, s)
			pe.SetRange(s.HeadPosition().ToRange())
			return [2]*model.Section{blank, s}
		}
		pe.InsertSectionBefore(s.Container(), blank, s.Next())
		pe.SetRange(blank.HeadPosition().ToRange())
		return [2]*model.Section{s, blank}
	}

	if s.IsNested() && s.IsBlank() {
		p := pe.unwrapListItem(s, model.TagP)
		pe.SetRange(p.HeadPosition().ToRange())
		return [2]*model.Section{nil, p}
	}

	moved := pe.cutAfter(s, pos.Offset)
	var tail *model.Section
	if s.IsNested() {
		tail = pe.builder.CreateListItem(moved)
	} else {
		tail = pe.builder.CreateMarkupSection(s.TagName, moved, s.Attributes)
	}
	pe.InsertSectionBefore(s.Container(), tail, s.Next())
	pe.SetRange(tail.HeadPosition().ToRange())
	return [2]*model.Section{s, tail}
}

// cutAfter detaches and returns the non-blank leaves of s after offset.
func (pe *PostEditor) cutAfter(s *model.Section, offset int) []*model.Marker {
	s.SplitMarkerAtOffset(offset)
	before, err := s.MarkerBeforeOffset(offset)
	errs.Assert(err == nil, "no marker boundary at offset %d", offset)

	start := s.Markers.Head()
	if before != nil {
		start = before.Next()
	}
	var out []*model.Marker
	for m := start; m != nil; {
		next := m.Next()
		s.Markers.Remove(m)
		if !m.IsBlank() {
			out = append(out, m)
		}
		m = next
	}
	pe.markDirty(s)
	return out
}

// SplitMarkers makes marker boundaries at both ends of rng in every markerable
// section it touches and returns the markers inside it.
func (pe *PostEditor) SplitMarkers(rng model.Range) []*model.Marker {
	var out []*model.Marker
	pe.post.WalkMarkerableSections(rng, func(s *model.Section) {
		trimmed := rng.TrimTo(s)
		if trimmed.IsCollapsed() {
			return
		}
		s.SplitMarkerAtOffset(trimmed.Head.Offset)
		s.SplitMarkerAtOffset(trimmed.Tail.Offset)
		pe.markDirty(s)
		s.MarkersInRange(trimmed.Head.Offset, trimmed.Tail.Offset, func(m *model.Marker, _ model.MarkerRangeInfo) {
			out = append(out, m)
		})
	})
	return out
}

// MoveSectionUp swaps section with its previous sibling.
func (pe *PostEditor) MoveSectionUp(section *model.Section) {
	pe.assertInPost(section)
	prev := section.Prev()
	if prev == nil {
		return
	}
	container := section.Container()
	container.Remove(section)
	container.InsertBefore(section, prev)
	pe.markContainerDirty(section)
}

// MoveSectionDown swaps section with its next sibling.
func (pe *PostEditor) MoveSectionDown(section *model.Section) {
	pe.assertInPost(section)
	next := section.Next()
	if next == nil {
		return
	}
	container := section.Container()
	container.Remove(next)
	container.InsertBefore(next, section)
	pe.markContainerDirty(section)
}

// InsertCard inserts a card at pos, splitting a markerable section when pos is
// inside one. With edit set the card first renders its edit face.
func (pe *PostEditor) InsertCard(pos model.Position, name string, payload map[string]any, edit bool) *model.Section {
	card := pe.builder.CreateCardSection(name, payload)
	var next model.Position
	if pos.IsBlank() {
		pe.InsertSectionAtEnd(card)
		next = card.TailPosition()
	} else {
		pe.assertPosition(pos)
		next = pe.insertSections(pos, []*model.Section{card})
	}
	if edit {
		pe.editor.cardModes[card] = render.CardEdit
	}
	pe.SetRange(next.ToRange())
	return card
}

// SetCardPayload replaces a card's payload and renders the card again.
func (pe *PostEditor) SetCardPayload(section *model.Section, payload map[string]any) {
	pe.assertInPost(section)
	errs.Assert(section.IsCardSection(), "%s is not a card", section.Kind)
	if payload == nil {
		payload = map[string]any{}
	}
	section.Payload = payload
	pe.markDirty(section)
}

// SetAtomValue replaces an atom's value and payload and renders the atom again.
func (pe *PostEditor) SetAtomValue(atom *model.Marker, value string, payload map[string]any) {
	errs.Assert(atom.IsAtom(), "marker is not an atom")
	pe.assertInPost(atom.Section)
	if payload == nil {
		payload = map[string]any{}
	}
	atom.Value, atom.Payload = value, payload
	pe.markDirty(atom)
}

// setCardMode switches the rendered face of a card without changing the post.
func (pe *PostEditor) setCardMode(section *model.Section, mode render.CardMode) {
	if t := pe.editor.tree; t != nil {
		if rn := t.NodeForModel(section); rn != nil {
			rn.CardMode = mode
			rn.MarkDirty()
			return
		}
	}
	pe.editor.cardModes[section] = mode
}

func (pe *PostEditor) removeMarker(m *model.Marker) {
	s := m.Section
	s.Markers.Remove(m)
	pe.markDirty(s)
}

// importSection copies s with the editor's builder so that its markups are interned
// with the post's own.
func (pe *PostEditor) importSection(s *model.Section) *model.Section {
	b := pe.builder
	switch s.Kind {
	case model.SectionMarkup:
		return b.CreateMarkupSection(s.TagName, pe.importMarkers(s), s.Attributes)
	case model.SectionListItem:
		return b.CreateListItem(pe.importMarkers(s))
	case model.SectionList:
		items := make([]*model.Section, 0, s.Items.Len())
		s.Items.ForEach(func(item *model.Section, _ int) { items = append(items, pe.importSection(item)) })
		return b.CreateListSection(s.TagName, items, s.Attributes)
	case model.SectionImage:
		return b.CreateImageSection(s.Src)
	default:
		return b.CreateCardSection(s.Name, copyPayload(s.Payload))
	}
}

func (pe *PostEditor) importMarkers(s *model.Section) []*model.Marker {
	out := make([]*model.Marker, 0, s.Markers.Len())
	s.Markers.ForEach(func(m *model.Marker, _ int) {
		if m.IsBlank() {
			return
		}
		markups := make([]*model.Markup, 0, len(m.Markups))
		for _, markup := range m.Markups {
			markups = append(markups, pe.builder.CreateMarkup(markup.TagName, markup.Attributes))
		}
		if m.IsAtom() {
			out = append(out, pe.builder.CreateAtom(m.Name, m.Value, copyPayload(m.Payload), markups...))
			return
		}
		out = append(out, pe.builder.CreateMarker(m.Value, markups...))
	})
	return out
}

// sectionHead returns the first position inside s.
func sectionHead(s *model.Section) model.Position {
	if s.IsListSection() {
		if first := s.Items.Head(); first != nil {
			return first.HeadPosition()
		}
		return model.BlankPosition()
	}
	return s.HeadPosition()
}

// sectionTail returns the last position inside s.
func sectionTail(s *model.Section) model.Position {
	if s.IsListSection() {
		if last := s.Items.Tail(); last != nil {
			return last.TailPosition()
		}
		return model.BlankPosition()
	}
	return s.TailPosition()
}

// attributeKey prefixes a bare attribute name with the section attribute prefix.
func attributeKey(key string) string {
	if strings.HasPrefix(key, "data-md-") {
		return key
	}
	return "data-md-" + key
}

func copyPayload(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	return out
}
