package editor

import (
	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// DeleteAtPosition deletes one unit next to pos in direction dir and returns the
// resulting cursor, which is also left in Range. Deleting backward at the head of the
// post, or forward at its tail, changes nothing.
func (pe *PostEditor) DeleteAtPosition(pos model.Position, dir model.Direction, unit Unit) model.Position {
	pe.assertPosition(pos)
	errs.Assert(dir == model.Backward || dir == model.Forward, "delete needs a direction, got %s", dir)

	var next model.Position
	if dir == model.Backward {
		next = pe.deleteBackward(pos, unit)
	} else {
		next = pe.deleteForward(pos, unit)
	}
	pe.SetRange(next.ToRange())
	return next
}

func (pe *PostEditor) deleteBackward(pos model.Position, unit Unit) model.Position {
	s := pos.Section
	if !pos.IsHead() {
		switch {
		case s.IsCardLike():
			return pe.replaceWithBlank(s)
		case unit == UnitWord:
			return pe.DeleteRange(model.NewRange(pos.MoveWord(model.Backward), pos, model.Backward))
		default:
			return pe.deleteCharBackward(pos)
		}
	}

	// A first list item leaves its list.
	if s.IsNested() && s.Prev() == nil {
		p := pe.unwrapListItem(s, model.TagP)
		return p.HeadPosition()
	}

	prev := s.PrevLeafSection()
	switch {
	case prev == nil:
		return pos
	case s.IsCardLike():
		if prev.IsMarkerable() && prev.IsBlank() {
			pe.RemoveSection(prev)
			return pos
		}
		return prev.TailPosition()
	case prev.IsCardLike():
		if s.IsBlank() {
			pe.RemoveSection(prev)
			return pos
		}
		return prev.TailPosition()
	case prev.IsBlank():
		pe.RemoveSection(prev)
		return pos
	default:
		return pe.joinSections(prev, s)
	}
}

func (pe *PostEditor) deleteForward(pos model.Position, unit Unit) model.Position {
	s := pos.Section
	if !pos.IsTail() {
		switch {
		case s.IsCardLike():
			return pe.replaceWithBlank(s)
		case unit == UnitWord:
			return pe.DeleteRange(model.NewRange(pos, pos.MoveWord(model.Forward), model.Forward))
		default:
			return pe.deleteCharForward(pos)
		}
	}

	next := s.NextLeafSection()
	switch {
	case next == nil:
		return pos
	case s.IsCardLike():
		if next.IsMarkerable() && next.IsBlank() {
			pe.RemoveSection(next)
			return pos
		}
		return next.HeadPosition()
	case next.IsCardLike():
		if s.IsBlank() {
			pe.RemoveSection(next)
			return pos
		}
		return next.HeadPosition()
	case next.IsBlank():
		pe.RemoveSection(next)
		return pos
	default:
		return pe.joinSections(s, next)
	}
}

func (pe *PostEditor) deleteCharBackward(pos model.Position) model.Position {
	s := pos.Section
	m, offset := s.MarkerPositionAtOffset(pos.Offset)
	errs.Assert(m != nil && offset > 0, "no leaf before offset %d", pos.Offset)

	if m.IsAtom() {
		pe.removeMarker(m)
		return s.ToPosition(pos.Offset - 1)
	}
	width := m.DeleteValueAtOffset(offset - 1)
	if m.IsBlank() {
		pe.removeMarker(m)
	} else {
		pe.markDirty(m)
	}
	return s.ToPosition(pos.Offset - width)
}

func (pe *PostEditor) deleteCharForward(pos model.Position) model.Position {
	s := pos.Section
	start := 0
	for m := s.Markers.Head(); m != nil; m = m.Next() {
		length := m.Length()
		if pos.Offset >= start+length {
			start += length
			continue
		}
		if m.IsAtom() {
			pe.removeMarker(m)
			return pos
		}
		m.DeleteValueAtOffset(pos.Offset - start)
		if m.IsBlank() {
			pe.removeMarker(m)
		} else {
			pe.markDirty(m)
		}
		return pos
	}
	return pos
}

// joinSections appends tail's leaves to head, removes tail and returns the seam.
func (pe *PostEditor) joinSections(head, tail *model.Section) model.Position {
	seam := head.Length()
	head.Join(tail)
	pe.markDirty(head)
	pe.RemoveSection(tail)
	return head.ToPosition(seam)
}

// replaceWithBlank swaps a section for a blank paragraph and returns its head.
func (pe *PostEditor) replaceWithBlank(s *model.Section) model.Position {
	blank := pe.builder.CreateMarkupSection(model.TagP, nil, nil)
	pe.ReplaceSection(s, blank)
	return blank.HeadPosition()
}

// DeleteRange removes the content of rng and returns the collapsed cursor left at
// its head, which is also left in Range. Sections fully inside the range go; the
// partial sections at its ends are trimmed and joined when both are markerable.
func (pe *PostEditor) DeleteRange(rng model.Range) model.Position {
	if rng.IsCollapsed() {
		pe.SetRange(rng.Head.ToRange())
		return rng.Head
	}
	pe.assertPosition(rng.Head)
	pe.assertPosition(rng.Tail)

	var pos model.Position
	if rng.Head.Section == rng.Tail.Section {
		pos = pe.deleteWithin(rng.Head.Section, rng.Head.Offset, rng.Tail.Offset)
	} else {
		pos = pe.deleteAcross(rng.Head, rng.Tail)
	}
	pe.SetRange(pos.ToRange())
	return pos
}

func (pe *PostEditor) deleteWithin(s *model.Section, from, to int) model.Position {
	if s.IsCardLike() {
		if from == 0 && to >= 1 {
			return pe.replaceWithBlank(s)
		}
		return s.ToPosition(from)
	}
	pe.removeText(s, from, to)
	return s.ToPosition(from)
}

func (pe *PostEditor) deleteAcross(head, tail model.Position) model.Position {
	hs, ts := head.Section, tail.Section

	var between []*model.Section
	for s := hs.NextLeafSection(); s != nil && s != ts; s = s.NextLeafSection() {
		between = append(between, s)
	}
	for _, s := range between {
		pe.RemoveSection(s)
	}

	keepHead, keepTail := true, true
	if hs.IsCardLike() {
		keepHead = head.Offset > 0
	} else {
		pe.removeText(hs, head.Offset, hs.Length())
	}
	if ts.IsCardLike() {
		keepTail = tail.Offset == 0
	} else {
		pe.removeText(ts, 0, tail.Offset)
	}

	switch {
	case keepHead && keepTail && hs.IsMarkerable() && ts.IsMarkerable():
		return pe.joinSections(hs, ts)
	case !keepHead && !keepTail:
		blank := pe.builder.CreateMarkupSection(model.TagP, nil, nil)
		pe.InsertSectionBefore(pe.post.Sections, blank, hs)
		pe.RemoveSection(hs)
		pe.RemoveSection(ts)
		return blank.HeadPosition()
	case !keepHead:
		pe.RemoveSection(hs)
		return ts.HeadPosition()
	case !keepTail:
		pe.RemoveSection(ts)
		return head
	default:
		return head
	}
}

// removeText deletes the units from..to of a markerable section.
func (pe *PostEditor) removeText(s *model.Section, from, to int) {
	var removed []*model.Marker
	s.MarkersInRange(from, to, func(m *model.Marker, info model.MarkerRangeInfo) {
		if info.IsContained {
			removed = append(removed, m)
			return
		}
		m.Value = model.UnitDelete(m.Value, info.MarkerHead, info.MarkerTail)
		pe.markDirty(m)
	})
	for _, m := range removed {
		pe.removeMarker(m)
	}
}
