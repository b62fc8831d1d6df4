package editor

import (
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// InsertPost inserts a copy of other at pos and returns the position after the
// inserted content, which is also left in Range.
//
// On a card-like section the copied sections go before or after it. Inside a
// markerable section the first piece of text merges at the cursor and the text after
// the cursor follows the last piece; cards and multi-item lists break the section,
// or its list, around themselves. Inside a list item pasted lists flatten into items.
func (pe *PostEditor) InsertPost(pos model.Position, other *model.Post) model.Position {
	pe.assertPosition(pos)
	if other == nil || other.IsBlank() {
		return pos
	}
	sections := make([]*model.Section, 0, other.Sections.Len())
	other.Sections.ForEach(func(s *model.Section, _ int) {
		sections = append(sections, pe.importSection(s))
	})
	next := pe.insertSections(pos, sections)
	pe.SetRange(next.ToRange())
	return next
}

// insertSections places detached top-level sections at pos.
func (pe *PostEditor) insertSections(pos model.Position, sections []*model.Section) model.Position {
	target := pos.Section
	if target.IsCardLike() {
		ref := target
		if pos.Offset > 0 {
			ref = target.Next()
		}
		for _, s := range sections {
			pe.InsertSectionBefore(pe.post.Sections, s, ref)
		}
		return sectionTail(sections[len(sections)-1])
	}

	ins := &inserter{pe: pe, target: target, inList: target.IsNested()}
	return ins.run(pos.Offset, pasteUnits(sections, target.IsNested()))
}

// pasteUnit is one piece of inserted content: leaves to merge into markerable
// sections, or a block placed whole.
type pasteUnit struct {
	markers []*model.Marker
	tag     string
	attrs   map[string]string
	block   *model.Section
}

func pasteUnits(sections []*model.Section, inList bool) []pasteUnit {
	var units []pasteUnit
	for _, s := range sections {
		switch {
		case s.IsListSection() && (inList || s.Items.Len() == 1):
			s.Items.ForEach(func(item *model.Section, _ int) {
				units = append(units, pasteUnit{markers: detachMarkers(item), tag: model.TagP})
			})
		case s.IsMarkerable():
			units = append(units, pasteUnit{markers: detachMarkers(s), tag: s.TagName, attrs: s.Attributes})
		default:
			units = append(units, pasteUnit{block: s})
		}
	}
	return units
}

func detachMarkers(s *model.Section) []*model.Marker {
	markers := s.Markers.Items()
	s.Markers.Splice(s.Markers.Head(), len(markers), nil)
	return markers
}

// inserter tracks where the next unit goes while pasting into a markerable target.
type inserter struct {
	pe     *PostEditor
	target *model.Section
	inList bool

	// open receives the next text unit; only the target is open, and only before
	// anything else was placed.
	open *model.Section
	// last is the most recently placed section; new sections follow it.
	last *model.Section
	// lastText is the section the trailing leaves join, when the last unit was text.
	lastText *model.Section
	// restList holds the items after the target once a block split its list.
	restList *model.Section
}

func (ins *inserter) run(offset int, units []pasteUnit) model.Position {
	pe := ins.pe
	t := ins.target

	// Lazy splitting: a block at either edge goes beside the target untouched.
	if len(units) == 1 && units[0].block != nil {
		switch {
		case t.IsBlank() && !t.IsNested():
			block := units[0].block
			pe.ReplaceSection(t, block)
			return sectionTail(block)
		case offset == 0 && !t.IsNested():
			pe.InsertSectionBefore(pe.post.Sections, units[0].block, t)
			return sectionTail(units[0].block)
		case offset == t.Length() && !t.IsNested():
			pe.InsertSectionBefore(pe.post.Sections, units[0].block, t.Next())
			return sectionTail(units[0].block)
		}
	}

	tail := pe.cutAfter(t, offset)
	ins.open, ins.last = t, t
	headBlank := t.IsBlank()
	firstIsBlock := units[0].block != nil

	cursor := t.ToPosition(offset)
	for _, u := range units {
		if u.block != nil {
			cursor = ins.placeBlock(u.block)
		} else {
			cursor = ins.placeText(u)
		}
	}

	switch {
	case ins.lastText != nil:
		pe.appendMarkers(ins.lastText, tail)
	case len(tail) > 0:
		s := ins.tailSection(tail)
		cursor = s.HeadPosition()
	}

	// The target's head half came out empty and nothing joined it.
	if headBlank && firstIsBlock {
		pe.RemoveSection(t)
	}
	return cursor
}

func (ins *inserter) placeText(u pasteUnit) model.Position {
	pe := ins.pe
	s := ins.open
	if s == nil {
		s = ins.newSection(u)
	}
	pe.appendMarkers(s, u.markers)
	ins.open, ins.last, ins.lastText = nil, s, s
	return s.TailPosition()
}

func (ins *inserter) newSection(u pasteUnit) *model.Section {
	pe := ins.pe
	if ins.inList {
		item := pe.builder.CreateListItem(nil)
		pe.InsertSectionBefore(ins.last.Parent.Items, item, ins.last.Next())
		return item
	}
	s := pe.builder.CreateMarkupSection(u.tag, nil, u.attrs)
	pe.InsertSectionBefore(pe.post.Sections, s, ins.last.TopLevel().Next())
	return s
}

func (ins *inserter) placeBlock(block *model.Section) model.Position {
	pe := ins.pe
	if ins.inList {
		ins.splitList()
	}
	pe.InsertSectionBefore(pe.post.Sections, block, ins.last.TopLevel().Next())
	ins.open, ins.last, ins.lastText = nil, block, nil
	return sectionTail(block)
}

// splitList moves the items after ins.last into a new list after a gap for the block.
func (ins *inserter) splitList() {
	pe := ins.pe
	list := ins.last.Parent
	var rest []*model.Section
	for item := ins.last.Next(); item != nil; item = item.Next() {
		rest = append(rest, item)
	}
	if len(rest) > 0 {
		for _, item := range rest {
			list.Items.Remove(item)
		}
		pe.markDirty(list)
		ins.restList = pe.builder.CreateListSection(list.TagName, rest, list.Attributes)
		pe.InsertSectionBefore(pe.post.Sections, ins.restList, list.Next())
	}
	ins.last = list
	ins.inList = false
}

// tailSection makes a home for the leaves that followed the cursor when the
// inserted content ended with a block.
func (ins *inserter) tailSection(tail []*model.Marker) *model.Section {
	pe := ins.pe
	t := ins.target
	if !t.IsNested() {
		s := pe.builder.CreateMarkupSection(t.TagName, tail, t.Attributes)
		pe.InsertSectionBefore(pe.post.Sections, s, ins.last.TopLevel().Next())
		return s
	}
	item := pe.builder.CreateListItem(tail)
	if ins.restList != nil {
		pe.InsertSectionBefore(ins.restList.Items, item, ins.restList.Items.Head())
		return item
	}
	list := pe.builder.CreateListSection(t.Parent.TagName, []*model.Section{item}, t.Parent.Attributes)
	pe.InsertSectionBefore(pe.post.Sections, list, ins.last.TopLevel().Next())
	return item
}

func (pe *PostEditor) appendMarkers(s *model.Section, markers []*model.Marker) {
	for _, m := range markers {
		if m.IsBlank() {
			continue
		}
		s.Markers.Append(m)
	}
	pe.markDirty(s)
}
