package model

import (
	"fmt"

	"github.com/yaklabco/gomobiledoc/pkg/errs"
)

// Range is an ordered pair of positions with an orientation. Head never follows Tail.
type Range struct {
	Head      Position
	Tail      Position
	Direction Direction
}

// NewRange creates a range. A zero tail collapses the range onto head.
func NewRange(head, tail Position, dir Direction) Range {
	if tail.IsBlank() {
		tail = head
	}
	return Range{Head: head, Tail: tail, Direction: dir}
}

// SectionRange creates a range from section offsets.
func SectionRange(headSection *Section, headOffset int, tailSection *Section, tailOffset int, dir Direction) Range {
	return NewRange(
		Position{Section: headSection, Offset: headOffset},
		Position{Section: tailSection, Offset: tailOffset},
		dir,
	)
}

// BlankRange returns the range that addresses nothing.
func BlankRange() Range {
	return Range{}
}

// IsBlank reports whether the range addresses nothing.
func (r Range) IsBlank() bool {
	return r.Head.IsBlank()
}

// IsCollapsed reports whether head and tail coincide.
func (r Range) IsCollapsed() bool {
	return r.Head.Equal(r.Tail)
}

// HeadSection returns the section of the head position.
func (r Range) HeadSection() *Section {
	return r.Head.Section
}

// TailSection returns the section of the tail position.
func (r Range) TailSection() *Section {
	return r.Tail.Section
}

// HeadSectionOffset returns the head offset.
func (r Range) HeadSectionOffset() int {
	return r.Head.Offset
}

// TailSectionOffset returns the tail offset.
func (r Range) TailSectionOffset() int {
	return r.Tail.Offset
}

// Focus returns the moving end: the head of a backward range, the tail otherwise.
func (r Range) Focus() Position {
	if r.Direction == Backward {
		return r.Head
	}
	return r.Tail
}

// Anchor returns the fixed end, opposite Focus.
func (r Range) Anchor() Position {
	if r.Direction == Backward {
		return r.Tail
	}
	return r.Head
}

// Equal reports whether both ranges have the same ends and direction.
func (r Range) Equal(other Range) bool {
	return r.Head.Equal(other.Head) && r.Tail.Equal(other.Tail) && r.Direction == other.Direction
}

// TrimTo clips the range to section. The result always lies inside section.
func (r Range) TrimTo(section *Section) Range {
	length := section.Length()

	headOffset := 0
	if section == r.Head.Section {
		headOffset = min(r.Head.Offset, length)
	}
	tailOffset := length
	if section == r.Tail.Section {
		tailOffset = min(r.Tail.Offset, length)
	}
	if headOffset > tailOffset {
		headOffset = tailOffset
	}
	return SectionRange(section, headOffset, section, tailOffset, r.Direction)
}

// Move collapses the range. A collapsed range moves its focus one step in dir; an
// expanded one collapses to its head (backward) or tail (forward).
func (r Range) Move(dir Direction) Range {
	errs.Assert(dir == Forward || dir == Backward, "a range can only move forward or backward, got %d", dir)
	if r.IsCollapsed() {
		return r.Focus().Move(dir).ToRange()
	}
	if dir == Backward {
		return r.Head.ToRange()
	}
	return r.Tail.ToRange()
}

// Extend moves the focus by units steps, keeping the anchor. A range without
// direction takes the direction of units. Extending by zero returns the range.
func (r Range) Extend(units int) Range {
	if units == 0 {
		return r
	}
	switch r.Direction {
	case Forward:
		return orderedRange(r.Head, r.Tail.MoveUnits(units), Forward)
	case Backward:
		return orderedRange(r.Head.MoveUnits(units), r.Tail, Backward)
	default:
		dir := Forward
		if units < 0 {
			dir = Backward
		}
		return Range{Head: r.Head, Tail: r.Tail, Direction: dir}.Extend(units)
	}
}

// orderedRange keeps Head before Tail, flipping direction when the focus crossed the
// anchor.
func orderedRange(head, tail Position, dir Direction) Range {
	if head.Section != nil && tail.Section != nil && head.Compare(tail) > 0 {
		return NewRange(tail, head, -dir)
	}
	return NewRange(head, tail, dir)
}

// ExpandByMarker grows a single-section range outwards over the contiguous leaves
// matching pred. An end whose leaf does not match stays put.
func (r Range) ExpandByMarker(pred func(*Marker) bool) Range {
	section := r.Head.Section
	errs.Assert(section == r.Tail.Section, "ExpandByMarker requires a single section")
	errs.Assert(section.IsMarkerable(), "ExpandByMarker requires a markerable section")
	headMarker, headInMarker := r.Head.MarkerPosition()
	tailMarker := r.Tail.Marker()
	if headMarker == nil || tailMarker == nil {
		return r
	}
	if headInMarker == headMarker.Length() && headMarker.Next() != nil && !r.IsCollapsed() {
		headMarker = headMarker.Next()
	}

	expandedHead := headMarker
	if pred(expandedHead) {
		for prev := expandedHead.Prev(); prev != nil && pred(prev); prev = prev.Prev() {
			expandedHead = prev
		}
	} else {
		expandedHead = nil
	}

	expandedTail := tailMarker
	if pred(expandedTail) {
		for next := expandedTail.Next(); next != nil && pred(next); next = next.Next() {
			expandedTail = next
		}
	} else {
		expandedTail = nil
	}

	headOffset, tailOffset := r.Head.Offset, r.Tail.Offset
	if expandedHead != nil {
		headOffset = section.OffsetOfMarker(expandedHead, 0)
	}
	if expandedTail != nil {
		tailOffset = section.OffsetOfMarker(expandedTail, expandedTail.Length())
	}
	return SectionRange(section, headOffset, section, tailOffset, r.Direction)
}

// String formats the range for debugging.
func (r Range) String() string {
	return fmt.Sprintf("Range(%s, %s, %s)", r.Head, r.Tail, r.Direction)
}
