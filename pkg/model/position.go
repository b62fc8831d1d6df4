package model

import "fmt"

// Direction orients movement and ranges.
type Direction int

// Directions. SameNode marks a range without orientation.
const (
	Backward Direction = -1
	SameNode Direction = 0
	Forward  Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "none"
	}
}

// Position addresses an offset inside a leaf section. The zero value is the blank
// position and addresses nothing.
type Position struct {
	Section *Section
	Offset  int
}

// BlankPosition returns the position that addresses nothing.
func BlankPosition() Position {
	return Position{}
}

// IsBlank reports whether the position addresses nothing.
func (p Position) IsBlank() bool {
	return p.Section == nil
}

// MarkerPosition resolves the position to a leaf and an offset inside it. Card-like
// sections and sections without leaves yield a nil marker.
func (p Position) MarkerPosition() (*Marker, int) {
	if p.Section == nil || !p.Section.IsMarkerable() {
		return nil, 0
	}
	return p.Section.MarkerPositionAtOffset(p.Offset)
}

// Marker returns the leaf the position falls in, or nil.
func (p Position) Marker() *Marker {
	m, _ := p.MarkerPosition()
	return m
}

// OffsetInMarker returns the offset inside Marker().
func (p Position) OffsetInMarker() int {
	_, offset := p.MarkerPosition()
	return offset
}

// IsHead reports whether the position is at offset zero.
func (p Position) IsHead() bool {
	return p.Section != nil && p.Offset == 0
}

// IsTail reports whether the position is at the section's end.
func (p Position) IsTail() bool {
	return p.Section != nil && p.Offset == p.Section.Length()
}

// IsHeadOfPost reports whether no addressable offset precedes the position.
func (p Position) IsHeadOfPost() bool {
	return p.IsHead() && p.Section.PrevLeafSection() == nil
}

// IsTailOfPost reports whether no addressable offset follows the position.
func (p Position) IsTailOfPost() bool {
	return p.IsTail() && p.Section.NextLeafSection() == nil
}

// Equal reports whether both positions address the same section offset.
func (p Position) Equal(other Position) bool {
	return p.Section == other.Section && p.Offset == other.Offset
}

// Compare orders two positions of the same post. It returns -1, 0 or 1.
func (p Position) Compare(other Position) int {
	if p.Section == other.Section {
		return compareInts(p.Offset, other.Offset)
	}
	a, b := p.Section.IndexPath(), other.Section.IndexPath()
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareInts(a[i], b[i]); c != 0 {
			return c
		}
	}
	return compareInts(len(a), len(b))
}

// ToRange returns a collapsed range at the position.
func (p Position) ToRange() Range {
	return NewRange(p, p, SameNode)
}

// Move returns the position one grapheme cluster in direction, so surrogate pairs and
// combining marks are stepped over whole. Crossing a section boundary costs one step;
// the edges of the post stay put.
func (p Position) Move(dir Direction) Position {
	if p.IsBlank() {
		return p
	}
	switch dir {
	case Forward:
		if p.IsTail() {
			if next := p.Section.NextLeafSection(); next != nil {
				return next.HeadPosition()
			}
			return p
		}
		return Position{Section: p.Section, Offset: p.Offset + p.stepWidth(Forward)}
	case Backward:
		if p.IsHead() {
			if prev := p.Section.PrevLeafSection(); prev != nil {
				return prev.TailPosition()
			}
			return p
		}
		return Position{Section: p.Section, Offset: p.Offset - p.stepWidth(Backward)}
	default:
		return p
	}
}

// MoveUnits applies Move |units| times, forward for positive units.
func (p Position) MoveUnits(units int) Position {
	dir := Forward
	if units < 0 {
		dir, units = Backward, -units
	}
	for range units {
		p = p.Move(dir)
	}
	return p
}

// MoveWord returns the position at the next word boundary in direction. At a
// section edge it moves into the neighbouring section like Move.
func (p Position) MoveWord(dir Direction) Position {
	if p.IsBlank() || dir == SameNode {
		return p
	}
	if (dir == Forward && p.IsTail()) || (dir == Backward && p.IsHead()) {
		return p.Move(dir)
	}
	if !p.Section.IsMarkerable() {
		return p.Move(dir)
	}

	spans := wordSpans(p.Section.Text())
	if dir == Forward {
		return Position{Section: p.Section, Offset: nextWordEnd(spans, p.Offset)}
	}
	return Position{Section: p.Section, Offset: prevWordStart(spans, p.Offset)}
}

// String formats the position for debugging.
func (p Position) String() string {
	if p.IsBlank() {
		return "Position(blank)"
	}
	return fmt.Sprintf("Position(%s %v, %d)", p.Section.Kind, p.Section.IndexPath(), p.Offset)
}

func (p Position) stepWidth(dir Direction) int {
	if !p.Section.IsMarkerable() {
		return 1
	}
	bounds := graphemeBoundaries(p.Section.Text())
	if dir == Forward {
		return nextBoundary(bounds, p.Offset) - p.Offset
	}
	return p.Offset - prevBoundary(bounds, p.Offset)
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
