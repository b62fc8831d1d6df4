package model

import "github.com/yaklabco/gomobiledoc/pkg/errs"

// SplitResult reports the leaves a split added to and removed from a section.
type SplitResult struct {
	Added   []*Marker
	Removed []*Marker
}

// JoinResult reports the seam created by Join: the old tail of the receiving section
// and the first leaf appended to it. Either may be nil.
type JoinResult struct {
	BeforeMarker *Marker
	AfterMarker  *Marker
}

// MarkerRangeInfo describes how a section range overlaps one leaf.
type MarkerRangeInfo struct {
	// MarkerHead and MarkerTail are offsets inside the marker.
	MarkerHead int
	MarkerTail int

	// IsContained is set when the whole marker lies inside the range.
	IsContained bool
}

func (s *Section) assertMarkerable() {
	errs.Assert(s.IsMarkerable(), "%s is not markerable", s.Kind)
}

// OffsetOfMarker returns the section offset of markerOffset inside marker.
func (s *Section) OffsetOfMarker(marker *Marker, markerOffset int) int {
	s.assertMarkerable()
	errs.Assert(marker.Section == s, "cannot get offset of a marker that belongs to another section")
	offset := 0
	for m := s.Markers.Head(); m != nil && m != marker; m = m.Next() {
		offset += m.Length()
	}
	return offset + markerOffset
}

// SplitMarkerAtOffset ensures a leaf boundary exists at offset. A section without
// leaves gains a single blank marker. An offset already on a boundary changes nothing.
func (s *Section) SplitMarkerAtOffset(offset int) SplitResult {
	s.assertMarkerable()
	errs.Assert(offset >= 0 && offset <= s.Length(), "offset %d out of range for section of length %d", offset, s.Length())

	var result SplitResult
	if s.Markers.IsEmpty() {
		blank := s.builder.CreateMarker("")
		s.Markers.Append(blank)
		result.Added = append(result.Added, blank)
		return result
	}

	current := 0
	for m := s.Markers.Head(); m != nil; m = m.Next() {
		length := m.Length()
		if offset == current || offset == current+length {
			return result
		}
		if offset < current+length {
			parts := m.SplitAtOffset(offset - current)
			s.Markers.Splice(m, 1, parts[:])
			result.Removed = append(result.Removed, m)
			result.Added = append(result.Added, parts[0], parts[1])
			return result
		}
		current += length
	}
	return result
}

// MarkersInRange calls fn for every leaf overlapping [head, tail). A collapsed range
// visits nothing. The next leaf is read before fn runs, so fn may remove the current one.
func (s *Section) MarkersInRange(head, tail int, fn func(*Marker, MarkerRangeInfo)) {
	s.assertMarkerable()
	currentHead, currentTail := 0, 0
	for m := s.Markers.Head(); m != nil; {
		next := m.Next()
		length := m.Length()
		currentTail += length
		if currentTail > head && currentHead < tail {
			markerHead := max(head-currentHead, 0)
			markerTail := length - max(currentTail-tail, 0)
			fn(m, MarkerRangeInfo{
				MarkerHead:  markerHead,
				MarkerTail:  markerTail,
				IsContained: markerHead == 0 && markerTail == length,
			})
		}
		currentHead += length
		m = next
		if currentHead > tail {
			break
		}
	}
}

// MarkersFor returns detached copies of the leaves covering [head, tail), with partly
// covered text markers trimmed to the covered slice.
func (s *Section) MarkersFor(head, tail int) []*Marker {
	var out []*Marker
	s.MarkersInRange(head, tail, func(m *Marker, info MarkerRangeInfo) {
		cloned := m.Clone()
		if !info.IsContained && !cloned.IsAtom() {
			cloned.Value = UnitSlice(m.Value, info.MarkerHead, info.MarkerTail)
		}
		out = append(out, cloned)
	})
	return out
}

// Join appends copies of other's non-blank leaves to s.
func (s *Section) Join(other *Section) JoinResult {
	s.assertMarkerable()
	other.assertMarkerable()

	result := JoinResult{BeforeMarker: s.Markers.Tail()}
	other.Markers.ForEach(func(m *Marker, _ int) {
		if m.IsBlank() {
			return
		}
		cloned := m.Clone()
		s.Markers.Append(cloned)
		if result.AfterMarker == nil {
			result.AfterMarker = cloned
		}
	})
	return result
}

// TextUntil returns the section text before offset.
func (s *Section) TextUntil(offset int) string {
	return UnitSlice(s.Text(), 0, offset)
}

// MarkerBeforeOffset returns the leaf that ends exactly at offset.
//
// At offset zero it returns a nil marker and a nil error, also for a section without
// leaves: nothing precedes the head, and a nil marker passed to Markers.InsertAfter
// prepends. An offset inside a leaf is ErrMidMarker and an offset past the end is
// ErrInvalidPosition.
func (s *Section) MarkerBeforeOffset(offset int) (*Marker, error) {
	s.assertMarkerable()
	if offset == 0 {
		return nil, nil
	}
	current := 0
	for m := s.Markers.Head(); m != nil; m = m.Next() {
		current += m.Length()
		if current == offset {
			return m, nil
		}
		if current > offset {
			return nil, errs.ErrMidMarker
		}
	}
	return nil, errs.ErrInvalidPosition
}

// MarkerPositionAtOffset resolves a section offset to a leaf and an offset inside it.
// On a boundary the earlier leaf is returned with its full length as offset. A section
// without leaves yields a nil marker.
func (s *Section) MarkerPositionAtOffset(offset int) (*Marker, int) {
	s.assertMarkerable()
	remaining := offset
	for m := s.Markers.Head(); m != nil; m = m.Next() {
		step := min(remaining, m.Length())
		remaining -= step
		if remaining == 0 {
			return m, step
		}
	}
	return nil, 0
}

// SplitAt cuts the section at offset into two detached sections of the same kind, tag
// and attributes. The receiver is left unchanged.
func (s *Section) SplitAt(offset int) [2]*Section {
	s.assertMarkerable()
	length := s.Length()
	offset = clamp(offset, 0, length)
	before := s.MarkersFor(0, offset)
	after := s.MarkersFor(offset, length)
	return [2]*Section{s.emptyCopy(before), s.emptyCopy(after)}
}

// ReplaceMarkers swaps the section's leaves for markers.
func (s *Section) ReplaceMarkers(markers []*Marker) {
	s.assertMarkerable()
	s.Markers.Splice(s.Markers.Head(), s.Markers.Len(), markers)
}

// emptyCopy returns a detached section shaped like s holding markers.
func (s *Section) emptyCopy(markers []*Marker) *Section {
	if s.Kind == SectionListItem {
		return s.builder.CreateListItem(markers)
	}
	return s.builder.CreateMarkupSection(s.TagName, markers, s.Attributes)
}
