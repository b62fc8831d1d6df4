package dom

// Selection is a pair of boundary points. Offsets count UTF-16 code units inside text
// nodes and child indexes inside elements. The zero value is no selection.
type Selection struct {
	AnchorNode   *Node
	AnchorOffset int
	FocusNode    *Node
	FocusOffset  int
}

// Caret returns a collapsed selection at node and offset.
func Caret(node *Node, offset int) Selection {
	return Selection{AnchorNode: node, AnchorOffset: offset, FocusNode: node, FocusOffset: offset}
}

// IsEmpty reports whether there is no selection.
func (s Selection) IsEmpty() bool {
	return s.AnchorNode == nil
}

// IsCollapsed reports whether anchor and focus coincide.
func (s Selection) IsCollapsed() bool {
	return s.AnchorNode == s.FocusNode && s.AnchorOffset == s.FocusOffset
}

// IsBackward reports whether the focus precedes the anchor in document order.
func (s Selection) IsBackward() bool {
	if s.IsEmpty() || s.IsCollapsed() {
		return false
	}
	if s.AnchorNode == s.FocusNode {
		return s.FocusOffset < s.AnchorOffset
	}
	return comparePoints(s.FocusNode, s.FocusOffset, s.AnchorNode, s.AnchorOffset) < 0
}

// comparePoints orders two boundary points by their tree paths.
func comparePoints(a *Node, aOffset int, b *Node, bOffset int) int {
	pa, pb := pathOf(a), pathOf(b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			if pa[i] < pb[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(pa) < len(pb):
		if aOffset <= pb[len(pa)] {
			return -1
		}
		return 1
	case len(pa) > len(pb):
		if pa[len(pb)] < bOffset {
			return -1
		}
		return 1
	case aOffset < bOffset:
		return -1
	case aOffset > bOffset:
		return 1
	default:
		return 0
	}
}

func pathOf(n *Node) []int {
	var path []int
	for c := n; c.Parent != nil; c = c.Parent {
		path = append([]int{c.Index()}, path...)
	}
	return path
}
