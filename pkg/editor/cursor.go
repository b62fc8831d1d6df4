package editor

import (
	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/model"
	"github.com/yaklabco/gomobiledoc/pkg/render"
)

// rangeFromSelection maps a dom selection onto the model through the render tree.
// A selection outside the surface yields a blank range.
func (e *Editor) rangeFromSelection(sel dom.Selection) model.Range {
	if sel.IsEmpty() || e.tree == nil || !e.root.Contains(sel.AnchorNode) || !e.root.Contains(sel.FocusNode) {
		return model.BlankRange()
	}
	anchor, ok := e.positionFromPoint(sel.AnchorNode, sel.AnchorOffset)
	if !ok {
		return model.BlankRange()
	}
	focus, ok := e.positionFromPoint(sel.FocusNode, sel.FocusOffset)
	if !ok {
		return model.BlankRange()
	}

	dir := model.Forward
	switch {
	case sel.IsCollapsed():
		dir = model.SameNode
	case sel.IsBackward():
		dir = model.Backward
	}
	if anchor.Compare(focus) > 0 {
		anchor, focus = focus, anchor
	}
	return model.NewRange(anchor, focus, dir)
}

func (e *Editor) positionFromPoint(node *dom.Node, offset int) (model.Position, bool) {
	if node == e.root {
		children := e.root.Children()
		if offset >= len(children) {
			return e.post.TailPosition(), true
		}
		node, offset = children[offset], 0
	}

	rn := e.tree.SectionNodeFor(node)
	if rn == nil || rn.Element == nil {
		return model.BlankPosition(), false
	}
	s := rn.Section()
	switch {
	case s.IsCardLike():
		if node == rn.Element && offset == 0 {
			return s.HeadPosition(), true
		}
		return s.TailPosition(), true
	case s.IsListSection():
		if s.Items.IsEmpty() {
			return model.BlankPosition(), false
		}
		if item := s.Items.At(offset); item != nil && node == rn.Element {
			return item.HeadPosition(), true
		}
		return s.Items.Tail().TailPosition(), true
	}
	units := unitsBefore(rn.Element, node, offset)
	return s.ToPosition(min(units, s.Length())), true
}

// unitsBefore counts the text units inside el that precede the boundary point.
// Atom wrappers count as one unit and are not descended into.
func unitsBefore(el, node *dom.Node, offset int) int {
	count := 0
	done := false
	var walk func(n *dom.Node)
	walk = func(n *dom.Node) {
		i := 0
		for c := n.FirstChild; c != nil && !done; c = c.NextSibling {
			if n == node && i == offset {
				done = true
				return
			}
			switch {
			case c.IsText():
				if c == node {
					count += min(offset, model.UnitLen(c.Data))
					done = true
					return
				}
				count += model.UnitLen(c.Data)
			case c.HasClass(render.AtomClass):
				if c.Contains(node) {
					if c != node || offset > 0 {
						count++
					}
					done = true
					return
				}
				count++
			default:
				walk(c)
			}
			i++
		}
		if n == node {
			done = true
		}
	}
	walk(el)
	return count
}

// selectionFromRange maps rng onto dom boundary points. The anchor is the range's
// tail when it is backward.
func (e *Editor) selectionFromRange(rng model.Range) (dom.Selection, bool) {
	if e.tree == nil || rng.IsBlank() {
		return dom.Selection{}, false
	}
	headNode, headOffset, ok := e.pointFor(rng.Head)
	if !ok {
		return dom.Selection{}, false
	}
	tailNode, tailOffset, ok := e.pointFor(rng.Tail)
	if !ok {
		return dom.Selection{}, false
	}
	if rng.Direction == model.Backward {
		return dom.Selection{AnchorNode: tailNode, AnchorOffset: tailOffset, FocusNode: headNode, FocusOffset: headOffset}, true
	}
	return dom.Selection{AnchorNode: headNode, AnchorOffset: headOffset, FocusNode: tailNode, FocusOffset: tailOffset}, true
}

func (e *Editor) pointFor(pos model.Position) (*dom.Node, int, bool) {
	el := e.tree.ElementForSection(pos.Section)
	if el == nil {
		return nil, 0, false
	}
	if pos.Section.IsCardLike() {
		if el.Parent == nil {
			return nil, 0, false
		}
		return el.Parent, el.Index() + pos.Offset, true
	}

	remaining := pos.Offset
	var found *dom.Node
	foundOffset := 0
	var lastAtom *dom.Node
	var walk func(n *dom.Node)
	walk = func(n *dom.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			switch {
			case c.IsText():
				length := model.UnitLen(c.Data)
				if remaining <= length {
					found, foundOffset = c, remaining
					return
				}
				remaining -= length
				lastAtom = nil
			case c.HasClass(render.AtomClass):
				if remaining == 0 {
					found, foundOffset = c.Parent, c.Index()
					return
				}
				remaining--
				lastAtom = c
			default:
				walk(c)
			}
		}
	}
	walk(el)

	switch {
	case found != nil:
		return found, foundOffset, true
	case lastAtom != nil:
		return lastAtom.Parent, lastAtom.Index() + 1, true
	default:
		return el, 0, true
	}
}

// pathPoint addresses a position by section index path. It survives structural
// changes that keep sections in place, such as reparsing and undo.
type pathPoint struct {
	Path   []int `json:"path"`
	Offset int   `json:"offset"`
}

// pathRange is a Range expressed with pathPoints.
type pathRange struct {
	Head      pathPoint       `json:"head"`
	Tail      pathPoint       `json:"tail"`
	Direction model.Direction `json:"direction"`
}

func toPathRange(rng model.Range) pathRange {
	if rng.IsBlank() {
		return pathRange{}
	}
	return pathRange{
		Head:      pathPoint{Path: rng.Head.Section.IndexPath(), Offset: rng.Head.Offset},
		Tail:      pathPoint{Path: rng.Tail.Section.IndexPath(), Offset: rng.Tail.Offset},
		Direction: rng.Direction,
	}
}

func (pr pathRange) resolve(post *model.Post) model.Range {
	if len(pr.Head.Path) == 0 {
		return model.BlankRange()
	}
	head, tail := pr.Head.resolve(post), pr.Tail.resolve(post)
	if head.IsBlank() || tail.IsBlank() {
		return model.BlankRange()
	}
	if head.Compare(tail) > 0 {
		tail = head
	}
	return model.NewRange(head, tail, pr.Direction)
}

func (p pathPoint) resolve(post *model.Post) model.Position {
	s := post.SectionAtPath(p.Path)
	if s == nil {
		return post.TailPosition()
	}
	if s.IsListSection() {
		return sectionHead(s)
	}
	return s.ToPosition(min(max(p.Offset, 0), s.Length()))
}

// domPathPoint addresses a dom boundary point by the structure of the surface alone:
// the index of the top-level element, then of the list item, and the units before
// the point. It is read before a reparse replaces the nodes the tree knows.
func (e *Editor) domPathPoint(node *dom.Node, offset int) (pathPoint, bool) {
	if node == e.root {
		return pathPoint{Path: []int{offset}}, true
	}
	top := node
	for top != nil && top.Parent != e.root {
		top = top.Parent
	}
	if top == nil {
		return pathPoint{}, false
	}
	path := []int{top.Index()}

	if top.HasClass(render.CardClass) || top.IsElement("img") {
		if node == top && offset == 0 {
			return pathPoint{Path: path}, true
		}
		return pathPoint{Path: path, Offset: 1}, true
	}

	container := top
	if top.IsElement(model.TagUL, model.TagOL) {
		item := node
		for item != nil && item.Parent != top {
			item = item.Parent
		}
		if item == nil {
			return pathPoint{Path: append(path, offset)}, true
		}
		path = append(path, elementIndex(item))
		container = item
	}
	return pathPoint{Path: path, Offset: unitsBefore(container, node, offset)}, true
}

// elementIndex returns the position of n among its element siblings.
func elementIndex(n *dom.Node) int {
	i := 0
	for c := n.Parent.FirstChild; c != nil && c != n; c = c.NextSibling {
		if c.Type == dom.ElementNode {
			i++
		}
	}
	return i
}
