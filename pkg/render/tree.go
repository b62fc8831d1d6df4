// Package render keeps a post and its dom surface in correspondence.
//
// A Tree mirrors the model with RenderNodes and indexes them two ways: by model node
// and by the dom.ID stamped on every dom node the renderer creates. The Renderer
// visits only dirty RenderNodes, so untouched sections keep their dom nodes.
package render

import (
	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// Tree is the render index for one post.
type Tree struct {
	Root *RenderNode

	byModel map[any]*RenderNode
	byID    map[dom.ID]*RenderNode
	nextID  dom.ID
}

// NewTree creates a tree for post rendered into root. Everything starts dirty.
func NewTree(post *model.Post, root *dom.Node) *Tree {
	t := &Tree{
		byModel: make(map[any]*RenderNode),
		byID:    make(map[dom.ID]*RenderNode),
	}
	t.Root = t.newNode(post, nil)
	t.Root.Element = root
	t.stamp(t.Root, root)
	return t
}

// Post returns the rendered post.
func (t *Tree) Post() *model.Post {
	post, _ := t.Root.Model.(*model.Post)
	return post
}

// IsDirty reports whether a render pass has work to do.
func (t *Tree) IsDirty() bool {
	return t.Root.IsDirty
}

// NodeForModel returns the render node of a post, section or marker, or nil.
func (t *Tree) NodeForModel(m any) *RenderNode {
	return t.byModel[m]
}

// ElementForSection returns the dom element rendered for s, or nil.
func (t *Tree) ElementForSection(s *model.Section) *dom.Node {
	if rn := t.byModel[s]; rn != nil {
		return rn.Element
	}
	return nil
}

// NodeFor resolves the render node owning n by walking up its ancestors until a
// stamped node is found. Nodes outside the rendered tree yield nil.
func (t *Tree) NodeFor(n *dom.Node) *RenderNode {
	for c := n; c != nil; c = c.Parent {
		if id := c.ID(); id != 0 {
			if rn, ok := t.byID[id]; ok && !rn.IsRemoved {
				return rn
			}
		}
	}
	return nil
}

// SectionNodeFor returns the nearest section render node at or above n's owner:
// list items resolve to themselves, text typed straight into a list resolves to the
// list. It returns nil when n resolves to the post or to nothing.
func (t *Tree) SectionNodeFor(n *dom.Node) *RenderNode {
	for rn := t.NodeFor(n); rn != nil; rn = rn.Parent {
		if _, ok := rn.Model.(*model.Section); ok {
			return rn
		}
	}
	return nil
}

// MarkDirty flags the render node of m for the next pass. A model node that has not
// been rendered yet flags its container instead, which makes the renderer pick it up.
func (t *Tree) MarkDirty(m any) {
	if rn := t.byModel[m]; rn != nil {
		rn.MarkDirty()
		return
	}
	switch node := m.(type) {
	case *model.Marker:
		if node.Section != nil {
			t.MarkDirty(node.Section)
		}
	case *model.Section:
		switch {
		case node.Parent != nil:
			t.MarkDirty(node.Parent)
		case node.Post != nil:
			t.MarkDirty(node.Post)
		}
	}
}

// ScheduleForRemoval flags the render node of m as removed. Call it before unlinking
// m from its container.
func (t *Tree) ScheduleForRemoval(m any) {
	if rn := t.byModel[m]; rn != nil {
		rn.ScheduleForRemoval()
	}
}

func (t *Tree) newNode(m any, parent *RenderNode) *RenderNode {
	rn := &RenderNode{Model: m, Parent: parent, IsDirty: true, tree: t}
	t.byModel[m] = rn
	return rn
}

// stamp assigns the node's id to el, allocating the id on first use. Every dom node
// a render node creates carries the same id.
func (t *Tree) stamp(rn *RenderNode, el *dom.Node) {
	if rn.id == 0 {
		t.nextID++
		rn.id = t.nextID
		t.byID[rn.id] = rn
	}
	el.SetID(rn.id)
}

func (t *Tree) forget(rn *RenderNode) {
	if t.byModel[rn.Model] == rn {
		delete(t.byModel, rn.Model)
	}
	if rn.id != 0 {
		delete(t.byID, rn.id)
	}
}
