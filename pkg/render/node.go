package render

import (
	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// CardMode selects which face of a card is rendered.
type CardMode uint8

// Card modes.
const (
	CardDisplay CardMode = iota
	CardEdit
)

// RenderNode ties one model node to the dom it rendered.
type RenderNode struct {
	// Model is the *model.Post, *model.Section or *model.Marker this node renders.
	Model any

	// Element is the outermost dom node rendered for Model.
	Element *dom.Node

	Parent   *RenderNode
	Children []*RenderNode

	IsDirty   bool
	IsRemoved bool

	// CardMode is the requested face of a card section.
	CardMode CardMode

	tree        *Tree
	id          dom.ID
	teardowns   []func()
	placeholder *dom.Node
	content     *dom.Node
	// renderedLast records whether a text leaf was the last leaf of its section
	// when it was rendered; its trailing space depends on it.
	renderedLast bool
}

// ID returns the id stamped on this node's dom, or zero before the first render.
func (rn *RenderNode) ID() dom.ID {
	return rn.id
}

// Section returns the model section, or nil when the node renders something else.
func (rn *RenderNode) Section() *model.Section {
	s, _ := rn.Model.(*model.Section)
	return s
}

// Marker returns the model marker, or nil.
func (rn *RenderNode) Marker() *model.Marker {
	m, _ := rn.Model.(*model.Marker)
	return m
}

// IsCardLike reports whether the node renders a card or an atom, whose inner dom is
// owned by the host.
func (rn *RenderNode) IsCardLike() bool {
	if s := rn.Section(); s != nil {
		return s.IsCardSection()
	}
	if m := rn.Marker(); m != nil {
		return m.IsAtom()
	}
	return false
}

// tailMoved reports whether a text leaf entered or left the last slot of its
// section since it was rendered.
func (rn *RenderNode) tailMoved(isLast bool) bool {
	m := rn.Marker()
	return m != nil && !m.IsAtom() && rn.renderedLast != isLast
}

// Content returns the host-rendered dom inside a card or atom wrapper.
func (rn *RenderNode) Content() *dom.Node {
	return rn.content
}

// MarkDirty flags the node and every ancestor.
func (rn *RenderNode) MarkDirty() {
	for n := rn; n != nil; n = n.Parent {
		n.IsDirty = true
	}
}

// ScheduleForRemoval flags the node for removal on the next pass.
func (rn *RenderNode) ScheduleForRemoval() {
	rn.IsRemoved = true
	if rn.Parent != nil {
		rn.Parent.MarkDirty()
	}
}

// OnTeardown registers fn to run once when the node leaves the tree.
func (rn *RenderNode) OnTeardown(fn func()) {
	rn.teardowns = append(rn.teardowns, fn)
}

// teardown runs and clears the registered callbacks of rn and its descendants.
func (rn *RenderNode) teardown() {
	for _, child := range rn.Children {
		child.teardown()
	}
	fns := rn.teardowns
	rn.teardowns = nil
	for _, fn := range fns {
		fn()
	}
}
