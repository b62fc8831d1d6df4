// Package dom is an in-memory rendering surface: a mutable node tree with opaque
// node ids, a selection and batched mutation observation.
//
// Every structural, text and attribute change made through the Node methods is
// reported to the mutation observers whose root contains the changed node. Records
// queue up until the observer is flushed, the way a browser delivers them after the
// current task.
package dom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/yaklabco/gomobiledoc/pkg/errs"
)

// NodeType identifies the kind of a Node.
type NodeType uint8

// Node types.
const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
)

// ID is an opaque identifier a renderer stamps on nodes it owns. Zero means unset.
type ID uint64

// Node is an element, text or comment node.
type Node struct {
	Type NodeType

	// Tag is the lower-case element name.
	Tag string

	// Attr holds element attributes in insertion order.
	Attr []html.Attribute

	// Data is the content of text and comment nodes.
	Data string

	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node

	doc *Document
	id  ID
}

// ID returns the id stamped on the node.
func (n *Node) ID() ID {
	return n.id
}

// SetID stamps id on the node. Stamping is not a mutation.
func (n *Node) SetID(id ID) {
	n.id = id
}

// Document returns the owner document.
func (n *Node) Document() *Document {
	return n.doc
}

// IsElement reports whether the node is an element, optionally with one of tags.
func (n *Node) IsElement(tags ...string) bool {
	if n == nil || n.Type != ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, tag := range tags {
		if n.Tag == tag {
			return true
		}
	}
	return false
}

// IsText reports whether the node is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.Type == TextNode
}

// Children returns the child nodes in order.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ChildAt returns the child at index, or nil.
func (n *Node) ChildAt(index int) *Node {
	c := n.FirstChild
	for i := 0; i < index && c != nil; i++ {
		c = c.NextSibling
	}
	if index < 0 {
		return nil
	}
	return c
}

// Index returns the position of n among its siblings, or -1 for a root.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	i := 0
	for c := n.Parent.FirstChild; c != n; c = c.NextSibling {
		i++
	}
	return i
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	for c := other; c != nil; c = c.Parent {
		if c == n {
			return true
		}
	}
	return false
}

// TextContent returns the concatenated text of all descendant text nodes.
func (n *Node) TextContent() string {
	if n.Type != ElementNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*Node)
	walk = func(c *Node) {
		for ; c != nil; c = c.NextSibling {
			if c.Type == TextNode {
				b.WriteString(c.Data)
			}
			walk(c.FirstChild)
		}
	}
	walk(n.FirstChild)
	return b.String()
}

// Attribute returns the value of the named attribute.
func (n *Node) Attribute(key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether the class attribute lists class.
func (n *Node) HasClass(class string) bool {
	value, ok := n.Attribute("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(value) {
		if c == class {
			return true
		}
	}
	return false
}

// SetAttribute sets an attribute and records the change.
func (n *Node) SetAttribute(key, value string) {
	old, had := n.Attribute(key)
	if had && old == value {
		return
	}
	replaced := false
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = value
			replaced = true
			break
		}
	}
	if !replaced {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
	}
	n.record(MutationRecord{Type: MutationAttributes, Target: n, AttributeName: key, OldValue: old})
}

// RemoveAttribute deletes an attribute and records the change.
func (n *Node) RemoveAttribute(key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i:i], n.Attr[i+1:]...)
			n.record(MutationRecord{Type: MutationAttributes, Target: n, AttributeName: key, OldValue: a.Val})
			return
		}
	}
}

// SetData replaces the content of a text or comment node and records the change.
func (n *Node) SetData(data string) {
	if n.Data == data {
		return
	}
	old := n.Data
	n.Data = data
	n.record(MutationRecord{Type: MutationCharacterData, Target: n, OldValue: old})
}

// AppendChild links child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	n.InsertBefore(child, nil)
}

// InsertBefore links child immediately before ref. A nil ref appends. A child that
// already has a parent is moved.
func (n *Node) InsertBefore(child, ref *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	errs.Assert(ref == nil || ref.Parent == n, "insertion reference is not a child of this node")

	child.Parent = n
	child.NextSibling = ref
	if ref == nil {
		child.PrevSibling = n.LastChild
		if n.LastChild != nil {
			n.LastChild.NextSibling = child
		} else {
			n.FirstChild = child
		}
		n.LastChild = child
	} else {
		child.PrevSibling = ref.PrevSibling
		if ref.PrevSibling != nil {
			ref.PrevSibling.NextSibling = child
		} else {
			n.FirstChild = child
		}
		ref.PrevSibling = child
	}

	n.record(MutationRecord{
		Type:            MutationChildList,
		Target:          n,
		AddedNodes:      []*Node{child},
		PreviousSibling: child.PrevSibling,
		NextSibling:     child.NextSibling,
	})
}

// RemoveChild unlinks child from n.
func (n *Node) RemoveChild(child *Node) {
	errs.Assert(child.Parent == n, "node is not a child of this node")
	prev, next := child.PrevSibling, child.NextSibling
	if prev != nil {
		prev.NextSibling = next
	} else {
		n.FirstChild = next
	}
	if next != nil {
		next.PrevSibling = prev
	} else {
		n.LastChild = prev
	}
	child.Parent, child.PrevSibling, child.NextSibling = nil, nil, nil

	n.record(MutationRecord{
		Type:            MutationChildList,
		Target:          n,
		RemovedNodes:    []*Node{child},
		PreviousSibling: prev,
		NextSibling:     next,
	})
}

// ReplaceChild swaps old for child in place.
func (n *Node) ReplaceChild(child, old *Node) {
	if child == old {
		return
	}
	next := old.NextSibling
	n.RemoveChild(old)
	if next == child {
		next = child.NextSibling
	}
	n.InsertBefore(child, next)
}

// RemoveChildren unlinks every child of n.
func (n *Node) RemoveChildren() {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// Remove unlinks n from its parent, if any.
func (n *Node) Remove() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func (n *Node) record(rec MutationRecord) {
	if n.doc != nil {
		n.doc.enqueue(rec)
	}
}
