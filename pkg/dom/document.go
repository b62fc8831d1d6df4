package dom

import "strings"

// Document owns nodes, their observers and the selection.
type Document struct {
	observers []*MutationObserver
	selection Selection
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) *Node {
	return &Node{Type: ElementNode, Tag: strings.ToLower(tag), doc: d}
}

// CreateText creates a detached text node.
func (d *Document) CreateText(data string) *Node {
	return &Node{Type: TextNode, Data: data, doc: d}
}

// CreateComment creates a detached comment node.
func (d *Document) CreateComment(data string) *Node {
	return &Node{Type: CommentNode, Data: data, doc: d}
}

// Adopt moves a detached subtree built by another document into d.
func (d *Document) Adopt(n *Node) {
	n.doc = d
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.Adopt(c)
	}
}

// Selection returns the current selection.
func (d *Document) Selection() Selection {
	return d.selection
}

// SetSelection replaces the selection.
func (d *Document) SetSelection(sel Selection) {
	d.selection = sel
}

// ClearSelection removes the selection.
func (d *Document) ClearSelection() {
	d.selection = Selection{}
}

// FlushMutations delivers the pending records of every observer.
func (d *Document) FlushMutations() {
	for _, o := range append([]*MutationObserver(nil), d.observers...) {
		o.Flush()
	}
}

func (d *Document) enqueue(rec MutationRecord) {
	for _, o := range d.observers {
		o.enqueue(rec)
	}
}

func (d *Document) addObserver(o *MutationObserver) {
	for _, existing := range d.observers {
		if existing == o {
			return
		}
	}
	d.observers = append(d.observers, o)
}

func (d *Document) removeObserver(o *MutationObserver) {
	for i, existing := range d.observers {
		if existing == o {
			d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
			return
		}
	}
}
