package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses HTML as the body content of a document and returns a detached
// div holding the parsed nodes.
func (d *Document) ParseFragment(r io.Reader) (*Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, context)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	root := d.CreateElement("div")
	for _, hn := range nodes {
		if n := d.fromHTML(hn); n != nil {
			root.AppendChild(n)
		}
	}
	return root, nil
}

// ParseFragmentString is ParseFragment over a string.
func (d *Document) ParseFragmentString(s string) (*Node, error) {
	return d.ParseFragment(strings.NewReader(s))
}

func (d *Document) fromHTML(hn *html.Node) *Node {
	var n *Node
	switch hn.Type {
	case html.ElementNode:
		n = d.CreateElement(hn.Data)
		n.Attr = append([]html.Attribute(nil), hn.Attr...)
	case html.TextNode:
		return d.CreateText(hn.Data)
	case html.CommentNode:
		return d.CreateComment(hn.Data)
	default:
		return nil
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if child := d.fromHTML(c); child != nil {
			n.AppendChild(child)
		}
	}
	return n
}

// Render writes n and its descendants as HTML.
func Render(w io.Writer, n *Node) error {
	if err := html.Render(w, toHTML(n)); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// OuterHTML returns the HTML of n including n itself.
func OuterHTML(n *Node) string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML returns the HTML of n's children.
func InnerHTML(n *Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(OuterHTML(c))
	}
	return b.String()
}

func toHTML(n *Node) *html.Node {
	hn := &html.Node{}
	switch n.Type {
	case ElementNode:
		hn.Type = html.ElementNode
		hn.Data = n.Tag
		hn.DataAtom = atom.Lookup([]byte(n.Tag))
		hn.Attr = append([]html.Attribute(nil), n.Attr...)
	case TextNode:
		hn.Type = html.TextNode
		hn.Data = n.Data
	case CommentNode:
		hn.Type = html.CommentNode
		hn.Data = n.Data
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		hn.AppendChild(toHTML(c))
	}
	return hn
}
