// Package dom converts dom subtrees into model sections.
//
// The parser builds fresh model nodes only. It never touches a section that already
// exists, so a failed parse leaves the post exactly as it was and a successful one can
// be spliced in by the caller.
package dom

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yaklabco/gomobiledoc/pkg/cards"
	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/model"
	"github.com/yaklabco/gomobiledoc/pkg/render"
)

// SectionAttributePrefix marks the element attributes copied onto sections.
const SectionAttributePrefix = "data-md-"

const nbsp = "\u00a0"

// Resolver maps the card and atom wrappers the renderer produced back to the model
// nodes they display. Both methods return copies owned by the caller.
type Resolver interface {
	ResolveCard(wrapper *dom.Node) (name string, payload map[string]any, ok bool)
	ResolveAtom(wrapper *dom.Node) (name, value string, payload map[string]any, ok bool)
}

// Options configures a Parser.
type Options struct {
	// Resolver recognises rendered cards and atoms. With a resolver set, a wrapper it
	// cannot resolve fails the parse; without one, wrappers are read as plain content.
	Resolver Resolver

	// CollapseWhitespace folds runs of HTML whitespace into one space and drops
	// whitespace-only text between blocks. Use it for authored HTML, not for a live
	// surface whose text is exact.
	CollapseWhitespace bool
}

// Parser turns dom nodes into sections built by its Builder.
type Parser struct {
	Builder *model.Builder
	opts    Options
}

// New creates a parser that builds with b.
func New(b *model.Builder, opts Options) *Parser {
	return &Parser{Builder: b, opts: opts}
}

// ParseSection parses node and returns the sections it describes. A list item
// element yields a list item; everything else yields top-level sections.
func (p *Parser) ParseSection(node *dom.Node) (sections []*model.Section, err error) {
	defer errs.Recover(&err)

	st := p.newState()
	if node.IsElement(model.TagLI) {
		return st.items(node)
	}
	if err := st.node(node); err != nil {
		return nil, err
	}
	st.close(false)
	return st.sections, nil
}

// ParsePost parses the children of root into a new post.
func (p *Parser) ParsePost(root *dom.Node) (post *model.Post, err error) {
	defer errs.Recover(&err)

	st := p.newState()
	if err := st.children(root); err != nil {
		return nil, err
	}
	st.close(false)
	return p.Builder.CreatePost(st.sections...), nil
}

func (p *Parser) newState() *state {
	return &state{p: p, b: p.Builder}
}

// state accumulates the sections of one parse.
type state struct {
	p *Parser
	b *model.Builder

	sections []*model.Section

	// current is the open markerable section receiving leaves.
	current *model.Section

	// list is the open list section while its items are parsed.
	list *model.Section

	// deferred holds sections met inside a list. They follow the list.
	deferred []*model.Section

	// tags holds the enclosing section tags nested blocks inherit.
	tags []string

	markups []*model.Markup
}

func (st *state) children(parent *dom.Node) error {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if err := st.node(c); err != nil {
			return err
		}
	}
	return nil
}

func (st *state) node(n *dom.Node) error {
	switch n.Type {
	case dom.TextNode:
		st.text(n.Data)
		return nil
	case dom.ElementNode:
		return st.element(n)
	default:
		return nil
	}
}

//nolint:cyclop // One case per element family.
func (st *state) element(el *dom.Node) error {
	switch {
	case el.HasClass(render.AtomClass):
		return st.atom(el)
	case el.HasClass(render.CardClass):
		return st.card(el)
	case el.IsElement("br"):
		return nil
	case el.IsElement("script", "style", "head", "title", "meta", "link", "template"):
		return nil
	case markupTag(el.Tag) != "":
		return st.inlineMarkup(el)
	case model.IsValidMarkupSectionTag(el.Tag):
		return st.markupSection(el)
	case model.IsValidListSectionTag(el.Tag):
		return st.listSection(el)
	case el.IsElement(model.TagLI):
		return st.listItem(el)
	case el.IsElement(model.TagImg):
		st.close(true)
		if src, _ := el.Attribute("src"); src != "" {
			st.emit(st.b.CreateImageSection(src))
		}
		return nil
	case el.IsElement("hr"):
		st.close(true)
		st.emit(st.b.CreateCardSection(cards.HRName, nil))
		return nil
	case el.IsElement("pre"):
		st.close(true)
		st.emit(st.b.CreateCardSection(cards.CodeName, codePayload(el)))
		return nil
	case isBlock(el.Tag):
		st.close(true)
		if err := st.children(el); err != nil {
			return err
		}
		st.close(true)
		return nil
	default:
		return st.children(el)
	}
}

func (st *state) atom(el *dom.Node) error {
	if st.p.opts.Resolver == nil {
		return st.children(el)
	}
	name, value, payload, ok := st.p.opts.Resolver.ResolveAtom(el)
	if !ok {
		return fmt.Errorf("%w: atom wrapper without a model", errs.ErrUnknownAtom)
	}
	st.open()
	st.current.Markers.Append(st.b.CreateAtom(name, value, payload, st.markups...))
	return nil
}

func (st *state) card(el *dom.Node) error {
	if st.p.opts.Resolver == nil {
		return st.children(el)
	}
	name, payload, ok := st.p.opts.Resolver.ResolveCard(el)
	if !ok {
		return fmt.Errorf("%w: card wrapper without a model", errs.ErrUnknownCard)
	}
	st.close(true)
	st.emit(st.b.CreateCardSection(name, payload))
	return nil
}

func (st *state) inlineMarkup(el *dom.Node) error {
	markup := st.b.CreateMarkup(markupTag(el.Tag), markupAttributes(el))
	st.markups = append(st.markups, markup)
	err := st.children(el)
	st.markups = st.markups[:len(st.markups)-1]
	return err
}

func (st *state) markupSection(el *dom.Node) error {
	if st.list != nil {
		return st.children(el)
	}
	st.close(true)
	tag := st.inherited(el.Tag)
	section := st.b.CreateMarkupSection(tag, nil, sectionAttributes(el))
	st.current = section

	st.tags = append(st.tags, tag)
	err := st.children(el)
	st.tags = st.tags[:len(st.tags)-1]
	if err != nil {
		return err
	}
	if st.current == section {
		st.close(false)
	}
	return nil
}

func (st *state) listSection(el *dom.Node) error {
	if st.list != nil {
		// Nested lists flatten into the enclosing list.
		st.closeItem(true)
		return st.listChildren(el)
	}
	st.close(true)
	st.list = st.b.CreateListSection(el.Tag, nil, sectionAttributes(el))
	outerTags := st.tags
	st.tags = nil
	err := st.listChildren(el)
	st.tags = outerTags
	if err != nil {
		return err
	}
	st.closeItem(true)
	list, deferred := st.list, st.deferred
	st.list, st.deferred = nil, nil
	if !list.Items.IsEmpty() {
		st.emit(list)
	}
	for _, s := range deferred {
		st.emit(s)
	}
	return nil
}

// items parses a single list item element into the items it holds. Nested lists
// add items of their own.
func (st *state) items(li *dom.Node) ([]*model.Section, error) {
	scratch := st.b.CreateListSection(model.TagUL, nil, nil)
	st.list = scratch
	if err := st.listItem(li); err != nil {
		return nil, err
	}
	items := scratch.Items.Items()
	for _, item := range items {
		scratch.Items.Remove(item)
	}
	return append(items, st.deferred...), nil
}

func (st *state) listChildren(el *dom.Node) error {
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		var err error
		switch {
		case c.IsElement(model.TagLI):
			err = st.listItem(c)
		case c.IsText() && strings.TrimSpace(c.Data) == "":
		default:
			err = st.node(c)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (st *state) listItem(el *dom.Node) error {
	if st.list == nil {
		// A stray item is read as a paragraph.
		st.close(true)
		err := st.children(el)
		st.close(true)
		return err
	}
	st.closeItem(true)
	st.current = st.b.CreateListItem(nil)
	if err := st.children(el); err != nil {
		return err
	}
	st.closeItem(false)
	return nil
}

// text appends text to the open section, opening one when needed.
func (st *state) text(data string) {
	data = strings.ReplaceAll(data, nbsp, " ")
	if st.p.opts.CollapseWhitespace {
		data = collapseWhitespace(data)
		if st.current == nil && strings.TrimSpace(data) == "" {
			return
		}
		if st.current != nil && st.current.IsBlank() {
			data = strings.TrimLeft(data, " ")
		}
	}
	if data == "" {
		return
	}
	st.open()
	if tail := st.current.Markers.Tail(); tail != nil && !tail.IsAtom() && sameMarkups(tail.Markups, st.markups) {
		tail.Value += data
		return
	}
	st.current.Markers.Append(st.b.CreateMarker(data, st.markups...))
}

// open makes sure a markerable section is receiving leaves.
func (st *state) open() {
	if st.current != nil {
		return
	}
	if st.list != nil {
		st.current = st.b.CreateListItem(nil)
		return
	}
	st.current = st.b.CreateMarkupSection(st.inherited(model.TagP), nil, nil)
}

// close finishes the open markerable section. With dropBlank set, a blank section
// is discarded: a block nested inside it is about to take its place.
func (st *state) close(dropBlank bool) {
	if st.list != nil {
		st.closeItem(dropBlank)
		return
	}
	section := st.current
	st.current = nil
	if section == nil || (dropBlank && section.IsBlank()) {
		return
	}
	st.trimTrailingSpace(section)
	st.emit(section)
}

func (st *state) closeItem(dropBlank bool) {
	item := st.current
	st.current = nil
	if item == nil || (dropBlank && item.IsBlank()) {
		return
	}
	st.trimTrailingSpace(item)
	st.list.Items.Append(item)
}

func (st *state) emit(section *model.Section) {
	if st.list != nil {
		st.deferred = append(st.deferred, section)
		return
	}
	st.sections = append(st.sections, section)
}

func (st *state) trimTrailingSpace(section *model.Section) {
	if !st.p.opts.CollapseWhitespace {
		return
	}
	if tail := section.Markers.Tail(); tail != nil && !tail.IsAtom() {
		tail.Value = strings.TrimRight(tail.Value, " ")
		if tail.Value == "" {
			section.Markers.Remove(tail)
		}
	}
}

// inherited returns the tag of the enclosing section for paragraphs nested in it.
func (st *state) inherited(tag string) string {
	if tag != model.TagP || len(st.tags) == 0 {
		return tag
	}
	return st.tags[len(st.tags)-1]
}

func sameMarkups(a, b []*model.Markup) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var whitespaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)

func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

// markupTag maps an inline element to its markup tag, or "" when it carries none.
func markupTag(tag string) string {
	switch tag {
	case "strike", "del":
		return model.MarkupS
	case "ins":
		return model.MarkupU
	}
	if model.IsValidMarkupTag(tag) {
		return tag
	}
	return ""
}

func markupAttributes(el *dom.Node) map[string]string {
	if !el.IsElement(model.MarkupA) {
		return nil
	}
	attrs := make(map[string]string)
	for _, a := range el.Attr {
		switch a.Key {
		case "href", "rel", "target", "title":
			attrs[a.Key] = strings.TrimPrefix(a.Val, "unsafe:")
		}
	}
	return attrs
}

func sectionAttributes(el *dom.Node) map[string]string {
	var attrs map[string]string
	for _, a := range el.Attr {
		if strings.HasPrefix(a.Key, SectionAttributePrefix) {
			if attrs == nil {
				attrs = make(map[string]string)
			}
			attrs[a.Key] = a.Val
		}
	}
	return attrs
}

func codePayload(pre *dom.Node) map[string]any {
	payload := map[string]any{cards.CodeKey: strings.TrimSuffix(pre.TextContent(), "\n")}
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if !c.IsElement("code") {
			continue
		}
		class, _ := c.Attribute("class")
		for _, name := range strings.Fields(class) {
			if lang, ok := strings.CutPrefix(name, "language-"); ok {
				payload[cards.LanguageKey] = lang
			}
		}
	}
	return payload
}

func isBlock(tag string) bool {
	switch tag {
	case "div", "section", "article", "header", "footer", "main", "nav", "body", "html",
		"figure", "figcaption", "table", "thead", "tbody", "tr", "td", "th", "dl", "dt", "dd",
		"address", "details", "summary", "form", "fieldset":
		return true
	}
	return false
}
