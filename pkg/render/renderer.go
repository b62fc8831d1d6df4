package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomobiledoc/internal/logging"
	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

const nbsp = "\u00a0"

// Options configures a Renderer.
type Options struct {
	Cards []CardDefinition
	Atoms []AtomDefinition

	// UnknownCardHandler renders cards without a definition. Without it such cards
	// fail with errs.ErrUnknownCard.
	UnknownCardHandler CardRenderFunc

	// UnknownAtomHandler renders atoms without a definition.
	UnknownAtomHandler AtomRenderFunc

	// Hooks receive save and remove requests. Nil applies them to the model directly.
	Hooks Hooks

	Logger *log.Logger
}

// Renderer turns dirty render nodes into dom.
type Renderer struct {
	doc         *dom.Document
	cards       map[string]CardDefinition
	atoms       map[string]AtomDefinition
	unknownCard CardRenderFunc
	unknownAtom AtomRenderFunc
	hooks       Hooks
	logger      *log.Logger
}

// New validates the card and atom definitions and creates a renderer for doc.
func New(doc *dom.Document, opts Options) (*Renderer, error) {
	r := &Renderer{
		doc:         doc,
		cards:       make(map[string]CardDefinition, len(opts.Cards)),
		atoms:       make(map[string]AtomDefinition, len(opts.Atoms)),
		unknownCard: opts.UnknownCardHandler,
		unknownAtom: opts.UnknownAtomHandler,
		hooks:       opts.Hooks,
		logger:      opts.Logger,
	}
	if r.logger == nil {
		r.logger = logging.Default()
	}
	for _, def := range opts.Cards {
		if err := validateCard(def); err != nil {
			return nil, err
		}
		r.cards[def.Name] = def
	}
	for _, def := range opts.Atoms {
		if err := validateAtom(def); err != nil {
			return nil, err
		}
		r.atoms[def.Name] = def
	}
	return r, nil
}

// SetHooks replaces the hooks used by card and atom environments.
func (r *Renderer) SetHooks(h Hooks) {
	r.hooks = h
}

// HasCard reports whether a definition exists for name.
func (r *Renderer) HasCard(name string) bool {
	_, ok := r.cards[name]
	return ok
}

// Render brings the dom in line with every dirty node of tree. It keeps going after a
// card or atom fails and returns the failures joined.
func (r *Renderer) Render(tree *Tree) error {
	if !tree.Root.IsDirty {
		return nil
	}
	var failures []error
	r.renderContainer(tree, tree.Root, tree.Post().Sections.Items(), &failures)
	tree.Root.IsDirty = false
	return errors.Join(failures...)
}

// Destroy runs every outstanding teardown in tree.
func (r *Renderer) Destroy(tree *Tree) {
	tree.Root.teardown()
}

func (r *Renderer) hooksFor(tree *Tree) Hooks {
	if r.hooks != nil {
		return r.hooks
	}
	return directHooks{tree: tree}
}

// renderContainer syncs rn's children with sections and orders their elements.
func (r *Renderer) renderContainer(tree *Tree, rn *RenderNode, sections []*model.Section, failures *[]error) {
	wanted := make([]*RenderNode, 0, len(sections))
	for _, s := range sections {
		child := tree.byModel[s]
		if child == nil || child.Parent != rn || child.IsRemoved {
			child = tree.newNode(s, rn)
		}
		wanted = append(wanted, child)
	}
	r.dropChildren(tree, rn, wanted)

	elements := make([]*dom.Node, 0, len(wanted))
	for _, child := range wanted {
		if child.IsDirty || child.Element == nil {
			r.renderSection(tree, child, failures)
		}
		if child.Element != nil {
			elements = append(elements, child.Element)
		}
	}
	placeChildren(rn.Element, elements)
}

// dropChildren destroys the children of rn that are not in wanted and installs wanted.
func (r *Renderer) dropChildren(tree *Tree, rn *RenderNode, wanted []*RenderNode) {
	keep := make(map[*RenderNode]bool, len(wanted))
	for _, child := range wanted {
		keep[child] = true
	}
	for _, old := range rn.Children {
		if !keep[old] {
			r.destroy(tree, old)
		}
	}
	rn.Children = wanted
}

func (r *Renderer) destroy(tree *Tree, rn *RenderNode) {
	rn.teardown()
	var forget func(*RenderNode)
	forget = func(n *RenderNode) {
		for _, child := range n.Children {
			forget(child)
		}
		n.IsRemoved = true
		tree.forget(n)
	}
	forget(rn)
	if rn.Element != nil {
		rn.Element.Remove()
	}
}

func (r *Renderer) renderSection(tree *Tree, rn *RenderNode, failures *[]error) {
	s := rn.Section()
	switch s.Kind {
	case model.SectionMarkup, model.SectionListItem:
		r.renderMarkerable(tree, rn, failures)
	case model.SectionList:
		el := r.ensureElement(tree, rn, s.TagName)
		syncAttributes(el, s.Attributes)
		r.renderContainer(tree, rn, s.Items.Items(), failures)
	case model.SectionImage:
		el := r.ensureElement(tree, rn, "img")
		el.SetAttribute("src", s.Src)
	case model.SectionCard:
		if err := r.renderCard(tree, rn); err != nil {
			r.logger.Warn("card render failed", logging.FieldCard, s.Name, logging.FieldError, err)
			*failures = append(*failures, err)
		}
	}
	rn.IsDirty = false
}

// ensureElement returns rn's element, replacing it in place when its tag changed.
func (r *Renderer) ensureElement(tree *Tree, rn *RenderNode, tag string) *dom.Node {
	if rn.Element != nil && rn.Element.IsElement(tag) {
		return rn.Element
	}
	el := r.doc.CreateElement(tag)
	tree.stamp(rn, el)
	if old := rn.Element; old != nil && old.Parent != nil {
		old.Parent.ReplaceChild(el, old)
	}
	rn.Element = el
	return el
}

func (r *Renderer) renderMarkerable(tree *Tree, rn *RenderNode, failures *[]error) {
	s := rn.Section()
	el := r.ensureElement(tree, rn, s.TagName)
	syncAttributes(el, s.Attributes)

	var wanted []*RenderNode
	s.Markers.ForEach(func(m *model.Marker, _ int) {
		if m.IsBlank() {
			return
		}
		leaf := tree.byModel[m]
		if leaf == nil || leaf.Parent != rn || leaf.IsRemoved {
			leaf = tree.newNode(m, rn)
		}
		wanted = append(wanted, leaf)
	})
	r.dropChildren(tree, rn, wanted)

	nodes := make([]*dom.Node, 0, len(wanted))
	for i, leaf := range wanted {
		isLast := i == len(wanted)-1
		if leaf.IsDirty || leaf.Element == nil || leaf.tailMoved(isLast) {
			if err := r.renderLeaf(tree, leaf, isLast); err != nil {
				*failures = append(*failures, err)
			}
		}
		nodes = append(nodes, leaf.Element)
	}
	if len(nodes) == 0 {
		if rn.placeholder == nil {
			rn.placeholder = r.doc.CreateElement("br")
		}
		nodes = append(nodes, rn.placeholder)
	}
	placeChildren(el, nodes)
}

func (r *Renderer) renderLeaf(tree *Tree, leaf *RenderNode, isLast bool) error {
	if leaf.Element != nil {
		leaf.teardown()
		leaf.Element.Remove()
		leaf.Element, leaf.content = nil, nil
	}
	m := leaf.Marker()

	var inner *dom.Node
	var err error
	if m.IsAtom() {
		inner, err = r.renderAtom(tree, leaf)
	} else {
		inner = r.doc.CreateText(displayText(m.Value, isLast))
		tree.stamp(leaf, inner)
	}

	top := inner
	for i := len(m.Markups) - 1; i >= 0; i-- {
		wrap := r.markupElement(m.Markups[i])
		tree.stamp(leaf, wrap)
		wrap.AppendChild(top)
		top = wrap
	}
	leaf.Element = top
	leaf.IsDirty = false
	leaf.renderedLast = isLast
	return err
}

func (r *Renderer) renderAtom(tree *Tree, leaf *RenderNode) (*dom.Node, error) {
	m := leaf.Marker()
	wrapper := r.doc.CreateElement("span")
	wrapper.SetAttribute("class", AtomClass)
	wrapper.SetAttribute("contenteditable", "false")
	tree.stamp(leaf, wrapper)

	render := r.unknownAtom
	if def, ok := r.atoms[m.Name]; ok {
		render = def.Render
	}
	if render == nil {
		return wrapper, fmt.Errorf("%w: %q", errs.ErrUnknownAtom, m.Name)
	}

	hooks := r.hooksFor(tree)
	content, err := render(AtomEnv{
		Name:       m.Name,
		Value:      m.Value,
		Payload:    m.Payload,
		Document:   r.doc,
		Marker:     m,
		OnTeardown: leaf.OnTeardown,
		Save: func(value string, payload map[string]any) {
			hooks.SaveAtom(m, value, payload)
		},
	})
	if err != nil {
		return wrapper, fmt.Errorf("%w: atom %q: %w", errs.ErrAtomContract, m.Name, err)
	}
	if content == nil {
		return wrapper, fmt.Errorf("%w: atom %q rendered no dom node", errs.ErrAtomContract, m.Name)
	}
	wrapper.AppendChild(content)
	leaf.content = content
	return wrapper, nil
}

func (r *Renderer) renderCard(tree *Tree, rn *RenderNode) error {
	s := rn.Section()
	wrapper := r.ensureElement(tree, rn, "div")
	wrapper.SetAttribute("class", CardClass)
	wrapper.SetAttribute("contenteditable", "false")

	rn.teardown()
	wrapper.RemoveChildren()
	rn.content = nil

	render := r.unknownCard
	if def, ok := r.cards[s.Name]; ok {
		render = def.Render
	}
	if render == nil {
		return fmt.Errorf("%w: %q", errs.ErrUnknownCard, s.Name)
	}

	hooks := r.hooksFor(tree)
	content, err := render(CardEnv{
		Name:       s.Name,
		Payload:    s.Payload,
		Mode:       rn.CardMode,
		Document:   r.doc,
		Section:    s,
		OnTeardown: rn.OnTeardown,
		Save: func(payload map[string]any, transition bool) {
			hooks.SaveCard(s, payload, transition)
		},
		Remove:  func() { hooks.RemoveCard(s) },
		Edit:    func() { hooks.SetCardMode(s, CardEdit) },
		Display: func() { hooks.SetCardMode(s, CardDisplay) },
	})
	if err != nil {
		return fmt.Errorf("%w: card %q: %w", errs.ErrCardContract, s.Name, err)
	}
	if content == nil {
		return fmt.Errorf("%w: card %q rendered no dom node", errs.ErrCardContract, s.Name)
	}
	wrapper.AppendChild(content)
	rn.content = content
	return nil
}

func (r *Renderer) markupElement(markup *model.Markup) *dom.Node {
	el := r.doc.CreateElement(markup.TagName)
	pairs := markup.AttributePairs()
	for i := 0; i+1 < len(pairs); i += 2 {
		key, value := pairs[i], pairs[i+1]
		if key == "href" {
			value = sanitizeHref(value)
		}
		el.SetAttribute(key, value)
	}
	return el
}

// sanitizeHref neutralises script URLs.
func sanitizeHref(href string) string {
	scheme := strings.ToLower(strings.TrimSpace(href))
	if strings.HasPrefix(scheme, "javascript:") || strings.HasPrefix(scheme, "vbscript:") {
		return "unsafe:" + href
	}
	return href
}

// displayText keeps runs of spaces visible in an editable surface: every second
// space of a run and a trailing space of the section become no-break spaces.
// The replacement keeps the code-unit length.
func displayText(text string, isLast bool) string {
	text = strings.ReplaceAll(text, "  ", " "+nbsp)
	if isLast && strings.HasSuffix(text, " ") {
		text = strings.TrimSuffix(text, " ") + nbsp
	}
	return text
}

func syncAttributes(el *dom.Node, attrs map[string]string) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		el.SetAttribute(k, attrs[k])
	}
	for _, a := range append(el.Attr[:0:0], el.Attr...) {
		if _, ok := attrs[a.Key]; !ok {
			el.RemoveAttribute(a.Key)
		}
	}
}

// placeChildren makes desired the exact child list of parent, moving only the nodes
// that are out of place.
func placeChildren(parent *dom.Node, desired []*dom.Node) {
	cur := parent.FirstChild
	for _, node := range desired {
		if cur == node {
			cur = cur.NextSibling
			continue
		}
		parent.InsertBefore(node, cur)
	}
	for cur != nil {
		next := cur.NextSibling
		parent.RemoveChild(cur)
		cur = next
	}
}
