package editor

import (
	"fmt"

	"github.com/yaklabco/gomobiledoc/internal/logging"
	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/model"
	"github.com/yaklabco/gomobiledoc/pkg/render"
)

// reparseSections rebuilds the model of the given section nodes from their dom.
// Any parse failure escalates to a full reparse.
func (e *Editor) reparseSections(nodes []*render.RenderNode) {
	e.reparse(func(pe *PostEditor) error {
		type parsed struct {
			old      *model.Section
			sections []*model.Section
		}
		results := make([]parsed, 0, len(nodes))
		for _, rn := range nodes {
			if rn.Element == nil || !e.root.Contains(rn.Element) {
				return e.reconcilePost(pe)
			}
			sections, err := e.parser.ParseSection(rn.Element)
			if err != nil {
				e.logger.Debug("section reparse failed", logging.FieldError, err)
				return e.reconcilePost(pe)
			}
			results = append(results, parsed{old: rn.Section(), sections: sections})
		}
		for _, r := range results {
			pe.reconcileSection(r.old, r.sections)
		}
		pe.ensureSection()
		return nil
	})
}

// reparsePost rebuilds the whole post from the surface.
func (e *Editor) reparsePost() {
	e.reparse(e.reconcilePost)
}

// reparse runs fn as an internal transaction: one undo snapshot, one render and one
// round of notifications. The cursor is read from the surface before fn runs.
func (e *Editor) reparse(fn func(pe *PostEditor) error) {
	e.inTransaction = true
	defer func() { e.inTransaction = false }()

	sel := e.doc.Selection()
	anchor, anchorOK := e.selectionPoint(sel.AnchorNode, sel.AnchorOffset)
	focus, focusOK := e.selectionPoint(sel.FocusNode, sel.FocusOffset)

	before, snapErr := e.snapshot()
	pe := newPostEditor(e)
	pe.action = actionInsertText
	if err := pe.apply(fn); err != nil {
		e.logger.Warn("reparse failed, rebuilding the surface", logging.FieldError, err)
		e.rebuildSurface()
		return
	}

	rng := e.rng
	if anchorOK && focusOK {
		head, tail := anchor.resolve(e.post), focus.resolve(e.post)
		dir := model.Forward
		switch {
		case sel.IsCollapsed():
			dir = model.SameNode
		case sel.IsBackward():
			dir = model.Backward
		}
		if head.Compare(tail) > 0 {
			head, tail = tail, head
		}
		rng = model.NewRange(head, tail, dir)
	}
	pe.SetRange(rng)

	if err := e.commit(pe); err != nil {
		e.logger.Warn("render after reparse failed", logging.FieldError, err)
	}
	if pe.didChange && snapErr == nil {
		e.history.push(before, pe.action, e.opts.Now())
	}
	e.notify(pe)
	e.inTransaction = false
	e.afterTransaction()
}

func (e *Editor) selectionPoint(node *dom.Node, offset int) (pathPoint, bool) {
	if node == nil || !e.root.Contains(node) {
		return pathPoint{}, false
	}
	return e.domPathPoint(node, offset)
}

// reconcilePost parses the surface and reconciles the post section by section.
func (e *Editor) reconcilePost(pe *PostEditor) error {
	parsed, err := e.parser.ParsePost(e.root)
	if err != nil {
		return fmt.Errorf("reparse post: %w", err)
	}
	fresh := parsed.Sections.Items()
	for _, s := range fresh {
		parsed.Sections.Remove(s)
	}
	old := e.post.Sections.Items()

	for i, s := range fresh {
		switch {
		case i < len(old) && sameShape(old[i], s):
			pe.reconcileInPlace(old[i], s)
		case i < len(old):
			pe.ReplaceSection(old[i], s)
		default:
			pe.InsertSectionAtEnd(s)
		}
	}
	for i := len(fresh); i < len(old); i++ {
		pe.RemoveSection(old[i])
	}
	pe.ensureSection()
	pe.refresh(e.post)
	return nil
}

// reconcileSection puts the sections parsed from old's element in its place. A
// section of the same shape is updated in place so that unchanged leaves keep
// their dom.
func (pe *PostEditor) reconcileSection(old *model.Section, parsed []*model.Section) {
	if old.Container() == nil {
		return
	}
	if len(parsed) == 1 && sameShape(old, parsed[0]) {
		pe.reconcileInPlace(old, parsed[0])
		return
	}
	container := old.Container()
	for _, s := range parsed {
		pe.InsertSectionBefore(container, s, old)
	}
	pe.RemoveSection(old)
}

func (pe *PostEditor) reconcileInPlace(old, fresh *model.Section) {
	if !sameAttributes(old.Attributes, fresh.Attributes) {
		old.Attributes = fresh.Attributes
		pe.markDirty(old)
	}
	switch old.Kind {
	case model.SectionMarkup, model.SectionListItem:
		pe.reconcileMarkers(old, fresh)
	case model.SectionList:
		pe.reconcileItems(old, fresh)
		return
	case model.SectionImage:
		if old.Src != fresh.Src {
			old.Src = fresh.Src
			pe.markDirty(old)
		}
	}
	pe.refresh(old)
}

func (pe *PostEditor) reconcileItems(old, fresh *model.Section) {
	newItems := fresh.Items.Items()
	if len(newItems) == 0 {
		pe.RemoveSection(old)
		return
	}
	for _, item := range newItems {
		fresh.Items.Remove(item)
	}
	oldItems := old.Items.Items()
	for i, item := range newItems {
		if i < len(oldItems) {
			pe.reconcileMarkers(oldItems[i], item)
			pe.refresh(oldItems[i])
			continue
		}
		pe.InsertSectionBefore(old.Items, item, nil)
	}
	for i := len(newItems); i < len(oldItems); i++ {
		pe.RemoveSection(oldItems[i])
	}
	pe.refresh(old)
}

// reconcileMarkers replaces old's leaves with fresh's, reusing every old leaf that
// matches the parsed one at the same index.
func (pe *PostEditor) reconcileMarkers(old, fresh *model.Section) {
	oldMarkers := old.Markers.Items()
	newMarkers := fresh.Markers.Items()
	structural := len(oldMarkers) != len(newMarkers)

	result := make([]*model.Marker, 0, len(newMarkers))
	for i, m := range newMarkers {
		if i < len(oldMarkers) && sameLeafShape(oldMarkers[i], m) {
			reused := oldMarkers[i]
			if reused.Value != m.Value {
				reused.Value = m.Value
				pe.markDirty(reused)
			}
			result = append(result, reused)
			continue
		}
		structural = true
		result = append(result, m)
	}
	if !structural {
		return
	}
	fresh.Markers.Splice(fresh.Markers.Head(), fresh.Markers.Len(), nil)
	old.Markers.Splice(old.Markers.Head(), old.Markers.Len(), nil)
	for _, m := range result {
		old.Markers.Append(m)
	}
	pe.markDirty(old)
}

// ensureSection keeps the post from ending up without sections.
func (pe *PostEditor) ensureSection() {
	if pe.post.Sections.IsEmpty() {
		pe.InsertSectionAtEnd(pe.builder.CreateMarkupSection(model.TagP, nil, nil))
	}
}

// refresh re-renders m without recording a change to the post.
func (pe *PostEditor) refresh(m any) {
	if t := pe.editor.tree; t != nil {
		t.MarkDirty(m)
	}
}

// rebuildSurface throws the rendered dom away and renders the post from scratch.
func (e *Editor) rebuildSurface() {
	if e.tree == nil {
		return
	}
	e.mutations.SuspendObservation(func() {
		e.renderer.Destroy(e.tree)
		e.root.RemoveChildren()
		e.tree = render.NewTree(e.post, e.root)
		if err := e.renderer.Render(e.tree); err != nil {
			e.logger.Warn("render failed", logging.FieldError, err)
		}
		e.writeSelection()
	})
}

func sameShape(a, b *model.Section) bool {
	if a.Kind != b.Kind || a.TagName != b.TagName {
		return false
	}
	if a.Kind == model.SectionCard {
		return a.Name == b.Name
	}
	return true
}

func sameLeafShape(a, b *model.Marker) bool {
	if a.Kind != b.Kind || !sameMarkups(a.Markups, b.Markups) {
		return false
	}
	if a.IsAtom() {
		return a.Name == b.Name && a.Value == b.Value
	}
	return true
}

func sameAttributes(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// treeResolver lets the parser recognise the card and atom wrappers of the tree.
type treeResolver struct {
	e *Editor
}

func (r treeResolver) ResolveCard(wrapper *dom.Node) (string, map[string]any, bool) {
	if r.e.tree == nil {
		return "", nil, false
	}
	rn := r.e.tree.NodeFor(wrapper)
	if rn == nil || rn.Element != wrapper {
		return "", nil, false
	}
	s := rn.Section()
	if s == nil || !s.IsCardSection() {
		return "", nil, false
	}
	return s.Name, copyPayload(s.Payload), true
}

func (r treeResolver) ResolveAtom(wrapper *dom.Node) (string, string, map[string]any, bool) {
	if r.e.tree == nil {
		return "", "", nil, false
	}
	rn := r.e.tree.NodeFor(wrapper)
	if rn == nil {
		return "", "", nil, false
	}
	m := rn.Marker()
	if m == nil || !m.IsAtom() {
		return "", "", nil, false
	}
	return m.Name, m.Value, copyPayload(m.Payload), true
}
