package editor

import (
	"github.com/yaklabco/gomobiledoc/internal/logging"
	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/render"
)

// MutationHandler watches the surface for edits the editor did not make and
// reparses the sections they touched.
type MutationHandler struct {
	editor   *Editor
	observer *dom.MutationObserver

	suspended int
	resume    bool

	// stale is set when records arrive inside a transaction; the whole post is
	// reparsed once the transaction is done.
	stale bool
}

func newMutationHandler(e *Editor) *MutationHandler {
	h := &MutationHandler{editor: e}
	h.observer = e.doc.NewMutationObserver(h.handle)
	return h
}

func (h *MutationHandler) start() {
	h.observer.Observe(h.editor.root)
}

func (h *MutationHandler) stop() {
	h.observer.Disconnect()
	h.suspended, h.resume, h.stale = 0, false, false
}

// IsObserving reports whether surface edits are currently recorded.
func (h *MutationHandler) IsObserving() bool {
	return h.observer.IsObserving()
}

// SuspendObservation runs fn without recording surface edits. Records pending when
// observation stops are dropped. Calls nest.
func (h *MutationHandler) SuspendObservation(fn func()) {
	h.suspended++
	if h.suspended == 1 {
		h.resume = h.observer.IsObserving()
		h.observer.Disconnect()
	}
	defer func() {
		h.suspended--
		if h.suspended == 0 && h.resume && h.editor.root != nil {
			h.observer.Observe(h.editor.root)
		}
	}()
	fn()
}

// Flush handles the pending records now.
func (h *MutationHandler) Flush() {
	h.observer.Flush()
}

// Pending returns the number of records waiting to be handled.
func (h *MutationHandler) Pending() int {
	return h.observer.Pending()
}

func (h *MutationHandler) handle(records []dom.MutationRecord) {
	e := h.editor
	if e.tree == nil {
		return
	}
	if e.inTransaction {
		h.stale = true
		return
	}

	sections, full := h.affectedSections(records)
	switch {
	case full:
		e.logger.Debug("reparse", logging.FieldScope, "post", logging.FieldRecords, len(records))
		e.reparsePost()
	case len(sections) > 0:
		e.logger.Debug("reparse", logging.FieldScope, "section",
			logging.FieldRecords, len(records), logging.FieldSections, len(sections))
		e.reparseSections(sections)
	}
}

// affectedSections collects the distinct outermost section nodes the records touch.
// It reports full when a record cannot be pinned to a section.
func (h *MutationHandler) affectedSections(records []dom.MutationRecord) ([]*render.RenderNode, bool) {
	e := h.editor
	seen := make(map[*render.RenderNode]bool)
	var found []*render.RenderNode

	for _, rec := range records {
		if rec.Type == dom.MutationAttributes {
			continue
		}
		candidates := append([]*dom.Node{rec.Target}, rec.AddedNodes...)
		for _, n := range candidates {
			if !e.root.Contains(n) {
				continue
			}
			owner := e.tree.NodeFor(n)
			if owner == nil {
				return nil, true
			}
			if owner.IsCardLike() {
				continue
			}
			section := e.tree.SectionNodeFor(n)
			if section == nil {
				return nil, true
			}
			if !seen[section] {
				seen[section] = true
				found = append(found, section)
			}
		}
	}

	// A changed list covers its changed items.
	out := found[:0:0]
	for _, rn := range found {
		if rn.Parent != nil && seen[rn.Parent] {
			continue
		}
		out = append(out, rn)
	}
	return out, false
}
