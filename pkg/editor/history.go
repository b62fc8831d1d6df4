package editor

import (
	"fmt"
	"time"

	"github.com/yaklabco/gomobiledoc/internal/logging"
	"github.com/yaklabco/gomobiledoc/pkg/codec"
	"github.com/yaklabco/gomobiledoc/pkg/errs"
)

// Snapshot is a serialized post plus the cursor that went with it.
type Snapshot struct {
	// Mobiledoc is the post encoded at the latest version.
	Mobiledoc []byte

	rng pathRange
}

// EditHistory is a bounded undo stack with a redo stack. Consecutive typing, or
// consecutive deleting, within the block timeout collapses into one undo step.
type EditHistory struct {
	depth   int
	timeout time.Duration

	undo []Snapshot
	redo []Snapshot

	lastAction editAction
	lastAt     time.Time
}

// NewEditHistory creates a history keeping at most depth undo steps. A depth below
// one disables it.
func NewEditHistory(depth int, timeout time.Duration) *EditHistory {
	return &EditHistory{depth: depth, timeout: timeout}
}

// Enabled reports whether snapshots are kept.
func (h *EditHistory) Enabled() bool {
	return h.depth > 0
}

// CanUndo reports whether Undo has a step to restore.
func (h *EditHistory) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo has a step to restore.
func (h *EditHistory) CanRedo() bool { return len(h.redo) > 0 }

// Len returns the number of undo steps.
func (h *EditHistory) Len() int { return len(h.undo) }

// push records the state before a change. A change continuing the previous block
// keeps the block's first snapshot.
func (h *EditHistory) push(s Snapshot, action editAction, now time.Time) {
	if !h.Enabled() {
		return
	}
	grouped := action != actionNone && action == h.lastAction &&
		len(h.undo) > 0 && now.Sub(h.lastAt) < h.timeout
	h.lastAction, h.lastAt = action, now
	h.redo = nil
	if grouped {
		return
	}
	h.appendUndo(s)
}

func (h *EditHistory) appendUndo(s Snapshot) {
	h.undo = append(h.undo, s)
	if len(h.undo) > h.depth {
		h.undo = h.undo[len(h.undo)-h.depth:]
	}
}

func (h *EditHistory) breakBlock() {
	h.lastAction = actionNone
}

// Clear drops every undo and redo step.
func (h *EditHistory) Clear() {
	h.undo, h.redo = nil, nil
	h.breakBlock()
}

func pop(stack *[]Snapshot) (Snapshot, bool) {
	n := len(*stack)
	if n == 0 {
		return Snapshot{}, false
	}
	s := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	return s, true
}

// snapshot captures the post and cursor. It is empty when history is disabled.
func (e *Editor) snapshot() (Snapshot, error) {
	if !e.history.Enabled() {
		return Snapshot{}, nil
	}
	data, err := codec.Marshal(e.post, codec.Latest)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot post: %w", err)
	}
	return Snapshot{Mobiledoc: data, rng: toPathRange(e.rng)}, nil
}

// Undo restores the post and cursor from before the last undo step.
func (e *Editor) Undo() error {
	return e.step(&e.history.undo, &e.history.redo, "undo")
}

// Redo reapplies the last undone step.
func (e *Editor) Redo() error {
	return e.step(&e.history.redo, &e.history.undo, "redo")
}

func (e *Editor) step(from, to *[]Snapshot, name string) error {
	if e.inTransaction {
		return fmt.Errorf("%s: %w", name, errs.ErrNestedTransaction)
	}
	if e.tree != nil {
		e.mutations.Flush()
	}
	target, ok := pop(from)
	if !ok {
		return fmt.Errorf("%s: %w", name, errs.ErrNothingToUndo)
	}
	current, err := e.snapshot()
	if err != nil {
		*from = append(*from, target)
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := e.restore(target); err != nil {
		*from = append(*from, target)
		return fmt.Errorf("%s: %w", name, err)
	}
	*to = append(*to, current)
	if len(e.history.undo) > e.history.depth {
		e.history.undo = e.history.undo[len(e.history.undo)-e.history.depth:]
	}
	e.history.breakBlock()
	e.logger.Debug(name, logging.FieldUndoDepth, len(e.history.undo))
	return nil
}

// restore swaps the post's sections for the snapshot's as one transaction that is
// not itself recorded.
func (e *Editor) restore(s Snapshot) error {
	post, err := codec.Unmarshal(s.Mobiledoc, codec.WithBuilder(e.post.Builder()))
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	e.inTransaction = true
	defer func() { e.inTransaction = false }()

	pe := newPostEditor(e)
	if err := pe.apply(func(pe *PostEditor) error {
		for _, old := range pe.post.Sections.Items() {
			pe.RemoveSection(old)
		}
		for _, section := range post.Sections.Items() {
			post.Sections.Remove(section)
			pe.InsertSectionAtEnd(section)
		}
		pe.ensureSection()
		pe.SetRange(s.rng.resolve(pe.post))
		return nil
	}); err != nil {
		return err
	}

	renderErr := e.commit(pe)
	e.notify(pe)
	e.inTransaction = false
	e.afterTransaction()
	return renderErr
}
