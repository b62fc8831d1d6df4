// Package editor binds a post to a live dom surface.
//
// An Editor owns the post, its render tree and the surface root. Programmatic edits
// run as transactions through Run: the callback mutates the model with a PostEditor,
// then the editor renders the dirty nodes once, restores the selection, stores an
// undo snapshot and notifies listeners. Uncontrolled edits made straight to the
// surface are picked up by a MutationHandler and reparsed back into the model.
package editor

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomobiledoc/internal/logging"
	"github.com/yaklabco/gomobiledoc/pkg/codec"
	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/model"
	domparser "github.com/yaklabco/gomobiledoc/pkg/parser/dom"
	"github.com/yaklabco/gomobiledoc/pkg/render"
)

// Defaults for Options.
const (
	DefaultUndoDepth        = 5
	DefaultUndoBlockTimeout = 5 * time.Second
)

// Options configures an Editor.
type Options struct {
	// Post is the initial content. Nil starts from a post with one blank paragraph.
	Post *model.Post

	Cards []render.CardDefinition
	Atoms []render.AtomDefinition

	UnknownCardHandler render.CardRenderFunc
	UnknownAtomHandler render.AtomRenderFunc

	// UndoDepth bounds the undo stack. Zero means DefaultUndoDepth; a negative depth
	// disables history.
	UndoDepth int

	// UndoBlockTimeout groups consecutive typing or deleting into one undo step.
	UndoBlockTimeout time.Duration

	// Autofocus puts the cursor at the head of the post when the editor is rendered.
	Autofocus bool

	// Placeholder is shown by hosts while the post is blank.
	Placeholder string

	Logger *log.Logger

	// Now replaces the clock used for undo grouping.
	Now func() time.Time
}

// Editor edits one post rendered into one dom root.
type Editor struct {
	post     *model.Post
	doc      *dom.Document
	root     *dom.Node
	tree     *render.Tree
	renderer *render.Renderer
	parser   *domparser.Parser

	mutations *MutationHandler
	history   *EditHistory
	state     editState
	listeners listeners

	rng           model.Range
	inTransaction bool
	afterCommit   []func(*PostEditor)
	cardModes     map[*model.Section]render.CardMode

	opts   Options
	logger *log.Logger
}

// New creates an editor for doc. The editor is not rendered until Render is called.
func New(doc *dom.Document, opts Options) (*Editor, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.UndoDepth == 0 {
		opts.UndoDepth = DefaultUndoDepth
	}
	if opts.UndoBlockTimeout <= 0 {
		opts.UndoBlockTimeout = DefaultUndoBlockTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	post := opts.Post
	if post == nil {
		b := model.NewBuilder()
		post = b.CreatePost(b.CreateMarkupSection(model.TagP, nil, nil))
	}

	e := &Editor{
		post:      post,
		doc:       doc,
		opts:      opts,
		logger:    opts.Logger,
		cardModes: make(map[*model.Section]render.CardMode),
	}
	renderer, err := render.New(doc, render.Options{
		Cards:              opts.Cards,
		Atoms:              opts.Atoms,
		UnknownCardHandler: opts.UnknownCardHandler,
		UnknownAtomHandler: opts.UnknownAtomHandler,
		Hooks:              editorHooks{e: e},
		Logger:             opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	e.renderer = renderer
	e.parser = domparser.New(post.Builder(), domparser.Options{Resolver: treeResolver{e: e}})
	e.history = NewEditHistory(opts.UndoDepth, opts.UndoBlockTimeout)
	e.mutations = newMutationHandler(e)
	return e, nil
}

// Post returns the edited post.
func (e *Editor) Post() *model.Post {
	return e.post
}

// Builder returns the builder of the edited post.
func (e *Editor) Builder() *model.Builder {
	return e.post.Builder()
}

// Root returns the surface root, or nil before Render.
func (e *Editor) Root() *dom.Node {
	return e.root
}

// Tree returns the render tree, or nil before Render.
func (e *Editor) Tree() *render.Tree {
	return e.tree
}

// History returns the undo history.
func (e *Editor) History() *EditHistory {
	return e.history
}

// Mutations returns the mutation handler watching the surface.
func (e *Editor) Mutations() *MutationHandler {
	return e.mutations
}

// Range returns the current cursor range.
func (e *Editor) Range() model.Range {
	return e.rng
}

// State returns the derived state for the current range.
func (e *Editor) State() EditState {
	return e.state.current
}

// IsRendered reports whether the editor is mounted on a root.
func (e *Editor) IsRendered() bool {
	return e.root != nil
}

// Render mounts the editor on root, which must be empty, and starts observing it.
func (e *Editor) Render(root *dom.Node) error {
	errs.Assert(e.root == nil, "the editor is already rendered")
	errs.Assert(root.FirstChild == nil, "the editor root must be empty")

	e.root = root
	root.SetAttribute("contenteditable", "true")
	if e.opts.Placeholder != "" {
		root.SetAttribute("data-placeholder", e.opts.Placeholder)
	}
	e.tree = render.NewTree(e.post, root)
	if err := e.renderer.Render(e.tree); err != nil {
		return fmt.Errorf("render post: %w", err)
	}
	e.mutations.start()

	if e.opts.Autofocus {
		e.SelectRange(e.post.HeadPosition().ToRange())
	}
	return nil
}

// Destroy stops observing, runs every card and atom teardown and detaches the root.
func (e *Editor) Destroy() {
	if e.root == nil {
		return
	}
	e.mutations.stop()
	e.renderer.Destroy(e.tree)
	e.root.RemoveChildren()
	e.root, e.tree = nil, nil
	e.rng = model.BlankRange()
}

// Run executes fn as one transaction. fn mutates the post through pe. When fn returns
// without error the editor renders once, restores the selection, stores an undo
// snapshot and then notifies listeners. An error or a failed assertion inside fn is
// returned as is; the editor then skips rendering and notifications.
func (e *Editor) Run(fn func(pe *PostEditor) error) error {
	return e.run(actionNone, fn)
}

func (e *Editor) run(action editAction, fn func(pe *PostEditor) error) (err error) {
	if e.inTransaction {
		return fmt.Errorf("run: %w", errs.ErrNestedTransaction)
	}
	// Surface edits made before this transaction are picked up first.
	if e.tree != nil {
		e.mutations.Flush()
	}
	e.inTransaction = true
	defer func() { e.inTransaction = false }()

	before, snapErr := e.snapshot()
	if snapErr != nil {
		e.logger.Warn("cannot snapshot post for undo", logging.FieldError, snapErr)
	}

	pe := newPostEditor(e)
	pe.action = action
	if err := pe.apply(fn); err != nil {
		e.logger.Debug("transaction aborted", logging.FieldError, err)
		return err
	}

	renderErr := e.commit(pe)
	if pe.didChange && snapErr == nil {
		e.history.push(before, pe.action, e.opts.Now())
	}
	e.notify(pe)
	e.inTransaction = false
	e.afterTransaction()
	return renderErr
}

// afterTransaction runs deferred edits, then reparses surface edits that were
// recorded while the transaction was open.
func (e *Editor) afterTransaction() {
	e.runDeferred()
	if e.mutations.stale && e.tree != nil {
		e.mutations.stale = false
		e.reparsePost()
	}
}

// commit renders the dirty nodes without observing the surface, then restores the
// dom selection from the transaction's range. Render failures are returned for the
// caller to report.
func (e *Editor) commit(pe *PostEditor) error {
	e.setRange(pe.rng)
	if e.tree == nil {
		return nil
	}
	var renderErr error
	e.mutations.SuspendObservation(func() {
		renderErr = e.renderer.Render(e.tree)
		if len(e.cardModes) > 0 {
			for section, mode := range e.cardModes {
				if rn := e.tree.NodeForModel(section); rn != nil {
					rn.CardMode = mode
					rn.MarkDirty()
				}
			}
			clear(e.cardModes)
			if err := e.renderer.Render(e.tree); err != nil && renderErr == nil {
				renderErr = err
			}
		}
		e.writeSelection()
	})
	return renderErr
}

// notify fires post-changed first, then the range and state listeners.
func (e *Editor) notify(pe *PostEditor) {
	if pe.didChange {
		e.listeners.postDidChange()
	}
	changes := e.state.update(e.post, e.rng)
	e.listeners.fire(e.state.current, changes, pe.didChange)
	for _, fn := range pe.scheduled {
		fn()
	}
}

// runDeferred runs requests made by card and atom environments during a transaction.
func (e *Editor) runDeferred() {
	for len(e.afterCommit) > 0 {
		fn := e.afterCommit[0]
		e.afterCommit = e.afterCommit[1:]
		if err := e.Run(func(pe *PostEditor) error {
			fn(pe)
			return nil
		}); err != nil {
			e.logger.Warn("deferred edit failed", logging.FieldError, err)
		}
	}
}

// runOrDefer runs fn in a transaction, or after the current one finishes.
func (e *Editor) runOrDefer(fn func(pe *PostEditor)) {
	if e.inTransaction {
		e.afterCommit = append(e.afterCommit, fn)
		return
	}
	e.afterCommit = append(e.afterCommit, fn)
	e.runDeferred()
}

// SelectRange moves the cursor without changing the post.
func (e *Editor) SelectRange(rng model.Range) {
	if err := e.Run(func(pe *PostEditor) error {
		pe.SetRange(rng)
		return nil
	}); err != nil {
		e.logger.Debug("select range failed", logging.FieldRange, rng.String(), logging.FieldError, err)
	}
}

// ReadSelection updates the cursor from the dom selection, as after a click or a
// native cursor movement.
func (e *Editor) ReadSelection() model.Range {
	if e.tree == nil {
		return e.rng
	}
	rng := e.rangeFromSelection(e.doc.Selection())
	if rng.IsBlank() {
		return e.rng
	}
	changes := e.state.update(e.post, rng)
	e.rng = rng
	e.listeners.fire(e.state.current, changes, false)
	return rng
}

func (e *Editor) setRange(rng model.Range) {
	if !rng.IsBlank() && rng.Head.Section.OwningPost() != e.post {
		rng = model.BlankRange()
	}
	e.rng = rng
}

// writeSelection mirrors the cursor range onto the dom selection.
func (e *Editor) writeSelection() {
	if e.rng.IsBlank() {
		e.doc.ClearSelection()
		return
	}
	sel, ok := e.selectionFromRange(e.rng)
	if !ok {
		e.doc.ClearSelection()
		return
	}
	e.doc.SetSelection(sel)
}

// Serialize encodes the post as mobiledoc JSON of the given version.
func (e *Editor) Serialize(version string) ([]byte, error) {
	data, err := codec.Marshal(e.post, version)
	if err != nil {
		return nil, fmt.Errorf("serialize post: %w", err)
	}
	return data, nil
}

// OnPostDidChange registers fn to run after every transaction or reparse that
// changed the post.
func (e *Editor) OnPostDidChange(fn func()) {
	e.listeners.post = append(e.listeners.post, fn)
}

// OnCursorDidChange registers fn to run after every completed transaction that moved
// the cursor or changed the post.
func (e *Editor) OnCursorDidChange(fn func(EditState)) {
	e.listeners.cursor = append(e.listeners.cursor, fn)
}

// OnActiveMarkupsDidChange registers fn for changes of EditState.ActiveMarkups.
func (e *Editor) OnActiveMarkupsDidChange(fn func([]*model.Markup)) {
	e.listeners.markups = append(e.listeners.markups, fn)
}

// OnActiveSectionsDidChange registers fn for changes of EditState.ActiveSections.
func (e *Editor) OnActiveSectionsDidChange(fn func([]*model.Section)) {
	e.listeners.sections = append(e.listeners.sections, fn)
}

// OnInputModeDidChange registers fn for changes of the pending input-mode markups.
func (e *Editor) OnInputModeDidChange(fn func([]*model.Markup)) {
	e.listeners.inputMode = append(e.listeners.inputMode, fn)
}

type listeners struct {
	post      []func()
	cursor    []func(EditState)
	markups   []func([]*model.Markup)
	sections  []func([]*model.Section)
	inputMode []func([]*model.Markup)
}

func (l *listeners) postDidChange() {
	for _, fn := range l.post {
		fn()
	}
}

func (l *listeners) fire(state EditState, changes stateChanges, postChanged bool) {
	if changes.Range || postChanged {
		for _, fn := range l.cursor {
			fn(state)
		}
	}
	if changes.Markups {
		for _, fn := range l.markups {
			fn(state.ActiveMarkups)
		}
	}
	if changes.Sections {
		for _, fn := range l.sections {
			fn(state.ActiveSections)
		}
	}
	if changes.InputMode {
		for _, fn := range l.inputMode {
			fn(state.InputModeMarkups)
		}
	}
}
