package editor_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomobiledoc/internal/logging"
	"github.com/yaklabco/gomobiledoc/pkg/cards"
	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/editor"
	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/model"
	"github.com/yaklabco/gomobiledoc/pkg/render"
)

func newEditor(t *testing.T, post *model.Post, opts editor.Options) *editor.Editor {
	t.Helper()
	doc := dom.NewDocument()
	root := doc.CreateElement("div")
	opts.Post = post
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Cards == nil {
		opts.Cards = cards.Builtin()
	}
	e, err := editor.New(doc, opts)
	require.NoError(t, err)
	require.NoError(t, e.Render(root))
	t.Cleanup(e.Destroy)
	return e
}

func paragraphs(b *model.Builder, texts ...string) []*model.Section {
	out := make([]*model.Section, 0, len(texts))
	for _, text := range texts {
		var markers []*model.Marker
		if text != "" {
			markers = append(markers, b.CreateMarker(text))
		}
		out = append(out, b.CreateMarkupSection(model.TagP, markers, nil))
	}
	return out
}

func describe(post *model.Post) []string {
	var out []string
	post.Sections.ForEach(func(s *model.Section, _ int) {
		switch {
		case s.IsListSection():
			var items []string
			s.Items.ForEach(func(item *model.Section, _ int) { items = append(items, item.Text()) })
			out = append(out, s.TagName+"["+strings.Join(items, "|")+"]")
		case s.IsCardSection():
			out = append(out, "card:"+s.Name)
		case s.IsImageSection():
			out = append(out, "img:"+s.Src)
		default:
			out = append(out, s.TagName+":"+s.Text())
		}
	})
	return out
}

func run(t *testing.T, e *editor.Editor, fn func(pe *editor.PostEditor)) {
	t.Helper()
	require.NoError(t, e.Run(func(pe *editor.PostEditor) error {
		fn(pe)
		return nil
	}))
}

type counter struct {
	post   int
	cursor int
}

func watch(e *editor.Editor) *counter {
	c := &counter{}
	e.OnPostDidChange(func() { c.post++ })
	e.OnCursorDidChange(func(editor.EditState) { c.cursor++ })
	return c
}

func TestRenderMountsSurface(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	e := newEditor(t, b.CreatePost(paragraphs(b, "abc", "def")...), editor.Options{Placeholder: "Write"})

	root := e.Root()
	require.NotNil(t, root)
	editable, _ := root.Attribute("contenteditable")
	assert.Equal(t, "true", editable)
	placeholder, _ := root.Attribute("data-placeholder")
	assert.Equal(t, "Write", placeholder)
	assert.Equal(t, "<p>abc</p><p>def</p>", dom.InnerHTML(root))
	assert.True(t, e.Mutations().IsObserving())
}

func TestNewWithoutPostStartsBlank(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil, editor.Options{Autofocus: true})
	assert.Equal(t, []string{"p:"}, describe(e.Post()))
	assert.Equal(t, e.Post().Sections.Head(), e.Range().Head.Section)
}

func TestNestedRunFails(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	e := newEditor(t, b.CreatePost(paragraphs(b, "abc")...), editor.Options{})

	var inner error
	err := e.Run(func(*editor.PostEditor) error {
		inner = e.Run(func(*editor.PostEditor) error { return nil })
		return nil
	})
	require.NoError(t, err)
	require.ErrorIs(t, inner, errs.ErrNestedTransaction)
}

func TestFailedTransactionSkipsNotifications(t *testing.T) {
	t.Parallel()

	t.Run("assertion", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		card := b.CreateCardSection(cards.HRName, nil)
		e := newEditor(t, b.CreatePost(card), editor.Options{})
		c := watch(e)

		err := e.Run(func(pe *editor.PostEditor) error {
			pe.InsertText(card.HeadPosition(), "x")
			return nil
		})
		var assertion *errs.AssertionError
		require.ErrorAs(t, err, &assertion)
		assert.Equal(t, 0, c.post)
		assert.Equal(t, 0, c.cursor)
	})

	t.Run("returned error", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		e := newEditor(t, b.CreatePost(paragraphs(b, "abc")...), editor.Options{})
		c := watch(e)

		sentinel := errors.New("stop")
		err := e.Run(func(*editor.PostEditor) error { return sentinel })
		require.ErrorIs(t, err, sentinel)
		assert.Equal(t, 0, c.post)
	})
}

func TestTransactionNotifiesOnce(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	sections := paragraphs(b, "abc")
	e := newEditor(t, b.CreatePost(sections...), editor.Options{})
	c := watch(e)

	run(t, e, func(pe *editor.PostEditor) {
		pos := pe.InsertText(sections[0].TailPosition(), "d")
		pe.InsertText(pos, "e")
	})
	assert.Equal(t, 1, c.post)
	assert.Equal(t, 1, c.cursor)
	assert.Equal(t, "<p>abcde</p>", dom.InnerHTML(e.Root()))
}

func TestScheduledCallbacksRunAfterNotify(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	e := newEditor(t, b.CreatePost(paragraphs(b, "abc")...), editor.Options{})

	var order []string
	e.OnPostDidChange(func() { order = append(order, "post") })
	run(t, e, func(pe *editor.PostEditor) {
		pe.Schedule(func() { order = append(order, "scheduled") })
		pe.InsertText(pe.Post().Sections.Head().TailPosition(), "!")
	})
	assert.Equal(t, []string{"post", "scheduled"}, order)
}

func TestSelectionRoundTrip(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	sections := paragraphs(b, "abc", "def")
	e := newEditor(t, b.CreatePost(sections...), editor.Options{})
	first := e.Tree().ElementForSection(sections[0]).FirstChild
	second := e.Tree().ElementForSection(sections[1]).FirstChild

	e.SelectRange(model.SectionRange(sections[0], 1, sections[1], 2, model.Forward))
	sel := e.Root().Document().Selection()
	assert.Same(t, first, sel.AnchorNode)
	assert.Equal(t, 1, sel.AnchorOffset)
	assert.Same(t, second, sel.FocusNode)
	assert.Equal(t, 2, sel.FocusOffset)

	e.SelectRange(model.SectionRange(sections[0], 1, sections[1], 2, model.Backward))
	sel = e.Root().Document().Selection()
	assert.Same(t, second, sel.AnchorNode)
	assert.True(t, sel.IsBackward())

	e.Root().Document().SetSelection(dom.Caret(second, 1))
	rng := e.ReadSelection()
	assert.Equal(t, sections[1], rng.Head.Section)
	assert.Equal(t, 1, rng.Head.Offset)
	assert.True(t, rng.IsCollapsed())
}

func TestSelectionAroundAtoms(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	sections := paragraphs(b, "ab")
	e := newEditor(t, b.CreatePost(sections...), editor.Options{Atoms: []render.AtomDefinition{mentionAtom()}})

	_, err := e.InsertAtom("mention", "@x", nil)
	require.ErrorIs(t, err, errs.ErrInvalidPosition)

	e.SelectRange(sections[0].ToPosition(1).ToRange())
	atom, err := e.InsertAtom("mention", "@x", nil)
	require.NoError(t, err)
	assert.Equal(t, "a"+model.AtomText+"b", sections[0].Text())
	assert.Equal(t, 2, e.Range().Head.Offset)

	el := e.Tree().ElementForSection(sections[0])
	require.Len(t, el.Children(), 3)
	assert.True(t, el.ChildAt(1).HasClass(render.AtomClass))

	e.Root().Document().SetSelection(dom.Caret(el.ChildAt(2), 0))
	assert.Equal(t, 2, e.ReadSelection().Head.Offset)

	require.NoError(t, e.DeleteAtCursor(model.Backward, editor.UnitChar))
	assert.Equal(t, "ab", sections[0].Text())
	assert.Nil(t, atom.Section)
}

func mentionAtom() render.AtomDefinition {
	return render.AtomDefinition{
		Name: "mention",
		Type: render.TypeDOM,
		Render: func(env render.AtomEnv) (*dom.Node, error) {
			return env.Document.CreateText(env.Value), nil
		},
	}
}

type widget struct {
	envs []render.CardEnv
}

func (w *widget) definition() render.CardDefinition {
	return render.CardDefinition{
		Name: "widget",
		Type: render.TypeDOM,
		Render: func(env render.CardEnv) (*dom.Node, error) {
			w.envs = append(w.envs, env)
			return env.Document.CreateElement("figure"), nil
		},
	}
}

func (w *widget) last() render.CardEnv {
	return w.envs[len(w.envs)-1]
}

func TestCardEnvironmentEditsGoThroughTransactions(t *testing.T) {
	t.Parallel()

	t.Run("save", func(t *testing.T) {
		t.Parallel()
		w := &widget{}
		b := model.NewBuilder()
		card := b.CreateCardSection("widget", map[string]any{"n": 1})
		e := newEditor(t, b.CreatePost(card), editor.Options{Cards: []render.CardDefinition{w.definition()}})
		c := watch(e)

		w.last().Save(map[string]any{"n": 2}, false)
		assert.Equal(t, 2, card.Payload["n"])
		assert.Equal(t, 1, c.post)
		assert.Len(t, w.envs, 2)
		assert.Equal(t, 2, w.last().Payload["n"])
	})

	t.Run("edit mode does not change the post", func(t *testing.T) {
		t.Parallel()
		w := &widget{}
		b := model.NewBuilder()
		card := b.CreateCardSection("widget", nil)
		e := newEditor(t, b.CreatePost(card), editor.Options{Cards: []render.CardDefinition{w.definition()}})
		c := watch(e)

		w.last().Edit()
		assert.True(t, w.last().IsEditing())
		assert.Equal(t, 0, c.post)

		w.last().Save(map[string]any{"done": true}, true)
		assert.False(t, w.last().IsEditing())
		assert.Equal(t, true, card.Payload["done"])
	})

	t.Run("remove", func(t *testing.T) {
		t.Parallel()
		w := &widget{}
		b := model.NewBuilder()
		card := b.CreateCardSection("widget", nil)
		e := newEditor(t, b.CreatePost(card), editor.Options{Cards: []render.CardDefinition{w.definition()}})

		w.last().Remove()
		assert.Equal(t, []string{"p:"}, describe(e.Post()))
		assert.Equal(t, "<p><br/></p>", dom.InnerHTML(e.Root()))
	})
}

func TestInsertCardInEditMode(t *testing.T) {
	t.Parallel()

	w := &widget{}
	e := newEditor(t, nil, editor.Options{Cards: []render.CardDefinition{w.definition()}, Autofocus: true})

	card, err := e.InsertCard("widget", nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"card:widget"}, describe(e.Post()))
	assert.True(t, w.last().IsEditing())
	assert.Equal(t, card, e.Range().Head.Section)
	assert.Equal(t, 1, e.Range().Head.Offset)
}

func TestActiveState(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	bold := b.CreateMarkup(model.MarkupB, nil)
	item := b.CreateListItem([]*model.Marker{b.CreateMarker("one", bold)})
	list := b.CreateListSection(model.TagUL, []*model.Section{item}, nil)
	heading := b.CreateMarkupSection(model.TagH2, []*model.Marker{b.CreateMarker("title")}, map[string]string{"data-md-text-align": "center"})
	e := newEditor(t, b.CreatePost(list, heading), editor.Options{})

	var sections [][]*model.Section
	e.OnActiveSectionsDidChange(func(s []*model.Section) { sections = append(sections, s) })

	e.SelectRange(item.ToPosition(2).ToRange())
	state := e.State()
	assert.Equal(t, []*model.Markup{bold}, state.ActiveMarkups)
	assert.Equal(t, []*model.Section{item, list}, state.ActiveSections)
	require.Len(t, sections, 1)

	e.SelectRange(model.SectionRange(item, 0, heading, 5, model.Forward))
	assert.Equal(t, map[string][]string{"data-md-text-align": {"center"}}, e.State().ActiveSectionAttributes)
	assert.Equal(t, []*model.Section{item, list, heading}, e.State().ActiveSections)
}

func TestInputMode(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	sections := paragraphs(b, "abc")
	e := newEditor(t, b.CreatePost(sections...), editor.Options{})
	e.SelectRange(sections[0].TailPosition().ToRange())

	var modes [][]*model.Markup
	e.OnInputModeDidChange(func(m []*model.Markup) { modes = append(modes, m) })

	require.NoError(t, e.ToggleMarkup(model.MarkupB, nil))
	require.Len(t, modes, 1)
	require.Len(t, modes[0], 1)
	assert.Equal(t, model.MarkupB, modes[0][0].TagName)
	assert.Len(t, e.State().ActiveMarkups, 1)
	assert.Equal(t, 1, sections[0].Markers.Len(), "toggling on a caret leaves the post alone")

	require.NoError(t, e.InsertText("d"))
	require.Equal(t, 2, sections[0].Markers.Len())
	assert.False(t, sections[0].Markers.Head().HasMarkup(model.MarkupB))
	assert.True(t, sections[0].Markers.Tail().HasMarkup(model.MarkupB))
	assert.Empty(t, e.State().InputModeMarkups)
	assert.Len(t, modes, 2)
}

func TestToggleMarkupOverSelection(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	sections := paragraphs(b, "abc")
	e := newEditor(t, b.CreatePost(sections...), editor.Options{})
	e.SelectRange(model.SectionRange(sections[0], 1, sections[0], 3, model.Forward))

	require.NoError(t, e.ToggleMarkup(model.MarkupStrong, nil))
	assert.Equal(t, "<p>a<strong>bc</strong></p>", dom.InnerHTML(e.Root()))

	require.NoError(t, e.ToggleMarkup(model.MarkupStrong, nil))
	assert.Equal(t, "<p>abc</p>", dom.InnerHTML(e.Root()))
	assert.Equal(t, 1, sections[0].Markers.Len())
}

func TestCopyCutPaste(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	sections := paragraphs(b, "abc", "def")
	e := newEditor(t, b.CreatePost(sections...), editor.Options{})

	e.SelectRange(model.SectionRange(sections[0], 1, sections[1], 1, model.Forward))
	copied := e.Copy()
	assert.Equal(t, []string{"p:bc", "p:d"}, describe(copied))

	cut, err := e.Cut()
	require.NoError(t, err)
	assert.Equal(t, []string{"p:bc", "p:d"}, describe(cut))
	assert.Equal(t, []string{"p:aef"}, describe(e.Post()))

	require.NoError(t, e.Paste(cut))
	assert.Equal(t, []string{"p:abc", "p:def"}, describe(e.Post()))
	assert.Equal(t, "<p>abc</p><p>def</p>", dom.InnerHTML(e.Root()))
}

func TestSerialize(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	e := newEditor(t, b.CreatePost(paragraphs(b, "hi")...), editor.Options{})
	data, err := e.Serialize("0.3.2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"0.3.2","atoms":[],"cards":[],"markups":[],"sections":[[1,"p",[[0,[],0,"hi"]]]]}`, string(data))

	_, err = e.Serialize("1.0")
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
}

func TestDestroyRunsTeardowns(t *testing.T) {
	t.Parallel()

	torn := 0
	def := render.CardDefinition{
		Name: "widget",
		Type: render.TypeDOM,
		Render: func(env render.CardEnv) (*dom.Node, error) {
			env.OnTeardown(func() { torn++ })
			return env.Document.CreateElement("figure"), nil
		},
	}
	b := model.NewBuilder()
	doc := dom.NewDocument()
	e, err := editor.New(doc, editor.Options{
		Post:   b.CreatePost(b.CreateCardSection("widget", nil)),
		Cards:  []render.CardDefinition{def},
		Logger: logging.Discard(),
	})
	require.NoError(t, err)
	root := doc.CreateElement("div")
	require.NoError(t, e.Render(root))

	e.Destroy()
	assert.Equal(t, 1, torn)
	assert.Nil(t, root.FirstChild)
	assert.False(t, e.IsRendered())
}
