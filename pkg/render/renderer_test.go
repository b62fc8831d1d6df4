package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomobiledoc/internal/logging"
	"github.com/yaklabco/gomobiledoc/pkg/cards"
	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/model"
	"github.com/yaklabco/gomobiledoc/pkg/render"
)

func mentionAtom() render.AtomDefinition {
	return render.AtomDefinition{
		Name: "mention",
		Type: render.TypeDOM,
		Render: func(env render.AtomEnv) (*dom.Node, error) {
			span := env.Document.CreateElement("span")
			span.AppendChild(env.Document.CreateText(env.Value))
			return span, nil
		},
	}
}

type fixture struct {
	doc      *dom.Document
	root     *dom.Node
	post     *model.Post
	tree     *render.Tree
	renderer *render.Renderer
}

func newFixture(t *testing.T, post *model.Post, opts render.Options) *fixture {
	t.Helper()
	doc := dom.NewDocument()
	root := doc.CreateElement("div")
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	r, err := render.New(doc, opts)
	require.NoError(t, err)
	return &fixture{doc: doc, root: root, post: post, tree: render.NewTree(post, root), renderer: r}
}

func (f *fixture) render(t *testing.T) {
	t.Helper()
	require.NoError(t, f.renderer.Render(f.tree))
}

func TestRenderInitialDOM(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	bold := b.CreateMarkup(model.MarkupB, nil)
	link := b.CreateMarkup(model.MarkupA, map[string]string{"href": "https://example.com"})
	post := b.CreatePost(
		b.CreateMarkupSection(model.TagP, []*model.Marker{
			b.CreateMarker("abc"),
			b.CreateMarker("d", bold, link),
			b.CreateAtom("mention", "@bob", nil),
		}, nil),
		b.CreateCardSection(cards.HRName, nil),
		b.CreateListSection(model.TagUL, []*model.Section{b.CreateListItem([]*model.Marker{b.CreateMarker("one")})}, nil),
		b.CreateMarkupSection(model.TagH2, nil, map[string]string{"data-md-text-align": "center"}),
		b.CreateImageSection("cat.png"),
	)

	f := newFixture(t, post, render.Options{Cards: cards.Builtin(), Atoms: []render.AtomDefinition{mentionAtom()}})
	f.render(t)

	assert.Equal(t,
		`<p>abc<b><a href="https://example.com">d</a></b>`+
			`<span class="-mobiledoc-kit__atom" contenteditable="false"><span>@bob</span></span></p>`+
			`<div class="__mobiledoc-card" contenteditable="false"><hr/></div>`+
			`<ul><li>one</li></ul>`+
			`<h2 data-md-text-align="center"><br/></h2>`+
			`<img src="cat.png"/>`,
		dom.InnerHTML(f.root))
	assert.False(t, f.tree.IsDirty())
}

func TestRenderOnlyTouchesDirtyNodes(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	first := b.CreateMarkupSection(model.TagP, []*model.Marker{b.CreateMarker("abc")}, nil)
	edited := b.CreateMarker("def")
	atom := b.CreateAtom("mention", "@bob", nil)
	second := b.CreateMarkupSection(model.TagP, []*model.Marker{edited, atom}, nil)
	post := b.CreatePost(first, second)

	f := newFixture(t, post, render.Options{Atoms: []render.AtomDefinition{mentionAtom()}})
	f.render(t)

	firstEl := f.tree.ElementForSection(first)
	firstText := firstEl.FirstChild
	atomContent := f.tree.NodeForModel(atom).Content()
	require.NotNil(t, atomContent)

	edited.Value = "xyz"
	f.tree.MarkDirty(edited)
	f.render(t)

	assert.Same(t, firstEl, f.tree.ElementForSection(first))
	assert.Same(t, firstText, firstEl.FirstChild)
	assert.Same(t, atomContent, f.tree.NodeForModel(atom).Content())
	assert.Equal(t, "xyz@bob", f.tree.ElementForSection(second).TextContent())
}

func TestRenderSyncsInsertedAndRemovedSections(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	a, c := b.CreateMarkupSection(model.TagP, []*model.Marker{b.CreateMarker("a")}, nil),
		b.CreateMarkupSection(model.TagP, []*model.Marker{b.CreateMarker("c")}, nil)
	post := b.CreatePost(a, c)
	f := newFixture(t, post, render.Options{})
	f.render(t)

	inserted := b.CreateMarkupSection(model.TagH1, []*model.Marker{b.CreateMarker("b")}, nil)
	post.Sections.InsertAfter(inserted, a)
	f.tree.MarkDirty(inserted)
	f.render(t)
	assert.Equal(t, `<p>a</p><h1>b</h1><p>c</p>`, dom.InnerHTML(f.root))

	f.tree.ScheduleForRemoval(a)
	post.Sections.Remove(a)
	f.render(t)
	assert.Equal(t, `<h1>b</h1><p>c</p>`, dom.InnerHTML(f.root))
	assert.Nil(t, f.tree.NodeForModel(a))

	inserted.TagName = model.TagH3
	f.tree.MarkDirty(inserted)
	f.render(t)
	assert.Equal(t, `<h3>b</h3><p>c</p>`, dom.InnerHTML(f.root))
}

func TestCardTeardownRunsOnce(t *testing.T) {
	t.Parallel()

	teardowns := 0
	def := render.CardDefinition{
		Name: "counter",
		Type: render.TypeDOM,
		Render: func(env render.CardEnv) (*dom.Node, error) {
			env.OnTeardown(func() { teardowns++ })
			return env.Document.CreateElement("span"), nil
		},
	}

	b := model.NewBuilder()
	card := b.CreateCardSection("counter", nil)
	post := b.CreatePost(card)
	f := newFixture(t, post, render.Options{Cards: []render.CardDefinition{def}})
	f.render(t)

	f.tree.ScheduleForRemoval(card)
	post.Sections.Remove(card)
	f.render(t)
	f.tree.Root.MarkDirty()
	f.render(t)

	assert.Equal(t, 1, teardowns)
	assert.Empty(t, dom.InnerHTML(f.root))
}

func TestCardSaveWithoutHooksUpdatesModel(t *testing.T) {
	t.Parallel()

	var save func(map[string]any, bool)
	def := render.CardDefinition{
		Name: "note",
		Type: render.TypeDOM,
		Render: func(env render.CardEnv) (*dom.Node, error) {
			save = env.Save
			return env.Document.CreateText(cards.PayloadString(env.Payload, "text")), nil
		},
	}

	b := model.NewBuilder()
	card := b.CreateCardSection("note", map[string]any{"text": "old"})
	f := newFixture(t, b.CreatePost(card), render.Options{Cards: []render.CardDefinition{def}})
	f.render(t)

	save(map[string]any{"text": "new"}, true)
	assert.True(t, f.tree.IsDirty())
	f.render(t)
	assert.Equal(t, "new", f.tree.ElementForSection(card).TextContent())
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	t.Run("unknown card", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		f := newFixture(t, b.CreatePost(b.CreateCardSection("missing", nil)), render.Options{})
		require.ErrorIs(t, f.renderer.Render(f.tree), errs.ErrUnknownCard)
	})

	t.Run("unknown card handler", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		f := newFixture(t, b.CreatePost(b.CreateCardSection("missing", nil)),
			render.Options{UnknownCardHandler: cards.Placeholder})
		f.render(t)
		assert.Contains(t, dom.InnerHTML(f.root), "[missing card]")
	})

	t.Run("unknown atom", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		post := b.CreatePost(b.CreateMarkupSection(model.TagP, []*model.Marker{b.CreateAtom("missing", "x", nil)}, nil))
		f := newFixture(t, post, render.Options{})
		require.ErrorIs(t, f.renderer.Render(f.tree), errs.ErrUnknownAtom)
	})

	t.Run("card renders nothing", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		def := render.CardDefinition{
			Name:   "empty",
			Type:   render.TypeDOM,
			Render: func(render.CardEnv) (*dom.Node, error) { return nil, nil },
		}
		f := newFixture(t, b.CreatePost(b.CreateCardSection("empty", nil)), render.Options{Cards: []render.CardDefinition{def}})
		require.ErrorIs(t, f.renderer.Render(f.tree), errs.ErrCardContract)
	})

	t.Run("wrong definition type", func(t *testing.T) {
		t.Parallel()
		_, err := render.New(dom.NewDocument(), render.Options{Cards: []render.CardDefinition{{
			Name:   "text-card",
			Type:   "text",
			Render: func(render.CardEnv) (*dom.Node, error) { return nil, nil },
		}}})
		require.ErrorIs(t, err, errs.ErrCardContract)
		_, err = render.New(dom.NewDocument(), render.Options{Atoms: []render.AtomDefinition{{Name: "a", Type: render.TypeDOM}}})
		require.ErrorIs(t, err, errs.ErrAtomContract)
	})
}

func TestNodeFor(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	bold := b.CreateMarkup(model.MarkupB, nil)
	marker := b.CreateMarker("abc", bold)
	item := b.CreateListItem([]*model.Marker{marker})
	list := b.CreateListSection(model.TagOL, []*model.Section{item}, nil)
	post := b.CreatePost(list)
	f := newFixture(t, post, render.Options{})
	f.render(t)

	text := f.tree.ElementForSection(item).FirstChild.FirstChild
	require.True(t, text.IsText())

	assert.Same(t, marker, f.tree.NodeFor(text).Marker())
	assert.Same(t, marker, f.tree.NodeFor(text.Parent).Marker())
	assert.Same(t, item, f.tree.SectionNodeFor(text).Section())
	assert.Same(t, list, f.tree.SectionNodeFor(f.tree.ElementForSection(list)).Section())
	assert.Nil(t, f.tree.SectionNodeFor(f.root))
	assert.Same(t, f.tree.Root, f.tree.NodeFor(f.root))
	assert.Nil(t, f.tree.NodeFor(f.doc.CreateText("stray")))
}

func TestDisplayTextKeepsSpacesVisible(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	post := b.CreatePost(b.CreateMarkupSection(model.TagP, []*model.Marker{b.CreateMarker("a  b ")}, nil))
	f := newFixture(t, post, render.Options{})
	f.render(t)

	text := f.root.FirstChild.FirstChild.Data
	assert.Equal(t, "a \u00a0b\u00a0", text)
	assert.Equal(t, model.UnitLen("a  b "), model.UnitLen(text))
}

func TestTrailingSpaceFollowsTheLastLeaf(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	head := b.CreateMarker("ab ")
	section := b.CreateMarkupSection(model.TagP, []*model.Marker{head}, nil)
	post := b.CreatePost(section)
	f := newFixture(t, post, render.Options{})
	f.render(t)
	el := f.tree.ElementForSection(section)
	require.Equal(t, "ab\u00a0", el.TextContent())

	tail := b.CreateMarker("cd")
	section.Markers.Append(tail)
	f.tree.MarkDirty(tail)
	f.render(t)
	assert.Equal(t, "ab cd", el.TextContent())

	section.Markers.Remove(tail)
	f.tree.MarkDirty(section)
	f.render(t)
	assert.Equal(t, "ab\u00a0", el.TextContent())
	assert.Same(t, el, f.tree.ElementForSection(section))
}

func TestHrefIsSanitized(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	link := b.CreateMarkup(model.MarkupA, map[string]string{"href": "javascript:alert(1)"})
	post := b.CreatePost(b.CreateMarkupSection(model.TagP, []*model.Marker{b.CreateMarker("x", link)}, nil))
	f := newFixture(t, post, render.Options{})
	f.render(t)

	href, _ := f.root.FirstChild.FirstChild.Attribute("href")
	assert.Equal(t, "unsafe:javascript:alert(1)", href)
}
