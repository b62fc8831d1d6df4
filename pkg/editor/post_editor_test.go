package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomobiledoc/pkg/cards"
	"github.com/yaklabco/gomobiledoc/pkg/codec"
	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/editor"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

func list(b *model.Builder, tag string, texts ...string) *model.Section {
	items := make([]*model.Section, 0, len(texts))
	for _, text := range texts {
		var markers []*model.Marker
		if text != "" {
			markers = append(markers, b.CreateMarker(text))
		}
		items = append(items, b.CreateListItem(markers))
	}
	return b.CreateListSection(tag, items, nil)
}

func hr(b *model.Builder) *model.Section {
	return b.CreateCardSection(cards.HRName, nil)
}

func at(post *model.Post, path []int, offset int) model.Position {
	return post.SectionAtPath(path).ToPosition(offset)
}

// roundTrip serializes post and reads it back.
func roundTrip(t *testing.T, post *model.Post) *model.Post {
	t.Helper()
	data, err := codec.Marshal(post, codec.Version032)
	require.NoError(t, err)
	out, err := codec.Unmarshal(data)
	require.NoError(t, err)
	return out
}

func assertCursor(t *testing.T, e *editor.Editor, path []int, offset int) {
	t.Helper()
	head := e.Range().Head
	require.False(t, head.IsBlank(), "cursor is blank")
	assert.Equal(t, path, head.Section.IndexPath())
	assert.Equal(t, offset, head.Offset)
}

func TestDeleteAtPosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		build      func(b *model.Builder) []*model.Section
		path       []int
		offset     int
		dir        model.Direction
		unit       editor.Unit
		want       []string
		wantPath   []int
		wantOffset int
	}{
		{
			name:     "backward at the head of the post",
			build:    func(b *model.Builder) []*model.Section { return paragraphs(b, "abc") },
			path:     []int{0},
			dir:      model.Backward,
			want:     []string{"p:abc"},
			wantPath: []int{0},
		},
		{
			name:       "backward char",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "abc") },
			path:       []int{0},
			offset:     2,
			dir:        model.Backward,
			want:       []string{"p:ac"},
			wantPath:   []int{0},
			wantOffset: 1,
		},
		{
			name:       "backward over a surrogate pair",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "a\U0001F600") },
			path:       []int{0},
			offset:     3,
			dir:        model.Backward,
			want:       []string{"p:a"},
			wantPath:   []int{0},
			wantOffset: 1,
		},
		{
			name:       "backward word",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "hello world") },
			path:       []int{0},
			offset:     11,
			dir:        model.Backward,
			unit:       editor.UnitWord,
			want:       []string{"p:hello "},
			wantPath:   []int{0},
			wantOffset: 6,
		},
		{
			name:       "backward word keeps combining mark with its letter",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "x cafe\u0301") },
			path:       []int{0},
			offset:     7,
			dir:        model.Backward,
			unit:       editor.UnitWord,
			want:       []string{"p:x "},
			wantPath:   []int{0},
			wantOffset: 2,
		},
		{
			name:       "backward joins sections",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "abc", "def") },
			path:       []int{1},
			dir:        model.Backward,
			want:       []string{"p:abcdef"},
			wantPath:   []int{0},
			wantOffset: 3,
		},
		{
			name:     "backward removes a blank previous section",
			build:    func(b *model.Builder) []*model.Section { return paragraphs(b, "", "def") },
			path:     []int{1},
			dir:      model.Backward,
			want:     []string{"p:def"},
			wantPath: []int{0},
		},
		{
			name: "backward from a blank section removes the card before it",
			build: func(b *model.Builder) []*model.Section {
				return append([]*model.Section{hr(b)}, paragraphs(b, "")...)
			},
			path:     []int{1},
			dir:      model.Backward,
			want:     []string{"p:"},
			wantPath: []int{0},
		},
		{
			name: "backward into a card moves to its tail",
			build: func(b *model.Builder) []*model.Section {
				return append([]*model.Section{hr(b)}, paragraphs(b, "abc")...)
			},
			path:       []int{1},
			dir:        model.Backward,
			want:       []string{"card:" + cards.HRName, "p:abc"},
			wantPath:   []int{0},
			wantOffset: 1,
		},
		{
			name:     "backward at a card tail replaces it",
			build:    func(b *model.Builder) []*model.Section { return []*model.Section{hr(b)} },
			path:     []int{0},
			offset:   1,
			dir:      model.Backward,
			want:     []string{"p:"},
			wantPath: []int{0},
		},
		{
			name: "backward at the first list item unwraps it",
			build: func(b *model.Builder) []*model.Section {
				return []*model.Section{list(b, model.TagUL, "a", "b")}
			},
			path:     []int{0, 0},
			dir:      model.Backward,
			want:     []string{"p:a", "ul[b]"},
			wantPath: []int{0},
		},
		{
			name: "backward joins list items",
			build: func(b *model.Builder) []*model.Section {
				return []*model.Section{list(b, model.TagUL, "a", "b")}
			},
			path:       []int{0, 1},
			dir:        model.Backward,
			want:       []string{"ul[ab]"},
			wantPath:   []int{0, 0},
			wantOffset: 1,
		},
		{
			name:     "forward char",
			build:    func(b *model.Builder) []*model.Section { return paragraphs(b, "abc") },
			path:     []int{0},
			dir:      model.Forward,
			want:     []string{"p:bc"},
			wantPath: []int{0},
		},
		{
			name:       "forward at the tail of the post",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "abc") },
			path:       []int{0},
			offset:     3,
			dir:        model.Forward,
			want:       []string{"p:abc"},
			wantPath:   []int{0},
			wantOffset: 3,
		},
		{
			name:       "forward joins sections",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "abc", "def") },
			path:       []int{0},
			offset:     3,
			dir:        model.Forward,
			want:       []string{"p:abcdef"},
			wantPath:   []int{0},
			wantOffset: 3,
		},
		{
			name:     "forward word",
			build:    func(b *model.Builder) []*model.Section { return paragraphs(b, "hello world") },
			path:     []int{0},
			dir:      model.Forward,
			unit:     editor.UnitWord,
			want:     []string{"p: world"},
			wantPath: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := model.NewBuilder()
			e := newEditor(t, b.CreatePost(tt.build(b)...), editor.Options{})

			run(t, e, func(pe *editor.PostEditor) {
				pe.DeleteAtPosition(at(pe.Post(), tt.path, tt.offset), tt.dir, tt.unit)
			})
			assert.Equal(t, tt.want, describe(e.Post()))
			assertCursor(t, e, tt.wantPath, tt.wantOffset)
		})
	}
}

func TestDeleteAtHeadDoesNotChangePost(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	sections := paragraphs(b, "abc")
	e := newEditor(t, b.CreatePost(sections...), editor.Options{})
	e.SelectRange(sections[0].HeadPosition().ToRange())
	c := watch(e)

	require.NoError(t, e.DeleteAtCursor(model.Backward, editor.UnitChar))
	assert.Equal(t, 0, c.post)
	assert.Equal(t, 0, e.History().Len())
}

func TestDeleteRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		build      func(b *model.Builder) []*model.Section
		head, tail []int
		from, to   int
		want       []string
		wantOffset int
	}{
		{
			name:       "within a section",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "abcdef") },
			head:       []int{0},
			tail:       []int{0},
			from:       1,
			to:         4,
			want:       []string{"p:aef"},
			wantOffset: 1,
		},
		{
			name:       "across sections",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "abc", "def", "ghi") },
			head:       []int{0},
			tail:       []int{2},
			from:       1,
			to:         2,
			want:       []string{"p:ai"},
			wantOffset: 1,
		},
		{
			name: "into a list item",
			build: func(b *model.Builder) []*model.Section {
				return append(paragraphs(b, "abc"), list(b, model.TagUL, "def", "ghi"))
			},
			head:       []int{0},
			tail:       []int{1, 0},
			from:       1,
			to:         2,
			want:       []string{"p:af", "ul[ghi]"},
			wantOffset: 1,
		},
		{
			name:  "a whole card",
			build: func(b *model.Builder) []*model.Section { return []*model.Section{hr(b)} },
			head:  []int{0},
			tail:  []int{0},
			to:    1,
			want:  []string{"p:"},
		},
		{
			name: "ending after a card",
			build: func(b *model.Builder) []*model.Section {
				return append(paragraphs(b, "abc"), hr(b))
			},
			head:       []int{0},
			tail:       []int{1},
			from:       1,
			to:         1,
			want:       []string{"p:a"},
			wantOffset: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := model.NewBuilder()
			e := newEditor(t, b.CreatePost(tt.build(b)...), editor.Options{})

			var pos model.Position
			run(t, e, func(pe *editor.PostEditor) {
				rng := model.NewRange(at(pe.Post(), tt.head, tt.from), at(pe.Post(), tt.tail, tt.to), model.Forward)
				pos = pe.DeleteRange(rng)
			})
			assert.Equal(t, tt.want, describe(e.Post()))
			assert.Equal(t, tt.wantOffset, pos.Offset)
			assert.Equal(t, e.Post().Sections.Head(), pos.Section.TopLevel())
		})
	}
}

func TestSplitSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func(b *model.Builder) []*model.Section
		path     []int
		offset   int
		want     []string
		wantPath []int
	}{
		{
			name:     "paragraph",
			build:    func(b *model.Builder) []*model.Section { return paragraphs(b, "abcd") },
			path:     []int{0},
			offset:   2,
			want:     []string{"p:ab", "p:cd"},
			wantPath: []int{1},
		},
		{
			name: "heading keeps its tag",
			build: func(b *model.Builder) []*model.Section {
				return []*model.Section{b.CreateMarkupSection(model.TagH2, []*model.Marker{b.CreateMarker("abcd")}, nil)}
			},
			path:     []int{0},
			offset:   2,
			want:     []string{"h2:ab", "h2:cd"},
			wantPath: []int{1},
		},
		{
			name: "list item",
			build: func(b *model.Builder) []*model.Section {
				return []*model.Section{list(b, model.TagUL, "ab")}
			},
			path:     []int{0, 0},
			offset:   1,
			want:     []string{"ul[a|b]"},
			wantPath: []int{0, 1},
		},
		{
			name: "blank list item leaves the list",
			build: func(b *model.Builder) []*model.Section {
				return []*model.Section{list(b, model.TagUL, "a", "")}
			},
			path:     []int{0, 1},
			want:     []string{"ul[a]", "p:"},
			wantPath: []int{1},
		},
		{
			name:     "card head",
			build:    func(b *model.Builder) []*model.Section { return []*model.Section{hr(b)} },
			path:     []int{0},
			want:     []string{"p:", "card:" + cards.HRName},
			wantPath: []int{1},
		},
		{
			name:     "card tail",
			build:    func(b *model.Builder) []*model.Section { return []*model.Section{hr(b)} },
			path:     []int{0},
			offset:   1,
			want:     []string{"card:" + cards.HRName, "p:"},
			wantPath: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := model.NewBuilder()
			e := newEditor(t, b.CreatePost(tt.build(b)...), editor.Options{})

			run(t, e, func(pe *editor.PostEditor) {
				pe.SplitSection(at(pe.Post(), tt.path, tt.offset))
			})
			assert.Equal(t, tt.want, describe(e.Post()))
			assertCursor(t, e, tt.wantPath, 0)
		})
	}
}

func TestInsertTextCommand(t *testing.T) {
	t.Parallel()

	t.Run("newlines split the section", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		sections := paragraphs(b, "ab")
		e := newEditor(t, b.CreatePost(sections...), editor.Options{})
		e.SelectRange(sections[0].ToPosition(1).ToRange())

		require.NoError(t, e.InsertText("X\nY"))
		assert.Equal(t, []string{"p:aX", "p:Yb"}, describe(e.Post()))
		assertCursor(t, e, []int{1}, 1)
		assert.Equal(t, "<p>aX</p><p>Yb</p>", dom.InnerHTML(e.Root()))
	})

	t.Run("replaces the selection", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		sections := paragraphs(b, "abc", "def")
		e := newEditor(t, b.CreatePost(sections...), editor.Options{})
		e.SelectRange(model.SectionRange(sections[0], 1, sections[1], 2, model.Forward))

		require.NoError(t, e.InsertText("-"))
		assert.Equal(t, []string{"p:a-f"}, describe(e.Post()))
		assertCursor(t, e, []int{0}, 2)
	})

	t.Run("extends a matching marker", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		sections := paragraphs(b, "ab")
		e := newEditor(t, b.CreatePost(sections...), editor.Options{})
		e.SelectRange(sections[0].TailPosition().ToRange())

		require.NoError(t, e.InsertText("c"))
		assert.Equal(t, 1, sections[0].Markers.Len())
		assert.Equal(t, "abc", sections[0].Markers.Head().Value)
	})

	t.Run("on a card adds a paragraph", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		card := hr(b)
		e := newEditor(t, b.CreatePost(card), editor.Options{})
		e.SelectRange(card.TailPosition().ToRange())

		require.NoError(t, e.InsertText("x"))
		assert.Equal(t, []string{"card:" + cards.HRName, "p:x"}, describe(e.Post()))
		assertCursor(t, e, []int{1}, 1)
	})

	t.Run("without a cursor", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		e := newEditor(t, b.CreatePost(paragraphs(b, "ab")...), editor.Options{})
		require.Error(t, e.InsertText("x"))
	})
}

func TestMarkupRangeOperations(t *testing.T) {
	t.Parallel()

	t.Run("add splits markers", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		sections := paragraphs(b, "abcd")
		e := newEditor(t, b.CreatePost(sections...), editor.Options{})
		bold := b.CreateMarkup(model.MarkupB, nil)

		run(t, e, func(pe *editor.PostEditor) {
			pe.AddMarkupToRange(model.SectionRange(sections[0], 1, sections[0], 3, model.Forward), bold)
		})
		markers := sections[0].Markers.Items()
		require.Len(t, markers, 3)
		assert.Equal(t, "bc", markers[1].Value)
		assert.True(t, markers[1].HasMarkup(model.MarkupB))
		assert.False(t, markers[2].HasMarkup(model.MarkupB))
		assert.Equal(t, "<p>a<b>bc</b>d</p>", dom.InnerHTML(e.Root()))
	})

	t.Run("remove by tag across sections", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		link := b.CreateMarkup(model.MarkupA, map[string]string{"href": "https://example.com"})
		first := b.CreateMarkupSection(model.TagP, []*model.Marker{b.CreateMarker("ab", link)}, nil)
		second := b.CreateMarkupSection(model.TagP, []*model.Marker{b.CreateMarker("cd", link)}, nil)
		e := newEditor(t, b.CreatePost(first, second), editor.Options{})

		run(t, e, func(pe *editor.PostEditor) {
			pe.RemoveMarkupsWithTag(model.SectionRange(first, 1, second, 1, model.Forward), model.MarkupA)
		})
		assert.Equal(t, `<p><a href="https://example.com">a</a>b</p><p>c<a href="https://example.com">d</a></p>`,
			dom.InnerHTML(e.Root()))
	})

	t.Run("toggle adds until every marker has the tag", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		italic := b.CreateMarkup(model.MarkupI, nil)
		section := b.CreateMarkupSection(model.TagP, []*model.Marker{
			b.CreateMarker("ab", italic),
			b.CreateMarker("cd"),
		}, nil)
		e := newEditor(t, b.CreatePost(section), editor.Options{})
		rng := model.SectionRange(section, 0, section, 4, model.Forward)

		run(t, e, func(pe *editor.PostEditor) { pe.ToggleMarkupTag(model.MarkupI, rng) })
		require.Equal(t, 1, section.Markers.Len())
		assert.True(t, section.Markers.Head().HasMarkup(model.MarkupI))

		run(t, e, func(pe *editor.PostEditor) { pe.ToggleMarkupTag(model.MarkupI, rng) })
		require.Equal(t, 1, section.Markers.Len())
		assert.Empty(t, section.Markers.Head().Markups)
	})
}

func TestToggleSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(b *model.Builder) []*model.Section
		tag   string
		want  []string
		again []string
	}{
		{
			name:  "heading",
			build: func(b *model.Builder) []*model.Section { return paragraphs(b, "a", "b") },
			tag:   model.TagH2,
			want:  []string{"h2:a", "h2:b"},
			again: []string{"p:a", "p:b"},
		},
		{
			name:  "list",
			build: func(b *model.Builder) []*model.Section { return paragraphs(b, "a", "b") },
			tag:   model.TagUL,
			want:  []string{"ul[a|b]"},
			again: []string{"p:a", "p:b"},
		},
		{
			name: "list kind",
			build: func(b *model.Builder) []*model.Section {
				return []*model.Section{list(b, model.TagUL, "a", "b")}
			},
			tag:   model.TagOL,
			want:  []string{"ol[a|b]"},
			again: []string{"p:a", "p:b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := model.NewBuilder()
			e := newEditor(t, b.CreatePost(tt.build(b)...), editor.Options{})
			e.SelectRange(model.NewRange(e.Post().HeadPosition(), e.Post().TailPosition(), model.Forward))

			require.NoError(t, e.ToggleSection(tt.tag))
			assert.Equal(t, tt.want, describe(e.Post()))
			assert.Same(t, e.Post().HeadPosition().Section, e.Range().Head.Section)

			e.SelectRange(model.NewRange(e.Post().HeadPosition(), e.Post().TailPosition(), model.Forward))
			require.NoError(t, e.ToggleSection(tt.tag))
			assert.Equal(t, tt.again, describe(e.Post()))
		})
	}
}

func TestSectionAttributes(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	sections := paragraphs(b, "a", "b")
	e := newEditor(t, b.CreatePost(append(sections, hr(b))...), editor.Options{})
	e.SelectRange(model.NewRange(e.Post().HeadPosition(), e.Post().TailPosition(), model.Forward))

	require.NoError(t, e.SetAttribute("text-align", "center"))
	for _, s := range sections {
		assert.Equal(t, map[string]string{"data-md-text-align": "center"}, s.Attributes)
	}
	assert.Equal(t, []string{"center"}, e.State().ActiveSectionAttributes["data-md-text-align"])

	require.NoError(t, e.RemoveAttribute("text-align"))
	for _, s := range sections {
		assert.Empty(t, s.Attributes)
	}
}

func TestInsertPost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		build      func(b *model.Builder) []*model.Section
		path       []int
		offset     int
		paste      func(b *model.Builder) []*model.Section
		want       []string
		wantPath   []int
		wantOffset int
	}{
		{
			name:       "inline text",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "abcd") },
			path:       []int{0},
			offset:     2,
			paste:      func(b *model.Builder) []*model.Section { return paragraphs(b, "XY") },
			want:       []string{"p:abXYcd"},
			wantPath:   []int{0},
			wantOffset: 4,
		},
		{
			name:       "two paragraphs",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "abcd") },
			path:       []int{0},
			offset:     2,
			paste:      func(b *model.Builder) []*model.Section { return paragraphs(b, "X", "Y") },
			want:       []string{"p:abX", "p:Ycd"},
			wantPath:   []int{1},
			wantOffset: 1,
		},
		{
			name:     "card in the middle of a paragraph",
			build:    func(b *model.Builder) []*model.Section { return paragraphs(b, "abcd") },
			path:     []int{0},
			offset:   2,
			paste:    func(b *model.Builder) []*model.Section { return []*model.Section{hr(b)} },
			want:     []string{"p:ab", "card:" + cards.HRName, "p:cd"},
			wantPath: []int{2},
		},
		{
			name:       "card into a blank paragraph",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "") },
			path:       []int{0},
			paste:      func(b *model.Builder) []*model.Section { return []*model.Section{hr(b)} },
			want:       []string{"card:" + cards.HRName},
			wantPath:   []int{0},
			wantOffset: 1,
		},
		{
			name: "paragraphs into a list item",
			build: func(b *model.Builder) []*model.Section {
				return []*model.Section{list(b, model.TagUL, "ab")}
			},
			path:       []int{0, 0},
			offset:     1,
			paste:      func(b *model.Builder) []*model.Section { return paragraphs(b, "X", "Y") },
			want:       []string{"ul[aX|Yb]"},
			wantPath:   []int{0, 1},
			wantOffset: 1,
		},
		{
			name:       "single item list merges into a paragraph",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "abcd") },
			path:       []int{0},
			offset:     2,
			paste:      func(b *model.Builder) []*model.Section { return []*model.Section{list(b, model.TagUL, "XY")} },
			want:       []string{"p:abXYcd"},
			wantPath:   []int{0},
			wantOffset: 4,
		},
		{
			name:     "multi item list in the middle of a paragraph",
			build:    func(b *model.Builder) []*model.Section { return paragraphs(b, "abcd") },
			path:     []int{0},
			offset:   2,
			paste:    func(b *model.Builder) []*model.Section { return []*model.Section{list(b, model.TagUL, "X", "Y")} },
			want:     []string{"p:ab", "ul[X|Y]", "p:cd"},
			wantPath: []int{2},
		},
		{
			name:       "multi item list into a blank paragraph",
			build:      func(b *model.Builder) []*model.Section { return paragraphs(b, "") },
			path:       []int{0},
			paste:      func(b *model.Builder) []*model.Section { return []*model.Section{list(b, model.TagOL, "X", "Y")} },
			want:       []string{"ol[X|Y]"},
			wantPath:   []int{0, 1},
			wantOffset: 1,
		},
		{
			name: "list into a list item",
			build: func(b *model.Builder) []*model.Section {
				return []*model.Section{list(b, model.TagUL, "ab", "cd")}
			},
			path:       []int{0, 0},
			offset:     1,
			paste:      func(b *model.Builder) []*model.Section { return []*model.Section{list(b, model.TagOL, "X", "Y")} },
			want:       []string{"ul[aX|Yb|cd]"},
			wantPath:   []int{0, 1},
			wantOffset: 1,
		},
		{
			name: "card in the middle of a list item splits the list",
			build: func(b *model.Builder) []*model.Section {
				return []*model.Section{list(b, model.TagUL, "ab", "cd")}
			},
			path:     []int{0, 0},
			offset:   1,
			paste:    func(b *model.Builder) []*model.Section { return []*model.Section{hr(b)} },
			want:     []string{"ul[a]", "card:" + cards.HRName, "ul[b|cd]"},
			wantPath: []int{2, 0},
		},
		{
			name:   "paragraph card paragraph",
			build:  func(b *model.Builder) []*model.Section { return paragraphs(b, "abcd") },
			path:   []int{0},
			offset: 2,
			paste: func(b *model.Builder) []*model.Section {
				return []*model.Section{paragraphs(b, "X")[0], hr(b), paragraphs(b, "Y")[0]}
			},
			want:       []string{"p:abX", "card:" + cards.HRName, "p:Ycd"},
			wantPath:   []int{2},
			wantOffset: 1,
		},
		{
			name:       "next to a card",
			build:      func(b *model.Builder) []*model.Section { return []*model.Section{hr(b)} },
			path:       []int{0},
			offset:     1,
			paste:      func(b *model.Builder) []*model.Section { return paragraphs(b, "x") },
			want:       []string{"card:" + cards.HRName, "p:x"},
			wantPath:   []int{1},
			wantOffset: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := model.NewBuilder()
			e := newEditor(t, b.CreatePost(tt.build(b)...), editor.Options{})
			pb := model.NewBuilder()
			other := pb.CreatePost(tt.paste(pb)...)
			before := describe(other)

			run(t, e, func(pe *editor.PostEditor) {
				pe.InsertPost(at(pe.Post(), tt.path, tt.offset), other)
			})
			assert.Equal(t, tt.want, describe(e.Post()))
			assertCursor(t, e, tt.wantPath, tt.wantOffset)
			assert.True(t, e.Range().IsCollapsed())
			assert.Equal(t, before, describe(other), "the pasted post is left alone")
			assert.Equal(t, tt.want, describe(roundTrip(t, e.Post())))
		})
	}
}

func TestMoveSection(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	sections := paragraphs(b, "a", "b", "c")
	e := newEditor(t, b.CreatePost(sections...), editor.Options{})
	el := e.Tree().ElementForSection(sections[2])

	run(t, e, func(pe *editor.PostEditor) { pe.MoveSectionUp(sections[2]) })
	assert.Equal(t, []string{"p:a", "p:c", "p:b"}, describe(e.Post()))
	assert.Same(t, el, e.Tree().ElementForSection(sections[2]))
	assert.Equal(t, "<p>a</p><p>c</p><p>b</p>", dom.InnerHTML(e.Root()))

	run(t, e, func(pe *editor.PostEditor) { pe.MoveSectionUp(sections[0]) })
	assert.Equal(t, []string{"p:a", "p:c", "p:b"}, describe(e.Post()))

	run(t, e, func(pe *editor.PostEditor) { pe.MoveSectionDown(sections[0]) })
	assert.Equal(t, []string{"p:c", "p:a", "p:b"}, describe(e.Post()))
	assert.Equal(t, "<p>c</p><p>a</p><p>b</p>", dom.InnerHTML(e.Root()))
}

func TestInsertSectionReplacesBlank(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	sections := paragraphs(b, "", "b")
	e := newEditor(t, b.CreatePost(sections...), editor.Options{})
	e.SelectRange(sections[0].HeadPosition().ToRange())

	run(t, e, func(pe *editor.PostEditor) {
		pe.InsertSection(pe.Builder().CreateImageSection("cat.png"))
	})
	assert.Equal(t, []string{"img:cat.png", "p:b"}, describe(e.Post()))
	assertCursor(t, e, []int{0}, 1)
}
