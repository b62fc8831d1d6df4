package markdown_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomobiledoc/pkg/cards"
	"github.com/yaklabco/gomobiledoc/pkg/model"
	"github.com/yaklabco/gomobiledoc/pkg/parser/markdown"
)

func parse(t *testing.T, opts markdown.Options, src string) *model.Post {
	t.Helper()
	post, err := markdown.New(opts).Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return post
}

func kinds(post *model.Post) []string {
	var out []string
	post.Sections.ForEach(func(s *model.Section, _ int) {
		switch s.Kind {
		case model.SectionCard:
			out = append(out, "card:"+s.Name)
		case model.SectionImage:
			out = append(out, "img")
		default:
			out = append(out, s.TagName)
		}
	})
	return out
}

func TestParseBlocks(t *testing.T) {
	t.Parallel()

	src := "# Title\n\nSome *text* and **bold**.\n\n> quoted\n\n- one\n- two\n  - nested\n\n1. first\n\n---\n\n```go\nx := 1\n```\n\n    indented\n"
	post := parse(t, markdown.Options{}, src)

	assert.Equal(t, []string{"h1", "p", "blockquote", "ul", "ol", "card:hr", "card:code", "card:code"}, kinds(post))

	p := post.Sections.At(1)
	assert.Equal(t, "Some text and bold.", p.Text())
	assert.True(t, p.Markers.At(1).HasMarkup(model.MarkupEm))
	assert.True(t, p.Markers.At(3).HasMarkup(model.MarkupStrong))

	ul := post.Sections.At(3)
	require.Equal(t, 3, ul.Items.Len())
	assert.Equal(t, "nested", ul.Items.Tail().Text())

	fenced := post.Sections.At(6)
	assert.Equal(t, "x := 1", fenced.Payload[cards.CodeKey])
	assert.Equal(t, "go", fenced.Payload[cards.LanguageKey])

	indented := post.Sections.At(7)
	assert.Equal(t, "indented", indented.Payload[cards.CodeKey])
	assert.NotContains(t, indented.Payload, cards.LanguageKey)
}

func TestParseInlines(t *testing.T) {
	t.Parallel()

	post := parse(t, markdown.Options{}, "Use `code`, a [link](https://x.io \"X\") and <https://auto.io>.\nnext line")
	p := post.Sections.Head()
	assert.Equal(t, "Use code, a link and https://auto.io. next line", p.Text())

	code := p.Markers.At(1)
	assert.Equal(t, "code", code.Value)
	assert.True(t, code.HasMarkup(model.MarkupCode))

	link := p.Markers.At(3).MarkupWithTag(model.MarkupA)
	require.NotNil(t, link)
	assert.Equal(t, map[string]string{"href": "https://x.io", "title": "X"}, link.Attributes)

	auto := p.Markers.At(5).MarkupWithTag(model.MarkupA)
	require.NotNil(t, auto)
	assert.Equal(t, "https://auto.io", auto.Attribute("href"))
}

func TestParseImageSplitsParagraph(t *testing.T) {
	t.Parallel()

	post := parse(t, markdown.Options{}, "before ![alt](cat.png) after")
	assert.Equal(t, []string{"p", "img", "p"}, kinds(post))
	assert.Equal(t, "cat.png", post.Sections.At(1).Src)
	assert.Equal(t, " after", post.Sections.At(2).Text())
}

func TestParseGFM(t *testing.T) {
	t.Parallel()

	src := "~~gone~~\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"

	gfm := parse(t, markdown.Options{Flavor: markdown.FlavorGFM}, src)
	require.Equal(t, 3, gfm.Sections.Len())
	assert.True(t, gfm.Sections.Head().Markers.Head().HasMarkup(model.MarkupS))
	assert.Equal(t, "a | b", gfm.Sections.At(1).Text())
	assert.Equal(t, "1 | 2", gfm.Sections.At(2).Text())

	plain := parse(t, markdown.Options{}, "~~gone~~")
	assert.Equal(t, "~~gone~~", plain.Sections.Head().Text())
}

func TestParseDetectsCodeLanguage(t *testing.T) {
	t.Parallel()

	src := "```\npackage main\n```\n"

	detected := parse(t, markdown.Options{DetectCodeLanguage: true}, src)
	assert.Equal(t, "go", detected.Sections.Head().Payload[cards.LanguageKey])

	plain := parse(t, markdown.Options{}, src)
	assert.NotContains(t, plain.Sections.Head().Payload, cards.LanguageKey)
}

func TestParseCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := markdown.New(markdown.Options{}).Parse(ctx, []byte("x"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestFlavorDefaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, markdown.FlavorCommonMark, markdown.New(markdown.Options{Flavor: "nope"}).Flavor())
	assert.Equal(t, markdown.FlavorGFM, markdown.New(markdown.Options{Flavor: markdown.FlavorGFM}).Flavor())
}
