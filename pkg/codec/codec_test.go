package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomobiledoc/pkg/codec"
	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

func simplePost(b *model.Builder) *model.Post {
	bold := b.CreateMarkup(model.MarkupB, nil)
	return b.CreatePost(
		b.CreateMarkupSection(model.TagP, []*model.Marker{b.CreateMarker("a"), b.CreateMarker("b", bold)}, nil),
		b.CreateCardSection("hr", nil),
	)
}

func richPost(b *model.Builder) *model.Post {
	bold := b.CreateMarkup(model.MarkupB, nil)
	italic := b.CreateMarkup(model.MarkupI, nil)
	link := b.CreateMarkup(model.MarkupA, map[string]string{"href": "https://x.io", "rel": "nofollow"})
	return b.CreatePost(
		b.CreateMarkupSection(model.TagH2, []*model.Marker{b.CreateMarker("Title")}, map[string]string{"data-md-text-align": "center"}),
		b.CreateMarkupSection(model.TagP, []*model.Marker{
			b.CreateMarker("plain "),
			b.CreateMarker("bold ", bold),
			b.CreateMarker("both", bold, italic),
			b.CreateAtom("mention", "@bob", map[string]any{"id": "42"}, bold),
			b.CreateMarker(" link", link),
		}, nil),
		b.CreateListSection(model.TagOL, []*model.Section{
			b.CreateListItem([]*model.Marker{b.CreateMarker("one")}),
			b.CreateListItem([]*model.Marker{b.CreateMarker("two", italic)}),
		}, nil),
		b.CreateImageSection("cat.png"),
		b.CreateCardSection("code", map[string]any{"code": "x := 1"}),
	)
}

func TestMarshalLayouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		want    string
	}{
		{
			version: codec.Version032,
			want: `{"version":"0.3.2","atoms":[],"cards":[["hr",{}]],"markups":[["b"]],` +
				`"sections":[[1,"p",[[0,[],0,"a"],[0,[0],1,"b"]]],[10,0]]}`,
		},
		{
			version: codec.Version030,
			want: `{"version":"0.3.0","atoms":[],"cards":[["hr",{}]],"markups":[["b"]],` +
				`"sections":[[1,"p",[[0,[],0,"a"],[0,[0],1,"b"]]],[10,0]]}`,
		},
		{
			version: codec.Version020,
			want:    `{"version":"0.2.0","sections":[[["b"]],[[1,"p",[[[],0,"a"],[[0],1,"b"]]],[10,"hr",{}]]]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			t.Parallel()
			data, err := codec.Marshal(simplePost(model.NewBuilder()), tt.version)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, version := range []string{codec.Version030, codec.Version031, codec.Version032} {
		t.Run(version, func(t *testing.T) {
			t.Parallel()
			first, err := codec.Marshal(richPost(model.NewBuilder()), version)
			require.NoError(t, err)

			post, err := codec.Unmarshal(first)
			require.NoError(t, err)
			second, err := codec.Marshal(post, version)
			require.NoError(t, err)
			assert.JSONEq(t, string(first), string(second))
		})
	}
}

func TestDeserializeRebuildsModel(t *testing.T) {
	t.Parallel()

	data, err := codec.Marshal(richPost(model.NewBuilder()), codec.Latest)
	require.NoError(t, err)

	b := model.NewBuilder()
	post, err := codec.Unmarshal(data, codec.WithBuilder(b))
	require.NoError(t, err)
	require.Equal(t, 5, post.Sections.Len())

	h2 := post.Sections.At(0)
	assert.Equal(t, map[string]string{"data-md-text-align": "center"}, h2.Attributes)

	p := post.Sections.At(1)
	assert.Equal(t, "plain bold both"+model.AtomText+" link", p.Text())
	bold := b.CreateMarkup(model.MarkupB, nil)
	both := p.Markers.At(2)
	require.Len(t, both.Markups, 2)
	assert.Same(t, bold, both.Markups[0])

	atom := p.Markers.At(3)
	require.True(t, atom.IsAtom())
	assert.Equal(t, "mention", atom.Name)
	assert.Equal(t, "@bob", atom.Value)
	assert.Equal(t, "42", atom.Payload["id"])
	assert.Equal(t, []*model.Markup{bold}, atom.Markups)

	link := p.Markers.At(4).MarkupWithTag(model.MarkupA)
	require.NotNil(t, link)
	assert.Equal(t, "nofollow", link.Attribute("rel"))

	ol := post.Sections.At(2)
	assert.Equal(t, model.TagOL, ol.TagName)
	assert.True(t, ol.Items.Tail().Markers.Head().HasMarkup(model.MarkupI))

	assert.Equal(t, "cat.png", post.Sections.At(3).Src)
	assert.Equal(t, "x := 1", post.Sections.At(4).Payload["code"])
}

func TestOlderVersionsDropAttributes(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	post := b.CreatePost(b.CreateMarkupSection(model.TagP, []*model.Marker{b.CreateMarker("x")}, map[string]string{"data-md-text-align": "left"}))

	data, err := codec.Marshal(post, codec.Version031)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"0.3.1","atoms":[],"cards":[],"markups":[],"sections":[[1,"p",[[0,[],0,"x"]]]]}`, string(data))

	data, err = codec.Marshal(post, codec.Version032)
	require.NoError(t, err)
	assert.Contains(t, string(data), `["data-md-text-align","left"]`)
}

func TestVersion020RoundTrip(t *testing.T) {
	t.Parallel()

	data := `{"version":"0.2.0","sections":[[["b"],["a",["href","https://x.io"]]],[` +
		`[1,"h1",[[[0],1,"bold"],[[],0," plain"]]],` +
		`[3,"ul",[[[[1],1,"item"]]]],` +
		`[2,"cat.png"],` +
		`[10,"hr",{}]]]}`

	post, err := codec.Unmarshal([]byte(data))
	require.NoError(t, err)
	require.Equal(t, 4, post.Sections.Len())
	assert.Equal(t, "bold plain", post.Sections.Head().Text())
	assert.True(t, post.Sections.Head().Markers.Head().HasMarkup(model.MarkupB))
	assert.Equal(t, "https://x.io", post.Sections.At(1).Items.Head().Markers.Head().MarkupWithTag(model.MarkupA).Attribute("href"))
	assert.Equal(t, "hr", post.Sections.Tail().Name)

	out, err := codec.Marshal(post, codec.Version020)
	require.NoError(t, err)
	assert.JSONEq(t, data, string(out))
}

func TestSerializeErrors(t *testing.T) {
	t.Parallel()

	t.Run("unsupported version", func(t *testing.T) {
		t.Parallel()
		doc, err := codec.Serialize(simplePost(model.NewBuilder()), "0.4.0")
		require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
		assert.Nil(t, doc)
	})

	t.Run("atoms cannot be written as 0.2.0", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		post := b.CreatePost(b.CreateMarkupSection(model.TagP, []*model.Marker{b.CreateAtom("mention", "@x", nil)}, nil))
		data, err := codec.Marshal(post, codec.Version020)
		require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
		assert.Nil(t, data)
	})
}

func TestUnmarshalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "unknown version", data: `{"version":"9.9.9","sections":[]}`, want: errs.ErrUnsupportedVersion},
		{name: "not json", data: `{`, want: errs.ErrMalformedDocument},
		{
			name: "markup index out of range",
			data: `{"version":"0.3.2","atoms":[],"cards":[],"markups":[],"sections":[[1,"p",[[0,[0],1,"x"]]]]}`,
			want: errs.ErrMalformedDocument,
		},
		{
			name: "closes more markups than open",
			data: `{"version":"0.3.2","atoms":[],"cards":[],"markups":[["b"]],"sections":[[1,"p",[[0,[0],2,"x"]]]]}`,
			want: errs.ErrMalformedDocument,
		},
		{
			name: "card index out of range",
			data: `{"version":"0.3.2","atoms":[],"cards":[],"markups":[],"sections":[[10,0]]}`,
			want: errs.ErrMalformedDocument,
		},
		{
			name: "atom index out of range",
			data: `{"version":"0.3.2","atoms":[],"cards":[],"markups":[],"sections":[[1,"p",[[1,[],0,0]]]]}`,
			want: errs.ErrMalformedDocument,
		},
		{
			name: "unknown section type",
			data: `{"version":"0.3.2","atoms":[],"cards":[],"markups":[],"sections":[[7,"x"]]}`,
			want: errs.ErrMalformedDocument,
		},
		{
			name: "invalid section tag",
			data: `{"version":"0.3.2","atoms":[],"cards":[],"markups":[],"sections":[[1,"marquee",[]]]}`,
			want: errs.ErrMalformedDocument,
		},
		{
			name: "invalid markup tag",
			data: `{"version":"0.3.2","atoms":[],"cards":[],"markups":[["blink"]],"sections":[]}`,
			want: errs.ErrMalformedDocument,
		},
		{
			name: "short marker",
			data: `{"version":"0.3.2","atoms":[],"cards":[],"markups":[],"sections":[[1,"p",[[0,[]]]]]}`,
			want: errs.ErrMalformedDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			post, err := codec.Unmarshal([]byte(tt.data))
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, post)
		})
	}
}

func TestVisitOpcodes(t *testing.T) {
	t.Parallel()

	ops := codec.Visit(simplePost(model.NewBuilder()))
	codes := make([]string, 0, len(ops))
	for _, op := range ops {
		codes = append(codes, op.Code.String())
	}
	assert.Equal(t, []string{"openPost", "openMarkupSection", "openMarker", "openMarkup", "openMarker", "openCardSection"}, codes)
	assert.Equal(t, 1, ops[4].Closed)
}

func TestCompileRejectsStrayLeaf(t *testing.T) {
	t.Parallel()

	_, err := codec.Compile([]codec.Op{{Code: codec.OpOpenPost}, {Code: codec.OpOpenMarker, Text: "x"}}, codec.Latest)
	require.ErrorIs(t, err, errs.ErrMalformedDocument)
}
