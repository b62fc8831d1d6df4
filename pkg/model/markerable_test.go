package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

func markerValues(s *model.Section) []string {
	var out []string
	s.Markers.ForEach(func(m *model.Marker, _ int) { out = append(out, m.Value) })
	return out
}

func TestSplitMarkerAtOffset(t *testing.T) {
	t.Parallel()

	t.Run("inside a marker", func(t *testing.T) {
		t.Parallel()
		b := model.NewBuilder()
		s := paragraph(b, "abc", "def")
		original := s.Markers.Head()

		result := s.SplitMarkerAtOffset(1)

		assert.Equal(t, []string{"a", "bc", "def"}, markerValues(s))
		require.Len(t, result.Removed, 1)
		assert.Same(t, original, result.Removed[0])
		require.Len(t, result.Added, 2)
		assert.Same(t, s.Markers.Head(), result.Added[0])
	})

	t.Run("on a boundary", func(t *testing.T) {
		t.Parallel()
		s := paragraph(model.NewBuilder(), "abc", "def")
		for _, offset := range []int{0, 3, 6} {
			result := s.SplitMarkerAtOffset(offset)
			assert.Empty(t, result.Added)
			assert.Empty(t, result.Removed)
		}
		assert.Equal(t, []string{"abc", "def"}, markerValues(s))
	})

	t.Run("empty section gains a blank marker", func(t *testing.T) {
		t.Parallel()
		s := paragraph(model.NewBuilder())
		result := s.SplitMarkerAtOffset(0)
		require.Len(t, result.Added, 1)
		assert.True(t, result.Added[0].IsBlank())
		assert.Equal(t, 1, s.Markers.Len())
	})

	t.Run("out of range", func(t *testing.T) {
		t.Parallel()
		s := paragraph(model.NewBuilder(), "abc")
		assert.Panics(t, func() { s.SplitMarkerAtOffset(4) })
	})
}

func TestMarkersInRange(t *testing.T) {
	t.Parallel()

	s := paragraph(model.NewBuilder(), "abc", "def", "ghi")
	type visit struct {
		value string
		info  model.MarkerRangeInfo
	}
	collect := func(head, tail int) []visit {
		var out []visit
		s.MarkersInRange(head, tail, func(m *model.Marker, info model.MarkerRangeInfo) {
			out = append(out, visit{m.Value, info})
		})
		return out
	}

	assert.Equal(t, []visit{
		{"abc", model.MarkerRangeInfo{MarkerHead: 1, MarkerTail: 3}},
		{"def", model.MarkerRangeInfo{MarkerHead: 0, MarkerTail: 3, IsContained: true}},
		{"ghi", model.MarkerRangeInfo{MarkerHead: 0, MarkerTail: 1}},
	}, collect(1, 7))
	assert.Equal(t, []visit{
		{"def", model.MarkerRangeInfo{MarkerHead: 0, MarkerTail: 3, IsContained: true}},
	}, collect(3, 6))
	assert.Empty(t, collect(3, 3))
}

func TestMarkersFor(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	bold := b.CreateMarkup(model.MarkupB, nil)
	s := b.CreateMarkupSection(model.TagP, []*model.Marker{
		b.CreateMarker("abc"),
		b.CreateMarker("def", bold),
	}, nil)

	got := s.MarkersFor(2, 4)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Value)
	assert.Equal(t, "d", got[1].Value)
	assert.Same(t, bold, got[1].Markups[0])
	assert.Nil(t, got[0].Section)
	assert.Equal(t, []string{"abc", "def"}, markerValues(s))
}

func TestJoin(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	a := paragraph(b, "abc")
	other := paragraph(b, "", "def", "ghi")

	result := a.Join(other)

	assert.Equal(t, []string{"abc", "def", "ghi"}, markerValues(a))
	assert.Equal(t, "abc", result.BeforeMarker.Value)
	assert.Equal(t, "def", result.AfterMarker.Value)
	assert.Equal(t, 3, other.Markers.Len())

	empty := paragraph(b)
	result = empty.Join(paragraph(b, "x"))
	assert.Nil(t, result.BeforeMarker)
	assert.Equal(t, "x", result.AfterMarker.Value)
}

func TestMarkerBeforeOffset(t *testing.T) {
	t.Parallel()

	s := paragraph(model.NewBuilder(), "abc", "def")

	m, err := s.MarkerBeforeOffset(0)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = s.MarkerBeforeOffset(3)
	require.NoError(t, err)
	assert.Equal(t, "abc", m.Value)

	m, err = s.MarkerBeforeOffset(6)
	require.NoError(t, err)
	assert.Equal(t, "def", m.Value)

	_, err = s.MarkerBeforeOffset(4)
	require.ErrorIs(t, err, errs.ErrMidMarker)

	_, err = s.MarkerBeforeOffset(9)
	require.ErrorIs(t, err, errs.ErrInvalidPosition)
}

func TestMarkerBeforeOffsetAtHead(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	for _, s := range []*model.Section{paragraph(b), paragraph(b, "abc")} {
		m, err := s.MarkerBeforeOffset(0)
		require.NoError(t, err)
		assert.Nil(t, m, "nothing precedes offset zero")

		// The nil result addresses the head of the section.
		x := b.CreateMarker("x")
		s.Markers.InsertAfter(x, m)
		assert.Same(t, x, s.Markers.Head())
	}

	_, err := paragraph(b).MarkerBeforeOffset(1)
	require.ErrorIs(t, err, errs.ErrInvalidPosition)
}

func TestMarkerPositionAtOffset(t *testing.T) {
	t.Parallel()

	s := paragraph(model.NewBuilder(), "abc", "def")
	tests := []struct {
		offset   int
		value    string
		inMarker int
	}{
		{0, "abc", 0},
		{2, "abc", 2},
		{3, "abc", 3},
		{4, "def", 1},
		{6, "def", 3},
	}
	for _, tt := range tests {
		m, off := s.MarkerPositionAtOffset(tt.offset)
		require.NotNil(t, m, "offset %d", tt.offset)
		assert.Equal(t, tt.value, m.Value, "offset %d", tt.offset)
		assert.Equal(t, tt.inMarker, off, "offset %d", tt.offset)
		assert.Equal(t, tt.offset, s.OffsetOfMarker(m, off))
	}

	m, _ := paragraph(model.NewBuilder()).MarkerPositionAtOffset(0)
	assert.Nil(t, m)
}

func TestSplitAt(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	s := b.CreateMarkupSection(model.TagH2, []*model.Marker{b.CreateMarker("abc"), b.CreateMarker("def")}, nil)

	parts := s.SplitAt(4)

	assert.Equal(t, model.TagH2, parts[0].TagName)
	assert.Equal(t, "abcd", parts[0].Text())
	assert.Equal(t, "ef", parts[1].Text())
	assert.Equal(t, "abcdef", s.Text())

	item := b.CreateListItem([]*model.Marker{b.CreateMarker("xy")})
	itemParts := item.SplitAt(2)
	assert.Equal(t, model.SectionListItem, itemParts[1].Kind)
	assert.True(t, itemParts[1].IsBlank())
}

func TestMarkerOperations(t *testing.T) {
	t.Parallel()

	b := model.NewBuilder()
	bold := b.CreateMarkup(model.MarkupB, nil)
	italic := b.CreateMarkup(model.MarkupI, nil)

	m := b.CreateMarker("a😀b", bold)
	assert.Equal(t, 4, m.Length())
	assert.Equal(t, 2, m.DeleteValueAtOffset(2))
	assert.Equal(t, "ab", m.Value)

	parts := b.CreateMarker("abcdef", bold).Split(2, 4)
	assert.Equal(t, "ab", parts[0].Value)
	assert.Equal(t, "cd", parts[1].Value)
	assert.Equal(t, "ef", parts[2].Value)

	atom := b.CreateAtom("mention", "@bob", nil, bold)
	atomParts := atom.Split(0, 1)
	assert.True(t, atomParts[0].IsBlank())
	assert.True(t, atomParts[1].IsAtom())
	assert.True(t, atomParts[2].IsBlank())

	x, y := b.CreateMarker("x", bold, italic), b.CreateMarker("y", bold, italic)
	assert.True(t, x.CanJoin(y))
	assert.Equal(t, "xy", x.Join(y).Value)
	assert.False(t, x.CanJoin(b.CreateMarker("z", italic, bold)))
	assert.False(t, x.CanJoin(atom))

	x.RemoveMarkup(bold)
	assert.False(t, x.HasMarkup(model.MarkupB))
	x.AddMarkup(bold)
	x.AddMarkup(bold)
	assert.Len(t, x.Markups, 2)
	assert.True(t, y.HasMarkupInstance(bold), "markup slices are not shared between markers")
}

func TestCanJoinUsesIdentity(t *testing.T) {
	t.Parallel()

	// Equivalent markups from different builders are distinct instances.
	first, second := model.NewBuilder(), model.NewBuilder()
	x := first.CreateMarker("x", first.CreateMarkup(model.MarkupB, nil))
	y := first.CreateMarker("y", second.CreateMarkup(model.MarkupB, nil))
	assert.False(t, x.CanJoin(y))
}
