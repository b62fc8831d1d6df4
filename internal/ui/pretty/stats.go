package pretty

import (
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// PostStats counts what a post is made of.
type PostStats struct {
	Sections  int
	ListItems int
	Markers   int
	Atoms     int
	Cards     int
	Images    int

	// Length is the total leaf length in UTF-16 units.
	Length int

	// Tags counts sections and markups by tag, cards and atoms by name.
	Tags map[string]int
}

// CollectStats walks post once.
func CollectStats(post *model.Post) PostStats {
	st := PostStats{Tags: make(map[string]int)}
	post.Sections.ForEach(func(s *model.Section, _ int) {
		st.Sections++
		switch {
		case s.IsCardSection():
			st.Cards++
			st.Tags["card:"+s.Name]++
		case s.IsImageSection():
			st.Images++
			st.Tags[model.TagImg]++
		case s.IsListSection():
			st.Tags[s.TagName]++
			s.Items.ForEach(func(item *model.Section, _ int) {
				st.ListItems++
				st.addMarkers(item)
			})
		default:
			st.Tags[s.TagName]++
			st.addMarkers(s)
		}
	})
	return st
}

func (st *PostStats) addMarkers(s *model.Section) {
	st.Length += s.Length()
	s.Markers.ForEach(func(m *model.Marker, _ int) {
		st.Markers++
		if m.IsAtom() {
			st.Atoms++
			st.Tags["atom:"+m.Name]++
		}
		for _, markup := range m.Markups {
			st.Tags["<"+markup.TagName+">"]++
		}
	})
}

// FormatStats renders the totals and the per-tag counts as a table.
func (s *Styles) FormatStats(st PostStats) string {
	rows := [][]string{
		{"sections", strconv.Itoa(st.Sections)},
		{"list items", strconv.Itoa(st.ListItems)},
		{"markers", strconv.Itoa(st.Markers)},
		{"atoms", strconv.Itoa(st.Atoms)},
		{"cards", strconv.Itoa(st.Cards)},
		{"images", strconv.Itoa(st.Images)},
		{"length", strconv.Itoa(st.Length)},
	}

	tags := make([]string, 0, len(st.Tags))
	for tag := range st.Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		rows = append(rows, []string{tag, strconv.Itoa(st.Tags[tag])})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.TableBorder).
		Headers("item", "count").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String() + "\n"
}
