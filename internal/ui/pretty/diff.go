package pretty

import (
	"strings"

	"github.com/yaklabco/gomobiledoc/pkg/textdiff"
)

// FormatDiff renders d as a colored unified diff. Equal inputs render a
// one-line notice.
func (s *Styles) FormatDiff(d *textdiff.Diff) string {
	if !d.HasChanges() {
		return s.Success.Render("no differences") + "\n"
	}

	var b strings.Builder
	b.WriteString(s.DiffHeader.Render("--- "+d.OldName) + "\n")
	b.WriteString(s.DiffHeader.Render("+++ "+d.NewName) + "\n")
	for _, h := range d.Hunks {
		b.WriteString(s.DiffHunk.Render(h.Header()) + "\n")
		for _, l := range h.Lines {
			switch l.Kind {
			case textdiff.Insert:
				b.WriteString(s.DiffAdd.Render("+" + l.Text))
			case textdiff.Delete:
				b.WriteString(s.DiffRemove.Render("-" + l.Text))
			default:
				b.WriteString(s.DiffContext.Render(" " + l.Text))
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
