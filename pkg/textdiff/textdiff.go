// Package textdiff computes line diffs between two renderings of a post and
// formats them as unified diffs.
package textdiff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Kind classifies a diff line.
type Kind int

const (
	Equal Kind = iota
	Insert
	Delete
)

// Line is one line of a hunk.
type Line struct {
	Kind Kind
	Text string
}

// Hunk is a run of changes with surrounding context. Starts are 1-based.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Lines              []Line
}

// Diff is the result of comparing two texts.
type Diff struct {
	OldName, NewName string
	Hunks            []Hunk
	Insertions       int
	Deletions        int
}

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 3

// Compare diffs old against new line by line. It returns a Diff without hunks
// when the texts are equal. A negative context means DefaultContext.
func Compare(oldName, oldText, newName, newText string, context int) *Diff {
	if context < 0 {
		context = DefaultContext
	}
	d := &Diff{OldName: oldName, NewName: newName}
	a, b := splitLines(oldText), splitLines(newText)
	m := difflib.NewMatcher(a, b)
	for _, op := range m.GetOpCodes() {
		if op.Tag != 'e' {
			d.Deletions += op.I2 - op.I1
			d.Insertions += op.J2 - op.J1
		}
	}
	if d.Insertions+d.Deletions == 0 {
		return d
	}
	for _, group := range m.GetGroupedOpCodes(context) {
		d.Hunks = append(d.Hunks, hunk(group, a, b))
	}
	return d
}

// HasChanges reports whether the texts differ.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// String formats the diff in unified format.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", d.OldName, d.NewName)
	for _, h := range d.Hunks {
		b.WriteString(h.Header())
		b.WriteByte('\n')
		for _, l := range h.Lines {
			b.WriteString(l.Kind.prefix())
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Header returns the "@@ -a,b +c,d @@" line of the hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

func (k Kind) prefix() string {
	switch k {
	case Insert:
		return "+"
	case Delete:
		return "-"
	default:
		return " "
	}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// hunk turns one group of opcodes into a Hunk, listing deletions before
// insertions within a replacement.
func hunk(group []difflib.OpCode, a, b []string) Hunk {
	first, last := group[0], group[len(group)-1]
	h := Hunk{
		OldStart: first.I1 + 1,
		OldCount: last.I2 - first.I1,
		NewStart: first.J1 + 1,
		NewCount: last.J2 - first.J1,
	}
	// Unified format numbers an empty side by the line before it.
	if h.OldCount == 0 {
		h.OldStart--
	}
	if h.NewCount == 0 {
		h.NewStart--
	}
	for _, op := range group {
		if op.Tag == 'e' {
			h.Lines = appendLines(h.Lines, Equal, a[op.I1:op.I2])
			continue
		}
		h.Lines = appendLines(h.Lines, Delete, a[op.I1:op.I2])
		h.Lines = appendLines(h.Lines, Insert, b[op.J1:op.J2])
	}
	return h
}

func appendLines(lines []Line, kind Kind, texts []string) []Line {
	for _, text := range texts {
		lines = append(lines, Line{Kind: kind, Text: text})
	}
	return lines
}
