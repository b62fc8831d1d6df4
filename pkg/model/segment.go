package model

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// span is a segment of section text between two boundaries, in UTF-16 offsets.
type span struct {
	start, end int
	word       bool
}

// graphemeBoundaries returns the UTF-16 offsets where grapheme clusters of text
// start, followed by the length of text. Atoms are always clusters of their own.
func graphemeBoundaries(text string) []int {
	bounds := []int{0}
	offset := 0
	for i, piece := range strings.Split(text, string(atomRune)) {
		if i > 0 {
			offset++
			bounds = append(bounds, offset)
		}
		state := -1
		var cluster string
		for piece != "" {
			cluster, piece, _, state = uniseg.FirstGraphemeClusterInString(piece, state)
			offset += UnitLen(cluster)
			bounds = append(bounds, offset)
		}
	}
	return bounds
}

// wordSpans splits text at Unicode word boundaries. A span is a word when it
// holds a letter, a digit or an underscore.
func wordSpans(text string) []span {
	var (
		out   []span
		word  string
		state = -1
	)
	offset := 0
	for text != "" {
		word, text, state = uniseg.FirstWordInString(text, state)
		n := UnitLen(word)
		out = append(out, span{start: offset, end: offset + n, word: isWord(word)})
		offset += n
	}
	return out
}

func isWord(s string) bool {
	for _, r := range s {
		if r == atomRune {
			return false
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return true
		}
	}
	return false
}

// nextBoundary returns the first boundary after offset, or offset at the end.
func nextBoundary(bounds []int, offset int) int {
	for _, b := range bounds {
		if b > offset {
			return b
		}
	}
	return offset
}

// prevBoundary returns the last boundary before offset, or offset at the start.
func prevBoundary(bounds []int, offset int) int {
	for i := len(bounds) - 1; i >= 0; i-- {
		if bounds[i] < offset {
			return bounds[i]
		}
	}
	return offset
}

// nextWordEnd skips non-word spans after offset and returns the end of the
// following word.
func nextWordEnd(spans []span, offset int) int {
	for _, s := range spans {
		if s.end <= offset {
			continue
		}
		offset = s.end
		if s.word {
			return offset
		}
	}
	return offset
}

// prevWordStart is the backward mirror of nextWordEnd.
func prevWordStart(spans []span, offset int) int {
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		if s.start >= offset {
			continue
		}
		offset = s.start
		if s.word {
			return offset
		}
	}
	return offset
}
