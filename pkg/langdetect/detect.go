// Package langdetect guesses the language of a code snippet.
//
// Code cards imported without a fence info string use it to fill in their language.
// Detection tries a shebang first, then a short list of telltale patterns and finally
// the go-enry classifier, accepting only answers the classifier is sure about.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language names as they appear in code card payloads.
const (
	Go         = "go"
	Python     = "python"
	JavaScript = "javascript"
	JSON       = "json"
	YAML       = "yaml"
	HTML       = "html"
	SQL        = "sql"
	Rust       = "rust"
	Dockerfile = "dockerfile"
	Bash       = "bash"
)

// DefaultCandidates are the languages the classifier chooses between.
//
//nolint:gochecknoglobals // Read-only default list.
var DefaultCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

// rule recognises one language from the raw snippet.
type rule struct {
	lang  string
	match func(code []byte) bool
}

// Detector guesses snippet languages. The zero value is not usable; call New.
type Detector struct {
	candidates []string
	rules      []rule
}

// Option configures a Detector.
type Option func(*Detector)

// WithCandidates replaces the classifier's candidate languages. Names use go-enry
// spelling ("Go", "Shell").
func WithCandidates(candidates ...string) Option {
	return func(d *Detector) {
		d.candidates = append([]string(nil), candidates...)
	}
}

// New creates a detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		candidates: DefaultCandidates,
		rules: []rule{
			{Go, isGo},
			{Python, isPython},
			{HTML, isHTML},
			{JSON, isJSON},
			{Dockerfile, isDockerfile},
			{SQL, isSQL},
			{Rust, isRust},
			{JavaScript, isJavaScript},
			{YAML, isYAML},
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Language returns the snippet's language and whether it could be told at all.
func (d *Detector) Language(code []byte) (string, bool) {
	if len(bytes.TrimSpace(code)) == 0 {
		return "", false
	}
	if lang, safe := enry.GetLanguageByShebang(code); safe {
		return normalize(lang), true
	}
	for _, r := range d.rules {
		if r.match(code) {
			return r.lang, true
		}
	}
	if lang, safe := enry.GetLanguageByClassifier(code, d.candidates); safe && lang != "" {
		return normalize(lang), true
	}
	return "", false
}

func isGo(code []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(code), []byte("package "))
}

func isPython(code []byte) bool {
	s := string(code)
	switch {
	case strings.Contains(s, "def ") && strings.Contains(s, "):"):
		return true
	case strings.Contains(s, "__name__"), strings.Contains(s, "__main__"):
		return true
	case strings.Contains(s, "import ") && !strings.Contains(s, "import ("):
		return strings.Contains(s, "from ") || strings.HasPrefix(strings.TrimSpace(s), "import ")
	}
	return false
}

func isHTML(code []byte) bool {
	lower := bytes.ToLower(bytes.TrimSpace(code))
	for _, marker := range []string{"<!doctype html", "<html", "<head>", "<body>"} {
		if bytes.Contains(lower, []byte(marker)) {
			return true
		}
	}
	return false
}

func isJSON(code []byte) bool {
	trimmed := bytes.TrimSpace(code)
	opens := bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))
	return opens && bytes.Contains(trimmed, []byte(`"`))
}

func isDockerfile(code []byte) bool {
	if bytes.HasPrefix(bytes.TrimSpace(code), []byte("FROM ")) {
		return true
	}
	has := func(s string) bool { return bytes.Contains(code, []byte(s)) }
	return (has("\nFROM ") && has("\nRUN ")) || (has("WORKDIR ") && has("COPY "))
}

func isSQL(code []byte) bool {
	upper := strings.TrimSpace(strings.ToUpper(string(code)))
	for _, verb := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
		if strings.HasPrefix(upper, verb) {
			return true
		}
	}
	return false
}

func isRust(code []byte) bool {
	s := string(code)
	return strings.Contains(s, "fn main()") || strings.Contains(s, "println!") || strings.Contains(s, "let mut ")
}

func isJavaScript(code []byte) bool {
	s := string(code)
	for _, marker := range []string{"=>", "const ", "let ", "console.log"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// isYAML looks for at least two key: value lines or root list items.
func isYAML(code []byte) bool {
	keys := 0
	for _, line := range bytes.Split(code, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if bytes.Contains(line, []byte(": ")) &&
			!bytes.ContainsAny(line, "({") && line[0] != '"' {
			keys++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			keys++
		}
	}
	return keys >= 2
}

func normalize(lang string) string {
	if lang == "Shell" {
		return Bash
	}
	return strings.ToLower(lang)
}
