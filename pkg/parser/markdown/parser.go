// Package markdown imports Markdown as a post using goldmark.
package markdown

import (
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/gomobiledoc/pkg/langdetect"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// Flavor identifies the Markdown flavor supported by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Options configures a Parser.
type Options struct {
	// Flavor is "commonmark" or "gfm". Anything else means commonmark.
	Flavor string

	// DetectCodeLanguage guesses the language of fenced code without an info string.
	DetectCodeLanguage bool

	// Builder builds the post. Nil gets a fresh builder per parse.
	Builder *model.Builder
}

// Parser converts Markdown into posts.
type Parser struct {
	flavor   string
	md       goldmark.Markdown
	detector *langdetect.Detector
	builder  *model.Builder
}

// New creates a parser for opts.
func New(opts Options) *Parser {
	f := flavorOrDefault(opts.Flavor)
	p := &Parser{
		flavor:  f,
		md:      newGoldmarkInstance(f),
		builder: opts.Builder,
	}
	if opts.DetectCodeLanguage {
		p.detector = langdetect.New()
	}
	return p
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Parse converts Markdown into a post.
//
// Headings, paragraphs, block quotes and lists become sections of the same shape.
// Fenced and indented code become code cards, thematic breaks become hr cards and
// images become image sections. Raw HTML is dropped.
func (p *Parser) Parse(ctx context.Context, content []byte) (*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	reader := text.NewReader(content)
	gmDoc := p.md.Parser().Parse(reader, parser.WithContext(parser.NewContext()))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	b := p.builder
	if b == nil {
		b = model.NewBuilder()
	}
	return newMapper(content, b, p.detector).mapDocument(gmDoc)
}

// flavorOrDefault returns the flavor if valid, otherwise defaults to CommonMark.
func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

// newGoldmarkInstance creates a configured goldmark.Markdown instance.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	var opts []goldmark.Option
	if flavor == FlavorGFM {
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	}
	return goldmark.New(opts...)
}
