// Package html imports authored HTML as a post.
package html

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/gomobiledoc/pkg/dom"
	"github.com/yaklabco/gomobiledoc/pkg/model"
	domparser "github.com/yaklabco/gomobiledoc/pkg/parser/dom"
)

// Parser reads HTML documents and fragments.
type Parser struct {
	builder *model.Builder
}

// New creates a parser building with b. A nil builder gets a fresh one.
func New(b *model.Builder) *Parser {
	if b == nil {
		b = model.NewBuilder()
	}
	return &Parser{builder: b}
}

// Parse reads HTML from r. Whitespace between blocks is dropped and runs of
// whitespace inside text collapse to one space.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	root, err := dom.NewDocument().ParseFragment(r)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	post, err := domparser.New(p.builder, domparser.Options{CollapseWhitespace: true}).ParsePost(root)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return post, nil
}

// ParseString is Parse over a string.
func (p *Parser) ParseString(ctx context.Context, s string) (*model.Post, error) {
	return p.Parse(ctx, strings.NewReader(s))
}
