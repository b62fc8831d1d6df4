package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/yaklabco/gomobiledoc/internal/logging"
	"github.com/yaklabco/gomobiledoc/pkg/codec"
	"github.com/yaklabco/gomobiledoc/pkg/config"
	"github.com/yaklabco/gomobiledoc/pkg/fsutil"
	"github.com/yaklabco/gomobiledoc/pkg/model"
	"github.com/yaklabco/gomobiledoc/pkg/parser/html"
	"github.com/yaklabco/gomobiledoc/pkg/parser/markdown"
)

// inputFormat names what an input file holds.
type inputFormat string

const (
	inputAuto      inputFormat = "auto"
	inputMobiledoc inputFormat = "mobiledoc"
	inputMarkdown  inputFormat = "markdown"
	inputHTML      inputFormat = "html"
)

func parseInputFormat(name string) (inputFormat, error) {
	switch f := inputFormat(strings.ToLower(name)); f {
	case inputAuto, inputMobiledoc, inputMarkdown, inputHTML:
		return f, nil
	case "md":
		return inputMarkdown, nil
	case "json":
		return inputMobiledoc, nil
	default:
		return "", fmt.Errorf("%w: unknown input format %q (expected auto, mobiledoc, markdown or html)", ErrInvalidUsage, name)
	}
}

// detectInput picks a format from the file extension, then from the first
// non-blank byte of the content.
func detectInput(path string, content []byte) inputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".mobiledoc":
		return inputMobiledoc
	case ".md", ".markdown", ".mdown":
		return inputMarkdown
	case ".html", ".htm":
		return inputHTML
	}

	trimmed := bytes.TrimSpace(content)
	switch {
	case bytes.HasPrefix(trimmed, []byte("{")):
		return inputMobiledoc
	case bytes.HasPrefix(trimmed, []byte("<")):
		return inputHTML
	default:
		return inputMarkdown
	}
}

// readPost reads path ("-" for stdin) and parses it as format.
func readPost(ctx context.Context, cfg *config.Config, path string, format inputFormat, stdin io.Reader) (*model.Post, error) {
	content, err := fsutil.ReadInput(ctx, path, stdin)
	if err != nil {
		return nil, err
	}
	if format == inputAuto || format == "" {
		format = detectInput(path, content)
	}

	logging.FromContext(ctx).Debug("reading post",
		logging.FieldInput, path,
		logging.FieldFormat, format,
	)

	var post *model.Post
	switch format {
	case inputMobiledoc:
		post, err = codec.Unmarshal(content)
	case inputHTML:
		post, err = html.New(nil).Parse(ctx, bytes.NewReader(content))
	default:
		post, err = markdown.New(markdown.Options{
			Flavor:             string(cfg.Markdown.Flavor),
			DetectCodeLanguage: cfg.Markdown.DetectCodeLanguage,
		}).Parse(ctx, content)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s as %s: %w", displayName(path), format, err)
	}
	return post, nil
}

func displayName(path string) string {
	if path == fsutil.StdioPath {
		return "stdin"
	}
	return path
}
