package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// Serialize converts post into a document of the given version.
func Serialize(post *model.Post, version string) (*Document, error) {
	if !IsSupported(version) {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedVersion, version)
	}
	return Compile(Visit(post), version)
}

// Marshal serializes post and encodes it as JSON.
func Marshal(post *model.Post, version string) ([]byte, error) {
	doc, err := Serialize(post, version)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode mobiledoc: %w", err)
	}
	return data, nil
}

// Option configures Deserialize.
type Option func(*decodeOptions)

type decodeOptions struct {
	builder *model.Builder
}

// WithBuilder builds the post with b instead of a fresh builder.
func WithBuilder(b *model.Builder) Option {
	return func(o *decodeOptions) {
		o.builder = b
	}
}

// Unmarshal decodes JSON and deserializes it into a post.
func Unmarshal(data []byte, opts ...Option) (*model.Post, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		if errors.Is(err, errs.ErrUnsupportedVersion) || errors.Is(err, errs.ErrMalformedDocument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errs.ErrMalformedDocument, err)
	}
	return Deserialize(&doc, opts...)
}

// Deserialize builds a post from doc. Every index and tag is checked first; an
// invalid document yields an error and no post.
func Deserialize(doc *Document, opts ...Option) (*model.Post, error) {
	o := decodeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if !IsSupported(doc.Version) {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedVersion, doc.Version)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	if o.builder == nil {
		o.builder = model.NewBuilder()
	}
	return build(doc, o.builder), nil
}

func validate(doc *Document) error {
	for i, m := range doc.Markups {
		if !model.IsValidMarkupTag(m.Tag) {
			return fmt.Errorf("%w: markup %d has tag %q", errs.ErrMalformedDocument, i, m.Tag)
		}
		if len(m.Attributes)%2 != 0 {
			return fmt.Errorf("%w: markup %d has an odd attribute list", errs.ErrMalformedDocument, i)
		}
	}
	for i, a := range doc.Atoms {
		if a.Name == "" {
			return fmt.Errorf("%w: atom %d has no name", errs.ErrMalformedDocument, i)
		}
	}
	for i, c := range doc.Cards {
		if c.Name == "" {
			return fmt.Errorf("%w: card %d has no name", errs.ErrMalformedDocument, i)
		}
	}
	for i := range doc.Sections {
		if err := validateSection(doc, &doc.Sections[i]); err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
	}
	return nil
}

func validateSection(doc *Document, s *SectionEntry) error {
	if len(s.Attributes)%2 != 0 {
		return fmt.Errorf("%w: odd attribute list", errs.ErrMalformedDocument)
	}
	switch s.Type {
	case SectionTypeMarkup:
		if !model.IsValidMarkupSectionTag(s.Tag) {
			return fmt.Errorf("%w: markup section tag %q", errs.ErrMalformedDocument, s.Tag)
		}
		return validateMarkers(doc, s.Markers)
	case SectionTypeList:
		if !model.IsValidListSectionTag(s.Tag) {
			return fmt.Errorf("%w: list section tag %q", errs.ErrMalformedDocument, s.Tag)
		}
		for i, item := range s.Items {
			if err := validateMarkers(doc, item); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	case SectionTypeImage:
		return nil
	case SectionTypeCard:
		if doc.Version == Version020 {
			if s.CardName == "" {
				return fmt.Errorf("%w: card without a name", errs.ErrMalformedDocument)
			}
			return nil
		}
		if s.Card < 0 || s.Card >= len(doc.Cards) {
			return fmt.Errorf("%w: card index %d out of range", errs.ErrMalformedDocument, s.Card)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown section type %d", errs.ErrMalformedDocument, s.Type)
}

// validateMarkers replays the markup stack so that build can trust every count.
func validateMarkers(doc *Document, markers []MarkerEntry) error {
	depth := 0
	for i, m := range markers {
		for _, idx := range m.Open {
			if idx < 0 || idx >= len(doc.Markups) {
				return fmt.Errorf("%w: marker %d opens markup %d", errs.ErrMalformedDocument, i, idx)
			}
		}
		depth += len(m.Open)
		if m.Closed < 0 || m.Closed > depth {
			return fmt.Errorf("%w: marker %d closes %d of %d markups", errs.ErrMalformedDocument, i, m.Closed, depth)
		}
		depth -= m.Closed
		if m.Type == MarkerTypeAtom && (m.Atom < 0 || m.Atom >= len(doc.Atoms)) {
			return fmt.Errorf("%w: marker %d atom index %d out of range", errs.ErrMalformedDocument, i, m.Atom)
		}
	}
	return nil
}

func build(doc *Document, b *model.Builder) *model.Post {
	markups := make([]*model.Markup, len(doc.Markups))
	for i, m := range doc.Markups {
		markups[i] = b.CreateMarkup(m.Tag, pairs(m.Attributes))
	}

	sections := make([]*model.Section, 0, len(doc.Sections))
	for i := range doc.Sections {
		s := &doc.Sections[i]
		switch s.Type {
		case SectionTypeMarkup:
			sections = append(sections, b.CreateMarkupSection(s.Tag, buildMarkers(doc, b, markups, s.Markers), pairs(s.Attributes)))
		case SectionTypeList:
			items := make([]*model.Section, 0, len(s.Items))
			for _, item := range s.Items {
				items = append(items, b.CreateListItem(buildMarkers(doc, b, markups, item)))
			}
			sections = append(sections, b.CreateListSection(s.Tag, items, pairs(s.Attributes)))
		case SectionTypeImage:
			sections = append(sections, b.CreateImageSection(s.Src))
		case SectionTypeCard:
			if doc.Version == Version020 {
				sections = append(sections, b.CreateCardSection(s.CardName, s.Payload))
				continue
			}
			card := doc.Cards[s.Card]
			sections = append(sections, b.CreateCardSection(card.Name, card.Payload))
		}
	}
	return b.CreatePost(sections...)
}

func buildMarkers(doc *Document, b *model.Builder, markups []*model.Markup, entries []MarkerEntry) []*model.Marker {
	var stack []*model.Markup
	out := make([]*model.Marker, 0, len(entries))
	for _, e := range entries {
		for _, idx := range e.Open {
			stack = append(stack, markups[idx])
		}
		if e.Type == MarkerTypeAtom {
			atom := doc.Atoms[e.Atom]
			out = append(out, b.CreateAtom(atom.Name, atom.Value, atom.Payload, stack...))
		} else {
			out = append(out, b.CreateMarker(e.Text, stack...))
		}
		stack = stack[:len(stack)-e.Closed]
	}
	return out
}

func pairs(flat []string) map[string]string {
	if len(flat) == 0 {
		return nil
	}
	out := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		out[flat[i]] = flat[i+1]
	}
	return out
}
