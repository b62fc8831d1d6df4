package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/yaklabco/gomobiledoc/pkg/cards"
	"github.com/yaklabco/gomobiledoc/pkg/errs"
	"github.com/yaklabco/gomobiledoc/pkg/langdetect"
	"github.com/yaklabco/gomobiledoc/pkg/model"
)

// mapper converts a goldmark AST into sections.
type mapper struct {
	content  []byte
	b        *model.Builder
	detector *langdetect.Detector

	sections []*model.Section

	// current receives inline content; tag is the tag it was opened with, reused
	// when an image splits it.
	current *model.Section
	tag     string

	// list is the open top-level list. Blocks met inside it are deferred until it
	// closes.
	list     *model.Section
	deferred []*model.Section

	quoteDepth int
	markups    []*model.Markup
}

func newMapper(content []byte, b *model.Builder, detector *langdetect.Detector) *mapper {
	return &mapper{content: content, b: b, detector: detector}
}

// mapDocument converts the goldmark document into a post.
func (m *mapper) mapDocument(gmDoc ast.Node) (post *model.Post, err error) {
	defer errs.Recover(&err)

	m.mapBlocks(gmDoc)
	m.closeSection()
	return m.b.CreatePost(m.sections...), nil
}

func (m *mapper) mapBlocks(parent ast.Node) {
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		m.mapBlock(child)
	}
}

//nolint:cyclop // One case per block kind.
func (m *mapper) mapBlock(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		m.openSection(headingTag(node.Level))
		m.mapInlines(node)
		m.closeSection()

	case *ast.Paragraph, *ast.TextBlock:
		m.mapParagraph(n)

	case *ast.Blockquote:
		m.quoteDepth++
		m.mapBlocks(node)
		m.quoteDepth--

	case *ast.List:
		m.mapList(node)

	case *ast.ListItem:
		m.mapListItem(node)

	case *ast.FencedCodeBlock:
		m.emitCode(m.linesOf(node), string(node.Language(m.content)))

	case *ast.CodeBlock:
		m.emitCode(m.linesOf(node), "")

	case *ast.ThematicBreak:
		m.closeSection()
		m.emit(m.b.CreateCardSection(cards.HRName, nil))

	case *east.Table:
		m.mapTable(node)

	case *ast.HTMLBlock:
		// Raw HTML has no model equivalent.

	default:
		m.mapBlocks(n)
	}
}

func (m *mapper) mapParagraph(n ast.Node) {
	if m.list != nil {
		// A loose item with several paragraphs keeps them in one item.
		if m.current == nil {
			m.current = m.b.CreateListItem(nil)
		} else if !m.current.IsBlank() {
			m.appendText(" ")
		}
		m.mapInlines(n)
		return
	}
	tag := model.TagP
	if m.quoteDepth > 0 {
		tag = model.TagBlockquote
	}
	m.openSection(tag)
	m.mapInlines(n)
	m.closeSection()
}

func (m *mapper) mapList(list *ast.List) {
	if m.list != nil {
		// Nested lists flatten into the enclosing list.
		m.closeSection()
		m.mapBlocks(list)
		return
	}
	m.closeSection()

	tag := model.TagUL
	if list.IsOrdered() {
		tag = model.TagOL
	}
	m.list = m.b.CreateListSection(tag, nil, nil)
	m.mapBlocks(list)
	m.closeSection()

	done, deferred := m.list, m.deferred
	m.list, m.deferred = nil, nil
	if !done.Items.IsEmpty() {
		m.emit(done)
	}
	for _, s := range deferred {
		m.emit(s)
	}
}

func (m *mapper) mapListItem(item *ast.ListItem) {
	m.closeSection()
	m.current = m.b.CreateListItem(nil)
	m.mapBlocks(item)
	m.closeSection()
}

func (m *mapper) mapTable(table *east.Table) {
	m.closeSection()
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		m.openSection(model.TagP)
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			if cell != row.FirstChild() {
				m.appendText(" | ")
			}
			m.mapInlines(cell)
		}
		m.closeSection()
	}
}

func (m *mapper) mapInlines(parent ast.Node) {
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		m.mapInline(child)
	}
}

//nolint:cyclop // One case per inline kind.
func (m *mapper) mapInline(n ast.Node) {
	switch node := n.(type) {
	case *ast.Text:
		m.appendText(string(node.Value(m.content)))
		if node.SoftLineBreak() || node.HardLineBreak() {
			m.appendText(" ")
		}

	case *ast.String:
		m.appendText(string(node.Value))

	case *ast.Emphasis:
		tag := model.MarkupEm
		if node.Level == 2 {
			tag = model.MarkupStrong
		}
		m.withMarkup(m.b.CreateMarkup(tag, nil), node)

	case *ast.CodeSpan:
		m.withMarkup(m.b.CreateMarkup(model.MarkupCode, nil), node)

	case *ast.Link:
		m.withMarkup(m.b.CreateMarkup(model.MarkupA, linkAttributes(node.Destination, node.Title)), node)

	case *ast.AutoLink:
		href := string(node.URL(m.content))
		if node.AutoLinkType == ast.AutoLinkEmail {
			href = "mailto:" + href
		}
		m.markups = append(m.markups, m.b.CreateMarkup(model.MarkupA, map[string]string{"href": href}))
		m.appendText(string(node.Label(m.content)))
		m.markups = m.markups[:len(m.markups)-1]

	case *ast.Image:
		m.mapImage(node)

	case *east.Strikethrough:
		m.withMarkup(m.b.CreateMarkup(model.MarkupS, nil), node)

	case *ast.RawHTML, *east.TaskCheckBox:
		// Dropped.

	default:
		m.mapInlines(n)
	}
}

func (m *mapper) withMarkup(markup *model.Markup, n ast.Node) {
	m.markups = append(m.markups, markup)
	m.mapInlines(n)
	m.markups = m.markups[:len(m.markups)-1]
}

// mapImage splits the open section around an image section.
func (m *mapper) mapImage(img *ast.Image) {
	tag := m.tag
	inList := m.current != nil && m.current.IsNested()
	m.closeSection()
	m.emit(m.b.CreateImageSection(string(img.Destination)))
	if inList {
		m.current = m.b.CreateListItem(nil)
		return
	}
	if tag != "" {
		m.openSection(tag)
	}
}

func (m *mapper) emitCode(code, lang string) {
	if lang == "" && m.detector != nil {
		if detected, ok := m.detector.Language([]byte(code)); ok {
			lang = detected
		}
	}
	payload := map[string]any{cards.CodeKey: code}
	if lang != "" {
		payload[cards.LanguageKey] = lang
	}
	m.closeSection()
	m.emit(m.b.CreateCardSection(cards.CodeName, payload))
}

func (m *mapper) linesOf(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(m.content))
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

func (m *mapper) appendText(s string) {
	if s == "" {
		return
	}
	if m.current == nil {
		if m.list != nil {
			m.current = m.b.CreateListItem(nil)
		} else {
			m.openSection(model.TagP)
		}
	}
	if tail := m.current.Markers.Tail(); tail != nil && !tail.IsAtom() && sameMarkups(tail.Markups, m.markups) {
		tail.Value += s
		return
	}
	m.current.Markers.Append(m.b.CreateMarker(s, m.markups...))
}

func (m *mapper) openSection(tag string) {
	m.closeSection()
	m.current = m.b.CreateMarkupSection(tag, nil, nil)
	m.tag = tag
}

// closeSection finishes the open section. An image split can leave an empty
// remainder, which is dropped.
func (m *mapper) closeSection() {
	s := m.current
	m.current, m.tag = nil, ""
	if s == nil {
		return
	}
	if s.IsNested() {
		if m.list != nil && !s.IsBlank() {
			m.list.Items.Append(s)
		}
		return
	}
	if s.IsBlank() {
		return
	}
	m.emit(s)
}

func (m *mapper) emit(s *model.Section) {
	if m.list != nil {
		m.deferred = append(m.deferred, s)
		return
	}
	m.sections = append(m.sections, s)
}

func headingTag(level int) string {
	switch level {
	case 1:
		return model.TagH1
	case 2:
		return model.TagH2
	case 3:
		return model.TagH3
	case 4:
		return model.TagH4
	case 5:
		return model.TagH5
	default:
		return model.TagH6
	}
}

func linkAttributes(dest, title []byte) map[string]string {
	attrs := map[string]string{"href": string(dest)}
	if len(title) > 0 {
		attrs["title"] = string(title)
	}
	return attrs
}

func sameMarkups(a, b []*model.Markup) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
