// Package markdown imports CommonMark documents, with GitHub tables and YAML
// front matter, into a docwriter.Builder.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
)

// FrontMatter holds the recognised front matter keys. Other keys are ignored.
type FrontMatter struct {
	Title    string `yaml:"title"`
	Subject  string `yaml:"subject"`
	Author   string `yaml:"author"`
	Language string `yaml:"language"`
}

// ErrMissingClosingDelimiter indicates the document opened a front matter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

// SplitFrontMatter separates a leading `---` delimited YAML block from the
// Markdown body. had is false when the content has no front matter.
func SplitFrontMatter(content []byte) (frontMatter, body []byte, had bool, err error) {
	nl := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the last line has no trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			return content[start : len(content)-3], nil, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// Build imports source into a new builder created with opts and returns the
// finished document.
func Build(source []byte, opts ...docwriter.Option) (*docwriter.Document, error) {
	b := docwriter.NewBuilder(opts...)
	if err := Import(b, source); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// ImportFile imports the Markdown file at path into b.
func ImportFile(b *docwriter.Builder, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return docwriter.NewDocumentError("open", path, err)
	}
	if err := Import(b, data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Import appends the blocks of source to b. Front matter sets the document
// metadata, and its title becomes a level 0 heading.
func Import(b *docwriter.Builder, source []byte) error {
	fmRaw, body, had, err := SplitFrontMatter(source)
	if err != nil {
		return err
	}

	if had {
		var fm FrontMatter
		if err := yaml.Unmarshal(fmRaw, &fm); err != nil {
			return fmt.Errorf("failed to parse front matter: %w", err)
		}
		if err := b.SetMetadata(docwriter.Metadata{
			Title:    fm.Title,
			Subject:  fm.Subject,
			Author:   fm.Author,
			Language: fm.Language,
		}); err != nil {
			return docwriter.WithContext(err, "importing markdown", map[string]interface{}{"field": "front matter"})
		}
		if fm.Title != "" {
			if _, err := b.AddHeading(fm.Title, 0); err != nil {
				return docwriter.WithContext(err, "importing markdown", map[string]interface{}{"field": "title"})
			}
		}
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(body))

	imp := &importer{
		b:        b,
		source:   body,
		codeFont: b.Config().CodeFont,
		logger:   docwriter.GetLogger(),
	}
	index := 0
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if err := imp.block(n); err != nil {
			return docwriter.WithContext(err, "importing markdown", map[string]interface{}{
				"block": index,
				"node":  n.Kind().String(),
				"line":  imp.line(n),
			})
		}
		index++
	}
	return nil
}

type importer struct {
	b        *docwriter.Builder
	source   []byte
	codeFont string
	logger   *docwriter.Logger
}

// line returns the 1-based source line where n starts, or 0 if unknown.
func (imp *importer) line(n gmast.Node) int {
	for cur := n; cur != nil; cur = cur.FirstChild() {
		if cur.Type() == gmast.TypeInline {
			break
		}
		if lines := cur.Lines(); lines != nil && lines.Len() > 0 {
			return bytes.Count(imp.source[:lines.At(0).Start], []byte("\n")) + 1
		}
	}
	return 0
}

func (imp *importer) block(n gmast.Node) error {
	switch node := n.(type) {
	case *gmast.Heading:
		title := plainText(imp.runs(node))
		if title == "" {
			return nil
		}
		_, err := imp.b.AddHeading(title, node.Level)
		return err

	case *gmast.Paragraph, *gmast.TextBlock:
		runs := imp.runs(node)
		if len(runs) == 0 {
			return nil
		}
		_, err := imp.b.AddParagraph(runs...)
		return err

	case *gmast.List:
		return imp.list(node)

	case *gmast.FencedCodeBlock, *gmast.CodeBlock:
		return imp.code(node)

	case *gmast.ThematicBreak:
		return imp.b.AddPageBreak()

	case *gmast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if err := imp.block(c); err != nil {
				return err
			}
		}
		return nil

	case *east.Table:
		return imp.table(node)

	default:
		imp.logger.Debug("skipping markdown node", "kind", n.Kind().String())
		return nil
	}
}

func (imp *importer) code(n gmast.Node) error {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(imp.source))
	}
	code := strings.TrimRight(buf.String(), "\n")
	if code == "" {
		return nil
	}
	_, err := imp.b.AddCodeBlock(code)
	return err
}

// list adds one item per list entry. Nested lists are flattened after their
// parent item.
func (imp *importer) list(l *gmast.List) error {
	add := imp.b.AddListItem
	if l.IsOrdered() {
		add = imp.b.AddNumberedItem
	}

	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		var texts []string
		var nested []*gmast.List
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch child := c.(type) {
			case *gmast.List:
				nested = append(nested, child)
			default:
				if t := plainText(imp.runs(child)); t != "" {
					texts = append(texts, t)
				}
			}
		}
		if len(texts) > 0 {
			if err := add(strings.Join(texts, "\n")); err != nil {
				return err
			}
		}
		for _, sub := range nested {
			if err := imp.list(sub); err != nil {
				return err
			}
		}
	}
	return nil
}

func (imp *importer) table(t *east.Table) error {
	var header []string
	var rows [][]string
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, plainText(imp.runs(c)))
		}
		if _, ok := r.(*east.TableHeader); ok {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	_, err := imp.b.AddTable(header, rows)
	return err
}

type style struct {
	bold, italic, code bool
}

// runs flattens the inline children of n into styled runs, merging
// neighbours that share a style.
func (imp *importer) runs(n gmast.Node) []docwriter.Run {
	var out []docwriter.Run
	emit := func(s style, txt string) {
		if txt == "" {
			return
		}
		if last := len(out) - 1; last >= 0 && runStyle(out[last], imp.codeFont) == s {
			out[last].Text += txt
			return
		}
		run := docwriter.Run{Text: txt, Bold: s.bold, Italic: s.italic}
		if s.code {
			run.FontName = imp.codeFont
		}
		out = append(out, run)
	}

	var walk func(n gmast.Node, s style)
	walk = func(n gmast.Node, s style) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *gmast.Text:
				txt := string(node.Segment.Value(imp.source))
				switch {
				case node.HardLineBreak():
					emit(s, strings.TrimRight(txt, " \t\\"))
					emit(s, "\n")
				case node.SoftLineBreak():
					emit(s, txt)
					emit(s, " ")
				default:
					emit(s, txt)
				}
			case *gmast.String:
				emit(s, string(node.Value))
			case *gmast.Emphasis:
				inner := s
				if node.Level >= 2 {
					inner.bold = true
				} else {
					inner.italic = true
				}
				walk(node, inner)
			case *gmast.CodeSpan:
				inner := s
				inner.code = true
				walk(node, inner)
			case *gmast.AutoLink:
				emit(s, string(node.Label(imp.source)))
			case *gmast.RawHTML, *gmast.Image:
				// not representable as text
			default:
				walk(node, s)
			}
		}
	}
	walk(n, style{})

	if len(out) > 0 {
		last := len(out) - 1
		out[last].Text = strings.TrimRight(out[last].Text, " \n")
		if out[last].Text == "" {
			out = out[:last]
		}
	}
	return out
}

func runStyle(r docwriter.Run, codeFont string) style {
	return style{bold: r.Bold, italic: r.Italic, code: r.FontName != "" && r.FontName == codeFont}
}

func plainText(runs []docwriter.Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}
