// Package html renders a docwriter Document as a standalone HTML page.
package html

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
)

// Format is the name this serializer reports to metrics and the CLI.
const Format = "html"

// Option configures a Writer
type Option func(*Writer)

// WithConfig sets the fonts and language used for the page.
func WithConfig(cfg *docwriter.Config) Option {
	return func(w *Writer) {
		w.config = docwriter.NewConfigWithDefaults(cfg)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *docwriter.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// Writer serializes documents to HTML
type Writer struct {
	config *docwriter.Config
	logger *docwriter.Logger
}

var _ docwriter.Serializer = (*Writer)(nil)

// New creates a Writer
func New(opts ...Option) *Writer {
	w := &Writer{
		config: docwriter.DefaultConfig(),
		logger: docwriter.GetLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Serialize writes doc as an HTML page to out.
func (w *Writer) Serialize(out io.Writer, doc *docwriter.Document) error {
	if doc == nil {
		return errors.New("html: nil document")
	}

	page := w.page(doc.Metadata())
	r := &renderer{body: page.body}
	if err := doc.Walk(r); err != nil {
		return err
	}

	if err := nethtml.Render(out, page.root); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	w.logger.Debug("html serialized", "blocks", doc.Len())
	return nil
}

type page struct {
	root *nethtml.Node
	body *nethtml.Node
}

func (w *Writer) page(meta docwriter.Metadata) page {
	root := &nethtml.Node{Type: nethtml.DocumentNode}
	root.AppendChild(&nethtml.Node{Type: nethtml.DoctypeNode, Data: "html"})

	lang := meta.Language
	if lang == "" {
		lang = w.config.LanguageTag()
	}
	htmlEl := element(atom.Html, attr("lang", lang))
	root.AppendChild(htmlEl)

	head := element(atom.Head)
	htmlEl.AppendChild(head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	if meta.Title != "" {
		title := element(atom.Title)
		title.AppendChild(text(meta.Title))
		head.AppendChild(title)
	}
	for _, m := range []struct{ name, content string }{
		{"author", meta.Author},
		{"description", meta.Subject},
		{"generator", meta.Creator},
		{"dc.identifier", meta.Identifier},
	} {
		if m.content != "" {
			head.AppendChild(element(atom.Meta, attr("name", m.name), attr("content", m.content)))
		}
	}
	if !meta.Created.IsZero() {
		head.AppendChild(element(atom.Meta, attr("name", "dcterms.created"), attr("content", meta.Created.UTC().Format("2006-01-02T15:04:05Z"))))
	}

	style := element(atom.Style)
	style.AppendChild(text(w.stylesheet()))
	head.AppendChild(style)

	body := element(atom.Body)
	htmlEl.AppendChild(body)
	return page{root: root, body: body}
}

func (w *Writer) stylesheet() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "body{font-family:%q,sans-serif;font-size:%spt}", w.config.DefaultFont, formatPt(w.config.DefaultSizePt))
	fmt.Fprintf(&sb, "pre,code{font-family:%q,monospace;font-size:%spt}", w.config.CodeFont, formatPt(w.config.CodeSizePt))
	sb.WriteString("table{border-collapse:collapse}th,td{border:1px solid #000;padding:2pt 4pt}")
	sb.WriteString("p.spacer{min-height:1em}div.page-break{break-after:page}")
	return sb.String()
}

func formatPt(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func element(a atom.Atom, attrs ...nethtml.Attribute) *nethtml.Node {
	return &nethtml.Node{Type: nethtml.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func attr(key, val string) nethtml.Attribute {
	return nethtml.Attribute{Key: key, Val: val}
}

func text(s string) *nethtml.Node {
	return &nethtml.Node{Type: nethtml.TextNode, Data: s}
}

// appendText adds s to parent, turning each '\n' into a <br>.
func appendText(parent *nethtml.Node, s string) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			parent.AppendChild(element(atom.Br))
		}
		if line != "" {
			parent.AppendChild(text(line))
		}
	}
}

func alignStyle(a docwriter.Alignment) string {
	if a == docwriter.AlignLeft {
		return ""
	}
	return "text-align:" + a.String()
}

// renderer appends one element per block to body. Contiguous list items of
// the same kind share a single list element.
type renderer struct {
	body *nethtml.Node
	list *nethtml.Node
	kind docwriter.ListKind
}

func (r *renderer) add(n *nethtml.Node) {
	r.list = nil
	r.body.AppendChild(n)
}

func (r *renderer) VisitHeading(h *docwriter.Heading) error {
	var el *nethtml.Node
	if h.Level == 0 {
		el = element(atom.H1, attr("class", "title"))
	} else {
		level := h.Level + 1
		if level > 6 {
			level = 6
		}
		a := atom.Lookup([]byte("h" + strconv.Itoa(level)))
		el = element(a)
	}
	if s := alignStyle(h.Align); s != "" {
		el.Attr = append(el.Attr, attr("style", s))
	}
	appendText(el, h.Text)
	r.add(el)
	return nil
}

func (r *renderer) VisitParagraph(p *docwriter.Paragraph) error {
	el := element(atom.P)
	var styles []string
	if s := alignStyle(p.Align); s != "" {
		styles = append(styles, s)
	}
	if p.SpaceAfterPt > 0 {
		styles = append(styles, "margin-bottom:"+formatPt(p.SpaceAfterPt)+"pt")
	}
	if len(styles) > 0 {
		el.Attr = append(el.Attr, attr("style", strings.Join(styles, ";")))
	}
	if len(p.Runs) == 0 {
		el.Attr = append(el.Attr, attr("class", "spacer"))
	}
	for _, run := range p.Runs {
		appendRun(el, run)
	}
	r.add(el)
	return nil
}

// appendRun adds the run text to parent inside <strong>, <em> and a styled
// <span> as needed.
func appendRun(parent *nethtml.Node, run docwriter.Run) {
	target := parent
	if run.Bold {
		strong := element(atom.Strong)
		target.AppendChild(strong)
		target = strong
	}
	if run.Italic {
		em := element(atom.Em)
		target.AppendChild(em)
		target = em
	}

	var styles []string
	if run.FontName != "" {
		styles = append(styles, fmt.Sprintf("font-family:%q", run.FontName))
	}
	if run.SizePt > 0 {
		styles = append(styles, "font-size:"+formatPt(run.SizePt)+"pt")
	}
	if run.Color != nil {
		styles = append(styles, "color:#"+run.Color.Hex())
	}
	if len(styles) > 0 {
		span := element(atom.Span, attr("style", strings.Join(styles, ";")))
		target.AppendChild(span)
		target = span
	}

	appendText(target, run.Text)
}

func (r *renderer) VisitListItem(li *docwriter.ListItem) error {
	if r.list == nil || r.kind != li.Marker {
		a := atom.Ul
		if li.Marker == docwriter.ListNumbered {
			a = atom.Ol
		}
		list := element(a)
		r.add(list)
		r.list, r.kind = list, li.Marker
	}
	item := element(atom.Li)
	appendText(item, li.Text)
	r.list.AppendChild(item)
	return nil
}

func (r *renderer) VisitTable(t *docwriter.Table) error {
	table := element(atom.Table)
	if t.Style != "" {
		table.Attr = append(table.Attr, attr("data-style", t.Style))
	}

	thead := element(atom.Thead)
	thead.AppendChild(rowNode(atom.Th, t.Header))
	table.AppendChild(thead)

	if len(t.Rows) > 0 {
		tbody := element(atom.Tbody)
		for _, row := range t.Rows {
			tbody.AppendChild(rowNode(atom.Td, row))
		}
		table.AppendChild(tbody)
	}
	r.add(table)
	return nil
}

func rowNode(cellAtom atom.Atom, cells []docwriter.Cell) *nethtml.Node {
	tr := element(atom.Tr)
	for _, c := range cells {
		cell := element(cellAtom)
		parent := cell
		// th is bold already
		if c.Bold && cellAtom != atom.Th {
			strong := element(atom.Strong)
			cell.AppendChild(strong)
			parent = strong
		}
		appendText(parent, c.Text)
		tr.AppendChild(cell)
	}
	return tr
}

func (r *renderer) VisitPageBreak(*docwriter.PageBreak) error {
	r.add(element(atom.Div, attr("class", "page-break")))
	return nil
}
