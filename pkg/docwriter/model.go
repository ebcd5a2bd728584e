package docwriter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Alignment is the horizontal alignment of a heading or paragraph.
// The zero value is AlignLeft.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseAlignment parses "left", "center" or "right" (case-insensitive).
// An empty string yields AlignLeft.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left", "start":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	default:
		return AlignLeft, fmt.Errorf("unknown alignment %q", s)
	}
}

// Color is an RGB color triple.
type Color struct {
	R, G, B uint8
}

// RGB returns a pointer to a Color, convenient for the optional Run.Color field.
func RGB(r, g, b uint8) *Color {
	return &Color{R: r, G: g, B: b}
}

// Hex returns the color as an upper-case RRGGBB string.
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// ParseColor parses RRGGBB, with or without a leading '#'.
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want RRGGBB", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Run is a contiguous span of text inside a paragraph. Style attributes are
// independent of each other. SizePt == 0 means "inherit the default size".
type Run struct {
	Text     string
	Bold     bool
	Italic   bool
	SizePt   float64
	FontName string
	Color    *Color
}

// Cell is a single table cell.
type Cell struct {
	Text string
	Bold bool
}

// ListKind selects the marker used for a list item.
type ListKind int

const (
	ListBullet ListKind = iota
	ListNumbered
)

func (k ListKind) String() string {
	if k == ListNumbered {
		return "numbered"
	}
	return "bullet"
}

// BlockKind identifies the variant of a Block.
type BlockKind int

const (
	KindHeading BlockKind = iota
	KindParagraph
	KindListItem
	KindTable
	KindPageBreak
)

func (k BlockKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindListItem:
		return "list_item"
	case KindTable:
		return "table"
	case KindPageBreak:
		return "page_break"
	default:
		return "unknown"
	}
}

// Block is a top-level content unit. The set of implementations is closed:
// Heading, Paragraph, ListItem, Table and PageBreak.
type Block interface {
	Kind() BlockKind
	// Accept dispatches to the Visitor method for the concrete variant.
	Accept(v Visitor) error
	isBlock()
}

// Visitor has one method per Block variant. Serializers implement it so that
// a new variant fails to compile until every serializer handles it.
type Visitor interface {
	VisitHeading(h *Heading) error
	VisitParagraph(p *Paragraph) error
	VisitListItem(li *ListItem) error
	VisitTable(t *Table) error
	VisitPageBreak(pb *PageBreak) error
}

// Heading is a title (Level 0) or section heading (Level >= 1).
type Heading struct {
	Level int
	Text  string
	Align Alignment
}

func (*Heading) Kind() BlockKind          { return KindHeading }
func (h *Heading) Accept(v Visitor) error { return v.VisitHeading(h) }
func (*Heading) isBlock()                 {}

// Paragraph holds an ordered sequence of runs. A paragraph with no runs is an
// empty spacer line.
type Paragraph struct {
	Runs         []Run
	Align        Alignment
	SpaceAfterPt float64
}

func (*Paragraph) Kind() BlockKind          { return KindParagraph }
func (p *Paragraph) Accept(v Visitor) error { return v.VisitParagraph(p) }
func (*Paragraph) isBlock()                 {}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// ListItem is a single bulleted or numbered list entry.
type ListItem struct {
	Text   string
	Marker ListKind
}

func (*ListItem) Kind() BlockKind           { return KindListItem }
func (li *ListItem) Accept(v Visitor) error { return v.VisitListItem(li) }
func (*ListItem) isBlock()                  {}

// Table has one header row and zero or more data rows, all with the same
// number of cells.
type Table struct {
	Header []Cell
	Rows   [][]Cell
	Style  string
}

func (*Table) Kind() BlockKind          { return KindTable }
func (t *Table) Accept(v Visitor) error { return v.VisitTable(t) }
func (*Table) isBlock()                 {}

// Columns returns the column count fixed by the header row.
func (t *Table) Columns() int {
	return len(t.Header)
}

// PageBreak is a pagination hint.
type PageBreak struct{}

func (*PageBreak) Kind() BlockKind           { return KindPageBreak }
func (pb *PageBreak) Accept(v Visitor) error { return v.VisitPageBreak(pb) }
func (*PageBreak) isBlock()                  {}

// Metadata describes the document as a whole.
type Metadata struct {
	Title      string
	Subject    string
	Author     string
	Creator    string
	Language   string
	Identifier string
	Created    time.Time
}

// Document is the root of the content tree. A Document obtained from
// Builder.Build is never modified again.
type Document struct {
	meta   Metadata
	blocks []Block
}

// NewDocument returns a Document holding the given blocks. It is meant for
// readers that reconstruct a document; construction code should use Builder.
func NewDocument(meta Metadata, blocks []Block) *Document {
	return &Document{meta: meta, blocks: append([]Block(nil), blocks...)}
}

// Metadata returns the document metadata.
func (d *Document) Metadata() Metadata {
	return d.meta
}

// Blocks returns the top-level blocks in document order. The returned slice
// is a copy; the blocks themselves must be treated as read-only.
func (d *Document) Blocks() []Block {
	return append([]Block(nil), d.blocks...)
}

// Len returns the number of top-level blocks.
func (d *Document) Len() int {
	return len(d.blocks)
}

// Walk visits every block in order and stops at the first error.
func (d *Document) Walk(v Visitor) error {
	for i, b := range d.blocks {
		if err := b.Accept(v); err != nil {
			return WithContext(err, "walking document", map[string]interface{}{
				"block": i,
				"kind":  b.Kind().String(),
			})
		}
	}
	return nil
}

// Kinds returns the kind of every block in order.
func (d *Document) Kinds() []BlockKind {
	kinds := make([]BlockKind, len(d.blocks))
	for i, b := range d.blocks {
		kinds[i] = b.Kind()
	}
	return kinds
}

// BlockText returns the text content of a block: heading and list item text,
// paragraph run text concatenated, table cells joined by tabs and rows by
// newlines, and "" for a page break.
func BlockText(b Block) string {
	switch v := b.(type) {
	case *Heading:
		return v.Text
	case *Paragraph:
		return v.Text()
	case *ListItem:
		return v.Text
	case *Table:
		lines := make([]string, 0, len(v.Rows)+1)
		lines = append(lines, joinCells(v.Header))
		for _, row := range v.Rows {
			lines = append(lines, joinCells(row))
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}

func joinCells(cells []Cell) string {
	texts := make([]string, len(cells))
	for i, c := range cells {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\t")
}
