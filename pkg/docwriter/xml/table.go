package xml

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

// Table represents a table in the document
type Table struct {
	Properties *TableProperties `xml:"tblPr"`
	Grid       *TableGrid       `xml:"tblGrid"`
	Rows       []TableRow       `xml:"tr"`
}

// isBodyElement implements the BodyElement interface
func (t Table) isBodyElement() {}

// MarshalXML implements custom XML marshaling for Table to ensure proper namespacing
func (t Table) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("tbl")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if t.Properties != nil {
		if err := e.EncodeElement(t.Properties, wStart("tblPr")); err != nil {
			return err
		}
	}

	if t.Grid != nil {
		if err := e.EncodeElement(t.Grid, wStart("tblGrid")); err != nil {
			return err
		}
	}

	for i := range t.Rows {
		if err := e.EncodeElement(&t.Rows[i], wStart("tr")); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// StyleID returns the table style id, or "" when none is set.
func (t *Table) StyleID() string {
	if t.Properties == nil || t.Properties.Style == nil {
		return ""
	}
	return t.Properties.Style.Val
}

// TableProperties represents table formatting properties
type TableProperties struct {
	Style   *Style        `xml:"tblStyle"`
	Width   *Width        `xml:"tblW"`
	Borders *TableBorders `xml:"tblBorders"`
	Look    *TableLook    `xml:"tblLook"`
}

// MarshalXML implements custom XML marshaling for TableProperties
func (p TableProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("tblPr")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Style != nil {
		if err := e.EncodeElement(p.Style, wStart("tblStyle")); err != nil {
			return err
		}
	}
	if p.Width != nil {
		if err := e.EncodeElement(p.Width, wStart("tblW")); err != nil {
			return err
		}
	}
	if p.Borders != nil {
		if err := e.EncodeElement(p.Borders, wStart("tblBorders")); err != nil {
			return err
		}
	}
	if p.Look != nil {
		if err := e.EncodeElement(p.Look, wStart("tblLook")); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// TableLook represents table style options
type TableLook struct {
	Val         string `xml:"val,attr,omitempty"`
	FirstRow    string `xml:"firstRow,attr,omitempty"`
	LastRow     string `xml:"lastRow,attr,omitempty"`
	FirstColumn string `xml:"firstColumn,attr,omitempty"`
	LastColumn  string `xml:"lastColumn,attr,omitempty"`
	NoHBand     string `xml:"noHBand,attr,omitempty"`
	NoVBand     string `xml:"noVBand,attr,omitempty"`
}

// MarshalXML implements custom XML marshaling for TableLook
func (t TableLook) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	var attrs []xml.Attr
	for _, a := range []struct{ name, val string }{
		{"val", t.Val},
		{"firstRow", t.FirstRow},
		{"lastRow", t.LastRow},
		{"firstColumn", t.FirstColumn},
		{"lastColumn", t.LastColumn},
		{"noHBand", t.NoHBand},
		{"noVBand", t.NoVBand},
	} {
		if a.val != "" {
			attrs = append(attrs, wAttr(a.name, a.val))
		}
	}
	return encodeEmpty(e, "tblLook", attrs...)
}

// TableGrid represents table column definitions
type TableGrid struct {
	Columns []GridColumn `xml:"gridCol"`
}

// EqualGrid returns a grid of n columns sharing total twips.
func EqualGrid(n, total int) *TableGrid {
	g := &TableGrid{Columns: make([]GridColumn, n)}
	if n == 0 {
		return g
	}
	for i := range g.Columns {
		g.Columns[i].Width = total / n
	}
	return g
}

// MarshalXML implements custom XML marshaling for TableGrid
func (g TableGrid) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("tblGrid")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for i := range g.Columns {
		if err := e.EncodeElement(&g.Columns[i], wStart("gridCol")); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GridColumn represents a table column
type GridColumn struct {
	Width int `xml:"w,attr"`
}

// MarshalXML implements custom XML marshaling for GridColumn
func (g GridColumn) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return encodeEmpty(e, "gridCol", wAttr("w", strconv.Itoa(g.Width)))
}

// TableRow represents a row in a table
type TableRow struct {
	Properties *TableRowProperties `xml:"trPr"`
	Cells      []TableCell         `xml:"tc"`
}

// MarshalXML implements custom XML marshaling for TableRow to ensure proper namespacing
func (r TableRow) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("tr")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil {
		if err := e.EncodeElement(r.Properties, wStart("trPr")); err != nil {
			return err
		}
	}

	for i := range r.Cells {
		if err := e.EncodeElement(&r.Cells[i], wStart("tc")); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// IsHeader reports whether the row repeats as a header row.
func (r *TableRow) IsHeader() bool {
	return r.Properties != nil && r.Properties.Header
}

// TableRowProperties represents row properties
type TableRowProperties struct {
	// CantSplit prevents the row from splitting across pages
	CantSplit bool
	// Header repeats the row at the top of each page
	Header bool
}

// UnmarshalXML implements custom XML unmarshaling for TableRowProperties
func (p *TableRowProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "cantSplit":
				var v OnOff
				if err := d.DecodeElement(&v, &t); err != nil {
					return err
				}
				p.CantSplit = v.IsOn()
			case "tblHeader":
				var v OnOff
				if err := d.DecodeElement(&v, &t); err != nil {
					return err
				}
				p.Header = v.IsOn()
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "trPr" {
				return nil
			}
		}
	}
	return nil
}

// MarshalXML implements custom XML marshaling for TableRowProperties
func (p TableRowProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("trPr")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.CantSplit {
		if err := encodeEmpty(e, "cantSplit"); err != nil {
			return err
		}
	}
	if p.Header {
		if err := encodeEmpty(e, "tblHeader"); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// TableCell represents a cell in a table
type TableCell struct {
	Properties *TableCellProperties `xml:"tcPr"`
	Paragraphs []Paragraph          `xml:"p"`
}

// MarshalXML implements custom XML marshaling for TableCell to ensure proper namespacing
func (c TableCell) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("tc")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if c.Properties != nil {
		if err := e.EncodeElement(c.Properties, wStart("tcPr")); err != nil {
			return err
		}
	}

	// A cell must contain at least one paragraph
	paragraphs := c.Paragraphs
	if len(paragraphs) == 0 {
		paragraphs = []Paragraph{{}}
	}
	for i := range paragraphs {
		if err := e.EncodeElement(&paragraphs[i], wStart("p")); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GetText returns the concatenated text of all paragraphs in a cell
func (c *TableCell) GetText() string {
	texts := make([]string, 0, len(c.Paragraphs))
	for i := range c.Paragraphs {
		texts = append(texts, c.Paragraphs[i].GetText())
	}
	return strings.Join(texts, "\n")
}

// IsBold reports whether every run in the cell is bold.
func (c *TableCell) IsBold() bool {
	seen := false
	for i := range c.Paragraphs {
		for j := range c.Paragraphs[i].Runs {
			props := c.Paragraphs[i].Runs[j].Properties
			if props == nil || !props.Bold.IsOn() {
				return false
			}
			seen = true
		}
	}
	return seen
}

// TableCellProperties represents cell properties
type TableCellProperties struct {
	Width *Width `xml:"tcW"`
}

// MarshalXML implements custom XML marshaling for TableCellProperties
func (p TableCellProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("tcPr")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Width != nil {
		if err := e.EncodeElement(p.Width, wStart("tcW")); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Width types.
const (
	WidthAuto = "auto"
	WidthDxa  = "dxa"
	WidthPct  = "pct"
)

// Width represents width settings
type Width struct {
	Type string `xml:"type,attr"`
	Val  int    `xml:"w,attr"`
}

// MarshalXML implements custom XML marshaling for Width
func (w Width) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = []xml.Attr{
		wAttr("w", strconv.Itoa(w.Val)),
		wAttr("type", w.Type),
	}
	return e.EncodeElement(struct{}{}, start)
}

// TableBorders represents borders for a table (w:tblBorders)
// This includes inner borders (insideH, insideV) in addition to outer borders
type TableBorders struct {
	Top     *BorderProperties `xml:"top"`
	Left    *BorderProperties `xml:"left"`
	Bottom  *BorderProperties `xml:"bottom"`
	Right   *BorderProperties `xml:"right"`
	InsideH *BorderProperties `xml:"insideH"`
	InsideV *BorderProperties `xml:"insideV"`
}

// SingleBorders returns borders drawing a single line of size sz (eighths of
// a point) on every edge and between every cell.
func SingleBorders(sz int) *TableBorders {
	b := func() *BorderProperties {
		return &BorderProperties{Val: "single", Sz: strconv.Itoa(sz), Space: "0", Color: "auto"}
	}
	return &TableBorders{Top: b(), Left: b(), Bottom: b(), Right: b(), InsideH: b(), InsideV: b()}
}

// MarshalXML implements custom XML marshaling for TableBorders
func (b TableBorders) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("tblBorders")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	// Order matters in Word XML
	for _, edge := range []struct {
		name string
		prop *BorderProperties
	}{
		{"top", b.Top},
		{"left", b.Left},
		{"bottom", b.Bottom},
		{"right", b.Right},
		{"insideH", b.InsideH},
		{"insideV", b.InsideV},
	} {
		if edge.prop == nil {
			continue
		}
		if err := e.EncodeElement(edge.prop, wStart(edge.name)); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// BorderProperties represents border styling
type BorderProperties struct {
	Val   string `xml:"val,attr,omitempty"`
	Sz    string `xml:"sz,attr,omitempty"`
	Space string `xml:"space,attr,omitempty"`
	Color string `xml:"color,attr,omitempty"`
}

// MarshalXML implements custom XML marshaling for BorderProperties
func (b BorderProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = nil
	if b.Val != "" {
		start.Attr = append(start.Attr, wAttr("val", b.Val))
	}
	if b.Sz != "" {
		start.Attr = append(start.Attr, wAttr("sz", b.Sz))
	}
	if b.Space != "" {
		start.Attr = append(start.Attr, wAttr("space", b.Space))
	}
	if b.Color != "" {
		start.Attr = append(start.Attr, wAttr("color", b.Color))
	}
	return e.EncodeElement(struct{}{}, start)
}
