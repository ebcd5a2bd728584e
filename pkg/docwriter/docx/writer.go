package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
	wml "github.com/benjaminschreck/go-docwriter/pkg/docwriter/xml"
)

// Format is the name this serializer reports to metrics and the CLI.
const Format = "docx"

// Option configures a Writer
type Option func(*Writer)

// WithConfig sets the fonts, page size and language used for the package.
// Unset fields fall back to the defaults.
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

// Writer serializes a Document into a WordprocessingML package. A Writer
// holds no per-document state and may be reused.
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

// Serialize writes doc as a .docx package to out.
func (w *Writer) Serialize(out io.Writer, doc *docwriter.Document) error {
	if doc == nil {
		return errors.New("docx: nil document")
	}

	conv := newConverter(w.config)
	if err := doc.Walk(conv); err != nil {
		return err
	}
	body := conv.body
	body.SectionProperties = wml.NewSectionProperties(pageSize(w.config.PageSize))

	meta := doc.Metadata()
	parts := []struct {
		name string
		v    interface{}
	}{
		{PartContentTypes, contentTypes()},
		{PartRootRels, rootRelationships()},
		{PartCoreProps, coreProperties(meta)},
		{PartAppProps, &AppProperties{Namespace: namespaceAppProps, Application: meta.Creator, Paragraphs: conv.paragraphs}},
		{PartDocument, &wml.Document{Body: body}},
		{PartDocumentRels, documentRelationships()},
		{PartStyles, buildStyles(w.config, conv.tableStyles)},
		{PartNumbering, conv.numbering},
	}

	zw := zip.NewWriter(out)
	for _, p := range parts {
		if err := writePart(zw, p.name, p.v); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize docx: %w", err)
	}

	w.logger.Debug("docx serialized", "blocks", doc.Len(), "paragraphs", conv.paragraphs, "tables", conv.tables)
	return nil
}

func writePart(zw *zip.Writer, name string, v interface{}) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	data, err := xml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if _, err := io.WriteString(fw, xmlStandaloneHead); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func pageSize(name string) wml.PageSize {
	if strings.EqualFold(name, docwriter.PageSizeA4) {
		return wml.PageA4
	}
	return wml.PageLetter
}

func contentTypes() *ContentTypes {
	override := func(part, contentType string) ContentTypeOverride {
		return ContentTypeOverride{PartName: "/" + part, ContentType: contentType}
	}
	return &ContentTypes{
		Namespace: namespaceContentTypes,
		Defaults: []ContentTypeDefault{
			{Extension: "rels", ContentType: ContentTypeRelationships},
			{Extension: "xml", ContentType: ContentTypeXML},
		},
		Overrides: []ContentTypeOverride{
			override(PartDocument, ContentTypeDocument),
			override(PartStyles, ContentTypeStyles),
			override(PartNumbering, ContentTypeNumbering),
			override(PartCoreProps, ContentTypeCoreProps),
			override(PartAppProps, ContentTypeAppProps),
		},
	}
}

func rootRelationships() *Relationships {
	return &Relationships{
		Namespace: namespaceRelationship,
		Relationship: []Relationship{
			{ID: "rId1", Type: RelTypeOfficeDocument, Target: PartDocument},
			{ID: "rId2", Type: RelTypeCoreProps, Target: PartCoreProps},
			{ID: "rId3", Type: RelTypeAppProps, Target: PartAppProps},
		},
	}
}

// documentRelationships targets are relative to the word/ directory.
func documentRelationships() *Relationships {
	return &Relationships{
		Namespace: namespaceRelationship,
		Relationship: []Relationship{
			{ID: "rId1", Type: RelTypeStyles, Target: path.Base(PartStyles)},
			{ID: "rId2", Type: RelTypeNumbering, Target: path.Base(PartNumbering)},
		},
	}
}

func coreProperties(meta docwriter.Metadata) *CoreProperties {
	return &CoreProperties{
		Title:          meta.Title,
		Subject:        meta.Subject,
		Creator:        meta.Author,
		Language:       meta.Language,
		Identifier:     meta.Identifier,
		LastModifiedBy: meta.Author,
		Created:        meta.Created,
		Modified:       meta.Created,
	}
}

// converter maps blocks onto WordprocessingML body elements.
type converter struct {
	config       *docwriter.Config
	contentWidth int

	body        *wml.Body
	numbering   *wml.Numbering
	tableStyles *tableStyleSet

	// currentNum is the numbering instance of the numbered list being
	// written, or 0 when the previous block was not a numbered item.
	currentNum int

	paragraphs int
	tables     int
}

func newConverter(cfg *docwriter.Config) *converter {
	return &converter{
		config:       cfg,
		contentWidth: wml.NewSectionProperties(pageSize(cfg.PageSize)).ContentWidth(),
		body:         &wml.Body{},
		numbering:    newNumbering(),
		tableStyles:  newTableStyleSet(),
	}
}

func (c *converter) add(el wml.BodyElement) {
	c.body.Elements = append(c.body.Elements, el)
	if _, ok := el.(*wml.Paragraph); ok {
		c.paragraphs++
	}
}

func justification(a docwriter.Alignment) *wml.Alignment {
	switch a {
	case docwriter.AlignCenter:
		return &wml.Alignment{Val: wml.JustifyCenter}
	case docwriter.AlignRight:
		return &wml.Alignment{Val: wml.JustifyRight}
	default:
		return nil
	}
}

func (c *converter) VisitHeading(h *docwriter.Heading) error {
	c.currentNum = 0
	c.add(&wml.Paragraph{
		Properties: &wml.ParagraphProperties{
			Style:     &wml.Style{Val: HeadingStyleID(h.Level)},
			Alignment: justification(h.Align),
		},
		Runs: []wml.Run{wml.NewTextRun(nil, h.Text)},
	})
	return nil
}

func (c *converter) VisitParagraph(p *docwriter.Paragraph) error {
	c.currentNum = 0
	para := &wml.Paragraph{}

	props := &wml.ParagraphProperties{Alignment: justification(p.Align)}
	if p.SpaceAfterPt > 0 {
		props.Spacing = wml.SpacingAfter(wml.PointsToTwips(p.SpaceAfterPt))
	}
	if props.Alignment != nil || props.Spacing != nil {
		para.Properties = props
	}

	for _, r := range p.Runs {
		para.Runs = append(para.Runs, wml.NewTextRun(runProperties(r), r.Text))
	}
	c.add(para)
	return nil
}

func runProperties(r docwriter.Run) *wml.RunProperties {
	props := &wml.RunProperties{}
	set := false
	if r.FontName != "" {
		props.Font = wml.NewFont(r.FontName)
		set = true
	}
	if r.Bold {
		props.Bold = wml.On()
		set = true
	}
	if r.Italic {
		props.Italic = wml.On()
		set = true
	}
	if r.Color != nil {
		props.Color = &wml.Color{Val: r.Color.Hex()}
		set = true
	}
	if r.SizePt > 0 {
		size := &wml.IntVal{Val: wml.PointsToHalfPoints(r.SizePt)}
		props.Size = size
		props.SizeCs = size
		set = true
	}
	if !set {
		return nil
	}
	return props
}

func (c *converter) VisitListItem(li *docwriter.ListItem) error {
	style, numID := StyleListBullet, numBullet
	if li.Marker == docwriter.ListNumbered {
		if c.currentNum == 0 {
			c.currentNum = restartNumbered(c.numbering)
		}
		style, numID = StyleListNumber, c.currentNum
	} else {
		c.currentNum = 0
	}

	c.add(&wml.Paragraph{
		Properties: &wml.ParagraphProperties{
			Style: &wml.Style{Val: style},
			Numbering: &wml.NumberingProperties{
				Level: &wml.IntVal{Val: 0},
				NumID: &wml.IntVal{Val: numID},
			},
		},
		Runs: []wml.Run{wml.NewTextRun(nil, li.Text)},
	})
	return nil
}

func (c *converter) VisitTable(t *docwriter.Table) error {
	c.currentNum = 0
	c.tables++

	style := t.Style
	if style == "" {
		style = c.config.TableStyle
	}

	cols := t.Columns()
	grid := wml.EqualGrid(cols, c.contentWidth)
	cellWidth := 0
	if cols > 0 {
		cellWidth = grid.Columns[0].Width
	}

	table := &wml.Table{
		Properties: &wml.TableProperties{
			Style: &wml.Style{Val: c.tableStyles.id(style)},
			Width: &wml.Width{Type: wml.WidthAuto, Val: 0},
			Look:  &wml.TableLook{Val: "04A0", FirstRow: "1", NoVBand: "1"},
		},
		Grid: grid,
	}

	row := func(cells []docwriter.Cell, header bool) wml.TableRow {
		tr := wml.TableRow{}
		if header {
			tr.Properties = &wml.TableRowProperties{Header: true}
		}
		for _, cell := range cells {
			tc := wml.TableCell{
				Properties: &wml.TableCellProperties{Width: &wml.Width{Type: wml.WidthDxa, Val: cellWidth}},
			}
			var props *wml.RunProperties
			if cell.Bold {
				props = &wml.RunProperties{Bold: wml.On()}
			}
			p := wml.Paragraph{}
			if cell.Text != "" || cell.Bold {
				p.Runs = []wml.Run{wml.NewTextRun(props, cell.Text)}
			}
			tc.Paragraphs = []wml.Paragraph{p}
			tr.Cells = append(tr.Cells, tc)
		}
		return tr
	}

	table.Rows = append(table.Rows, row(t.Header, true))
	for _, r := range t.Rows {
		table.Rows = append(table.Rows, row(r, false))
	}
	c.add(table)
	return nil
}

func (c *converter) VisitPageBreak(*docwriter.PageBreak) error {
	c.currentNum = 0
	c.add(&wml.Paragraph{Runs: []wml.Run{wml.NewBreakRun(wml.BreakPage)}})
	return nil
}
