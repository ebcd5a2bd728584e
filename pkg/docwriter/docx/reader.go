package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
	wml "github.com/benjaminschreck/go-docwriter/pkg/docwriter/xml"
)

// Reader reads a .docx package back into the document model. It covers the
// subset of WordprocessingML that Writer produces and is not an editing API.
type Reader struct {
	reader *zip.Reader
	Parts  map[string]*zip.File
}

// NewReader creates a Reader over a zip archive of the given size.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	dr := &Reader{
		reader: zipReader,
		Parts:  make(map[string]*zip.File),
	}
	for _, file := range zipReader.File {
		dr.Parts[file.Name] = file
	}

	if _, err := dr.mainPartName(); err != nil {
		return nil, err
	}
	return dr, nil
}

// Open reads the package at path into memory and returns a Reader over it.
// File system errors are returned as *docwriter.DocumentError.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, docwriter.NewDocumentError("open", path, err)
	}
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, docwriter.NewDocumentError("read", path, err)
	}
	return r, nil
}

// Part retrieves the content of a specific part
func (dr *Reader) Part(partName string) ([]byte, error) {
	file, ok := dr.Parts[partName]
	if !ok {
		return nil, fmt.Errorf("part %s not found", partName)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", partName, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", partName, err)
	}
	return content, nil
}

// ListParts returns the part names in the package, sorted
func (dr *Reader) ListParts() []string {
	parts := make([]string, 0, len(dr.Parts))
	for name := range dr.Parts {
		parts = append(parts, name)
	}
	sort.Strings(parts)
	return parts
}

// Relationships retrieves the relationships of a part. A part without a
// .rels file has no relationships.
func (dr *Reader) Relationships(partName string) (*Relationships, error) {
	dir, base := path.Split(partName)
	relPath := dir + "_rels/" + base + ".rels"

	if _, ok := dr.Parts[relPath]; !ok {
		return &Relationships{}, nil
	}
	content, err := dr.Part(relPath)
	if err != nil {
		return nil, err
	}

	var rels Relationships
	if err := xml.Unmarshal(content, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}
	return &rels, nil
}

// resolveTarget turns a relationship target into a part name.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(source), target)
}

// mainPartName locates the main document part through the package
// relationships, falling back to the conventional location.
func (dr *Reader) mainPartName() (string, error) {
	if rels, err := dr.Relationships(""); err == nil {
		if rel := rels.ByType(RelTypeOfficeDocument); rel != nil {
			name := resolveTarget("", rel.Target)
			if _, ok := dr.Parts[name]; ok {
				return name, nil
			}
		}
	}
	if _, ok := dr.Parts[PartDocument]; ok {
		return PartDocument, nil
	}
	return "", errors.New("not a valid DOCX file: missing word/document.xml")
}

// relatedPart returns the name of the part related to source by relType,
// or "" when there is none.
func (dr *Reader) relatedPart(source, relType string) string {
	rels, err := dr.Relationships(source)
	if err != nil {
		return ""
	}
	rel := rels.ByType(relType)
	if rel == nil {
		return ""
	}
	return resolveTarget(source, rel.Target)
}

// ReadDocument reconstructs the document model: block kinds, text, run
// styles, alignment, table header and rows, and metadata.
func (dr *Reader) ReadDocument() (*docwriter.Document, error) {
	mainPart, err := dr.mainPartName()
	if err != nil {
		return nil, err
	}
	content, err := dr.Part(mainPart)
	if err != nil {
		return nil, err
	}
	doc, err := wml.ParseDocument(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	m := &mapper{}
	if name := dr.relatedPart(mainPart, RelTypeNumbering); name != "" {
		if data, err := dr.Part(name); err == nil {
			if m.numbering, err = wml.ParseNumbering(data); err != nil {
				return nil, fmt.Errorf("failed to parse numbering: %w", err)
			}
		}
	}
	if name := dr.relatedPart(mainPart, RelTypeStyles); name != "" {
		if data, err := dr.Part(name); err == nil {
			if m.styles, err = wml.ParseStyles(data); err != nil {
				return nil, fmt.Errorf("failed to parse styles: %w", err)
			}
		}
	}

	blocks := make([]docwriter.Block, 0, len(doc.Body.Elements))
	for _, el := range doc.Body.Elements {
		switch v := el.(type) {
		case *wml.Paragraph:
			blocks = append(blocks, m.paragraph(v))
		case *wml.Table:
			if b := m.table(v); b != nil {
				blocks = append(blocks, b)
			}
		}
	}

	meta, err := dr.readMetadata()
	if err != nil {
		return nil, err
	}
	return docwriter.NewDocument(meta, blocks), nil
}

func (dr *Reader) readMetadata() (docwriter.Metadata, error) {
	var meta docwriter.Metadata

	if name := dr.relatedPart("", RelTypeCoreProps); name != "" {
		if data, err := dr.Part(name); err == nil {
			var core CoreProperties
			if err := xml.Unmarshal(data, &core); err != nil {
				return meta, fmt.Errorf("failed to parse core properties: %w", err)
			}
			meta.Title = core.Title
			meta.Subject = core.Subject
			meta.Author = core.Creator
			meta.Language = core.Language
			meta.Identifier = core.Identifier
			meta.Created = core.Created
		}
	}

	if name := dr.relatedPart("", RelTypeAppProps); name != "" {
		if data, err := dr.Part(name); err == nil {
			var app AppProperties
			if err := xml.Unmarshal(data, &app); err != nil {
				return meta, fmt.Errorf("failed to parse app properties: %w", err)
			}
			meta.Creator = app.Application
		}
	}

	return meta, nil
}

// mapper converts body elements back into blocks.
type mapper struct {
	numbering *wml.Numbering
	styles    *wml.Styles
}

func alignment(props *wml.ParagraphProperties) docwriter.Alignment {
	if props == nil || props.Alignment == nil {
		return docwriter.AlignLeft
	}
	switch props.Alignment.Val {
	case wml.JustifyCenter:
		return docwriter.AlignCenter
	case wml.JustifyRight, "end":
		return docwriter.AlignRight
	default:
		return docwriter.AlignLeft
	}
}

func (m *mapper) paragraph(p *wml.Paragraph) docwriter.Block {
	style := p.StyleID()
	text := p.GetText()

	if level, ok := HeadingLevel(style); ok {
		return &docwriter.Heading{Level: level, Text: text, Align: alignment(p.Properties)}
	}
	if kind, ok := m.listKind(p); ok {
		return &docwriter.ListItem{Text: text, Marker: kind}
	}
	if text == "" && p.HasPageBreak() {
		return &docwriter.PageBreak{}
	}

	para := &docwriter.Paragraph{Align: alignment(p.Properties)}
	if p.Properties != nil && p.Properties.Spacing != nil && p.Properties.Spacing.After != nil {
		para.SpaceAfterPt = wml.TwipsToPoints(*p.Properties.Spacing.After)
	}
	for i := range p.Runs {
		r := &p.Runs[i]
		runText := r.GetText()
		if runText == "" {
			continue
		}
		run := docwriter.Run{
			Text:     runText,
			Bold:     r.Properties != nil && r.Properties.Bold.IsOn(),
			Italic:   r.Properties != nil && r.Properties.Italic.IsOn(),
			SizePt:   r.Properties.SizePt(),
			FontName: r.Properties.FontName(),
		}
		if r.Properties != nil && r.Properties.Color != nil {
			if c, err := docwriter.ParseColor(r.Properties.Color.Val); err == nil {
				run.Color = &c
			}
		}
		para.Runs = append(para.Runs, run)
	}
	return para
}

// listKind reports whether p is a list item and which marker it uses. The
// numbering definition decides; the paragraph style is the fallback.
func (m *mapper) listKind(p *wml.Paragraph) (docwriter.ListKind, bool) {
	props := p.Properties
	if props != nil && props.Numbering != nil && props.Numbering.NumID != nil && m.numbering != nil {
		if abs := m.numbering.AbstractNumFor(props.Numbering.NumID.Val); abs != nil {
			if abs.Format() == wml.NumFmtBullet {
				return docwriter.ListBullet, true
			}
			return docwriter.ListNumbered, true
		}
	}
	switch p.StyleID() {
	case StyleListBullet:
		return docwriter.ListBullet, true
	case StyleListNumber:
		return docwriter.ListNumbered, true
	}
	return 0, false
}

func (m *mapper) table(t *wml.Table) docwriter.Block {
	if len(t.Rows) == 0 {
		return nil
	}
	cells := func(row *wml.TableRow) []docwriter.Cell {
		out := make([]docwriter.Cell, 0, len(row.Cells))
		for i := range row.Cells {
			c := &row.Cells[i]
			out = append(out, docwriter.Cell{Text: c.GetText(), Bold: c.IsBold()})
		}
		return out
	}

	// the header is the first row marked as repeating, or the first row
	header := 0
	for i := range t.Rows {
		if t.Rows[i].IsHeader() {
			header = i
			break
		}
	}

	table := &docwriter.Table{
		Header: cells(&t.Rows[header]),
		Style:  m.styleName(t.StyleID()),
	}
	for i := range t.Rows {
		if i != header {
			table.Rows = append(table.Rows, cells(&t.Rows[i]))
		}
	}
	return table
}

// styleName maps a style ID back to its display name when styles.xml has it.
func (m *mapper) styleName(id string) string {
	if m.styles != nil {
		if def := m.styles.Find(id); def != nil && def.Name != "" {
			return def.Name
		}
	}
	return id
}
