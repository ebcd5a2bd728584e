package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
	wml "github.com/benjaminschreck/go-docwriter/pkg/docwriter/xml"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestBuilder() *docwriter.Builder {
	return docwriter.NewBuilder(
		docwriter.WithLogger(docwriter.NopLogger()),
		docwriter.WithClock(func() time.Time { return fixedTime }),
	)
}

func serialize(t *testing.T, doc *docwriter.Document, opts ...Option) []byte {
	t.Helper()
	opts = append([]Option{WithLogger(docwriter.NopLogger())}, opts...)
	var buf bytes.Buffer
	require.NoError(t, New(opts...).Serialize(&buf, doc))
	return buf.Bytes()
}

func readBack(t *testing.T, data []byte) *docwriter.Document {
	t.Helper()
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	doc, err := r.ReadDocument()
	require.NoError(t, err)
	return doc
}

func part(t *testing.T, data []byte, name string) string {
	t.Helper()
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	content, err := r.Part(name)
	require.NoError(t, err)
	return string(content)
}

func richDocument(t *testing.T) *docwriter.Document {
	t.Helper()
	b := newTestBuilder()
	require.NoError(t, b.SetMetadata(docwriter.Metadata{Subject: "Design notes", Author: "Ada"}))

	title, err := b.AddHeading("Game Design", 0)
	require.NoError(t, err)
	require.NoError(t, b.SetAlignment(title, docwriter.AlignCenter))

	_, err = b.AddHeading("Overview", 1)
	require.NoError(t, err)

	p, err := b.AddParagraph(
		docwriter.Run{Text: "Tech: ", Bold: true},
		docwriter.Run{Text: "Go", Italic: true, SizePt: 14, Color: docwriter.RGB(0x1F, 0x4E, 0x79)},
	)
	require.NoError(t, err)
	require.NoError(t, b.AppendRun(p, docwriter.Run{Text: " and more", FontName: "Georgia"}))
	require.NoError(t, b.SetSpaceAfter(p, 6))
	require.NoError(t, b.SetAlignment(p, docwriter.AlignRight))

	require.NoError(t, b.AddSpacer(1))
	_, err = b.AddCodeBlock("func main() {\n\tprintln(\"hi\")\n}")
	require.NoError(t, err)

	require.NoError(t, b.AddListItem("Lobby"))
	require.NoError(t, b.AddListItem("Matchmaking"))
	require.NoError(t, b.AddNumberedItem("Design"))
	require.NoError(t, b.AddNumberedItem("Build"))

	tbl, err := b.AddTable([]string{"Feature", "Notes"}, [][]string{{"Lobby", ""}})
	require.NoError(t, err)
	require.NoError(t, b.AppendRow(tbl, []string{"Chat", "v2"}))
	require.NoError(t, b.SetTableStyle(tbl, "Light Grid"))

	require.NoError(t, b.AddPageBreak())
	_, err = b.AddHeading("Appendix", 2)
	require.NoError(t, err)

	return b.Build()
}

func TestRoundTrip(t *testing.T) {
	doc := richDocument(t)
	got := readBack(t, serialize(t, doc))

	if diff := cmp.Diff(doc.Blocks(), got.Blocks(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks differ after round trip (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(doc.Metadata(), got.Metadata()); diff != "" {
		t.Errorf("metadata differs after round trip (-want +got):\n%s", diff)
	}
}

func TestRoundTripScenarios(t *testing.T) {
	t.Run("heading paragraph page break", func(t *testing.T) {
		b := newTestBuilder()
		_, err := b.AddHeading("Title", 0)
		require.NoError(t, err)
		_, err = b.AddText("Subtitle text")
		require.NoError(t, err)
		require.NoError(t, b.AddPageBreak())

		got := readBack(t, serialize(t, b.Build()))
		assert.Equal(t, []docwriter.BlockKind{
			docwriter.KindHeading, docwriter.KindParagraph, docwriter.KindPageBreak,
		}, got.Kinds())
		blocks := got.Blocks()
		assert.Equal(t, 0, blocks[0].(*docwriter.Heading).Level)
		assert.Len(t, blocks[1].(*docwriter.Paragraph).Runs, 1)
	})

	t.Run("table with header", func(t *testing.T) {
		b := newTestBuilder()
		_, err := b.AddTable([]string{"A", "B"}, [][]string{{"1", "2"}, {"3", "4"}})
		require.NoError(t, err)

		got := readBack(t, serialize(t, b.Build()))
		require.Equal(t, 1, got.Len())
		table := got.Blocks()[0].(*docwriter.Table)
		assert.Equal(t, []docwriter.Cell{{Text: "A", Bold: true}, {Text: "B", Bold: true}}, table.Header)
		assert.Equal(t, [][]docwriter.Cell{
			{{Text: "1"}, {Text: "2"}},
			{{Text: "3"}, {Text: "4"}},
		}, table.Rows)
		assert.Equal(t, "Table Grid", table.Style)
	})

	t.Run("rejected row leaves document unchanged", func(t *testing.T) {
		b := newTestBuilder()
		_, err := b.AddTable([]string{"A", "B"}, [][]string{{"1"}})
		require.ErrorIs(t, err, docwriter.ErrColumnMismatch)

		got := readBack(t, serialize(t, b.Build()))
		assert.Equal(t, 0, got.Len())
	})
}

func TestRoundTripUnusualText(t *testing.T) {
	texts := []string{
		"tab\there",
		"party \U0001F389 time",
		"private \uE000 use",
		"caf\u00e9",
		"<angle> & \"quotes\"",
	}
	b := newTestBuilder()
	for _, text := range texts {
		_, err := b.AddText(text)
		require.NoError(t, err)
	}
	_, err := b.AddHeading("\U0001F680 launch", 1)
	require.NoError(t, err)
	_, err = b.AddTable([]string{"\uFFFD"}, [][]string{{"\U0010FFFD"}})
	require.NoError(t, err)

	// rejected characters never reach the document
	for _, bad := range []string{"nul\x00", "bell\x07", "vt\x0b", "\xfe\xff"} {
		_, err := b.AddText(bad)
		require.ErrorIs(t, err, docwriter.ErrInvalidText, "%q", bad)
	}

	doc := b.Build()
	got := readBack(t, serialize(t, doc))
	if diff := cmp.Diff(doc.Blocks(), got.Blocks(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks differ after round trip (-want +got):\n%s", diff)
	}
	for i, text := range texts {
		assert.Equal(t, text, got.Blocks()[i].(*docwriter.Paragraph).Text())
	}
}

func TestPackageParts(t *testing.T) {
	data := serialize(t, richDocument(t))
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	assert.Equal(t, []string{
		PartContentTypes,
		PartRootRels,
		PartAppProps,
		PartCoreProps,
		PartDocumentRels,
		PartDocument,
		PartNumbering,
		PartStyles,
	}, r.ListParts())

	rels, err := r.Relationships(PartDocument)
	require.NoError(t, err)
	require.NotNil(t, rels.ByType(RelTypeStyles))
	assert.Equal(t, "styles.xml", rels.ByType(RelTypeStyles).Target)

	ct := part(t, data, PartContentTypes)
	assert.True(t, strings.HasPrefix(ct, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`))
	assert.Contains(t, ct, `PartName="/word/document.xml"`)
	assert.Contains(t, ct, ContentTypeDocument)
}

func TestDocumentPart(t *testing.T) {
	data := serialize(t, richDocument(t), WithConfig(&docwriter.Config{PageSize: docwriter.PageSizeA4}))
	body := part(t, data, PartDocument)

	for _, want := range []string{
		`<w:pStyle w:val="Title"></w:pStyle><w:jc w:val="center"></w:jc>`,
		`<w:pStyle w:val="Heading1"></w:pStyle>`,
		`<w:spacing w:after="120"></w:spacing>`,
		`<w:sz w:val="28"></w:sz>`,
		`<w:color w:val="1F4E79"></w:color>`,
		`<w:rFonts w:ascii="Courier New" w:hAnsi="Courier New" w:cs="Courier New"></w:rFonts>`,
		`<w:br></w:br>`,
		`<w:pStyle w:val="ListBullet"></w:pStyle>`,
		`<w:pStyle w:val="ListNumber"></w:pStyle>`,
		`<w:tblStyle w:val="LightGrid"></w:tblStyle>`,
		`<w:tblHeader></w:tblHeader>`,
		`<w:br w:type="page"></w:br>`,
		`<w:pgSz w:w="11906" w:h="16838"></w:pgSz>`,
	} {
		assert.Contains(t, body, want)
	}

	styles := part(t, data, PartStyles)
	assert.Contains(t, styles, `w:styleId="LightGrid"`)
	assert.Contains(t, styles, `<w:basedOn w:val="TableGrid"></w:basedOn>`)
	assert.Contains(t, styles, `<w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri"></w:rFonts>`)
	assert.Contains(t, styles, `<w:lang w:val="en-US"></w:lang>`)
}

func TestNumberedListsRestart(t *testing.T) {
	b := newTestBuilder()
	require.NoError(t, b.AddNumberedItem("one"))
	require.NoError(t, b.AddNumberedItem("two"))
	_, err := b.AddText("between")
	require.NoError(t, err)
	require.NoError(t, b.AddNumberedItem("again"))
	require.NoError(t, b.AddListItem("bullet"))
	require.NoError(t, b.AddNumberedItem("third list"))

	data := serialize(t, b.Build())

	numbering, err := wml.ParseNumbering([]byte(part(t, data, PartNumbering)))
	require.NoError(t, err)
	// One bullet instance plus one instance per numbered list.
	require.Len(t, numbering.Nums, 4)
	for _, num := range numbering.Nums[1:] {
		assert.Equal(t, 1, num.StartOverride)
		assert.Equal(t, wml.NumFmtDecimal, numbering.AbstractNumFor(num.ID).Format())
	}

	doc, err := wml.ParseDocument(strings.NewReader(part(t, data, PartDocument)))
	require.NoError(t, err)
	var ids []int
	for _, el := range doc.Body.Elements {
		p := el.(*wml.Paragraph)
		if p.Properties != nil && p.Properties.Numbering != nil {
			ids = append(ids, p.Properties.Numbering.NumID.Val)
		}
	}
	assert.Equal(t, []int{2, 2, 3, numBullet, 4}, ids)
}

func TestCoreProperties(t *testing.T) {
	data := serialize(t, richDocument(t))
	core := part(t, data, PartCoreProps)

	assert.Contains(t, core, `<dc:title>Game Design</dc:title>`)
	assert.Contains(t, core, `<dc:creator>Ada</dc:creator>`)
	assert.Contains(t, core, `<dcterms:created xsi:type="dcterms:W3CDTF">2024-03-01T12:00:00Z</dcterms:created>`)
	assert.Contains(t, core, `<dc:identifier>urn:uuid:`)

	app := part(t, data, PartAppProps)
	assert.Contains(t, app, `<Application>go-docwriter</Application>`)
}

func TestSaveAndOpen(t *testing.T) {
	doc := richDocument(t)
	path := filepath.Join(t.TempDir(), "design.docx")

	require.NoError(t, docwriter.Save(doc, path, New(WithLogger(docwriter.NopLogger()))))

	r, err := Open(path)
	require.NoError(t, err)
	got, err := r.ReadDocument()
	require.NoError(t, err)
	assert.Equal(t, doc.Kinds(), got.Kinds())
}

func TestOpenErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "missing.docx"))
		require.Error(t, err)
		assert.True(t, docwriter.IsDocumentError(err))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("not a zip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plain.docx")
		require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))
		_, err := Open(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read zip file")
	})

	t.Run("zip without document", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, newZip(&buf, map[string]string{"hello.txt": "hi"}))
		_, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing word/document.xml")
	})
}

func TestReadDocumentFallbacks(t *testing.T) {
	// A minimal package with no relationships, styles or numbering parts.
	var buf bytes.Buffer
	require.NoError(t, newZip(&buf, map[string]string{
		PartDocument: `<w:document xmlns:w="` + wml.NamespaceW + `"><w:body>
<w:p><w:pPr><w:pStyle w:val="Heading3"/></w:pPr><w:r><w:t>Deep</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="ListNumber"/></w:pPr><w:r><w:t>first</w:t></w:r></w:p>
<w:p><w:pPr><w:jc w:val="end"/></w:pPr><w:r><w:rPr><w:color w:val="auto"/></w:rPr><w:t>plain</w:t></w:r></w:p>
<w:tbl><w:tblPr><w:tblStyle w:val="Custom"/></w:tblPr></w:tbl>
</w:body></w:document>`,
	}))

	got := readBack(t, buf.Bytes())
	want := []docwriter.Block{
		&docwriter.Heading{Level: 3, Text: "Deep"},
		&docwriter.ListItem{Text: "first", Marker: docwriter.ListNumbered},
		&docwriter.Paragraph{Align: docwriter.AlignRight, Runs: []docwriter.Run{{Text: "plain"}}},
	}
	if diff := cmp.Diff(want, got.Blocks()); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, docwriter.Metadata{}, got.Metadata())
}

func TestReadTableHeaderRow(t *testing.T) {
	row := func(props string, texts ...string) string {
		out := "<w:tr>" + props
		for _, text := range texts {
			out += "<w:tc><w:p><w:r><w:t>" + text + "</w:t></w:r></w:p></w:tc>"
		}
		return out + "</w:tr>"
	}
	const flagged = "<w:trPr><w:tblHeader/></w:trPr>"

	tests := []struct {
		name       string
		rows       string
		wantHeader string
		wantRows   []string
	}{
		{"no flag uses first row", row("", "a") + row("", "b"), "a", []string{"b"}},
		{"flag on first row", row(flagged, "a") + row("", "b"), "a", []string{"b"}},
		{"flag on later row", row("", "caption") + row(flagged, "head") + row("", "data"), "head", []string{"caption", "data"}},
		{"explicitly off", row("<w:trPr><w:tblHeader w:val=\"0\"/></w:trPr>", "a") + row(flagged, "b"), "b", []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, newZip(&buf, map[string]string{
				PartDocument: `<w:document xmlns:w="` + wml.NamespaceW + `"><w:body><w:tbl>` +
					tt.rows + `</w:tbl></w:body></w:document>`,
			}))

			got := readBack(t, buf.Bytes())
			require.Equal(t, 1, got.Len())
			table := got.Blocks()[0].(*docwriter.Table)
			assert.Equal(t, []docwriter.Cell{{Text: tt.wantHeader}}, table.Header)
			var rows []string
			for _, r := range table.Rows {
				rows = append(rows, r[0].Text)
			}
			assert.Equal(t, tt.wantRows, rows)
		})
	}
}

func TestTableStyleCollisions(t *testing.T) {
	names := []string{"My Style", "MyStyle", "My  Style", "Normal", "Heading 1", "TableGrid", "Table Grid", "My Style"}
	b := newTestBuilder()
	for _, name := range names {
		ref, err := b.AddTable([]string{"A"}, [][]string{{"1"}})
		require.NoError(t, err)
		require.NoError(t, b.SetTableStyle(ref, name))
	}

	data := serialize(t, b.Build())
	got := readBack(t, data)
	require.Equal(t, len(names), got.Len())
	for i, blk := range got.Blocks() {
		assert.Equal(t, names[i], blk.(*docwriter.Table).Style, "table %d", i)
	}

	styles := part(t, data, PartStyles)
	for _, id := range []string{"MyStyle", "MyStyle2", "MyStyle3", "Normal2", "Heading12", "TableGrid2"} {
		assert.Equal(t, 1, strings.Count(styles, `w:styleId="`+id+`"`), id)
	}
	assert.Equal(t, 1, strings.Count(styles, `w:styleId="Normal"`))
	assert.Equal(t, 1, strings.Count(styles, `w:styleId="TableGrid"`))
}

func TestTableStyleSet(t *testing.T) {
	s := newTableStyleSet()
	tests := []struct {
		name, want string
	}{
		{"Table Grid", StyleTableGrid},
		{"Light Grid", "LightGrid"},
		{"LightGrid", "LightGrid2"},
		{"Light Grid", "LightGrid"},
		{"Title", "Title2"},
		{"   ", "Table"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.id(tt.name), tt.name)
	}
	assert.Equal(t, []string{"Light Grid", "LightGrid", "Title", "   "}, s.names)
}

func TestHeadingStyleIDs(t *testing.T) {
	tests := []struct {
		level int
		id    string
	}{
		{0, "Title"},
		{1, "Heading1"},
		{9, "Heading9"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.id, HeadingStyleID(tt.level))
		level, ok := HeadingLevel(tt.id)
		assert.True(t, ok)
		assert.Equal(t, tt.level, level)
	}

	for _, id := range []string{"Normal", "Heading", "HeadingX", "Heading0"} {
		_, ok := HeadingLevel(id)
		assert.False(t, ok, id)
	}

	assert.Equal(t, "TableGrid", TableStyleID("Table Grid"))
	assert.Equal(t, "LightGridAccent1", TableStyleID(" Light  Grid Accent1 "))
}

func newZip(w io.Writer, files map[string]string) error {
	zw := zip.NewWriter(w)
	for name, content := range files {
		fw, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(fw, content); err != nil {
			return err
		}
	}
	return zw.Close()
}
