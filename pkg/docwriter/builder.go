package docwriter

import (
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter/metrics"
	wml "github.com/benjaminschreck/go-docwriter/pkg/docwriter/xml"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Option configures a Builder.
type Option func(*Builder)

// WithConfig sets the configuration. Unset fields take their defaults and the
// value is copied, so later changes to cfg do not affect the builder.
func WithConfig(cfg *Config) Option {
	return func(b *Builder) {
		b.config = NewConfigWithDefaults(cfg)
	}
}

// WithLogger sets the logger used for debug output about rejected calls.
func WithLogger(l *Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithClock overrides the clock used to stamp Metadata.Created.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// Builder appends blocks to a Document in call order. Every rejected call
// returns a *BuildError and leaves the document unchanged.
//
// A Builder is not safe for concurrent use. Builders share no state with
// each other.
type Builder struct {
	config   *Config
	logger   *Logger
	recorder metrics.Recorder
	now      func() time.Time

	meta   Metadata
	blocks []Block

	// index of the most recent block of each mutable kind, -1 if none
	lastHeading   int
	lastParagraph int
	lastTable     int

	doc *Document
}

// NewBuilder returns a Builder with an empty document.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		config:        DefaultConfig(),
		logger:        GetLogger(),
		recorder:      metrics.NoopRecorder{},
		now:           time.Now,
		lastHeading:   -1,
		lastParagraph: -1,
		lastTable:     -1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Config returns a copy of the builder's configuration.
func (b *Builder) Config() Config {
	return *b.config
}

// Len returns the number of blocks appended so far.
func (b *Builder) Len() int {
	return len(b.blocks)
}

// HeadingRef refers to an appended heading. It stays usable until another
// heading is appended or the builder is built.
type HeadingRef struct {
	owner *Builder
	index int
}

// ParagraphRef refers to an appended paragraph. It stays usable until another
// paragraph is appended or the builder is built.
type ParagraphRef struct {
	owner *Builder
	index int
}

// TableRef refers to an appended table. It stays usable until another table
// is appended or the builder is built.
type TableRef struct {
	owner *Builder
	index int
}

// Index returns the block position the ref points at.
func (r HeadingRef) Index() int { return r.index }

// Index returns the block position the ref points at.
func (r ParagraphRef) Index() int { return r.index }

// Index returns the block position the ref points at.
func (r TableRef) Index() int { return r.index }

// AlignableRef is implemented by refs to blocks that carry an Alignment.
type AlignableRef interface {
	alignment(b *Builder) (*Alignment, error)
}

func (r HeadingRef) alignment(b *Builder) (*Alignment, error) {
	h, err := b.heading(r)
	if err != nil {
		return nil, err
	}
	return &h.Align, nil
}

func (r ParagraphRef) alignment(b *Builder) (*Alignment, error) {
	p, err := b.paragraph(r)
	if err != nil {
		return nil, err
	}
	return &p.Align, nil
}

func (b *Builder) heading(r HeadingRef) (*Heading, error) {
	if r.owner != b || r.index != b.lastHeading {
		return nil, ErrStaleReference
	}
	return b.blocks[r.index].(*Heading), nil
}

func (b *Builder) paragraph(r ParagraphRef) (*Paragraph, error) {
	if r.owner != b || r.index != b.lastParagraph {
		return nil, ErrStaleReference
	}
	return b.blocks[r.index].(*Paragraph), nil
}

func (b *Builder) table(r TableRef) (*Table, error) {
	if r.owner != b || r.index != b.lastTable {
		return nil, ErrStaleReference
	}
	return b.blocks[r.index].(*Table), nil
}

// AddHeading appends a heading. Level 0 is the document title; levels
// 1..MaxHeadingLevel are section headings.
func (b *Builder) AddHeading(text string, level int) (HeadingRef, error) {
	const op = "add heading"
	if err := b.checkOpen(op); err != nil {
		return HeadingRef{}, err
	}
	if level < 0 || level > b.config.MaxHeadingLevel {
		return HeadingRef{}, b.reject(op, ErrInvalidLevel,
			fmt.Sprintf("level %d outside 0..%d", level, b.config.MaxHeadingLevel))
	}
	if text == "" {
		return HeadingRef{}, b.reject(op, ErrEmptyText, "")
	}
	if detail, ok := checkText(text); !ok {
		return HeadingRef{}, b.reject(op, ErrInvalidText, detail)
	}
	idx := b.append(&Heading{Level: level, Text: norm.NFC.String(text)})
	b.lastHeading = idx
	return HeadingRef{owner: b, index: idx}, nil
}

// AddParagraph appends a paragraph holding runs in order. Zero runs produce
// an empty spacer paragraph.
func (b *Builder) AddParagraph(runs ...Run) (ParagraphRef, error) {
	const op = "add paragraph"
	if err := b.checkOpen(op); err != nil {
		return ParagraphRef{}, err
	}
	normalized := make([]Run, len(runs))
	for i, r := range runs {
		if detail, err := validateRun(r); err != nil {
			return ParagraphRef{}, b.reject(op, err, fmt.Sprintf("run %d: %s", i, detail))
		}
		normalized[i] = normalizeRun(r)
	}
	return b.appendParagraph(&Paragraph{Runs: normalized}), nil
}

// AddText appends a paragraph with a single default-style run.
func (b *Builder) AddText(text string) (ParagraphRef, error) {
	return b.AddParagraph(Run{Text: text})
}

// AddCodeBlock appends a paragraph with one monospace run in the configured
// code font. Newlines inside text are kept and become line breaks.
func (b *Builder) AddCodeBlock(text string) (ParagraphRef, error) {
	return b.AddParagraph(Run{
		Text:     text,
		FontName: b.config.CodeFont,
		SizePt:   b.config.CodeSizePt,
	})
}

// AddSpacer appends n empty paragraphs.
func (b *Builder) AddSpacer(n int) error {
	const op = "add spacer"
	if err := b.checkOpen(op); err != nil {
		return err
	}
	if n < 0 {
		return b.reject(op, ErrInvalidStyle, fmt.Sprintf("negative count %d", n))
	}
	for i := 0; i < n; i++ {
		b.appendParagraph(&Paragraph{})
	}
	return nil
}

// AppendRun adds a run to the end of the paragraph ref points at.
func (b *Builder) AppendRun(ref ParagraphRef, run Run) error {
	const op = "append run"
	if err := b.checkOpen(op); err != nil {
		return err
	}
	p, err := b.paragraph(ref)
	if err != nil {
		return b.reject(op, err, "")
	}
	if detail, err := validateRun(run); err != nil {
		return b.reject(op, err, fmt.Sprintf("run %d: %s", len(p.Runs), detail))
	}
	p.Runs = append(p.Runs, normalizeRun(run))
	return nil
}

// AddListItem appends a bulleted list item.
func (b *Builder) AddListItem(text string) error {
	return b.addListItem("add list item", text, ListBullet)
}

// AddNumberedItem appends a numbered list item. Consecutive numbered items
// form one list.
func (b *Builder) AddNumberedItem(text string) error {
	return b.addListItem("add numbered item", text, ListNumbered)
}

func (b *Builder) addListItem(op, text string, kind ListKind) error {
	if err := b.checkOpen(op); err != nil {
		return err
	}
	if text == "" {
		return b.reject(op, ErrEmptyText, "")
	}
	if detail, ok := checkText(text); !ok {
		return b.reject(op, ErrInvalidText, detail)
	}
	b.append(&ListItem{Text: norm.NFC.String(text), Marker: kind})
	return nil
}

// AddTable appends a table. The header fixes the column count and its cells
// are bold; every row must have exactly that many cells.
func (b *Builder) AddTable(header []string, rows [][]string) (TableRef, error) {
	const op = "add table"
	if err := b.checkOpen(op); err != nil {
		return TableRef{}, err
	}
	if len(header) == 0 {
		return TableRef{}, b.reject(op, ErrEmptyTable, "")
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return TableRef{}, b.reject(op, ErrColumnMismatch,
				fmt.Sprintf("row %d has %d cells, want %d", i, len(row), len(header)))
		}
	}
	if detail, ok := checkCells(header); !ok {
		return TableRef{}, b.reject(op, ErrInvalidText, "header "+detail)
	}
	for i, row := range rows {
		if detail, ok := checkCells(row); !ok {
			return TableRef{}, b.reject(op, ErrInvalidText, fmt.Sprintf("row %d %s", i, detail))
		}
	}

	t := &Table{
		Header: makeCells(header, true),
		Rows:   make([][]Cell, 0, len(rows)),
		Style:  b.config.TableStyle,
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, makeCells(row, false))
	}
	idx := b.append(t)
	b.lastTable = idx
	return TableRef{owner: b, index: idx}, nil
}

// AppendRow adds a data row to the table ref points at. A row of the wrong
// width is rejected and the table is left as it was.
func (b *Builder) AppendRow(ref TableRef, cells []string) error {
	const op = "append row"
	if err := b.checkOpen(op); err != nil {
		return err
	}
	t, err := b.table(ref)
	if err != nil {
		return b.reject(op, err, "")
	}
	if len(cells) != t.Columns() {
		return b.reject(op, ErrColumnMismatch,
			fmt.Sprintf("row has %d cells, want %d", len(cells), t.Columns()))
	}
	if detail, ok := checkCells(cells); !ok {
		return b.reject(op, ErrInvalidText, detail)
	}
	t.Rows = append(t.Rows, makeCells(cells, false))
	return nil
}

// AddPageBreak appends a page break.
func (b *Builder) AddPageBreak() error {
	if err := b.checkOpen("add page break"); err != nil {
		return err
	}
	b.append(&PageBreak{})
	return nil
}

// SetAlignment sets the alignment of a heading or paragraph.
func (b *Builder) SetAlignment(ref AlignableRef, a Alignment) error {
	const op = "set alignment"
	if err := b.checkOpen(op); err != nil {
		return err
	}
	if a < AlignLeft || a > AlignRight {
		return b.reject(op, ErrInvalidStyle, fmt.Sprintf("alignment %d", int(a)))
	}
	if ref == nil {
		return b.reject(op, ErrStaleReference, "nil ref")
	}
	target, err := ref.alignment(b)
	if err != nil {
		return b.reject(op, err, "")
	}
	*target = a
	return nil
}

// SetSpaceAfter sets the spacing below a paragraph in points.
func (b *Builder) SetSpaceAfter(ref ParagraphRef, pt float64) error {
	const op = "set space after"
	if err := b.checkOpen(op); err != nil {
		return err
	}
	p, err := b.paragraph(ref)
	if err != nil {
		return b.reject(op, err, "")
	}
	if pt < 0 || math.IsNaN(pt) || math.IsInf(pt, 0) {
		return b.reject(op, ErrInvalidStyle, fmt.Sprintf("spacing %g", pt))
	}
	p.SpaceAfterPt = pt
	return nil
}

// SetTableStyle names the style applied to a table.
func (b *Builder) SetTableStyle(ref TableRef, style string) error {
	const op = "set table style"
	if err := b.checkOpen(op); err != nil {
		return err
	}
	t, err := b.table(ref)
	if err != nil {
		return b.reject(op, err, "")
	}
	if style == "" {
		return b.reject(op, ErrInvalidStyle, "empty table style")
	}
	if detail, ok := checkText(style); !ok {
		return b.reject(op, ErrInvalidStyle, "table style "+detail)
	}
	t.Style = style
	return nil
}

// SetMetadata replaces the document metadata. Fields left empty are filled
// in by Build. Metadata holding characters XML cannot carry is rejected and
// the previous metadata is kept.
func (b *Builder) SetMetadata(meta Metadata) error {
	fields := []struct{ name, value string }{
		{"title", meta.Title},
		{"subject", meta.Subject},
		{"author", meta.Author},
		{"creator", meta.Creator},
		{"language", meta.Language},
		{"identifier", meta.Identifier},
	}
	for _, f := range fields {
		if detail, ok := checkText(f.value); !ok {
			return b.reject("set metadata", ErrInvalidText, f.name+" "+detail)
		}
	}
	b.meta = meta
	return nil
}

// Build seals the builder and returns the finished document. Later calls to
// Build return the same document; every other call fails with
// ErrBuilderClosed.
func (b *Builder) Build() *Document {
	if b.doc != nil {
		return b.doc
	}
	meta := b.meta
	if meta.Title == "" {
		for _, blk := range b.blocks {
			if h, ok := blk.(*Heading); ok && h.Level == 0 {
				meta.Title = h.Text
				break
			}
		}
	}
	if meta.Creator == "" {
		meta.Creator = b.config.Creator
	}
	if meta.Language == "" {
		meta.Language = b.config.LanguageTag()
	}
	if meta.Identifier == "" {
		meta.Identifier = "urn:uuid:" + uuid.NewString()
	}
	if meta.Created.IsZero() {
		meta.Created = b.now().UTC().Truncate(time.Second)
	}

	b.doc = NewDocument(meta, b.blocks)
	b.blocks = nil
	b.logger.Debug("document built", "blocks", b.doc.Len(), "title", meta.Title)
	return b.doc
}

func (b *Builder) checkOpen(op string) error {
	if b.doc == nil {
		return nil
	}
	return b.reject(op, ErrBuilderClosed, "")
}

func (b *Builder) append(blk Block) int {
	b.blocks = append(b.blocks, blk)
	b.recorder.IncBlock(blk.Kind().String())
	return len(b.blocks) - 1
}

func (b *Builder) appendParagraph(p *Paragraph) ParagraphRef {
	idx := b.append(p)
	b.lastParagraph = idx
	return ParagraphRef{owner: b, index: idx}
}

func (b *Builder) reject(op string, sentinel error, detail string) error {
	index := len(b.blocks)
	if b.doc != nil {
		index = b.doc.Len()
	}
	err := NewBuildError(op, index, sentinel, detail)
	reason := rejectionReason(sentinel)
	b.recorder.IncRejected(reason)
	b.logger.Debug("builder call rejected", "op", op, "reason", reason, "index", index, "error", err)
	return err
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidLevel):
		return "invalid_level"
	case errors.Is(err, ErrEmptyRun):
		return "empty_run"
	case errors.Is(err, ErrEmptyText):
		return "empty_text"
	case errors.Is(err, ErrInvalidText):
		return "invalid_text"
	case errors.Is(err, ErrEmptyTable):
		return "empty_table"
	case errors.Is(err, ErrColumnMismatch):
		return "column_mismatch"
	case errors.Is(err, ErrStaleReference):
		return "stale_reference"
	case errors.Is(err, ErrInvalidStyle):
		return "invalid_style"
	case errors.Is(err, ErrBuilderClosed):
		return "builder_closed"
	default:
		return "other"
	}
}

func validateRun(r Run) (detail string, err error) {
	if r.Text == "" {
		return "empty text", ErrEmptyRun
	}
	if d, ok := checkText(r.Text); !ok {
		return d, ErrInvalidText
	}
	if r.SizePt != 0 && !ValidFontSize(r.SizePt) {
		return fmt.Sprintf("font size %g", r.SizePt), ErrInvalidStyle
	}
	if d, ok := checkText(r.FontName); !ok {
		return "font name " + d, ErrInvalidStyle
	}
	return "", nil
}

// MaxFontSizePt is the largest font size a run may carry.
const MaxFontSizePt = 1638

// ValidFontSize reports whether pt is a usable font size: finite, at least
// one half point once rounded, and no larger than MaxFontSizePt.
func ValidFontSize(pt float64) bool {
	if math.IsNaN(pt) || math.IsInf(pt, 0) || pt > MaxFontSizePt {
		return false
	}
	return wml.PointsToHalfPoints(pt) >= 1
}

// checkText reports whether s can be stored in a document unchanged. Text
// must be valid UTF-8 and hold only characters XML 1.0 allows.
func checkText(s string) (detail string, ok bool) {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size <= 1 {
				return fmt.Sprintf("invalid UTF-8 at byte %d", i), false
			}
		}
		if !isXMLChar(r) {
			return fmt.Sprintf("character %U at byte %d", r, i), false
		}
	}
	return "", true
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	default:
		return r >= 0x10000 && r <= utf8.MaxRune
	}
}

func checkCells(texts []string) (string, bool) {
	for i, t := range texts {
		if detail, ok := checkText(t); !ok {
			return fmt.Sprintf("cell %d: %s", i, detail), false
		}
	}
	return "", true
}

func normalizeRun(r Run) Run {
	r.Text = norm.NFC.String(r.Text)
	if r.Color != nil {
		c := *r.Color
		r.Color = &c
	}
	return r
}

func makeCells(texts []string, bold bool) []Cell {
	cells := make([]Cell, len(texts))
	for i, t := range texts {
		cells[i] = Cell{Text: norm.NFC.String(t), Bold: bold}
	}
	return cells
}
