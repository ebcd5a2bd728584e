// Package docwriter assembles formatted rich-text documents in memory and
// hands them to serializers that write DOCX or HTML files.
//
// A document is an ordered list of blocks: headings, paragraphs made of styled
// runs, bulleted or numbered list items, tables with a header row, and page
// breaks. Blocks are appended through a Builder in the order they should
// appear; nothing is reordered or merged, and a rejected call leaves the
// document exactly as it was.
//
// # Quick Start
//
//	b := docwriter.NewBuilder()
//
//	title, _ := b.AddHeading("Quarterly Report", 0)
//	_ = b.SetAlignment(title, docwriter.AlignCenter)
//
//	_, _ = b.AddHeading("1. Summary", 1)
//	_, _ = b.AddParagraph(
//	    docwriter.Run{Text: "Status: ", Bold: true},
//	    docwriter.Run{Text: "on track"},
//	)
//	_ = b.AddListItem("Revenue up 4%")
//
//	_, err := b.AddTable(
//	    []string{"Region", "Owner"},
//	    [][]string{{"EMEA", "Ana"}, {"APAC", "Kenji"}},
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc := b.Build()
//	if err := docwriter.Save(doc, "report.docx", docx.New()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Blocks and Runs
//
// The Block interface is closed. Each variant implements Accept, which calls
// the matching Visitor method, so a serializer that implements Visitor is
// checked by the compiler to handle every kind of block.
//
// A Run is a span of text with independent bold, italic, size, font and color
// attributes. Run text must be non-empty; a paragraph with no runs at all is a
// valid spacer line. All text is normalised to Unicode NFC when appended.
//
// # References
//
// AddHeading, AddParagraph and AddTable return refs that allow limited
// follow-up changes: SetAlignment, AppendRun, SetSpaceAfter, AppendRow and
// SetTableStyle. A ref is only live while its block is the most recent block
// of its kind. Once a newer heading, paragraph or table is appended, the
// older ref fails with ErrStaleReference. The zero value of every ref is
// stale.
//
// # Errors
//
// Builder failures are *BuildError values wrapping one of the sentinel
// errors, for example:
//
//	if _, err := b.AddTable(header, rows); errors.Is(err, docwriter.ErrColumnMismatch) {
//	    // fix the rows and try again; the document is unchanged
//	}
//
// Save reports I/O problems as *DocumentError. The wrapped operating system
// error is preserved, so errors.Is(err, fs.ErrPermission) works.
//
// # Configuration
//
// Config carries the default fonts, table style, document language, page
// size and log level. ConfigFromEnvironment reads DOCWRITER_* variables and
// LoadEnvFiles loads them from .env files first.
//
// # Sub-packages
//
//   - xml: WordprocessingML element structs
//   - docx: DOCX serializer and a reader used for verification
//   - html: HTML serializer
//   - outline: YAML content outlines applied to a Builder
//   - markdown: Markdown import through goldmark
//   - metrics: Prometheus counters for blocks, rejections and serialization
package docwriter
