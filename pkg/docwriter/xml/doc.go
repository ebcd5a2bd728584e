// Package xml provides WordprocessingML structure definitions for DOCX documents.
//
// DOCX files are ZIP archives of XML parts. This package contains the element
// structs for the parts go-docwriter writes and reads back: the main document
// (word/document.xml), the style sheet (word/styles.xml) and the numbering
// definitions (word/numbering.xml).
//
// # Structure Organization
//
//   - types.go: Core interfaces (BodyElement, RunContent), namespaces, unit helpers and small value types
//   - document.go: Top-level Document and Body structures
//   - paragraph.go: Paragraph elements and their properties (style, numbering, spacing, alignment)
//   - run.go: Run elements (text runs with formatting), Text, Break and Tab elements
//   - table.go: Table structures (Table, TableRow, TableCell) and their properties
//   - section.go: Section properties (page size and margins)
//   - styles.go: The styles part
//   - numbering.go: The numbering part
//
// # Namespaces
//
// Every element is written with an explicit "w:" prefix, and the root
// element of each part declares the prefix. Decoding matches on local names
// only, so documents that bind the WordprocessingML namespace to another
// prefix are read the same way.
//
// Example of building a document by hand:
//
//	doc := &xml.Document{
//	    Body: &xml.Body{
//	        Elements: []xml.BodyElement{
//	            &xml.Paragraph{
//	                Properties: &xml.ParagraphProperties{Style: &xml.Style{Val: "Title"}},
//	                Runs: []xml.Run{xml.NewTextRun(nil, "Hello, world!")},
//	            },
//	        },
//	    },
//	}
//	data, err := xml.Marshal(doc)
package xml
