package markdown

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
)

func testOptions() []docwriter.Option {
	return []docwriter.Option{
		docwriter.WithLogger(docwriter.NopLogger()),
		docwriter.WithClock(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }),
	}
}

const sample = `---
title: Game Design
author: Ada
language: de-DE
tags: [ignored]
---
# Overview

Plain text with **bold**, *italic* and ` + "`code`" + `
on two lines.

- Lobby
- Matchmaking
  1. Queue
  2. Match

---

` + "```go\nfunc main() {}\n```" + `

| Feature | Notes |
|---------|-------|
| Chat    | v2    |

> Quoted paragraph.

###### Deep
`

func TestBuild(t *testing.T) {
	doc, err := Build([]byte(sample), testOptions()...)
	require.NoError(t, err)

	want := []docwriter.Block{
		&docwriter.Heading{Level: 0, Text: "Game Design"},
		&docwriter.Heading{Level: 1, Text: "Overview"},
		&docwriter.Paragraph{Runs: []docwriter.Run{
			{Text: "Plain text with "},
			{Text: "bold", Bold: true},
			{Text: ", "},
			{Text: "italic", Italic: true},
			{Text: " and "},
			{Text: "code", FontName: "Courier New"},
			{Text: " on two lines."},
		}},
		&docwriter.ListItem{Text: "Lobby", Marker: docwriter.ListBullet},
		&docwriter.ListItem{Text: "Matchmaking", Marker: docwriter.ListBullet},
		&docwriter.ListItem{Text: "Queue", Marker: docwriter.ListNumbered},
		&docwriter.ListItem{Text: "Match", Marker: docwriter.ListNumbered},
		&docwriter.PageBreak{},
		&docwriter.Paragraph{Runs: []docwriter.Run{{Text: "func main() {}", FontName: "Courier New", SizePt: 9}}},
		&docwriter.Table{
			Header: []docwriter.Cell{{Text: "Feature", Bold: true}, {Text: "Notes", Bold: true}},
			Rows:   [][]docwriter.Cell{{{Text: "Chat"}, {Text: "v2"}}},
			Style:  "Table Grid",
		},
		&docwriter.Paragraph{Runs: []docwriter.Run{{Text: "Quoted paragraph."}}},
		&docwriter.Heading{Level: 6, Text: "Deep"},
	}
	if diff := cmp.Diff(want, doc.Blocks(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}

	meta := doc.Metadata()
	assert.Equal(t, "Game Design", meta.Title)
	assert.Equal(t, "Ada", meta.Author)
	assert.Equal(t, "de-DE", meta.Language)
}

func TestImportWithoutFrontMatter(t *testing.T) {
	doc, err := Build([]byte("Hello  \nworld\n"), testOptions()...)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Len())
	assert.Equal(t, "Hello\nworld", docwriter.BlockText(doc.Blocks()[0]))
}

func TestImportNormalizesRaggedTableRows(t *testing.T) {
	source := "| A | B |\n|---|---|\n| 1 | 2 | 3 |\n| 4 |\n"
	doc, err := Build([]byte(source), testOptions()...)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Len())

	table := doc.Blocks()[0].(*docwriter.Table)
	assert.Equal(t, [][]docwriter.Cell{
		{{Text: "1"}, {Text: "2"}},
		{{Text: "4"}, {Text: ""}},
	}, table.Rows)
}

func TestImportErrorContext(t *testing.T) {
	b := docwriter.NewBuilder(testOptions()...)
	_, err := b.AddText("before")
	require.NoError(t, err)
	b.Build()

	err = Import(b, []byte("intro\n\nmore\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, docwriter.ErrBuilderClosed)

	var cerr *docwriter.ContextError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 0, cerr.Context["block"])
	assert.Equal(t, 1, cerr.Context["line"])
	assert.Equal(t, "Paragraph", cerr.Context["node"])
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		fm      string
		body    string
		had     bool
		wantErr error
	}{
		{"none", "# Title\n", "", "# Title\n", false, nil},
		{"simple", "---\ntitle: X\n---\nbody\n", "title: X\n", "body\n", true, nil},
		{"empty", "---\n---\nbody\n", "", "body\n", true, nil},
		{"crlf", "---\r\ntitle: X\r\n---\r\nbody", "title: X\r\n", "body", true, nil},
		{"unterminated", "---\ntitle: X\n", "", "", false, ErrMissingClosingDelimiter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, had, err := SplitFrontMatter([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.had, had)
			assert.Equal(t, tt.fm, string(fm))
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# One\n\ntext\n"), 0o644))

	b := docwriter.NewBuilder(testOptions()...)
	require.NoError(t, ImportFile(b, path))
	assert.Equal(t, []docwriter.BlockKind{docwriter.KindHeading, docwriter.KindParagraph}, b.Build().Kinds())

	err := ImportFile(docwriter.NewBuilder(testOptions()...), filepath.Join(dir, "missing.md"))
	require.Error(t, err)
	assert.True(t, docwriter.IsDocumentError(err))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
