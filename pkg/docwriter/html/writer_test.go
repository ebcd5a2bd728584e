package html

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	nethtml "golang.org/x/net/html"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
)

func buildDocument(t *testing.T) *docwriter.Document {
	t.Helper()
	b := docwriter.NewBuilder(
		docwriter.WithLogger(docwriter.NopLogger()),
		docwriter.WithClock(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, b.SetMetadata(docwriter.Metadata{Author: "Ada", Subject: "Notes"}))

	title, err := b.AddHeading("Game <Design>", 0)
	require.NoError(t, err)
	require.NoError(t, b.SetAlignment(title, docwriter.AlignCenter))
	_, err = b.AddHeading("Deep", 7)
	require.NoError(t, err)

	p, err := b.AddParagraph(
		docwriter.Run{Text: "Tech: ", Bold: true},
		docwriter.Run{Text: "Go", Italic: true, Color: docwriter.RGB(255, 0, 0)},
	)
	require.NoError(t, err)
	require.NoError(t, b.SetSpaceAfter(p, 6))

	require.NoError(t, b.AddListItem("a"))
	require.NoError(t, b.AddListItem("b"))
	require.NoError(t, b.AddNumberedItem("one"))
	_, err = b.AddCodeBlock("x := 1\ny := 2")
	require.NoError(t, err)
	require.NoError(t, b.AddListItem("c"))

	_, err = b.AddTable([]string{"K", "V"}, [][]string{{"a", "1"}})
	require.NoError(t, err)
	require.NoError(t, b.AddPageBreak())
	require.NoError(t, b.AddSpacer(1))
	return b.Build()
}

func render(t *testing.T, doc *docwriter.Document) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, New(WithLogger(docwriter.NopLogger())).Serialize(&buf, doc))
	return buf.String()
}

// bodyChildren parses out and returns the tag names of the body's children.
func bodyChildren(t *testing.T, out string) []string {
	t.Helper()
	root, err := nethtml.Parse(strings.NewReader(out))
	require.NoError(t, err)

	var body *nethtml.Node
	var find func(n *nethtml.Node)
	find = func(n *nethtml.Node) {
		if n.Type == nethtml.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(root)
	require.NotNil(t, body)

	var tags []string
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == nethtml.ElementNode {
			tags = append(tags, c.Data)
		}
	}
	return tags
}

func TestSerializeBlockOrder(t *testing.T) {
	out := render(t, buildDocument(t))

	assert.Equal(t, []string{
		"h1",    // title
		"h6",    // level 7 capped
		"p",     // runs
		"ul",    // a, b
		"ol",    // one
		"p",     // code
		"ul",    // c
		"table", // table
		"div",   // page break
		"p",     // spacer
	}, bodyChildren(t, out))
}

func TestSerializeMarkup(t *testing.T) {
	out := render(t, buildDocument(t))

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="en-US">`,
		`<title>Game &lt;Design&gt;</title>`,
		`<meta name="author" content="Ada"/>`,
		`<meta name="description" content="Notes"/>`,
		`<meta name="generator" content="go-docwriter"/>`,
		`<meta name="dcterms.created" content="2024-03-01T12:00:00Z"/>`,
		`<h1 class="title" style="text-align:center">Game &lt;Design&gt;</h1>`,
		`<p style="margin-bottom:6pt"><strong>Tech: </strong><em><span style="color:#FF0000">Go</span></em></p>`,
		`<ul><li>a</li><li>b</li></ul>`,
		`<ol><li>one</li></ol>`,
		`x := 1<br/>y := 2`,
		`<thead><tr><th>K</th><th>V</th></tr></thead>`,
		`<tbody><tr><td>a</td><td>1</td></tr></tbody>`,
		`<div class="page-break"></div>`,
		`<p class="spacer"></p>`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestSerializeBoldDataCell(t *testing.T) {
	doc := docwriter.NewDocument(docwriter.Metadata{}, []docwriter.Block{
		&docwriter.Table{
			Header: []docwriter.Cell{{Text: "H", Bold: true}},
			Rows:   [][]docwriter.Cell{{{Text: "total", Bold: true}}},
		},
	})
	out := render(t, doc)
	assert.Contains(t, out, `<td><strong>total</strong></td>`)
	assert.NotContains(t, out, "<tbody></tbody>")
}

func TestSerializeConfigLanguage(t *testing.T) {
	doc := docwriter.NewDocument(docwriter.Metadata{}, nil)
	var buf bytes.Buffer
	w := New(WithLogger(docwriter.NopLogger()), WithConfig(&docwriter.Config{Language: "de-DE", DefaultFont: "Georgia"}))
	require.NoError(t, w.Serialize(&buf, doc))

	assert.Contains(t, buf.String(), `<html lang="de-DE">`)
	assert.Contains(t, buf.String(), `font-family:"Georgia"`)
}

func TestSerializeNilDocument(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, New().Serialize(&buf, nil))
}
