package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
	"github.com/benjaminschreck/go-docwriter/pkg/docwriter/docx"
)

// InspectCmd implements the 'inspect' command.
type InspectCmd struct {
	File  string `arg:"" help:"DOCX file to read"`
	Parts bool   `help:"List package parts instead of blocks"`
}

func (c *InspectCmd) Run(g *Global) error {
	r, err := docx.Open(c.File)
	if err != nil {
		return err
	}

	if c.Parts {
		for _, name := range r.ListParts() {
			fmt.Fprintln(g.Stdout, name)
		}
		return nil
	}

	doc, err := r.ReadDocument()
	if err != nil {
		return err
	}

	meta := doc.Metadata()
	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "title:\t%s\n", meta.Title)
	fmt.Fprintf(tw, "author:\t%s\n", meta.Author)
	fmt.Fprintf(tw, "language:\t%s\n", meta.Language)
	fmt.Fprintf(tw, "blocks:\t%d\n", doc.Len())
	fmt.Fprintln(tw)
	for i, b := range doc.Blocks() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, describe(b), summary(docwriter.BlockText(b)))
	}
	return tw.Flush()
}

func describe(b docwriter.Block) string {
	switch v := b.(type) {
	case *docwriter.Heading:
		return fmt.Sprintf("heading %d", v.Level)
	case *docwriter.ListItem:
		return v.Marker.String()
	case *docwriter.Table:
		return fmt.Sprintf("table %dx%d", v.Columns(), len(v.Rows))
	default:
		return b.Kind().String()
	}
}

// summary keeps block text on a single line.
func summary(text string) string {
	text = strings.NewReplacer("\t", " | ", "\n", " / ").Replace(text)
	const width = 60
	if r := []rune(text); len(r) > width {
		return string(r[:width-3]) + "..."
	}
	return text
}
