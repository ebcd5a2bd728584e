// Package outline loads documents described in YAML and replays them onto a
// docwriter.Builder.
//
// An outline looks like:
//
//	title: Game Design
//	metadata:
//	  author: Ada
//	blocks:
//	  - heading: Overview
//	  - paragraph: A plain paragraph.
//	  - paragraph:
//	      align: center
//	      runs:
//	        - {text: "Tech: ", bold: true}
//	        - {text: Go, italic: true, color: "1F4E79"}
//	  - bullets: [Lobby, Matchmaking]
//	  - table:
//	      header: [Feature, Notes]
//	      rows: [[Chat, v2]]
//	  - page_break: true
//
// Each block sets exactly one of heading, paragraph, bullets, numbered,
// table, code, page_break or spacer.
package outline

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
)

// Outline is the root of an outline file
type Outline struct {
	Title    string   `yaml:"title"`
	Metadata Metadata `yaml:"metadata"`
	Blocks   []Block  `yaml:"blocks"`
}

// Metadata overrides document metadata. Empty fields are filled in by the
// builder.
type Metadata struct {
	Subject  string `yaml:"subject"`
	Author   string `yaml:"author"`
	Language string `yaml:"language"`
}

// Block is one entry of the blocks list
type Block struct {
	Heading   *Heading   `yaml:"heading"`
	Paragraph *Paragraph `yaml:"paragraph"`
	Bullets   []string   `yaml:"bullets"`
	Numbered  []string   `yaml:"numbered"`
	Table     *Table     `yaml:"table"`
	Code      *string    `yaml:"code"`
	PageBreak bool       `yaml:"page_break"`
	Spacer    int        `yaml:"spacer"`
}

// Kind names the single field the block sets, or "" when it sets none.
// With more than one field set the first in declaration order wins; Validate
// reports that case.
func (b *Block) Kind() string {
	kinds := b.kinds()
	if len(kinds) == 0 {
		return ""
	}
	return kinds[0]
}

func (b *Block) kinds() []string {
	var kinds []string
	if b.Heading != nil {
		kinds = append(kinds, "heading")
	}
	if b.Paragraph != nil {
		kinds = append(kinds, "paragraph")
	}
	if b.Bullets != nil {
		kinds = append(kinds, "bullets")
	}
	if b.Numbered != nil {
		kinds = append(kinds, "numbered")
	}
	if b.Table != nil {
		kinds = append(kinds, "table")
	}
	if b.Code != nil {
		kinds = append(kinds, "code")
	}
	if b.PageBreak {
		kinds = append(kinds, "page_break")
	}
	if b.Spacer != 0 {
		kinds = append(kinds, "spacer")
	}
	return kinds
}

// Heading is a heading block. A bare string is a level 1 heading.
type Heading struct {
	Text  string `yaml:"text"`
	Level int    `yaml:"level"`
	Align string `yaml:"align"`
}

// UnmarshalYAML accepts a string or a mapping
func (h *Heading) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		h.Text = value.Value
		h.Level = 1
		return nil
	}
	type plain Heading
	p := plain{Level: 1}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*h = Heading(p)
	return nil
}

// Paragraph is a paragraph block. A bare string is a single plain run.
type Paragraph struct {
	Runs       []Run   `yaml:"runs"`
	Align      string  `yaml:"align"`
	SpaceAfter float64 `yaml:"space_after"`
}

// UnmarshalYAML accepts a string or a mapping
func (p *Paragraph) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.Runs = []Run{{Text: value.Value}}
		return nil
	}
	type plain Paragraph
	var raw plain
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*p = Paragraph(raw)
	return nil
}

// Run is a styled span. A bare string is an unstyled run.
type Run struct {
	Text   string  `yaml:"text"`
	Bold   bool    `yaml:"bold"`
	Italic bool    `yaml:"italic"`
	Size   float64 `yaml:"size"`
	Font   string  `yaml:"font"`
	Color  string  `yaml:"color"`
}

// UnmarshalYAML accepts a string or a mapping
func (r *Run) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.Text = value.Value
		return nil
	}
	type plain Run
	var raw plain
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*r = Run(raw)
	return nil
}

// Table is a table block
type Table struct {
	Header []string   `yaml:"header"`
	Rows   [][]string `yaml:"rows"`
	Style  string     `yaml:"style"`
}

// Load decodes an outline from r. Unknown keys are rejected.
func Load(r io.Reader) (*Outline, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var o Outline
	if err := dec.Decode(&o); err != nil {
		if errors.Is(err, io.EOF) {
			return &o, nil
		}
		return nil, fmt.Errorf("failed to parse outline: %w", err)
	}
	return &o, nil
}

// LoadFile decodes the outline stored at path.
func LoadFile(path string) (*Outline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, docwriter.NewDocumentError("open", path, err)
	}
	defer f.Close()

	o, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// Validate checks the outline without building it and reports every problem
// found as a *docwriter.ValidationError.
func (o *Outline) Validate() error {
	verr := &docwriter.ValidationError{}

	for i := range o.Blocks {
		b := &o.Blocks[i]
		field := fmt.Sprintf("blocks[%d]", i)

		kinds := b.kinds()
		switch len(kinds) {
		case 0:
			verr.Add(field, "block sets none of heading, paragraph, bullets, numbered, table, code, page_break, spacer")
			continue
		case 1:
		default:
			verr.Add(field, "block sets more than one kind: %v", kinds)
			continue
		}

		field += "." + kinds[0]
		switch {
		case b.Heading != nil:
			if b.Heading.Text == "" {
				verr.Add(field+".text", "must not be empty")
			}
			if b.Heading.Level < 0 {
				verr.Add(field+".level", "must not be negative, got %d", b.Heading.Level)
			}
			validateAlign(verr, field+".align", b.Heading.Align)
		case b.Paragraph != nil:
			validateAlign(verr, field+".align", b.Paragraph.Align)
			if b.Paragraph.SpaceAfter < 0 {
				verr.Add(field+".space_after", "must not be negative")
			}
			for j, r := range b.Paragraph.Runs {
				rf := fmt.Sprintf("%s.runs[%d]", field, j)
				if r.Text == "" {
					verr.Add(rf+".text", "must not be empty")
				}
				if r.Size < 0 {
					verr.Add(rf+".size", "must not be negative")
				}
				if r.Color != "" {
					if _, err := docwriter.ParseColor(r.Color); err != nil {
						verr.Add(rf+".color", "%v", err)
					}
				}
			}
		case b.Bullets != nil || b.Numbered != nil:
			items := b.Bullets
			if b.Numbered != nil {
				items = b.Numbered
			}
			if len(items) == 0 {
				verr.Add(field, "must list at least one item")
			}
			for j, item := range items {
				if item == "" {
					verr.Add(fmt.Sprintf("%s[%d]", field, j), "must not be empty")
				}
			}
		case b.Table != nil:
			if len(b.Table.Header) == 0 {
				verr.Add(field+".header", "must not be empty")
			}
			for j, row := range b.Table.Rows {
				if len(row) != len(b.Table.Header) {
					verr.Add(fmt.Sprintf("%s.rows[%d]", field, j), "has %d cells, want %d", len(row), len(b.Table.Header))
				}
			}
		case b.Spacer < 0:
			verr.Add(field, "must not be negative")
		}
	}

	return verr.Err()
}

func validateAlign(verr *docwriter.ValidationError, field, align string) {
	if _, err := docwriter.ParseAlignment(align); err != nil {
		verr.Add(field, "%v", err)
	}
}
