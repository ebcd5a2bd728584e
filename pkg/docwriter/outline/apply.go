package outline

import (
	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
)

// Apply validates the outline and replays it onto b in order. A title
// becomes a level 0 heading ahead of the blocks. Builder errors are wrapped
// with the index and kind of the failing block; blocks before it remain
// applied.
func (o *Outline) Apply(b *docwriter.Builder) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if err := b.SetMetadata(docwriter.Metadata{
		Title:    o.Title,
		Subject:  o.Metadata.Subject,
		Author:   o.Metadata.Author,
		Language: o.Metadata.Language,
	}); err != nil {
		return docwriter.WithContext(err, "applying outline", map[string]interface{}{"field": "metadata"})
	}

	if o.Title != "" {
		if _, err := b.AddHeading(o.Title, 0); err != nil {
			return docwriter.WithContext(err, "applying outline", map[string]interface{}{"field": "title"})
		}
	}

	for i := range o.Blocks {
		blk := &o.Blocks[i]
		if err := applyBlock(b, blk); err != nil {
			return docwriter.WithContext(err, "applying outline", map[string]interface{}{
				"block": i,
				"kind":  blk.Kind(),
			})
		}
	}
	return nil
}

// Build applies the outline to a new builder created with opts and returns
// the finished document.
func (o *Outline) Build(opts ...docwriter.Option) (*docwriter.Document, error) {
	b := docwriter.NewBuilder(opts...)
	if err := o.Apply(b); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

func applyBlock(b *docwriter.Builder, blk *Block) error {
	switch {
	case blk.Heading != nil:
		ref, err := b.AddHeading(blk.Heading.Text, blk.Heading.Level)
		if err != nil {
			return err
		}
		return setAlign(b, ref, blk.Heading.Align)

	case blk.Paragraph != nil:
		runs := make([]docwriter.Run, 0, len(blk.Paragraph.Runs))
		for _, r := range blk.Paragraph.Runs {
			run, err := r.toRun()
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}
		ref, err := b.AddParagraph(runs...)
		if err != nil {
			return err
		}
		if err := setAlign(b, ref, blk.Paragraph.Align); err != nil {
			return err
		}
		if blk.Paragraph.SpaceAfter > 0 {
			return b.SetSpaceAfter(ref, blk.Paragraph.SpaceAfter)
		}
		return nil

	case blk.Bullets != nil:
		for _, item := range blk.Bullets {
			if err := b.AddListItem(item); err != nil {
				return err
			}
		}
		return nil

	case blk.Numbered != nil:
		for _, item := range blk.Numbered {
			if err := b.AddNumberedItem(item); err != nil {
				return err
			}
		}
		return nil

	case blk.Table != nil:
		ref, err := b.AddTable(blk.Table.Header, blk.Table.Rows)
		if err != nil {
			return err
		}
		if blk.Table.Style != "" {
			return b.SetTableStyle(ref, blk.Table.Style)
		}
		return nil

	case blk.Code != nil:
		_, err := b.AddCodeBlock(*blk.Code)
		return err

	case blk.PageBreak:
		return b.AddPageBreak()

	default:
		return b.AddSpacer(blk.Spacer)
	}
}

func setAlign(b *docwriter.Builder, ref docwriter.AlignableRef, align string) error {
	if align == "" {
		return nil
	}
	a, err := docwriter.ParseAlignment(align)
	if err != nil {
		return err
	}
	return b.SetAlignment(ref, a)
}

func (r Run) toRun() (docwriter.Run, error) {
	run := docwriter.Run{
		Text:     r.Text,
		Bold:     r.Bold,
		Italic:   r.Italic,
		SizePt:   r.Size,
		FontName: r.Font,
	}
	if r.Color != "" {
		c, err := docwriter.ParseColor(r.Color)
		if err != nil {
			return run, err
		}
		run.Color = &c
	}
	return run, nil
}
