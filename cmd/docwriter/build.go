package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
	"github.com/benjaminschreck/go-docwriter/pkg/docwriter/docx"
	"github.com/benjaminschreck/go-docwriter/pkg/docwriter/html"
	"github.com/benjaminschreck/go-docwriter/pkg/docwriter/markdown"
	"github.com/benjaminschreck/go-docwriter/pkg/docwriter/metrics"
	"github.com/benjaminschreck/go-docwriter/pkg/docwriter/outline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Input       string `arg:"" help:"Outline (.yaml, .yml) or Markdown (.md, .markdown) source"`
	Output      string `short:"o" required:"" help:"Output file"`
	Format      string `short:"f" help:"Output format (docx, html); defaults to the output file extension"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path"`
}

func (c *BuildCmd) Run(g *Global) error {
	format, err := resolveFormat(c.Format, c.Output)
	if err != nil {
		return err
	}

	rec := metrics.NewPrometheusRecorder(nil)
	errs := docwriter.NewMultiError()
	_, err = buildFile(g, c.Input, c.Output, format, rec)
	errs.Add(err)

	// metrics are written even when the build failed
	if c.MetricsFile != "" {
		if err := rec.WriteTextfile(c.MetricsFile); err != nil {
			errs.Add(fmt.Errorf("write metrics: %w", err))
		}
	}
	return errs.Err()
}

// buildFile loads input, serializes it as format to output and records the
// serialization on rec.
func buildFile(g *Global, input, output, format string, rec metrics.Recorder) (*docwriter.Document, error) {
	opts := []docwriter.Option{
		docwriter.WithConfig(g.Config),
		docwriter.WithLogger(g.Logger),
		docwriter.WithRecorder(rec),
	}

	doc, err := loadDocument(input, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input, err)
	}

	s, err := serializerFor(format, g)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = docwriter.Save(doc, output, s)
	rec.ObserveSerialize(format, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	g.Logger.Info("Document written",
		"input", input,
		"output", output,
		"format", format,
		"blocks", doc.Len())
	return doc, nil
}

func loadDocument(input string, opts []docwriter.Option) (*docwriter.Document, error) {
	switch strings.ToLower(filepath.Ext(input)) {
	case ".yaml", ".yml":
		o, err := outline.LoadFile(input)
		if err != nil {
			return nil, err
		}
		return o.Build(opts...)
	case ".md", ".markdown":
		b := docwriter.NewBuilder(opts...)
		if err := markdown.ImportFile(b, input); err != nil {
			return nil, err
		}
		return b.Build(), nil
	default:
		return nil, fmt.Errorf("unsupported input type %q: want .yaml, .yml, .md or .markdown", filepath.Ext(input))
	}
}

// resolveFormat returns the explicit format, or the one implied by the
// output file extension.
func resolveFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(output), ".")
	}
	switch strings.ToLower(format) {
	case docx.Format:
		return docx.Format, nil
	case html.Format, "htm":
		return html.Format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q: want docx or html", format)
	}
}

func serializerFor(format string, g *Global) (docwriter.Serializer, error) {
	switch format {
	case docx.Format:
		return docx.New(docx.WithConfig(g.Config), docx.WithLogger(g.Logger)), nil
	case html.Format:
		return html.New(html.WithConfig(g.Config), html.WithLogger(g.Logger)), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
