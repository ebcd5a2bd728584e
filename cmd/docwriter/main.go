// Command docwriter builds DOCX and HTML documents from YAML outlines and
// Markdown files.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
)

var version = "dev"

// Global carries state shared by every command.
type Global struct {
	Config *docwriter.Config
	Logger *docwriter.Logger
	Stdout io.Writer
}

// CLI definition and global flags
type CLI struct {
	EnvFile   []string         `name:"env-file" help:".env files loaded before reading DOCWRITER_* settings" default:".env"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log format (auto, text, json)" enum:"auto,text,json" default:"auto"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build a document from an outline or Markdown file"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild a document whenever its source changes"`
	Inspect InspectCmd `cmd:"" help:"List the blocks of a DOCX file"`
}

func newParser(cli *CLI, stdout, stderr io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("docwriter"),
		kong.Description("Assemble DOCX and HTML documents from outlines and Markdown."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version},
	)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "docwriter: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := newParser(&cli, stdout, stderr)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	g, err := cli.setup(stdout, stderr)
	if err != nil {
		return err
	}
	return kctx.Run(g)
}

// setup loads configuration from .env files and the environment and
// installs the process logger.
func (c *CLI) setup(stdout, stderr io.Writer) (*Global, error) {
	if err := docwriter.LoadEnvFiles(c.EnvFile...); err != nil {
		return nil, err
	}
	cfg := docwriter.ConfigFromEnvironment()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level := docwriter.ParseLogLevel(cfg.LogLevel)
	if c.Verbose {
		level = docwriter.LogDebug
	}
	logger := newLogger(stderr, c.LogFormat, level)
	docwriter.SetLogger(logger)
	slog.SetDefault(logger.Slog())

	return &Global{Config: cfg, Logger: logger, Stdout: stdout}, nil
}

// newLogger picks a handler for format. auto writes text to terminals and
// JSON everywhere else.
func newLogger(w io.Writer, format string, level docwriter.LogLevel) *docwriter.Logger {
	if format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = "text"
		}
	}

	opts := &slog.HandlerOptions{Level: slogLevel(level)}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return docwriter.NewLoggerFromSlog(slog.New(handler))
}

func slogLevel(level docwriter.LogLevel) slog.Level {
	switch level {
	case docwriter.LogDebug:
		return slog.LevelDebug
	case docwriter.LogWarn:
		return slog.LevelWarn
	case docwriter.LogError:
		return slog.LevelError
	case docwriter.LogOff:
		return slog.LevelError + 8
	default:
		return slog.LevelInfo
	}
}
