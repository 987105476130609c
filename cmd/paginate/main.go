// Command paginate lays out a document once, inserts page breaks where the
// pages overflow and writes the result in any export format.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dgallion1/docpager/internal/editor"
	"github.com/dgallion1/docpager/internal/export"
	"github.com/dgallion1/docpager/internal/layout"
	"github.com/dgallion1/docpager/internal/paginate"
	"github.com/dgallion1/docpager/internal/parser"
	"github.com/dgallion1/docpager/internal/schema"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "paginate:", err)
		}
		os.Exit(2)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("paginate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		input     = fs.String("input", "", "document to paginate (txt, md, csv, html, pdf, docx, json)")
		output    = fs.String("output", "", "output file; the extension picks the format (default stdout)")
		format    = fs.String("format", "", "output format when writing to stdout (default html)")
		width     = fs.Float64("width", layout.DefaultOptions().Width, "viewport width in px")
		threshold = fs.Float64("threshold", paginate.DefaultOptions().PageHeightThreshold, "page height in px")
		verbose   = fs.Bool("verbose", false, "log pass details")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		fs.Usage()
		return errors.New("-input is required")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	s := schema.New()
	p, err := parser.ForFile(*input, s)
	if err != nil {
		return err
	}
	f, err := os.Open(*input)
	if err != nil {
		return err
	}
	parsed, err := p.Parse(f, *input)
	f.Close()
	if err != nil {
		return fmt.Errorf("parse %s: %w", *input, err)
	}

	opts := layout.DefaultOptions()
	opts.Width = *width
	engine, err := layout.NewEngine(opts)
	if err != nil {
		return err
	}
	ed := editor.New(s, parsed.Doc, engine)

	popts := paginate.DefaultOptions()
	popts.PageHeightThreshold = *threshold
	ctrl := paginate.NewController(ed,
		paginate.WithOptions(popts),
		paginate.WithLogger(log),
		paginate.WithPageContext(paginate.BeginSession(1)),
	)
	defer ctrl.Close()

	passes, pages, err := paginateAll(ctrl, log)
	if err != nil {
		return err
	}
	log.Info("pagination done",
		"passes", passes,
		"pages", pages,
		"height", ed.RenderedHeight(),
		"next_page", ctrl.PageContext().Peek(),
	)

	out := stdout
	outFormat := *format
	if *output != "" {
		outFormat = export.FormatFromFilename(*output)
		of, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer of.Close()
		out = of
	}
	if outFormat == "" {
		outFormat = "html"
	}
	if err := export.Write(out, outFormat, ed.Document(), parsed.Title); err != nil {
		return err
	}
	if c, ok := out.(io.Closer); ok && out != stdout {
		return c.Close()
	}
	return nil
}

// maxPasses bounds the loop for documents that never settle.
const maxPasses = 8

// paginateAll runs passes until one leaves the document unchanged. It
// returns the number of passes and every page number inserted.
func paginateAll(ctrl *paginate.Controller, log *slog.Logger) (int, []int, error) {
	var pages []int
	for n := 1; n <= maxPasses; n++ {
		res := ctrl.RunPass()
		switch res.Action {
		case paginate.ActionAborted:
			return n, pages, fmt.Errorf("pass %d: %w", n, res.Err)
		case paginate.ActionNone:
			return n, pages, nil
		}
		pages = append(pages, res.Pages...)
		log.Debug("pagination pass", "pass", n, "action", res.Action, "height", res.Height,
			"duration", time.Duration(res.DurationMs*float64(time.Millisecond)))
	}
	return maxPasses, pages, nil
}
