// Command pdfpage renders one page of a PDF to PNG the way the kiosk does.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"github.com/pyhub-apps/mediakiosk/pkg/logging"
	"github.com/pyhub-apps/mediakiosk/pkg/pdf"
	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

func main() {
	var (
		page   = flag.Int("page", 1, "Page number, starting at 1.")
		width  = flag.Int("width", 595, "Target width in pixels.")
		height = flag.Int("height", 842, "Target height in pixels.")
		thumb  = flag.Bool("thumb", false, "Render the browser thumbnail instead of a page.")
		text   = flag.Bool("text", false, "Print the page text.")
		out    = flag.String("out", "page.png", "Output PNG file.")
		level  = flag.String("log-level", "warn", "Log level.")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pdfpage [flags] <pdf_file>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	if err := logging.Init(logging.Config{Level: *level, Format: "console"}); err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := run(path, *page-1, *width, *height, *thumb, *text, *out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, index, width, height int, thumb, text bool, out string) error {
	var (
		r   *raster.Raster
		err error
	)
	if thumb {
		r, err = pdf.RenderThumbnail(path, width, height)
		if err != nil {
			return err
		}
	} else {
		doc, err := pdf.Open(path)
		if err != nil {
			return err
		}
		defer doc.Close()

		meta := doc.GetMetadata()
		fmt.Printf("%s: %d pages", path, doc.PageCount())
		if meta.Title != "" {
			fmt.Printf(", title %q", meta.Title)
		}
		fmt.Println()

		if text {
			p, err := doc.GetPage(index)
			if err != nil {
				return err
			}
			fmt.Printf("=== Page %d (%.0f x %.0f) ===\n", p.GetPageNumber(), p.GetWidth(), p.GetHeight())
			fmt.Println(p.ExtractText())
		}

		r, err = pdf.RenderPage(doc, index, width, height)
		if err != nil {
			return err
		}
	}
	defer r.Release()

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := png.Encode(f, r.RGBA()); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	fmt.Printf("wrote %s (%dx%d)\n", out, r.Width(), r.Height())
	return nil
}
