package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-drift/pageflip/pkg/render"
	"github.com/go-drift/pageflip/pkg/render/pdf"
)

func init() {
	RegisterCommand(&Command{
		Name:  "export",
		Short: "Export the frames of a book as a PDF flipbook",
		Long: `Play a list of actions on a book and export the drawn frames as a PDF,
one page per frame. Flat pages are labelled with their name or index.

  --out FILE          Output file (default: book.pdf)
  --every N           Keep every Nth frame (default: 1)
  --title TITLE       Document title (default: the output file name)

` + bookFlagsUsage,
		Usage: "pageflip export [--out FILE] [--every N] [flags] [actions...]",
		Run:   runExport,
	})
}

func runExport(args []string) error {
	out := "book.pdf"
	every := 1
	title := ""
	f, err := parseBookFlags(args, func(flag string, value func() (string, error)) (bool, error) {
		switch flag {
		case "--out":
			v, err := value()
			out = v
			return true, err
		case "--title":
			v, err := value()
			title = v
			return true, err
		case "--every":
			n, err := intFlag(flag, value)
			if err == nil && n < 1 {
				err = fmt.Errorf("--every must be at least 1")
			}
			every = n
			return true, err
		}
		return false, nil
	})
	if err != nil {
		return err
	}
	actions, err := parseActions(f.actions)
	if err != nil {
		return err
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
	}

	doc := pdf.New(f.blockWidth, f.blockHeight, pdf.Options{
		Title:  title,
		Labels: true,
	})
	frame := 0
	sample := render.DrawerFunc(func(sc *render.Scene) error {
		defer func() { frame++ }()
		if frame%every != 0 {
			return nil
		}
		return doc.Draw(sc)
	})
	s, err := openSession(f, global.configDir, sample, nil)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.run(actions); err != nil {
		return err
	}
	if err := doc.Save(out); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(stdout, "wrote %d pages to %s\n", doc.Pages(), out)
	return nil
}
