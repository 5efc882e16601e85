package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/pageflip/pkg/flip"
	"github.com/go-drift/pageflip/pkg/geometry"
)

// runCLI runs args with a fresh config directory and returns what the
// command printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevGlobal := stdout, global
	stdout = &buf
	t.Cleanup(func() { stdout, global = prevOut, prevGlobal })

	args = append([]string{"--config", t.TempDir()}, args...)
	err := run(args)
	return buf.String(), err
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		raw     string
		want    action
		wantErr bool
	}{
		{"next", action{kind: actionNext, corner: flip.Top}, false},
		{"next:bottom", action{kind: actionNext, corner: flip.Bottom}, false},
		{"prev:top", action{kind: actionPrev, corner: flip.Top}, false},
		{"flip:4", action{kind: actionFlip, page: 4}, false},
		{"flip:4:bottom", action{kind: actionFlip, page: 4, corner: flip.Bottom}, false},
		{"turn:3", action{kind: actionTurn, page: 3}, false},
		{"tap:680,150", action{kind: actionTap, pos: geometry.Pt(680, 150)}, false},
		{"hover:690, 110", action{kind: actionHover, pos: geometry.Pt(690, 110)}, false},
		{"drag:650,150,-400,0", action{kind: actionDrag, pos: geometry.Pt(650, 150), delta: geometry.Pt(-400, 0)}, false},
		{"swipe:650,300,-200,0", action{kind: actionSwipe, pos: geometry.Pt(650, 300), delta: geometry.Pt(-200, 0)}, false},
		{"resize:500,600", action{kind: actionResize, delta: geometry.Pt(500, 600)}, false},
		{"wait:250", action{kind: actionWait, wait: 250 * time.Millisecond}, false},

		{"next:left", action{}, true},
		{"flip", action{}, true},
		{"flip:-1", action{}, true},
		{"turn:2:bottom", action{}, true},
		{"tap:1", action{}, true},
		{"drag:1,2,3", action{}, true},
		{"tap:a,b", action{}, true},
		{"resize:0,600", action{}, true},
		{"wait:soon", action{}, true},
		{"jump", action{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseAction(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAction(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			tt.want.raw = tt.raw
			if got != tt.want {
				t.Errorf("parseAction(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseBookFlags(t *testing.T) {
	f, err := parseBookFlags([]string{"--count", "4", "next", "--width", "1000", "--fps", "30", "prev"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.count != 4 || f.blockWidth != 1000 || f.blockHeight != defaultBlockHeight || f.fps != 30 {
		t.Errorf("flags = %+v", f)
	}
	if strings.Join(f.actions, " ") != "next prev" {
		t.Errorf("actions = %v", f.actions)
	}

	for _, args := range [][]string{
		{"--count"},
		{"--count", "0"},
		{"--width", "-5"},
		{"--fps", "fast"},
		{"--bogus"},
	} {
		if _, err := parseBookFlags(args, nil); err == nil {
			t.Errorf("parseBookFlags(%v) succeeded", args)
		}
	}
}

func TestRunVersionAndHelp(t *testing.T) {
	out, err := runCLI(t, "--version")
	if err != nil || !strings.Contains(out, "pageflip version "+Version) {
		t.Errorf("version output = %q, err = %v", out, err)
	}
	out, err = runCLI(t, "simulate", "--help")
	if err != nil || !strings.Contains(out, "pageflip simulate") {
		t.Errorf("help output = %q, err = %v", out, err)
	}
	if _, err := runCLI(t, "nope"); err == nil {
		t.Error("unknown command succeeded")
	}
}

func TestSimulate(t *testing.T) {
	tests := []struct {
		name    string
		actions []string
		want    string
		events  []string
	}{
		{"loads", nil, "page 1 of 8, read, landscape", []string{"init", "page=0 mode=landscape"}},
		{"next", []string{"next"}, "page 3 of 8, read, landscape", []string{"flipping", "flip"}},
		{"next and back", []string{"next", "prev:bottom"}, "page 1 of 8, read, landscape", nil},
		{"flip to page", []string{"flip:5"}, "page 5 of 8, read, landscape", nil},
		{"turn without animation", []string{"turn:6"}, "page 7 of 8, read, landscape", nil},
		{"click", []string{"tap:680,150"}, "page 3 of 8, read, landscape", nil},
		{"drag", []string{"drag:680,130,-400,0"}, "page 3 of 8, read, landscape", []string{"user_fold"}},
		{"resize to portrait", []string{"resize:500,600"}, "portrait", []string{"changeOrientation"}},
		{"wait", []string{"wait:100"}, "page 1 of 8, read, landscape", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, append([]string{"simulate"}, tt.actions...)...)
			if err != nil {
				t.Fatalf("simulate: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
			for _, e := range tt.events {
				if !strings.Contains(out, e) {
					t.Errorf("output missing event %q:\n%s", e, out)
				}
			}
		})
	}
}

func TestSimulateFromHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.html")
	html := `<div class="page" data-density="hard" id="cover"></div>
<div class="page"></div><div class="page"></div><div class="page"></div>`
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "simulate", "--pages", path, "next")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "page 3 of 4") {
		t.Errorf("output:\n%s", out)
	}

	if _, err := runCLI(t, "simulate", "--pages", filepath.Join(dir, "missing.html")); err == nil {
		t.Error("missing pages file succeeded")
	}
}

func TestSimulateReadsConfig(t *testing.T) {
	dir := t.TempDir()
	yaml := "width: 200\nheight: 300\nshowCover: true\n"
	if err := os.WriteFile(filepath.Join(dir, "pageflip.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "--config", dir, "simulate", "--count", "5", "next")
	if err != nil {
		t.Fatal(err)
	}
	// With a cover the first spread holds only page 0.
	if !strings.Contains(out, "page 2 of 5") {
		t.Errorf("output:\n%s", out)
	}

	if err := os.WriteFile(filepath.Join(dir, "pageflip.yaml"), []byte("width: 200\nbogus: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "--config", dir, "simulate"); err == nil {
		t.Error("unknown config key accepted")
	}
}

func TestSimulateBadAction(t *testing.T) {
	if _, err := runCLI(t, "simulate", "jump"); err == nil {
		t.Error("unknown action accepted")
	}
	if _, err := runCLI(t, "simulate", "flip:20"); err == nil {
		t.Error("out of range page accepted")
	}
}

func TestRenderWritesFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	out, err := runCLI(t, "render", "--out", dir, "--width", "400", "--height", "300",
		"--page-width", "150", "--page-height", "200", "next")
	if err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) < 2 {
		t.Fatalf("wrote %d frames, want an animation", len(entries))
	}
	if entries[0].Name() != "frame-0000.png" {
		t.Errorf("first frame = %s", entries[0].Name())
	}
	if !strings.Contains(out, "wrote ") {
		t.Errorf("output = %q", out)
	}
}

func TestExportWritesPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turn.pdf")
	out, err := runCLI(t, "export", "--out", path, "--every", "5", "next")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("not a PDF: %q", data[:min(len(data), 16)])
	}
	if !strings.Contains(out, path) {
		t.Errorf("output = %q", out)
	}

	if _, err := runCLI(t, "export", "--every", "0"); err == nil {
		t.Error("--every 0 accepted")
	}
}
