package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/pageflip/pkg/geometry"
	"github.com/go-drift/pageflip/pkg/render"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// UpdateSnapshotsEnv names the environment variable that makes MatchesFile
// rewrite golden files instead of comparing against them.
const UpdateSnapshotsEnv = "PAGEFLIP_UPDATE_SNAPSHOTS"

// Snapshot captures the book state and the geometry of one frame. Numbers
// are rounded to two decimals so golden files survive float noise.
type Snapshot struct {
	State       string       `json:"state"`
	Page        int          `json:"page"`
	Orientation string       `json:"orientation"`
	Rect        [4]float64   `json:"rect"`
	Pages       []PageNode   `json:"pages,omitempty"`
	Shadow      *ShadowNode  `json:"shadow,omitempty"`
	PageRect    [][2]float64 `json:"pageRect,omitempty"`
}

// PageNode is one page of the frame.
type PageNode struct {
	Slot      string       `json:"slot"`
	Index     int          `json:"index"`
	Name      string       `json:"name,omitempty"`
	Density   string       `json:"density"`
	Side      string       `json:"side"`
	Origin    [2]float64   `json:"origin"`
	Angle     float64      `json:"angle,omitempty"`
	HardAngle float64      `json:"hardAngle,omitempty"`
	Outline   [][2]float64 `json:"outline,omitempty"`
}

// ShadowNode is the fold shadow of the frame.
type ShadowNode struct {
	Pos     [2]float64 `json:"pos"`
	Angle   float64    `json:"angle"`
	Width   float64    `json:"width"`
	Opacity float64    `json:"opacity"`
}

// CaptureSnapshot captures the app state and the scene of the last frame.
// A frame is pumped first if none was drawn yet; its error is returned.
func (t *BookTester) CaptureSnapshot() (*Snapshot, error) {
	if t.scene == nil {
		if err := t.Pump(); err != nil {
			return nil, fmt.Errorf("capture snapshot: %w", err)
		}
	}
	snap := &Snapshot{
		State:       t.app.State().String(),
		Page:        t.app.CurrentPageIndex(),
		Orientation: t.app.Orientation().String(),
	}
	if t.scene != nil {
		captureScene(snap, t.scene)
	}
	return snap, nil
}

// SnapshotScene captures a scene on its own, without app state.
func SnapshotScene(s *render.Scene) *Snapshot {
	snap := &Snapshot{Orientation: s.Orientation.String()}
	captureScene(snap, s)
	return snap
}

func captureScene(snap *Snapshot, s *render.Scene) {
	r := s.Rect
	snap.Rect = [4]float64{round2(r.Left), round2(r.Top), round2(r.Width), round2(r.Height)}

	slots := []struct {
		name string
		view *render.PageView
	}{
		{"left", s.Left},
		{"right", s.Right},
		{"bottom", s.Bottom},
		{"flipping", s.Flipping},
	}
	for _, slot := range slots {
		v := slot.view
		if v == nil {
			continue
		}
		snap.Pages = append(snap.Pages, PageNode{
			Slot:      slot.name,
			Index:     v.Index,
			Name:      v.Name,
			Density:   v.Density.String(),
			Side:      v.Side.String(),
			Origin:    point2(v.Origin),
			Angle:     round2(v.Angle),
			HardAngle: round2(v.HardAngle),
			Outline:   points2(v.Outline),
		})
	}

	if sh := s.Shadow; sh != nil {
		snap.Shadow = &ShadowNode{
			Pos:     point2(sh.Pos),
			Angle:   round2(sh.Angle),
			Width:   round2(sh.Width),
			Opacity: round2(sh.Opacity),
		}
	}
	if pr := s.PageRect; pr != nil {
		snap.PageRect = points2([]geometry.Point{pr.TopLeft, pr.TopRight, pr.BottomRight, pr.BottomLeft})
	}
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When
// PAGEFLIP_UPDATE_SNAPSHOTS=1 is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between this snapshot and other. Returns
// empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

// --- Internal ---

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		// Avoid -0 in golden files.
		return 0
	}
	return r
}

func point2(p geometry.Point) [2]float64 {
	return [2]float64{round2(p.X), round2(p.Y)}
}

func points2(ps []geometry.Point) [][2]float64 {
	if len(ps) == 0 {
		return nil
	}
	out := make([][2]float64, len(ps))
	for i, p := range ps {
		out[i] = point2(p)
	}
	return out
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	maxLen := len(expectedLines)
	if len(actualLines) > maxLen {
		maxLen = len(actualLines)
	}

	for i := 0; i < maxLen; i++ {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}

	return buf.String()
}
