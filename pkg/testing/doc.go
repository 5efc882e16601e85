// Package testing drives a headless page flip book for tests.
//
// # Quick Start
//
// Create a tester, send gestures, and let the animation play out:
//
//	func TestTurn(t *testing.T) {
//	    tester := pftest.NewBookTesterWithT(t, settings, book.PagesFromNames(names))
//
//	    // Click near the outer edge of the right page
//	    tester.TapAt(geometry.Pt(680, 150))
//	    if err := tester.PumpAndSettle(2 * time.Second); err != nil {
//	        t.Fatal(err)
//	    }
//
//	    if got := tester.App().CurrentPageIndex(); got != 2 {
//	        t.Errorf("page = %d, want 2", got)
//	    }
//	}
//
// # Snapshot Testing
//
// Capture the geometry of the last frame and compare it with a golden file:
//
//	snapshot, err := tester.CaptureSnapshot()
//	if err != nil {
//	    t.Fatal(err)
//	}
//	snapshot.MatchesFile(t, "testdata/half_turn.snapshot.json")
//
// Update snapshots with:
//
//	PAGEFLIP_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Animation Testing
//
// The tester installs a [FakeClock] as the animation clock, so frames are
// chosen by fake time only:
//
//	tester.Clock().Advance(100 * time.Millisecond)
//	tester.Pump()
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import pftest "github.com/go-drift/pageflip/pkg/testing"
package testing
