package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/go-drift/pageflip/pkg/render/raster"
)

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Write every frame of a book as PNG images",
		Long: `Play a list of actions on a book and write every drawn frame to a
directory as frame-0000.png, frame-0001.png and so on.

  --out DIR           Directory for the frames (default: frames)

` + bookFlagsUsage,
		Usage: "pageflip render [--out DIR] [flags] [actions...]",
		Run:   runRender,
	})
}

func runRender(args []string) error {
	out := "frames"
	f, err := parseBookFlags(args, func(flag string, value func() (string, error)) (bool, error) {
		if flag != "--out" {
			return false, nil
		}
		v, err := value()
		out = v
		return true, err
	})
	if err != nil {
		return err
	}
	actions, err := parseActions(f.actions)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	d := raster.NewDrawer(int(math.Ceil(f.blockWidth)), int(math.Ceil(f.blockHeight)))
	d.OnFrame = raster.PNGSequence(out)
	s, err := openSession(f, global.configDir, d, nil)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.run(actions); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %d frames to %s\n", d.Frames(), out)
	return nil
}
