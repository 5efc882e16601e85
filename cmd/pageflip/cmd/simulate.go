package cmd

import (
	"fmt"

	"github.com/go-drift/pageflip/pkg/render"
)

func init() {
	RegisterCommand(&Command{
		Name:  "simulate",
		Short: "Play actions on a book and print its events",
		Long: `Play a list of actions on a book without drawing it and print every event
the book fires, stamped with the virtual time it fired at.

` + bookFlagsUsage,
		Usage: "pageflip simulate [flags] [actions...]",
		Run:   runSimulate,
	})
}

func runSimulate(args []string) error {
	f, err := parseBookFlags(args, nil)
	if err != nil {
		return err
	}
	actions, err := parseActions(f.actions)
	if err != nil {
		return err
	}

	discard := render.DrawerFunc(func(*render.Scene) error { return nil })
	s, err := openSession(f, global.configDir, discard, stdout)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.run(actions); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "page %d of %d, %s, %s\n",
		s.app.CurrentPageIndex()+1, s.app.PageCount(), s.app.State(), s.app.Orientation())
	return nil
}
