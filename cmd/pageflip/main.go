// Command pageflip simulates, renders and exports page flip books without a
// display.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/pageflip/cmd/pageflip/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
