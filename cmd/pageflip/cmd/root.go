// Package cmd implements the pageflip CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (simulate, render, export).
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flerrors "github.com/go-drift/pageflip/pkg/errors"
	"github.com/go-drift/pageflip/pkg/flip"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	Run   func(args []string) error
}

var rootCmd = struct {
	Long        string
	Usage       string
	SubCommands []*Command
}{
	Long: `pageflip turns the pages of a book without a display.

Pages come from an HTML file (elements with class "page") or are generated.
Settings are read from pageflip.yaml in the config directory when present.

Use "pageflip <command> --help" for more information about a command.`,
	Usage: "pageflip <command> [flags] [actions...]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// global holds the flags accepted before or after the command name.
var global = struct {
	verbose   bool
	configDir string
}{configDir: "."}

// stdout is where commands print results. Tests replace it.
var stdout io.Writer = os.Stdout

// Execute runs the CLI with the process arguments.
func Execute() error {
	return run(os.Args[1:])
}

func run(args []string) error {
	// Handle no arguments
	if len(args) == 0 {
		printHelp()
		return nil
	}

	// Handle global flags and extract --config and --verbose
	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp()
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version", "version":
			if len(filteredArgs) == 0 {
				fmt.Fprintf(stdout, "pageflip version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--verbose":
			global.verbose = true
		case "--config":
			if i+1 >= len(args) {
				return fmt.Errorf("--config requires a directory path")
			}
			global.configDir = args[i+1]
			i++
		default:
			if strings.HasPrefix(arg, "--config=") {
				global.configDir = strings.TrimPrefix(arg, "--config=")
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp()
		return nil
	}

	setupLogging(global.verbose)

	// Find and execute the command
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp()
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	// Check for help flag on subcommand
	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

// setupLogging sends engine logs and reported errors to stderr. Verbose
// output includes debug records and stack traces.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	flip.SetLogger(logger)
	flerrors.SetHandler(&flerrors.LogHandler{Logger: logger, Verbose: verbose})
}

func printHelp() {
	fmt.Fprintln(stdout, rootCmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", rootCmd.Usage)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Commands:")
	for _, sub := range rootCmd.SubCommands {
		fmt.Fprintf(stdout, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Flags:")
	fmt.Fprintln(stdout, "  -h, --help           Show help for a command")
	fmt.Fprintln(stdout, "  -v, --version        Show version information")
	fmt.Fprintln(stdout, "  --config DIR         Directory holding pageflip.yaml (default: .)")
	fmt.Fprintln(stdout, "  --verbose            Log debug records and stack traces to stderr")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Examples:")
	fmt.Fprintln(stdout, "  pageflip simulate next next prev          Turn two pages and back")
	fmt.Fprintln(stdout, "  pageflip render --out frames flip:6       Write PNG frames of a turn")
	fmt.Fprintln(stdout, "  pageflip export --pages book.html next    Export a turn as PDF")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}
