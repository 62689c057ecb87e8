package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/funvibe/boundstore/internal/config"
)

// Exit codes.
const (
	exitOK          = 0
	exitDiagnostics = 1
	exitUsage       = 2
)

const usage = `Usage: boundstore [flags] [path ...]

Expands bound registrations and #[bound_alias(...)] attributes in Rust
source files. With no path, reads standard input and writes standard output.
Directories are searched for files with the configured extensions.

Flags:
  -w          write results back to the source files
  -o DIR      write results into DIR instead of standard output
  -check      only report diagnostics, write nothing
  -config F   use configuration file F instead of searching for boundstore.yaml
  -j N        process at most N files at once
  -v          debug logging on standard error
  -h, help    show this help
  version     print the version
`

// Run is the entry point of the boundstore binary.
func Run() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(exitUsage)
		}
	}()

	os.Exit(Main(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Main runs the command line with the given arguments and streams and returns
// the exit status.
func Main(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if handleVersion(args, stdout) {
		return exitOK
	}
	if handleHelp(args, stdout) {
		return exitOK
	}

	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n%s", err, usage)
		return exitUsage
	}

	inv, err := newInvocation(opts, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitUsage
	}
	return inv.run()
}

func handleVersion(args []string, stdout io.Writer) bool {
	if len(args) != 1 {
		return false
	}
	switch args[0] {
	case "version", "-version", "--version":
		fmt.Fprintln(stdout, "boundstore "+config.Version)
		return true
	}
	return false
}

func handleHelp(args []string, stdout io.Writer) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "-help", "--help":
			fmt.Fprint(stdout, usage)
			return true
		}
	}
	if len(args) == 1 && args[0] == "help" {
		fmt.Fprint(stdout, usage)
		return true
	}
	return false
}
