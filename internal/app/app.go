package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "process", "run-once":
		return runProcess(args[1:])
	case "stats":
		return runStats(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "newsvet CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  newsvet <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health    Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  validate  Validate news item JSON files against the payload schema")
	fmt.Fprintln(os.Stderr, "  process   Dedup, score, and persist news item JSON files")
	fmt.Fprintln(os.Stderr, "  run-once  Alias for process")
	fmt.Fprintln(os.Stderr, "  stats     Print fingerprint and quality rollup stats")
	fmt.Fprintln(os.Stderr, "  serve     Start the operator HTTP server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"newsvet <command> -h\" for command-specific flags.")
}
