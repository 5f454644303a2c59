// Command sealctl manages device keys and seals or unseals values from the
// command line.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
)

const version = "1.0.0"

// Streams holds the standard streams used by run.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultStreams returns the process standard streams.
func DefaultStreams() Streams {
	return Streams{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

func run(args []string, streams Streams) error {
	// A missing .env file is fine.
	_ = godotenv.Load()

	rootCmd := newRootCmd(LoadConfig())
	rootCmd.SetArgs(args[1:])
	rootCmd.SetIn(streams.Stdin)
	rootCmd.SetOut(streams.Stdout)
	rootCmd.SetErr(streams.Stderr)
	return rootCmd.Execute()
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "sealctl: "+format+"\n", args...)
	os.Exit(1)
}
