//go:build !testcoverage

package main

import "os"

func main() {
	if err := run(os.Args, DefaultStreams()); err != nil {
		fatal("%v", err)
	}
}
