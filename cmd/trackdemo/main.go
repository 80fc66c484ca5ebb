// Package main runs an animated scene under the tracking engine and prints
// every geometry change it reports.
//
// Usage:
//
//	trackdemo run [--config track.yaml]   Run the demo
//	trackdemo version                     Print version information
//
// Settings come from the config file and TRACK_* environment variables,
// e.g. TRACK_FRAME_RATE=30 or TRACK_DEMO_BOXES=5. Set TRACK_DEBUG to a file
// path to capture debug logs.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
