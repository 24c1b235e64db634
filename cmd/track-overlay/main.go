// Command track-overlay draws multi-object tracking results onto the video
// they were computed from.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/track-overlay/internal/annotate"
	"github.com/banshee-data/track-overlay/internal/overlay"
	"github.com/banshee-data/track-overlay/internal/runlog"
	"github.com/banshee-data/track-overlay/internal/version"
	"github.com/banshee-data/track-overlay/internal/video/cvcodec"
	"github.com/banshee-data/track-overlay/internal/video/framedir"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "annotate":
		err = runAnnotate(args, os.Stdout)
	case "history":
		err = runHistory(args, os.Stdout)
	case "migrate":
		err = runMigrate(args, os.Stdout)
	case "version":
		fmt.Println(version.String())
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

func printUsage() {
	fmt.Println(`track-overlay - draw tracking results onto video

Usage: track-overlay <command> [options]

Commands:
  annotate   Draw a results file onto a video and write the annotated copy
  history    List recent annotation runs from the run log
  migrate    Manage the run log schema (up, down, status)
  version    Show build information
  help       Show this help message

Annotate:
  track-overlay annotate [options] -results <file> -input <video> -output <video>
  track-overlay annotate [options] <results> <input> <output>

  Results files are MOT text (.txt, .csv), JSON (.json) or CBOR (.cbor).
  A directory input is read as a PNG frame directory (header.json plus
  frames/frame_000000.png ...); anything else is opened with OpenCV.

Examples:
  track-overlay annotate -results tracks.txt -input street.mp4 -output street_tracked.mp4
  track-overlay annotate -config overlay.json -report run.html tracks.json clip/ clip_tracked/
  track-overlay history -db runs.db -n 20`)
}

// setupLogging wires the package log streams: ops and diag to w, trace to w
// only when trace is set.
func setupLogging(w io.Writer, quiet, trace bool) {
	ops, diag := w, w
	if quiet {
		diag = nil
	}
	var tr io.Writer
	if trace {
		tr = w
	}
	annotate.SetLogWriters(ops, diag, tr)
	overlay.SetLogWriters(ops, diag, tr)
	cvcodec.SetLogWriters(ops, diag, tr)
	framedir.SetLogWriters(ops, diag, tr)
	runlog.SetLogWriters(ops, diag, tr)
}
