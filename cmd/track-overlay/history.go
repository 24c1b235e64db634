package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/track-overlay/internal/runlog"
)

const defaultDBPath = "track-overlay.db"

func runHistory(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBPath, "Run log database")
	limit := fs.Int("n", 10, "Number of runs to show (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := runlog.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(*limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tFRAMES\tBOXES\tTRACKS\tELAPSED\tINPUT\tOUTPUT")
	for _, r := range runs {
		status := r.Status
		if r.Error != "" {
			status += ": " + r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
			r.StartedAt.Format(time.RFC3339), status, r.FramesRead, r.BoxesDrawn, r.Tracks,
			r.Elapsed, r.Input, r.Output)
	}
	return tw.Flush()
}

func runMigrate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBPath, "Run log database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: track-overlay migrate [-db path] up|down|status")
	}

	store, err := runlog.OpenNoMigrate(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch action := fs.Arg(0); action {
	case "up":
		if err := store.MigrateUp(); err != nil {
			return err
		}
	case "down":
		if err := store.MigrateDown(); err != nil {
			return err
		}
	case "status":
	default:
		return fmt.Errorf("unknown migrate action: %s", action)
	}

	v, dirty, err := store.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Current version: %d (dirty: %v)\n", v, dirty)
	return nil
}
