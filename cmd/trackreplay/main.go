// trackreplay runs a recorded detection log through the tracking engine and
// prints the per-frame obstacle sets, for offline tuning of tracker
// parameters.
//
// Input is one JSON frame per line:
//
//	{"stamp":"2024-05-01T12:00:00.1Z","detections":[
//	  {"position":{"x":1.0,"y":0.5,"z":0},"extent":{"x":0.6,"y":0.6,"z":1.7},
//	   "class":0,"confidence":0.91}]}
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	dyntrack "github.com/navsense/go-dyntrack"
	"github.com/navsense/go-dyntrack/tracker"
)

func main() {
	configFile := flag.String("config", "", "YAML tracker configuration, defaults used when empty")
	inputFile := flag.String("input", "-", "JSONL detection log, - for stdin")
	trailSize := flag.Int("trail", 0, "keep this many trail points per track and print trails at exit")
	verbose := flag.Bool("v", false, "enable debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*configFile, *inputFile, *trailSize, log); err != nil {
		log.Error("replay failed", "err", err)
		os.Exit(1)
	}
}

func run(configFile, inputFile string, trailSize int, log *slog.Logger) error {
	cfg := dyntrack.DefaultConfig()

	if configFile != "" {
		var err error
		cfg, err = dyntrack.LoadConfig(configFile)
		if err != nil {
			return err
		}
	}

	var in io.Reader = os.Stdin
	if inputFile != "-" {
		f, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("opening detection log: %w", err)
		}
		defer f.Close()
		in = f
	}

	engine, err := tracker.New(cfg, tracker.WithLogger(log))
	if err != nil {
		return err
	}

	var trail *tracker.Trail
	if trailSize > 0 {
		trail = tracker.NewTrail(trailSize)
	}

	out := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var frame dyntrack.Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			log.Warn("skipping malformed frame", "line", lineNo, "err", err)
			continue
		}

		result, err := engine.Update(frame)
		if err != nil {
			// stale or unstamped frames are dropped, replay continues
			log.Warn("frame rejected", "line", lineNo, "err", err)
			continue
		}

		if trail != nil {
			for _, trk := range engine.Tracks() {
				trail.Add(trk)
			}
		}

		if err := out.Encode(result); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading detection log: %w", err)
	}

	if trail != nil {
		printTrails(engine, trail)
	}

	log.Info("replay complete",
		"frames", engine.Frames(), "dropped_frames", engine.DroppedFrames())

	return nil
}

func printTrails(engine *tracker.Tracker, trail *tracker.Trail) {
	for _, trk := range engine.Tracks() {
		points := trail.Points(trk.Num())
		if len(points) == 0 {
			continue
		}

		fmt.Fprintf(os.Stderr, "track %d (%s):", trk.Num(), trk.State())
		for _, p := range points {
			fmt.Fprintf(os.Stderr, " (%.2f,%.2f)", p.X, p.Y)
		}
		fmt.Fprintln(os.Stderr)
	}
}
