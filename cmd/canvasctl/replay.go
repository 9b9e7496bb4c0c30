package main

import (
	"fmt"
	"os"
	"sort"

	"flowcanvas/domain/core/aggregates"
	"flowcanvas/infrastructure/logwatch"

	"github.com/spf13/cobra"
)

var replayVerbose bool

var replayCmd = &cobra.Command{
	Use:   "replay <canvas.json> <log.jsonl>",
	Short: "Replay a JSON-lines log against an exported canvas",
	Long: `Replay loads an exported canvas document, parses a JSON-lines log the
way the live watcher does, and applies each entry's actions in order.
Each actionful entry replaces the overlay, so the printed highlight and
annotation tables show what the editor would render after the last one.`,
	Args: cobra.ExactArgs(2),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayVerbose, "verbose", false,
		"Print every log entry, including ones without actions")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) {
	document, err := os.ReadFile(args[0])
	if err != nil {
		bad.Fprintf(os.Stderr, "Error: cannot read document: %v\n", err)
		os.Exit(1)
	}

	canvas, err := aggregates.NewCanvas("replay")
	if err != nil {
		bad.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := canvas.FromJSON(document); err != nil {
		bad.Fprintf(os.Stderr, "Error: cannot import document: %v\n", err)
		os.Exit(1)
	}

	logFile, err := os.Open(args[1])
	if err != nil {
		bad.Fprintf(os.Stderr, "Error: cannot open log: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	entries, err := logwatch.NewParser().ParseReader(logFile)
	if err != nil {
		bad.Fprintf(os.Stderr, "Error: reading log: %v\n", err)
		os.Exit(1)
	}

	heading.Printf("Replaying %d log entries onto %s\n", len(entries), args[0])

	applied := 0
	for i, entry := range entries {
		if len(entry.Actions) == 0 {
			if replayVerbose {
				dim.Printf("  %4d  %-7s %s\n", i+1, entry.Level, entry.Message)
			}
			continue
		}
		canvas.ApplyLogActions(entry.Actions)
		applied++
		fmt.Printf("  %4d  %-7s %s", i+1, entry.Level, entry.Message)
		good.Printf("  [%d action(s)]\n", len(entry.Actions))
	}

	if applied == 0 {
		warn.Println("No entry carried canvas actions; the overlay is empty")
		return
	}

	printOverlay(canvas)
}

func printOverlay(canvas *aggregates.Canvas) {
	highlights := canvas.LogHighlights()
	annotations := canvas.LogAnnotations()

	ids := make([]string, 0, len(highlights))
	for id := range highlights {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Println()
	heading.Println("Highlights")
	if len(ids) == 0 {
		dim.Println("  (none)")
	}
	stale := false
	for _, id := range ids {
		style := highlights[id]
		marker := " "
		if !canvas.HasNode(id) && !canvas.HasConnector(id) {
			marker = "?"
			stale = true
		}
		anim := ""
		if style.Animation {
			anim = "animated"
		}
		fmt.Printf("  %s %-28s %-10s %-8s %s\n", marker, id, style.Kind, style.Color, anim)
	}
	if stale {
		dim.Println("  ? target is not in the document and never renders")
	}

	annotated := make([]string, 0, len(annotations))
	for id := range annotations {
		annotated = append(annotated, id)
	}
	sort.Strings(annotated)

	fmt.Println()
	heading.Println("Annotations")
	if len(annotated) == 0 {
		dim.Println("  (none)")
	}
	for _, id := range annotated {
		fmt.Printf("    %-28s %s\n", id, annotations[id])
	}
}
