package main

import (
	"encoding/json"
	"fmt"
	"os"

	"flowcanvas/domain/core/valueobjects"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <canvas.json>",
	Short: "Summarize an exported canvas document",
	Long: `Inspect decodes an exported canvas document and prints what it holds:
node and connector counts, element ids, and every structural problem an
import would reject, such as broken entity pairs or connector endpoints
that reference missing nodes.`,
	Args: cobra.ExactArgs(1),
	Run:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// exportedDocument mirrors the export wire shape with lazy entity
// payloads. Inspection stays lenient where an import is strict: a broken
// pair is reported and skipped, never fatal.
type exportedDocument struct {
	Nodes      [][]json.RawMessage          `json:"nodes"`
	Connectors [][]json.RawMessage          `json:"connectors"`
	Viewport   *valueobjects.Viewport       `json:"viewport"`
	Settings   *valueobjects.CanvasSettings `json:"settings"`
}

type nodeSummary struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

type endpointSummary struct {
	NodeID string `json:"nodeId"`
	Side   string `json:"side"`
}

type connectorSummary struct {
	Kind  string          `json:"kind"`
	Start endpointSummary `json:"startPoint"`
	End   endpointSummary `json:"endPoint"`
	Label string          `json:"label"`
}

func runInspect(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		bad.Fprintf(os.Stderr, "Error: cannot read document: %v\n", err)
		os.Exit(1)
	}

	var doc exportedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		bad.Fprintf(os.Stderr, "Error: not a canvas document: %v\n", err)
		os.Exit(1)
	}

	heading.Printf("Canvas document %s\n", args[0])
	fmt.Printf("  nodes:      %d\n", len(doc.Nodes))
	fmt.Printf("  connectors: %d\n", len(doc.Connectors))
	if doc.Viewport != nil {
		fmt.Printf("  viewport:   offset (%.1f, %.1f) zoom %.2f\n",
			doc.Viewport.OffsetX, doc.Viewport.OffsetY, doc.Viewport.Zoom)
	}
	if doc.Settings != nil {
		grid := "off"
		if doc.Settings.SnapToGrid {
			grid = fmt.Sprintf("snap every %.0f", doc.Settings.GridSize)
		}
		fmt.Printf("  grid:       %s\n", grid)
	}

	var problems, warnings []string
	nodeIDs := make(map[string]bool, len(doc.Nodes))

	fmt.Println()
	heading.Println("Nodes")
	if len(doc.Nodes) == 0 {
		dim.Println("  (none)")
	}
	for i, pair := range doc.Nodes {
		id, raw, ok := splitSummaryPair(pair)
		if !ok {
			problems = append(problems, fmt.Sprintf("node entry %d is not an [id, data] pair", i))
			continue
		}
		if nodeIDs[id] {
			warnings = append(warnings, fmt.Sprintf("duplicate node id %q, the later entry wins", id))
		}
		nodeIDs[id] = true

		var node nodeSummary
		if err := json.Unmarshal(raw, &node); err != nil {
			problems = append(problems, fmt.Sprintf("node %q payload is malformed: %v", id, err))
			continue
		}
		fmt.Printf("  %-28s %-10s %s\n", id, node.Kind, node.Title)
	}

	fmt.Println()
	heading.Println("Connectors")
	if len(doc.Connectors) == 0 {
		dim.Println("  (none)")
	}
	for i, pair := range doc.Connectors {
		id, raw, ok := splitSummaryPair(pair)
		if !ok {
			problems = append(problems, fmt.Sprintf("connector entry %d is not an [id, data] pair", i))
			continue
		}

		var conn connectorSummary
		if err := json.Unmarshal(raw, &conn); err != nil {
			problems = append(problems, fmt.Sprintf("connector %q payload is malformed: %v", id, err))
			continue
		}
		fmt.Printf("  %-28s %-10s %s -> %s\n", id, conn.Kind, conn.Start.NodeID, conn.End.NodeID)

		for _, ep := range []endpointSummary{conn.Start, conn.End} {
			if !nodeIDs[ep.NodeID] {
				problems = append(problems, fmt.Sprintf("connector %q references missing node %q", id, ep.NodeID))
			}
		}
	}

	fmt.Println()
	for _, w := range warnings {
		warn.Printf("  warning: %s\n", w)
	}
	if len(problems) == 0 {
		good.Println("Document is importable")
		return
	}

	bad.Printf("%d problem(s) block import\n", len(problems))
	for _, p := range problems {
		bad.Printf("  - %s\n", p)
	}
	os.Exit(1)
}

// splitSummaryPair unpacks an [id, data] pair without validating the data
func splitSummaryPair(pair []json.RawMessage) (string, json.RawMessage, bool) {
	if len(pair) != 2 {
		return "", nil, false
	}
	var id string
	if err := json.Unmarshal(pair[0], &id); err != nil || id == "" {
		return "", nil, false
	}
	return id, pair[1], true
}
