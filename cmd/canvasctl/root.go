package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// cliVersion tracks the v2 API surface the exported documents come from
const cliVersion = "2.0.0"

var (
	heading = color.New(color.FgHiCyan, color.Bold)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed, color.Bold)
	warn    = color.New(color.FgYellow)
	dim     = color.New(color.FgHiBlack)
)

var rootCmd = &cobra.Command{
	Use:   "canvasctl",
	Short: "Offline tooling for exported canvas documents",
	Long: `canvasctl works on exported canvas documents without a running server.
It inspects document structure and replays JSON-lines logs against a
canvas to preview the highlight and annotation overlay they produce.`,
	Version:       cliVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("canvasctl version {{.Version}}\n")
}
