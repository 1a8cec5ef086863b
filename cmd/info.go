package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/cwbudde/smooth5x5/internal/pattern"
	"github.com/cwbudde/smooth5x5/internal/smooth"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the active backend, CPU features and available patterns",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Active backend:\t%s\n", smooth.ActiveBackend)
	fmt.Fprintf(w, "Backends:\t%s, %s\n", smooth.BackendScalar, smooth.BackendSWAR)
	fmt.Fprintf(w, "Patterns:\t%v\n", pattern.Names())

	features := smooth.CPUFeatures()
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nCPU FEATURE\tPRESENT")
	fmt.Fprintln(w, "-----------\t-------")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%t\n", name, features[name])
	}

	return w.Flush()
}
