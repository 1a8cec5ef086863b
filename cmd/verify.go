package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/cwbudde/smooth5x5/internal/smooth"
	"github.com/cwbudde/smooth5x5/internal/store"
	"github.com/cwbudde/smooth5x5/internal/verify"
	"github.com/spf13/cobra"
)

var (
	verifyBackend       string
	verifyStride        int
	verifyMinSize       int
	verifyMaxSize       int
	verifyPatterns      string
	verifySeed          int64
	verifyWorkers       int
	verifyFilterWorkers int
	verifyDataDir       string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a backend against the scalar reference",
	Long: `Filters every width and height in [min, max) for each pattern with both the
scalar reference and the chosen backend, in place and with a separate
destination, and reports every case whose output differs.`,
	RunE: runVerify,
}

func init() {
	def := verify.DefaultConfig()

	verifyCmd.Flags().StringVar(&verifyBackend, "backend", "auto", "Backend under test: auto, scalar, swar")
	verifyCmd.Flags().IntVar(&verifyStride, "stride", def.Stride, "Row stride of the test buffers")
	verifyCmd.Flags().IntVar(&verifyMinSize, "min", def.MinSize, "Smallest width/height")
	verifyCmd.Flags().IntVar(&verifyMaxSize, "max", def.MaxSize, "Largest width/height (exclusive)")
	verifyCmd.Flags().StringVar(&verifyPatterns, "patterns", strings.Join(def.Patterns, ","), "Comma-separated input patterns")
	verifyCmd.Flags().Int64Var(&verifySeed, "seed", def.Seed, "Seed for random patterns")
	verifyCmd.Flags().IntVar(&verifyWorkers, "workers", 0, "Concurrent cases (0 = GOMAXPROCS)")
	verifyCmd.Flags().IntVar(&verifyFilterWorkers, "filter-workers", 1, "Goroutines per filter call (swar only)")
	verifyCmd.Flags().StringVar(&verifyDataDir, "data-dir", "", "Save the report under this directory")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	backend, err := smooth.ParseBackend(verifyBackend)
	if err != nil {
		return err
	}

	cfg := verify.Config{
		Backend:       backend,
		Stride:        verifyStride,
		MinSize:       verifyMinSize,
		MaxSize:       verifyMaxSize,
		Patterns:      splitList(verifyPatterns),
		Seed:          verifySeed,
		Workers:       verifyWorkers,
		FilterWorkers: verifyFilterWorkers,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := verify.Run(ctx, cfg)
	if err != nil {
		return err
	}

	if verifyDataDir != "" {
		reportStore, err := store.NewFSStore(verifyDataDir)
		if err != nil {
			return fmt.Errorf("failed to create report store: %w", err)
		}
		if err := reportStore.SaveReport(report); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	for _, m := range report.Mismatches {
		fmt.Fprintf(out, "MISMATCH %s %dx%d in-place=%t at (%d,%d): want %d, got %d\n",
			m.Pattern, m.Width, m.Height, m.InPlace, m.Row, m.Col, m.Want, m.Got)
	}
	fmt.Fprintf(out, "%s: %d cases, %d failed (%s) [report %s]\n",
		report.Config.Backend, report.Cases, report.Failed, report.Elapsed.Round(1e6), report.ID)

	if !report.Passed() {
		return fmt.Errorf("%d of %d cases differ from the reference", report.Failed, report.Cases)
	}
	return nil
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
