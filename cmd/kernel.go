package main

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/smooth5x5/internal/kernelfit"
	"github.com/cwbudde/smooth5x5/internal/opt"
	"github.com/spf13/cobra"
)

var (
	kernelSamples int
	kernelIters   int
	kernelPop     int
	kernelSeed    int64
	kernelJSON    bool
)

var kernelCmd = &cobra.Command{
	Use:   "kernel",
	Short: "Estimate the linear kernel behind the halving-add chain",
	Long: `Fits symmetric 5-tap weights to the filter's per-sample chain with the
Mayfly optimizer and compares the fit with the binomial kernel (1,4,6,4,1)/16.`,
	RunE: runKernel,
}

func init() {
	kernelCmd.Flags().IntVar(&kernelSamples, "samples", 20000, "Random windows to evaluate")
	kernelCmd.Flags().IntVar(&kernelIters, "iters", 100, "Optimizer iterations")
	kernelCmd.Flags().IntVar(&kernelPop, "pop", 30, "Optimizer population size (>= 20)")
	kernelCmd.Flags().Int64Var(&kernelSeed, "seed", 42, "Random seed")
	kernelCmd.Flags().BoolVar(&kernelJSON, "json", false, "Print the result as JSON")

	rootCmd.AddCommand(kernelCmd)
}

func runKernel(cmd *cobra.Command, args []string) error {
	optimizer := opt.NewMayfly(kernelIters, kernelPop, kernelSeed)

	result, err := kernelfit.Fit(optimizer, kernelfit.Config{Samples: kernelSamples, Seed: kernelSeed})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if kernelJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	b := kernelfit.Binomial
	f := result.Fitted
	fmt.Fprintf(out, "binomial: far=%.4f near=%.4f center=%.4f  mse=%.4f bias=%+.4f\n",
		b.Far, b.Near, b.Center, result.BinomialMSE, result.Bias)
	fmt.Fprintf(out, "fitted:   far=%.4f near=%.4f center=%.4f  mse=%.4f sum=%.4f\n",
		f.Far, f.Near, f.Center, result.FittedMSE, f.Sum())
	return nil
}
