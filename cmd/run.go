package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/smooth5x5/internal/imageio"
	"github.com/cwbudde/smooth5x5/internal/smooth"
	"github.com/spf13/cobra"
)

var (
	inPath      string
	outPath     string
	backendName string
	workers     int
	passes      int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Smooth an image file",
	Long: `Loads an image, converts it to 8-bit gray, applies the 5x5 smoothing filter
and writes the result. The output format follows the extension (.png, .bmp, .tif).`,
	RunE: runSmooth,
}

func init() {
	runCmd.Flags().StringVar(&inPath, "in", "", "Input image path (required)")
	runCmd.Flags().StringVar(&outPath, "out", "out.png", "Output image path")
	runCmd.Flags().StringVar(&backendName, "backend", "auto", "Filter backend: auto, scalar, swar")
	runCmd.Flags().IntVar(&workers, "workers", 1, "Goroutines for the swar backend (0 = GOMAXPROCS)")
	runCmd.Flags().IntVar(&passes, "passes", 1, "Number of times to apply the filter")

	runCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(runCmd)
}

func runSmooth(cmd *cobra.Command, args []string) error {
	backend, err := smooth.ParseBackend(backendName)
	if err != nil {
		return err
	}
	if passes < 1 {
		return fmt.Errorf("passes must be at least 1, got %d", passes)
	}
	if workers != 1 && backend != smooth.BackendSWAR {
		return fmt.Errorf("--workers requires the swar backend")
	}

	img, err := imageio.LoadGray(inPath)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	slog.Info("Loaded image", "path", inPath, "width", bounds.Dx(), "height", bounds.Dy())

	start := time.Now()
	for p := 0; p < passes; p++ {
		if workers != 1 {
			err = smooth.Smooth5x5Parallel(img.Stride, bounds.Dx(), bounds.Dy(), img.Pix, img.Pix, workers)
		} else {
			err = smooth.Run(backend, img.Stride, bounds.Dx(), bounds.Dy(), img.Pix, img.Pix)
		}
		if err != nil {
			return fmt.Errorf("smoothing failed: %w", err)
		}
	}
	elapsed := time.Since(start)

	if err := imageio.SaveGray(outPath, img); err != nil {
		return err
	}

	mpixels := float64(bounds.Dx()*bounds.Dy()*passes) / 1e6 / elapsed.Seconds()
	slog.Info("Smoothing complete",
		"backend", backend,
		"workers", workers,
		"passes", passes,
		"elapsed", elapsed,
		"mpixels_per_second", fmt.Sprintf("%.1f", mpixels),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d, %d pass(es), %s)\n", outPath, bounds.Dx(), bounds.Dy(), passes, backend)
	return nil
}
