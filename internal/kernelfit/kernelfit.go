// Package kernelfit estimates the linear 5-tap kernel that the halving-add
// chain of the smoothing filter approximates.
//
// The chain R(R(R(R(a,e),c),c), R(b,d)) has expected weights
// (1,4,6,4,1)/16 on (a,b,c,d,e); every halving step rounds half up, so the
// output carries a small positive bias. Fit searches symmetric weights
// (far, near, center) with an Optimizer and reports how far both the fitted
// and the binomial kernels are from the exact chain output.
package kernelfit

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/cwbudde/smooth5x5/internal/opt"
	"github.com/cwbudde/smooth5x5/internal/smooth"
)

// Weights of a symmetric 5-tap kernel: Far applies to offsets ±2, Near to
// ±1 and Center to 0.
type Weights struct {
	Far    float64 `json:"far"`
	Near   float64 `json:"near"`
	Center float64 `json:"center"`
}

// Binomial is the kernel (1,4,6,4,1)/16.
var Binomial = Weights{Far: 1.0 / 16, Near: 4.0 / 16, Center: 6.0 / 16}

// Sum returns the total weight of all five taps.
func (w Weights) Sum() float64 {
	return 2*w.Far + 2*w.Near + w.Center
}

// Apply evaluates the kernel on a window.
func (w Weights) Apply(win [5]uint8) float64 {
	return w.Far*(float64(win[0])+float64(win[4])) +
		w.Near*(float64(win[1])+float64(win[3])) +
		w.Center*float64(win[2])
}

// Config controls the fit.
type Config struct {
	Samples int   // random windows to evaluate
	Seed    int64 // seed for the windows
}

// Result of a fit.
type Result struct {
	Fitted      Weights `json:"fitted"`
	FittedMSE   float64 `json:"fittedMse"`
	BinomialMSE float64 `json:"binomialMse"`
	// Bias is the mean of chain output minus the binomial value.
	Bias    float64 `json:"bias"`
	Samples int     `json:"samples"`
}

// Set is a fixed collection of windows with the chain output for each.
type Set struct {
	windows [][5]uint8
	outputs []uint8
}

// NewSet draws n random windows.
func NewSet(n int, seed int64) *Set {
	rng := rand.New(rand.NewSource(seed))
	s := &Set{
		windows: make([][5]uint8, n),
		outputs: make([]uint8, n),
	}
	for i := range s.windows {
		var w [5]uint8
		for k := range w {
			w[k] = uint8(rng.Intn(256))
		}
		s.windows[i] = w
		s.outputs[i] = smooth.Combine5(w[0], w[1], w[2], w[3], w[4])
	}
	return s
}

// MSE is the mean squared difference between the kernel and the chain.
func (s *Set) MSE(w Weights) float64 {
	if len(s.windows) == 0 {
		return 0
	}
	var sum float64
	for i, win := range s.windows {
		d := w.Apply(win) - float64(s.outputs[i])
		sum += d * d
	}
	return sum / float64(len(s.windows))
}

// Bias is the mean of chain output minus kernel value.
func (s *Set) Bias(w Weights) float64 {
	if len(s.windows) == 0 {
		return 0
	}
	var sum float64
	for i, win := range s.windows {
		sum += float64(s.outputs[i]) - w.Apply(win)
	}
	return sum / float64(len(s.windows))
}

// Fit searches weights in [0,1]^3 minimizing MSE against the chain.
func Fit(o opt.Optimizer, cfg Config) (*Result, error) {
	if cfg.Samples <= 0 {
		return nil, fmt.Errorf("samples must be positive, got %d", cfg.Samples)
	}

	set := NewSet(cfg.Samples, cfg.Seed)
	eval := func(x []float64) float64 {
		if len(x) != 3 {
			return math.Inf(1)
		}
		return set.MSE(Weights{Far: x[0], Near: x[1], Center: x[2]})
	}

	slog.Debug("Fitting kernel", "samples", cfg.Samples, "seed", cfg.Seed)

	best, cost, err := o.Run(eval, []float64{0, 0, 0}, []float64{1, 1, 1}, 3)
	if err != nil {
		return nil, fmt.Errorf("kernel fit: %w", err)
	}
	if len(best) != 3 {
		return nil, fmt.Errorf("kernel fit: optimizer returned %d parameters, want 3", len(best))
	}

	result := &Result{
		Fitted:      Weights{Far: best[0], Near: best[1], Center: best[2]},
		FittedMSE:   cost,
		BinomialMSE: set.MSE(Binomial),
		Bias:        set.Bias(Binomial),
		Samples:     cfg.Samples,
	}

	slog.Info("Kernel fit complete",
		"far", result.Fitted.Far,
		"near", result.Fitted.Near,
		"center", result.Fitted.Center,
		"fitted_mse", result.FittedMSE,
		"binomial_mse", result.BinomialMSE,
		"bias", result.Bias,
	)

	return result, nil
}
