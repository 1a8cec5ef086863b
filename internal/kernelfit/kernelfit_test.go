package kernelfit

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/smooth5x5/internal/opt"
)

// fixedOptimizer returns a preset position without searching.
type fixedOptimizer struct {
	pos []float64
	err error
}

func (f fixedOptimizer) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.pos, eval(f.pos), nil
}

func TestBinomialSumsToOne(t *testing.T) {
	if s := Binomial.Sum(); math.Abs(s-1) > 1e-12 {
		t.Errorf("binomial weights sum to %f", s)
	}
}

// TestChainRoundingBounds: each halving add rounds up by at most 1/2, so the
// chain sits within [0, 1.1875] above the binomial value.
func TestChainRoundingBounds(t *testing.T) {
	set := NewSet(20000, 1)

	for i, win := range set.windows {
		d := float64(set.outputs[i]) - Binomial.Apply(win)
		if d < 0 || d > 1.1875 {
			t.Fatalf("window %v: chain %d vs binomial %f", win, set.outputs[i], Binomial.Apply(win))
		}
	}

	if mse := set.MSE(Binomial); mse <= 0 || mse > 1.1875*1.1875 {
		t.Errorf("binomial MSE %f out of range", mse)
	}
	if bias := set.Bias(Binomial); bias <= 0 {
		t.Errorf("expected positive rounding bias, got %f", bias)
	}
}

func TestFit_UsesOptimizerResult(t *testing.T) {
	o := fixedOptimizer{pos: []float64{Binomial.Far, Binomial.Near, Binomial.Center}}

	res, err := Fit(o, Config{Samples: 5000, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Fitted != Binomial {
		t.Errorf("fitted weights %+v, want %+v", res.Fitted, Binomial)
	}
	if res.FittedMSE != res.BinomialMSE {
		t.Errorf("fitted MSE %f should equal binomial MSE %f", res.FittedMSE, res.BinomialMSE)
	}
	if res.Samples != 5000 {
		t.Errorf("samples = %d", res.Samples)
	}
}

func TestFit_Errors(t *testing.T) {
	if _, err := Fit(fixedOptimizer{}, Config{Samples: 0}); err == nil {
		t.Error("expected error for zero samples")
	}

	boom := errors.New("boom")
	if _, err := Fit(fixedOptimizer{err: boom}, Config{Samples: 10}); !errors.Is(err, boom) {
		t.Errorf("expected wrapped optimizer error, got %v", err)
	}

	if _, err := Fit(fixedOptimizer{pos: []float64{0.5}}, Config{Samples: 10}); err == nil {
		t.Error("expected error for short parameter vector")
	}
}

func TestFit_Mayfly(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping mayfly kernel fit in short mode")
	}

	res, err := Fit(opt.NewMayfly(60, 20, 42), Config{Samples: 2000, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}

	for name, w := range map[string]float64{"far": res.Fitted.Far, "near": res.Fitted.Near, "center": res.Fitted.Center} {
		if w < 0 || w > 1 || math.IsNaN(w) {
			t.Errorf("%s weight %f outside search box", name, w)
		}
	}
	if math.IsNaN(res.FittedMSE) || res.FittedMSE < 0 {
		t.Errorf("invalid fitted MSE %f", res.FittedMSE)
	}

	again, err := Fit(opt.NewMayfly(60, 20, 42), Config{Samples: 2000, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	if again.FittedMSE != res.FittedMSE {
		t.Errorf("non-deterministic fit: %f vs %f", res.FittedMSE, again.FittedMSE)
	}
}

// shapeCheckingOptimizer evaluates a malformed vector before returning a
// well-formed one, as a searcher with a mis-sized population might.
type shapeCheckingOptimizer struct {
	badCost *float64
}

func (s shapeCheckingOptimizer) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64, error) {
	*s.badCost = eval([]float64{0.1, 0.2})
	pos := []float64{Binomial.Far, Binomial.Near, Binomial.Center}
	return pos, eval(pos), nil
}

func TestFit_WrongLengthCandidateIsRejected(t *testing.T) {
	var badCost float64
	res, err := Fit(shapeCheckingOptimizer{badCost: &badCost}, Config{Samples: 100, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(badCost, 1) {
		t.Errorf("cost of a 2-element candidate = %f, want +Inf", badCost)
	}
	if res.FittedMSE != res.BinomialMSE {
		t.Errorf("fitted MSE %f, want binomial MSE %f", res.FittedMSE, res.BinomialMSE)
	}
}
