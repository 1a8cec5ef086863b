package opt

import (
	"math"
	"testing"
)

// Sphere function: f(x) = sum(x_i^2), minimum at origin
func sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func TestMayflyAdapterOnSphere(t *testing.T) {
	var optimizer Optimizer = NewMayfly(100, 20, 42)

	dim := 3
	lower := []float64{-10, -10, -10}
	upper := []float64{10, 10, 10}

	best, cost, err := optimizer.Run(sphere, lower, upper, dim)
	if err != nil {
		t.Fatal(err)
	}

	if len(best) != dim {
		t.Fatalf("Expected %d parameters, got %d", dim, len(best))
	}
	if cost > 0.1 {
		t.Errorf("Expected cost near 0, got %f", cost)
	}
	for i, v := range best {
		if math.Abs(v) > 1.0 {
			t.Errorf("Parameter %d = %f, expected near 0", i, v)
		}
	}
}

func TestMayflyAdapterDeterministic(t *testing.T) {
	lower := []float64{-5, -5}
	upper := []float64{5, 5}

	_, cost1, err := NewMayfly(50, 20, 123).Run(sphere, lower, upper, 2)
	if err != nil {
		t.Fatal(err)
	}
	_, cost2, err := NewMayfly(50, 20, 123).Run(sphere, lower, upper, 2)
	if err != nil {
		t.Fatal(err)
	}

	if cost1 != cost2 {
		t.Errorf("Non-deterministic: cost1=%f, cost2=%f", cost1, cost2)
	}
}

func TestMayflyAdapterRejectsBadBounds(t *testing.T) {
	m := NewMayfly(10, 20, 1)

	if _, _, err := m.Run(sphere, []float64{0}, []float64{1, 1}, 2); err == nil {
		t.Error("expected error for mismatched bound lengths")
	}
	if _, _, err := m.Run(sphere, []float64{0, -1}, []float64{1, 1}, 2); err == nil {
		t.Error("expected error for non-uniform bounds")
	}
}
