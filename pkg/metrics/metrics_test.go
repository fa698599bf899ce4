package metrics

import (
	"math"
	"testing"

	"petproj/internal/models"
)

func arrayOf(t *testing.T, shape [3]int, values ...float32) *models.Array {
	t.Helper()
	a, err := models.WrapArray(shape, values)
	if err != nil {
		t.Fatalf("Failed to wrap array: %v", err)
	}
	return a
}

func TestSummarize(t *testing.T) {
	a := arrayOf(t, [3]int{1, 2, 2}, 1, 2, 3, 4)
	s := Summarize(a)

	if s.Count != 4 {
		t.Errorf("Expected count 4, got %d", s.Count)
	}
	if s.Min != 1 || s.Max != 4 {
		t.Errorf("Expected min/max 1/4, got %v/%v", s.Min, s.Max)
	}
	if s.Sum != 10 {
		t.Errorf("Expected sum 10, got %v", s.Sum)
	}
	if s.Mean != 2.5 {
		t.Errorf("Expected mean 2.5, got %v", s.Mean)
	}
	// sample standard deviation of 1..4
	if math.Abs(s.StdDev-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Errorf("Unexpected standard deviation %v", s.StdDev)
	}

	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Expected empty summary for nil array, got %+v", got)
	}
}

func TestMinMax(t *testing.T) {
	tests := []struct {
		name     string
		data     []float32
		min, max float64
	}{
		{"empty", nil, 0, 0},
		{"single", []float32{3}, 3, 3},
		{"mixed", []float32{2, -1, 5, 0}, -1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := MinMax(tt.data)
			if min != tt.min || max != tt.max {
				t.Errorf("MinMax(%v) = %v, %v; want %v, %v", tt.data, min, max, tt.min, tt.max)
			}
		})
	}
}

func TestRMSE(t *testing.T) {
	a := arrayOf(t, [3]int{1, 1, 4}, 0, 0, 0, 0)
	b := arrayOf(t, [3]int{1, 1, 4}, 1, 1, 1, 1)

	got, err := RMSE(a, b)
	if err != nil {
		t.Fatalf("RMSE failed: %v", err)
	}
	if got != 1 {
		t.Errorf("Expected RMSE 1, got %v", got)
	}

	got, err = RMSE(a, a)
	if err != nil || got != 0 {
		t.Errorf("Expected RMSE 0 for identical arrays, got %v (%v)", got, err)
	}

	if _, err := RMSE(a, arrayOf(t, [3]int{1, 2, 2}, 0, 0, 0, 0)); err == nil {
		t.Error("Expected error for mismatched shapes")
	}
}

func TestAllCloseAndMaxAbsDiff(t *testing.T) {
	a := arrayOf(t, [3]int{1, 1, 3}, 1, 2, 3)
	b := arrayOf(t, [3]int{1, 1, 3}, 1, 2.0001, 3)

	if !AllClose(a, b, 1e-3, 0) {
		t.Error("Expected arrays to be close with rtol 1e-3")
	}
	if AllClose(a, b, 1e-6, 1e-6) {
		t.Error("Expected arrays to differ with tight tolerances")
	}
	if AllClose(a, arrayOf(t, [3]int{3, 1, 1}, 1, 2, 3), 1, 1) {
		t.Error("Expected arrays of different shapes not to be close")
	}

	d, err := MaxAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MaxAbsDiff failed: %v", err)
	}
	if math.Abs(d-0.0001) > 1e-6 {
		t.Errorf("Expected max difference ~1e-4, got %v", d)
	}
}

func TestDot(t *testing.T) {
	a := arrayOf(t, [3]int{1, 1, 3}, 1, 2, 3)
	b := arrayOf(t, [3]int{1, 1, 3}, 4, 5, 6)
	got, err := Dot(a, b)
	if err != nil {
		t.Fatalf("Dot failed: %v", err)
	}
	if got != 32 {
		t.Errorf("Expected 32, got %v", got)
	}
}

func TestSSIM(t *testing.T) {
	a := arrayOf(t, [3]int{1, 2, 2}, 0, 1, 2, 3)

	got, err := SSIM(a, a.Clone())
	if err != nil {
		t.Fatalf("SSIM failed: %v", err)
	}
	if math.Abs(got-1) > 1e-12 {
		t.Errorf("Expected SSIM 1 for identical arrays, got %v", got)
	}

	inverted := arrayOf(t, [3]int{1, 2, 2}, 3, 2, 1, 0)
	got, err = SSIM(a, inverted)
	if err != nil {
		t.Fatalf("SSIM failed: %v", err)
	}
	if got >= 0 {
		t.Errorf("Expected negative SSIM for anti-correlated arrays, got %v", got)
	}
}

func TestEntropy(t *testing.T) {
	if e := Entropy([]float32{5, 5, 5}); e != 0 {
		t.Errorf("Expected zero entropy for a constant signal, got %v", e)
	}
	if e := Entropy([]float32{0, 1}); math.Abs(e-1) > 1e-12 {
		t.Errorf("Expected 1 bit of entropy, got %v", e)
	}
}

func BenchmarkSummarize(b *testing.B) {
	a := models.NewArray([3]int{15, 64, 64})
	for i := range a.Data {
		a.Data[i] = float32(i % 17)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Summarize(a)
	}
}
