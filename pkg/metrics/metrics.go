// Package metrics computes summary statistics and comparison measures for
// volumes and projection data.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"petproj/internal/models"
)

// Summary describes the value distribution of an array
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Sum    float64
	Mean   float64
	StdDev float64
}

// Summarize computes the summary statistics of a
func Summarize(a *models.Array) Summary {
	if a == nil || len(a.Data) == 0 {
		return Summary{}
	}
	data := a.Float64()
	mean, std := stat.MeanStdDev(data, nil)
	if len(data) == 1 {
		std = 0
	}
	return Summary{
		Count:  len(data),
		Min:    floats.Min(data),
		Max:    floats.Max(data),
		Sum:    floats.Sum(data),
		Mean:   mean,
		StdDev: std,
	}
}

// MinMax returns the minimum and maximum values in a slice
func MinMax(data []float32) (min, max float64) {
	if len(data) == 0 {
		return 0, 0
	}

	min = float64(data[0])
	max = float64(data[0])

	for _, v := range data {
		f := float64(v)
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}

	return min, max
}

func sameShape(a, b *models.Array) error {
	if a == nil || b == nil {
		return fmt.Errorf("cannot compare nil arrays")
	}
	if a.Shape != b.Shape {
		return fmt.Errorf("shape mismatch: %v vs %v", a.Shape, b.Shape)
	}
	return nil
}

// RMSE computes the root mean square error between two arrays
func RMSE(a, b *models.Array) (float64, error) {
	if err := sameShape(a, b); err != nil {
		return 0, err
	}
	n := len(a.Data)
	if n == 0 {
		return 0, nil
	}

	// Calculate MSE
	mse := 0.0
	for i := 0; i < n; i++ {
		diff := float64(a.Data[i]) - float64(b.Data[i])
		mse += diff * diff
	}
	mse /= float64(n)

	return math.Sqrt(mse), nil
}

// MaxAbsDiff is the largest element-wise absolute difference
func MaxAbsDiff(a, b *models.Array) (float64, error) {
	if err := sameShape(a, b); err != nil {
		return 0, err
	}
	var max float64
	for i := range a.Data {
		if d := math.Abs(float64(a.Data[i]) - float64(b.Data[i])); d > max {
			max = d
		}
	}
	return max, nil
}

// AllClose reports whether |a-b| <= atol + rtol*|b| holds element-wise.
func AllClose(a, b *models.Array, rtol, atol float64) bool {
	if sameShape(a, b) != nil {
		return false
	}
	for i := range a.Data {
		x, y := float64(a.Data[i]), float64(b.Data[i])
		if math.Abs(x-y) > atol+rtol*math.Abs(y) {
			return false
		}
	}
	return true
}

// Dot is the inner product of two arrays of the same shape, accumulated in
// float64.
func Dot(a, b *models.Array) (float64, error) {
	if err := sameShape(a, b); err != nil {
		return 0, err
	}
	return floats.Dot(a.Float64(), b.Float64()), nil
}

// SSIM computes a global structural similarity index between a reference and
// a test array. The dynamic range is taken from the reference.
func SSIM(ref, test *models.Array) (float64, error) {
	if err := sameShape(ref, test); err != nil {
		return 0, err
	}
	if len(ref.Data) == 0 {
		return 0, nil
	}
	lo, hi := MinMax(ref.Data)
	L := hi - lo
	if L == 0 {
		L = 1
	}
	const k1 = 0.01
	const k2 = 0.03

	c1 := (k1 * L) * (k1 * L)
	c2 := (k2 * L) * (k2 * L)

	x, y := ref.Float64(), test.Float64()
	muX := stat.Mean(x, nil)
	muY := stat.Mean(y, nil)

	sigmaX := stat.Variance(x, nil)
	sigmaY := stat.Variance(y, nil)
	sigmaXY := stat.Covariance(x, y, nil)

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)

	if den > 0 {
		return num / den, nil
	}
	return 0, nil
}

// Entropy computes the Shannon entropy of a 256-bin histogram of data
func Entropy(data []float32) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}

	min, max := MinMax(data)
	if max <= min {
		return 0
	}

	const numBins = 256
	hist := make([]float64, numBins)
	binWidth := (max - min) / float64(numBins)

	for _, v := range data {
		binIdx := int((float64(v) - min) / binWidth)
		if binIdx >= numBins {
			binIdx = numBins - 1
		} else if binIdx < 0 {
			binIdx = 0
		}
		hist[binIdx]++
	}

	entropy := 0.0
	for _, count := range hist {
		if count > 0 {
			p := count / float64(n)
			entropy -= p * math.Log2(p)
		}
	}

	return entropy
}
