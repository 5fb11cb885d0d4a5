package music

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

func gaussPoints(p GaussParams, low, high float64, n int) ([]float64, []float64) {
	x := make([]float64, n)
	y := make([]float64, n)
	step := (high - low) / float64(n-1)
	for i := range x {
		x[i] = low + step*float64(i)
		y[i] = p.Eval(x[i])
	}
	return x, y
}

func TestFitGaussian_ExactPoints(t *testing.T) {
	t.Parallel()

	truth := GaussParams{Amplitude: 1000, Center: 50, Sigma: 8}
	x, y := gaussPoints(truth, 0, 100, 101)

	fit, err := FitGaussian(x, y, GaussParams{Amplitude: 900, Center: 47, Sigma: 10}, DefaultFitSettings())
	require.NoError(t, err)

	assert.InDelta(t, truth.Amplitude, fit.Amplitude, 1e-2)
	assert.InDelta(t, truth.Center, fit.Center, 1e-4)
	assert.InDelta(t, truth.Sigma, fit.Sigma, 1e-4)
}

func TestFitHistogram_NormalSample(t *testing.T) {
	t.Parallel()

	samples := normalSample(5000, 300, 15, 11)
	h, err := BuildHistogram(samples, 200, nil)
	require.NoError(t, err)

	fit, err := FitHistogram(h, 10, DefaultFitSettings())
	require.NoError(t, err)

	assert.InDelta(t, 300, fit.Center, 2)
	assert.InDelta(t, 15, fit.Sigma, 3)
	assert.Greater(t, fit.Amplitude, 0.0)
}

func TestFitHistogram_WidePrior(t *testing.T) {
	t.Parallel()

	samples := normalSample(testEvents, 610, 25, 12)
	h, err := BuildHistogram(samples, 100, nil)
	require.NoError(t, err)

	fit, err := FitHistogram(h, 25, DefaultFitSettings())
	require.NoError(t, err)
	assert.InDelta(t, 610, fit.Center, 2)
	assert.InDelta(t, 25, fit.Sigma, 3)
}

func TestGaussJacobian_MatchesFiniteDifferences(t *testing.T) {
	t.Parallel()

	x := make([]float64, 21)
	for i := range x {
		x[i] = float64(i) / 2
	}
	params := []float64{100, 5, 2}

	analytic := mat.NewDense(len(x), nGaussParams, nil)
	gaussJacobian(analytic, x, params)

	numeric := mat.NewDense(len(x), nGaussParams, nil)
	fd.Jacobian(numeric, func(dst, p []float64) {
		model := paramsOf(p)
		for i, xi := range x {
			dst[i] = model.Eval(xi)
		}
	}, params, &fd.JacobianSettings{Formula: fd.Central})

	assert.True(t, mat.EqualApprox(analytic, numeric, 1e-4))
}

func TestGaussResiduals(t *testing.T) {
	t.Parallel()

	params := []float64{2, 0, 1}
	x := []float64{0, 1}
	y := []float64{3, 0}
	res := make([]float64, 2)
	gaussResiduals(res, x, y, params)

	assert.InDelta(t, 1.0, res[0], 1e-12)
	assert.InDelta(t, -2*math.Exp(-0.5), res[1], 1e-12)
}

func TestFitGaussian_Errors(t *testing.T) {
	t.Parallel()

	seed := GaussParams{Amplitude: 5, Center: 2, Sigma: 1}
	tests := []struct {
		name string
		x, y []float64
		seed GaussParams
	}{
		{"mismatched lengths", []float64{1, 2, 3}, []float64{1, 2}, seed},
		{"too few points", []float64{1, 2}, []float64{1, 2}, seed},
		{"too few populated bins", []float64{0, 1, 2, 3, 4}, []float64{0, 0, 5, 0, 1}, seed},
		{"zero sigma prior", []float64{0, 1, 2, 3, 4}, []float64{1, 3, 5, 3, 1}, GaussParams{Amplitude: 5, Center: 2}},
		{"nan sigma prior", []float64{0, 1, 2, 3, 4}, []float64{1, 3, 5, 3, 1}, GaussParams{Amplitude: 5, Center: 2, Sigma: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := FitGaussian(tt.x, tt.y, tt.seed, DefaultFitSettings())
			var fitErr *ErrFitConvergence
			assert.True(t, errors.As(err, &fitErr), "got %v", err)
		})
	}
}

func TestFitHistogram_SinglePopulatedBin(t *testing.T) {
	t.Parallel()

	h, err := BuildHistogram(constantSample(100, 600), 200, nil)
	require.NoError(t, err)

	_, err = FitHistogram(h, 10, DefaultFitSettings())
	var fitErr *ErrFitConvergence
	require.True(t, errors.As(err, &fitErr))
	assert.Contains(t, fitErr.Reason, "populated bins")
}

func TestGaussParams_Eval(t *testing.T) {
	t.Parallel()

	p := GaussParams{Amplitude: 10, Center: 1, Sigma: 2}
	assert.Equal(t, 10.0, p.Eval(1))
	assert.InDelta(t, 10*math.Exp(-0.5), p.Eval(3), 1e-12)
	assert.InDelta(t, p.Eval(-1), p.Eval(3), 1e-12)
}
