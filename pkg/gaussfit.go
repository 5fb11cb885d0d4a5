package music

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	nGaussParams = 3
	lambdaStart  = 1e-3
	lambdaMin    = 1e-15
	lambdaMax    = 1e16
)

// GaussParams are the parameters of a non normalized gaussian
// a·exp(−(x−μ)²/(2σ²)).
type GaussParams struct {
	Amplitude float64
	Center    float64
	Sigma     float64
}

func (p GaussParams) Eval(x float64) float64 {
	d := x - p.Center
	return p.Amplitude * math.Exp(-d*d/(2*p.Sigma*p.Sigma))
}

func (p GaussParams) String() string {
	return fmt.Sprintf("amplitude=%.4g center=%.4g sigma=%.4g", p.Amplitude, p.Center, p.Sigma)
}

type FitSettings struct {
	MaxIterations int
	Tolerance     float64
}

func DefaultFitSettings() FitSettings {
	return FitSettings{MaxIterations: 200, Tolerance: 1e-8}
}

// FitGaussian fits a gaussian to the points (x, y) with Levenberg-Marquardt
// starting from seed. Every failure is returned as *ErrFitConvergence.
func FitGaussian(x, y []float64, seed GaussParams, settings FitSettings) (GaussParams, error) {
	if len(x) != len(y) {
		return GaussParams{}, fitError("got %d bin centers and %d counts", len(x), len(y))
	}
	if len(x) < nGaussParams {
		return GaussParams{}, fitError("%d points for %d free parameters", len(x), nGaussParams)
	}
	populated := 0
	for _, v := range y {
		if v > 0 {
			populated++
		}
	}
	if populated < nGaussParams {
		return GaussParams{}, fitError("%d populated bins for %d free parameters", populated, nGaussParams)
	}
	if !positive(seed.Sigma) {
		return GaussParams{}, fitError("invalid sigma prior %g", seed.Sigma)
	}
	if settings.MaxIterations <= 0 || !positive(settings.Tolerance) {
		settings = DefaultFitSettings()
	}

	n := len(x)
	params := []float64{seed.Amplitude, seed.Center, seed.Sigma}
	res := make([]float64, n)
	gaussResiduals(res, x, y, params)
	cost := floats.Dot(res, res)

	jac := mat.NewDense(n, nGaussParams, nil)
	jtj := mat.NewSymDense(nGaussParams, nil)
	grad := mat.NewVecDense(nGaussParams, nil)
	damped := mat.NewSymDense(nGaussParams, nil)
	var step mat.VecDense
	var chol mat.Cholesky

	trial := make([]float64, nGaussParams)
	trialRes := make([]float64, n)
	lambda := lambdaStart
	evaluate := true

	for iter := 0; iter < settings.MaxIterations; iter++ {
		if evaluate {
			gaussJacobian(jac, x, params)
			jtj.SymOuterK(1, jac.T())
			grad.MulVec(jac.T(), mat.NewVecDense(n, res))
			for i := 0; i < nGaussParams; i++ {
				if jtj.At(i, i) == 0 {
					return GaussParams{}, fitError("singular jacobian at %v", paramsOf(params))
				}
			}
			evaluate = false
		}

		damped.CopySym(jtj)
		for i := 0; i < nGaussParams; i++ {
			damped.SetSym(i, i, jtj.At(i, i)*(1+lambda))
		}
		if ok := chol.Factorize(damped); !ok {
			lambda *= 10
			if lambda > lambdaMax {
				return GaussParams{}, fitError("singular normal equations at %v", paramsOf(params))
			}
			continue
		}
		if err := chol.SolveVecTo(&step, grad); err != nil {
			lambda *= 10
			if lambda > lambdaMax {
				return GaussParams{}, fitError("singular normal equations at %v", paramsOf(params))
			}
			continue
		}

		small := true
		for i := range trial {
			delta := step.AtVec(i)
			trial[i] = params[i] + delta
			if math.Abs(delta) > settings.Tolerance*(math.Abs(params[i])+settings.Tolerance) {
				small = false
			}
		}
		gaussResiduals(trialRes, x, y, trial)
		trialCost := floats.Dot(trialRes, trialRes)

		if configuration.Verbosity > 2 {
			message := fmt.Sprintf("iteration %d: lambda=%.3g cost=%.6g trial=%.6g %v",
				iter, lambda, cost, trialCost, paramsOf(trial))
			logger.Info(message, "gaussfit")
		}

		if !math.IsNaN(trialCost) && !math.IsInf(trialCost, 0) && trialCost < cost {
			reduction := cost - trialCost
			previous := cost
			copy(params, trial)
			res, trialRes = trialRes, res
			cost = trialCost
			lambda = math.Max(lambda/10, lambdaMin)
			evaluate = true
			if small || reduction <= settings.Tolerance*previous {
				return checkFit(params, x)
			}
			continue
		}
		if small {
			return checkFit(params, x)
		}
		lambda *= 10
		if lambda > lambdaMax {
			return GaussParams{}, fitError("residuals cannot be reduced at %v", paramsOf(params))
		}
	}
	return GaussParams{}, fitError("no convergence after %d iterations, last estimate %v",
		settings.MaxIterations, paramsOf(params))
}

// FitHistogram seeds the fit on the peak bin of h and fits its bin counts.
func FitHistogram(h Histogram, sigma float64, settings FitSettings) (GaussParams, error) {
	if h.Bins() == 0 {
		return GaussParams{}, fitError("empty histogram")
	}
	seed := SeedFromHistogram(h, sigma)
	return FitGaussian(h.Centers(), h.Counts, seed, settings)
}

func checkFit(params []float64, x []float64) (GaussParams, error) {
	p := paramsOf(params)
	p.Sigma = math.Abs(p.Sigma)
	for _, v := range []float64{p.Amplitude, p.Center, p.Sigma} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return GaussParams{}, fitError("non finite result %v", p)
		}
	}
	if p.Amplitude <= 0 {
		return GaussParams{}, fitError("non positive amplitude %v", p)
	}
	if p.Sigma == 0 {
		return GaussParams{}, fitError("zero width %v", p)
	}
	lo, hi := floats.Min(x), floats.Max(x)
	if p.Center < lo || p.Center > hi {
		return GaussParams{}, fitError("center %g outside histogram span [%g, %g]", p.Center, lo, hi)
	}
	return p, nil
}

// gaussResiduals stores y - f(x) in dst.
func gaussResiduals(dst, x, y, params []float64) {
	p := paramsOf(params)
	for i := range x {
		dst[i] = y[i] - p.Eval(x[i])
	}
}

// gaussJacobian stores the derivatives of f(x) with respect to
// amplitude, center and sigma.
func gaussJacobian(dst *mat.Dense, x, params []float64) {
	a, mu, sigma := params[0], params[1], params[2]
	s2 := sigma * sigma
	for i, xi := range x {
		d := xi - mu
		e := math.Exp(-d * d / (2 * s2))
		dst.Set(i, 0, e)
		dst.Set(i, 1, a*e*d/s2)
		dst.Set(i, 2, a*e*d*d/(s2*sigma))
	}
}

func paramsOf(params []float64) GaussParams {
	return GaussParams{Amplitude: params[0], Center: params[1], Sigma: params[2]}
}

func fitError(format string, args ...any) *ErrFitConvergence {
	return &ErrFitConvergence{Reason: fmt.Sprintf(format, args...)}
}
