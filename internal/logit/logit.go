// Package logit fits the reference binary classifier used by the prediction
// consistency checks: logistic regression with an L2 penalty on the weights,
// an unpenalized intercept, and inverse regularization strength C. The
// defaults match the reference model the audited datasets were calibrated
// against (C=1, 100 iterations, gradient tolerance 1e-4).
package logit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"datacheck/domain/core"
)

// Config controls the fit
type Config struct {
	C             float64
	MaxIterations int
	Tolerance     float64
}

// DefaultConfig returns the reference fit parameters
func DefaultConfig() Config {
	return Config{C: 1.0, MaxIterations: 100, Tolerance: 1e-4}
}

// Model is a fitted classifier. PredictProba reports the probability of the
// positive class, which is the larger of the two label values seen in
// training.
type Model struct {
	weights   []float64
	intercept float64
	posClass  float64
}

// Train fits a model on the design matrix x and binary labels y. Anything
// that prevents a meaningful fit is a hard error wrapping core.ErrFitFailed:
// empty input, non-finite values, fewer or more than two label classes, or
// an optimizer failure.
func Train(x *mat.Dense, y []float64, cfg Config) (*Model, error) {
	if cfg.C <= 0 {
		cfg.C = DefaultConfig().C
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultConfig().MaxIterations
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultConfig().Tolerance
	}

	n, d := x.Dims()
	if n == 0 || d == 0 {
		return nil, core.ErrEmptyFit
	}
	if len(y) != n {
		return nil, fmt.Errorf("%w: %d rows vs %d labels", core.ErrMisaligned, n, len(y))
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, core.ErrNonFiniteInput
		}
		for j := 0; j < d; j++ {
			v := x.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, core.ErrNonFiniteInput
			}
		}
	}

	_, pos, err := labelClasses(y)
	if err != nil {
		return nil, err
	}

	// Targets in {-1, +1}, positive class mapped to +1
	target := make([]float64, n)
	for i, v := range y {
		if v == pos {
			target[i] = 1
		} else {
			target[i] = -1
		}
	}

	obj := &objective{x: x, target: target, c: cfg.C}
	problem := optimize.Problem{Func: obj.value, Grad: obj.gradient}

	theta := make([]float64, d+1)
	settings := &optimize.Settings{
		MajorIterations:   cfg.MaxIterations,
		GradientThreshold: cfg.Tolerance,
	}

	result, optErr := optimize.Minimize(problem, theta, settings, &optimize.LBFGS{})
	if optErr != nil && (result == nil || result.Status != optimize.IterationLimit) {
		return nil, fmt.Errorf("%w: %v", core.ErrFitFailed, optErr)
	}

	weights := make([]float64, d)
	copy(weights, result.X[:d])
	return &Model{
		weights:   weights,
		intercept: result.X[d],
		posClass:  pos,
	}, nil
}

// labelClasses extracts exactly two distinct label values, smaller first
func labelClasses(y []float64) (neg, pos float64, err error) {
	seen := make(map[float64]bool, 2)
	for _, v := range y {
		if !seen[v] {
			seen[v] = true
			if len(seen) > 2 {
				return 0, 0, fmt.Errorf("%w: more than two label classes", core.ErrFitFailed)
			}
		}
	}
	if len(seen) < 2 {
		return 0, 0, core.ErrDegenerateLabels
	}
	first := true
	for v := range seen {
		if first {
			neg, pos = v, v
			first = false
			continue
		}
		if v < neg {
			neg = v
		} else {
			pos = v
		}
	}
	return neg, pos, nil
}

// PredictProba returns the positive-class probability for each row of x
func (m *Model) PredictProba(x *mat.Dense) ([]float64, error) {
	n, d := x.Dims()
	if d != len(m.weights) {
		return nil, fmt.Errorf("%w: %d features vs %d weights", core.ErrMisaligned, d, len(m.weights))
	}
	z := mat.NewVecDense(n, nil)
	z.MulVec(x, mat.NewVecDense(d, m.weights))

	proba := make([]float64, n)
	for i := 0; i < n; i++ {
		proba[i] = sigmoid(z.AtVec(i) + m.intercept)
	}
	return proba, nil
}

// Weights returns a copy of the fitted coefficients
func (m *Model) Weights() []float64 {
	out := make([]float64, len(m.weights))
	copy(out, m.weights)
	return out
}

// Intercept returns the fitted bias term
func (m *Model) Intercept() float64 {
	return m.intercept
}

// LogLoss computes binary cross-entropy between labels and predicted
// probabilities, with probabilities clipped away from 0 and 1. Returns NaN
// for empty or misaligned input.
func LogLoss(y, proba []float64) float64 {
	if len(y) == 0 || len(y) != len(proba) {
		return math.NaN()
	}
	const eps = 1e-15
	sum := 0.0
	for i, p := range proba {
		p = math.Min(math.Max(p, eps), 1-eps)
		sum += -(y[i]*math.Log(p) + (1-y[i])*math.Log(1-p))
	}
	return sum / float64(len(y))
}

// objective is the penalized negative log-likelihood:
//
//	f(w, b) = 0.5*w'w + C * sum_i log(1 + exp(-t_i * (x_i'w + b)))
//
// with targets t in {-1, +1} and the intercept b left out of the penalty.
type objective struct {
	x      *mat.Dense
	target []float64
	c      float64
}

func (o *objective) margins(theta []float64) []float64 {
	n, d := o.x.Dims()
	z := mat.NewVecDense(n, nil)
	z.MulVec(o.x, mat.NewVecDense(d, theta[:d]))

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = z.AtVec(i) + theta[d]
	}
	return out
}

func (o *objective) value(theta []float64) float64 {
	_, d := o.x.Dims()

	penalty := 0.5 * floats.Dot(theta[:d], theta[:d])

	loss := 0.0
	for i, z := range o.margins(theta) {
		loss += log1pExp(-o.target[i] * z)
	}
	return penalty + o.c*loss
}

func (o *objective) gradient(grad, theta []float64) {
	n, d := o.x.Dims()

	// residual_i = sigmoid(z_i) - y01_i, with y01 = (t+1)/2
	resid := make([]float64, n)
	for i, z := range o.margins(theta) {
		resid[i] = sigmoid(z) - (o.target[i]+1)/2
	}

	gw := mat.NewVecDense(d, grad[:d])
	gw.MulVec(o.x.T(), mat.NewVecDense(n, resid))
	for j := 0; j < d; j++ {
		grad[j] = theta[j] + o.c*grad[j]
	}
	grad[d] = o.c * floats.Sum(resid)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// log1pExp computes log(1 + exp(x)) without overflow
func log1pExp(x float64) float64 {
	if x > 35 {
		return x
	}
	if x < -35 {
		return math.Exp(x)
	}
	return math.Log1p(math.Exp(x))
}
