package goals

import "math"

const (
	defaultXTolerance     = 1e-5
	defaultMaxEvaluations = 500
)

var (
	sqrtEps    = math.Sqrt(2.220446049250313e-16)
	goldenMean = 0.5 * (3 - math.Sqrt(5))
)

// Minimum is the outcome of a bounded scalar minimisation
type Minimum struct {
	X           float64 // the abscissa of the best point found, always within [lo, hi]
	F           float64 // f(X)
	Evaluations int
	Converged   bool // false when the evaluation budget ran out or f went NaN
}

type minimizeSettings struct {
	xtol     float64
	maxEvals int
}

// MinimizeOption tweaks MinimizeBounded
type MinimizeOption func(*minimizeSettings)

// WithTolerance sets the absolute tolerance on X
func WithTolerance(xtol float64) MinimizeOption {
	return func(s *minimizeSettings) {
		if xtol > 0 {
			s.xtol = xtol
		}
	}
}

// WithMaxEvaluations caps the number of objective evaluations
func WithMaxEvaluations(n int) MinimizeOption {
	return func(s *minimizeSettings) {
		if n > 0 {
			s.maxEvals = n
		}
	}
}

// MinimizeBounded finds a local minimum of f in the closed interval [lo, hi]
// using Brent's bounded method: golden section steps, replaced by parabolic
// interpolation steps whenever the parabola is trustworthy.
// f need not be differentiable. The search always terminates, at the latest
// after the evaluation budget is spent.
func MinimizeBounded(f func(float64) float64, lo, hi float64, opts ...MinimizeOption) Minimum {
	settings := minimizeSettings{xtol: defaultXTolerance, maxEvals: defaultMaxEvaluations}
	for _, opt := range opts {
		opt(&settings)
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	a, b := lo, hi
	// v, w and x follow Brent's naming: x is the best point so far,
	// w the second best and v the previous value of w
	v := a + goldenMean*(b-a)
	w, x := v, v
	fx := f(x)
	fv, fw := fx, fx
	fu := math.Inf(1)
	evals := 1

	var d, e float64
	xm := 0.5 * (a + b)
	tol1 := sqrtEps*math.Abs(x) + settings.xtol/3
	tol2 := 2 * tol1
	converged := true

	for math.Abs(x-xm) > tol2-0.5*(b-a) {
		golden := true
		if math.Abs(e) > tol1 {
			// try a parabola through x, w and v
			golden = false
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			r = e
			e = d

			if math.Abs(p) < math.Abs(0.5*q*r) && p > q*(a-x) && p < q*(b-x) {
				d = p / q
				u := x + d
				// don't evaluate too close to the bounds
				if u-a < tol2 || b-u < tol2 {
					d = tol1 * signOrOne(xm-x)
				}
			} else {
				golden = true
			}
		}
		if golden {
			if x >= xm {
				e = a - x
			} else {
				e = b - x
			}
			d = goldenMean * e
		}

		u := x + signOrOne(d)*math.Max(math.Abs(d), tol1)
		fu = f(u)
		evals++

		if fu <= fx {
			if u >= x {
				a = x
			} else {
				b = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == x {
				v, fv = w, fw
				w, fw = u, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		}

		xm = 0.5 * (a + b)
		tol1 = sqrtEps*math.Abs(x) + settings.xtol/3
		tol2 = 2 * tol1

		if evals >= settings.maxEvals {
			converged = false
			break
		}
	}

	if math.IsNaN(x) || math.IsNaN(fx) || math.IsNaN(fu) {
		converged = false
	}

	return Minimum{X: x, F: fx, Evaluations: evals, Converged: converged}
}

// signOrOne is the sign of v, with zero treated as positive
func signOrOne(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
