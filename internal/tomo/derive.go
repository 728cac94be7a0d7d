package tomo

import "math"

// TraceDepth is the number of values recorded per derivative trace:
// f(t) plus the first four derivatives.
const TraceDepth = 5

// DefaultTraceEpsilon is the termination threshold: a trace terminates
// when the highest computed derivative is below this magnitude.
const DefaultTraceEpsilon = 1e-10

// Trace holds the analytic derivative chain of a cell value.
type Trace struct {
	Value      float64             // f(t)
	Order      int                 // highest derivative order computed
	Deriv      [TraceDepth]float64 // f, f', f'', f''', f''''
	Terminated bool                // highest derivative is numerically zero
}

// Tracer computes closed-form derivative traces of a fixed cubic
// polynomial f(t) = c0 + c1*t + c2*t^2 + c3*t^3. The coefficients are a
// policy constant of the engine, not derived from cell values.
type Tracer struct {
	Coeffs  [4]float64
	Epsilon float64
}

// NewTracer returns a Tracer with the reference coefficients (4,3,2,1)
// and the default termination epsilon.
func NewTracer() Tracer {
	return Tracer{Coeffs: [4]float64{4, 3, 2, 1}, Epsilon: DefaultTraceEpsilon}
}

// At evaluates the polynomial and its first four derivatives at t.
// The initial value seeds the trace but the chain itself follows the
// tracer's polynomial; this mirrors the per-cell evolution model. At is
// purely functional and always succeeds for finite inputs.
func (tr Tracer) At(initial, t float64) Trace {
	c := tr.Coeffs
	eps := tr.Epsilon
	if eps <= 0 {
		eps = DefaultTraceEpsilon
	}

	var out Trace
	out.Deriv[0] = c[0] + c[1]*t + c[2]*t*t + c[3]*t*t*t
	out.Deriv[1] = c[1] + 2*c[2]*t + 3*c[3]*t*t
	out.Deriv[2] = 2*c[2] + 6*c[3]*t
	out.Deriv[3] = 6 * c[3]
	out.Deriv[4] = 0

	out.Value = out.Deriv[0]
	out.Order = TraceDepth - 1
	out.Terminated = math.Abs(out.Deriv[TraceDepth-1]) < eps
	return out
}
