// Package zeta evaluates the Riemann zeta function at fixed high decimal
// precision over sampling grids. Standard float64 arithmetic loses too many
// digits to cancellation inside the critical strip, so every point is
// computed with arbitrary-precision complex arithmetic and only the final
// magnitude is brought back to float64.
package zeta

import (
	"math"
	"strconv"

	ap "github.com/lukaszgryglicki/apcomplex"
)

const (
	// Digits is the working decimal precision, matching the reference
	// simulator's 25 significant digits.
	Digits = 25

	// PrecisionBits is Digits converted to binary precision
	// (25 * log2(10) = 83.05, rounded up to a word-friendly size).
	PrecisionBits uint = 96

	// correction terms use Bernoulli numbers B2..B28
	maxCorrections = 14

	// a correction term below this magnitude no longer moves the first
	// 25 digits; stop summing
	tailCutoff = 1e-32
)

// bernoulli holds B_{2j} for j = 1..maxCorrections as integer fractions,
// parsed at working precision on evaluator construction.
var bernoulli = [maxCorrections][2]string{
	{"1", "6"},
	{"-1", "30"},
	{"1", "42"},
	{"-1", "30"},
	{"5", "66"},
	{"-691", "2730"},
	{"7", "6"},
	{"-3617", "510"},
	{"43867", "798"},
	{"-174611", "330"},
	{"854513", "138"},
	{"-236364091", "2730"},
	{"8553103", "6"},
	{"-23749461029", "870"},
}

// Evaluator computes zeta values via Euler--Maclaurin summation:
//
//	zeta(s) = sum_{k=1}^{N-1} k^-s + N^(1-s)/(s-1) + N^-s/2
//	        + sum_j B_{2j}/(2j)! * s(s+1)..(s+2j-2) * N^(1-s-2j)
//
// the direct sum plus pole and Bernoulli tail corrections. N grows with
// |Im(s)| so the tail stays convergent across the requested strip.
//
// The evaluator is immutable after construction: the log table and the
// Bernoulli coefficients are shared read-only by any number of goroutines.
type Evaluator struct {
	prec uint

	zero *ap.Complex
	one  *ap.Complex
	two  *ap.Complex

	// logs[k-1] = Log(k) for k = 1..len(logs), precomputed once so the
	// per-point direct sum does no repeated logarithms.
	logs []*ap.Complex

	// coef[j-1] = B_{2j}/(2j)!
	coef [maxCorrections]*ap.Complex
}

// NewEvaluator builds an evaluator whose log table covers every summation
// length needed for points with |Im(s)| <= maxAbsT.
func NewEvaluator(maxAbsT float64) *Evaluator {
	p := PrecisionBits
	e := &Evaluator{
		prec: p,
		zero: ap.MustParse("0", p),
		one:  ap.MustParse("1", p),
		two:  ap.MustParse("2", p),
	}

	n := termCount(maxAbsT)
	e.logs = make([]*ap.Complex, n)
	for k := 1; k <= n; k++ {
		e.logs[k-1] = ap.New(p).Log(ap.MustParse(strconv.Itoa(k), p))
	}

	// B_{2j}/(2j)!, with the factorial accumulated incrementally
	fact := e.one // (2j)!
	for j := 1; j <= maxCorrections; j++ {
		fact = ap.New(p).Mul(fact, ap.MustParse(strconv.Itoa(2*j-1), p))
		fact = ap.New(p).Mul(fact, ap.MustParse(strconv.Itoa(2*j), p))
		num := ap.MustParse(bernoulli[j-1][0], p)
		den := ap.MustParse(bernoulli[j-1][1], p)
		b := ap.New(p).Div(num, den)
		e.coef[j-1] = ap.New(p).Div(b, fact)
	}

	return e
}

// termCount picks the direct-summation length N for a point with
// imaginary part t. With maxCorrections Bernoulli terms the remainder
// behaves like (|s|/2piN)^(2j); N = 50 + 2|t| keeps that ratio far enough
// below one for 25 digits across the strip.
func termCount(t float64) int {
	return 50 + int(math.Ceil(2*math.Abs(t)))
}

// Zeta evaluates zeta(sigma + it) at working precision.
func (e *Evaluator) Zeta(sigma, t float64) (*ap.Complex, error) {
	p := e.prec
	s := e.parsePoint(sigma, t)

	sMinus1 := ap.New(p).Sub(s, e.one)
	if e.absFloat(sMinus1) < 1e-12 {
		return nil, &EvalError{Sigma: sigma, T: t, Reason: "pole of zeta at s=1"}
	}

	n := termCount(t)
	negS := ap.New(p).Sub(e.zero, s)

	// direct sum over k = 1..N-1
	sum := e.zero
	for k := 1; k < n; k++ {
		term := ap.New(p).Exp(ap.New(p).Mul(negS, e.logK(k)))
		sum = ap.New(p).Add(sum, term)
	}

	logN := e.logK(n)
	oneMinusS := ap.New(p).Sub(e.one, s)

	// N^(1-s)/(s-1) and N^-s/2
	t1 := ap.New(p).Div(ap.New(p).Exp(ap.New(p).Mul(oneMinusS, logN)), sMinus1)
	t2 := ap.New(p).Div(ap.New(p).Exp(ap.New(p).Mul(negS, logN)), e.two)

	z := ap.New(p).Add(sum, ap.New(p).Add(t1, t2))

	// Bernoulli tail: term_j = B_{2j}/(2j)! * s(s+1)..(s+2j-2) * N^(1-s-2j)
	rising := s
	prevMag := math.Inf(1)
	for j := 1; j <= maxCorrections; j++ {
		if j > 1 {
			f1 := ap.New(p).Add(s, ap.MustParse(strconv.Itoa(2*j-3), p))
			f2 := ap.New(p).Add(s, ap.MustParse(strconv.Itoa(2*j-2), p))
			rising = ap.New(p).Mul(rising, ap.New(p).Mul(f1, f2))
		}
		expo := ap.New(p).Sub(oneMinusS, ap.MustParse(strconv.Itoa(2*j), p))
		term := ap.New(p).Mul(e.coef[j-1], ap.New(p).Mul(rising, ap.New(p).Exp(ap.New(p).Mul(expo, logN))))

		mag := e.absFloat(term)
		if j > 2 && mag > prevMag {
			// tail started growing: the asymptotic series is past its
			// useful range for this point
			return nil, &EvalError{Sigma: sigma, T: t, Reason: "correction terms diverge"}
		}
		z = ap.New(p).Add(z, term)
		if mag < tailCutoff {
			break
		}
		prevMag = mag
	}

	return z, nil
}

// Magnitude evaluates |zeta(sigma + it)| as a float64. The caller is
// responsible for any flooring; a non-finite result is an evaluation
// failure.
func (e *Evaluator) Magnitude(sigma, t float64) (float64, error) {
	z, err := e.Zeta(sigma, t)
	if err != nil {
		return 0, err
	}
	m := e.absFloat(z)
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, &EvalError{Sigma: sigma, T: t, Reason: "non-finite magnitude"}
	}
	return m, nil
}

func (e *Evaluator) logK(k int) *ap.Complex {
	if k <= len(e.logs) {
		return e.logs[k-1]
	}
	// point outside the table's range; compute without mutating shared state
	return ap.New(e.prec).Log(ap.MustParse(strconv.Itoa(k), e.prec))
}

func (e *Evaluator) parsePoint(sigma, t float64) *ap.Complex {
	re := strconv.FormatFloat(sigma, 'g', 17, 64)
	im := strconv.FormatFloat(t, 'g', 17, 64)
	return ap.MustParse("("+re+" "+im+")", e.prec)
}

func (e *Evaluator) absFloat(a *ap.Complex) float64 {
	s := ap.New(e.prec).AbsStringFixed(a, 40)
	v, err := strconv.ParseFloat(trimSigned(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func trimSigned(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '+') {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}
