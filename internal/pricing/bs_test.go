package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustContract(t *testing.T, typ OptionType, spot, strike, rate, vol, maturity, qty float64) Contract {
	t.Helper()
	c, err := NewContract(typ, spot, strike, rate, vol, maturity, qty)
	require.NoError(t, err)
	return c
}

// The regression fixture must reproduce to the last bit.
func TestBlackScholesReferenceFixture(t *testing.T) {
	call := BlackScholesValue(ReferenceContract(Call))
	put := BlackScholesValue(ReferenceContract(Put))

	if call != RefCallValue {
		t.Fatalf("call value %v, expected %v", call, RefCallValue)
	}
	if put != RefPutValue {
		t.Fatalf("put value %v, expected %v", put, RefPutValue)
	}
}

func TestBlackScholesD1D2(t *testing.T) {
	e := NewEngine()
	c := ReferenceContract(Call)

	assert.InDelta(t, 0.7018025782891318, e.D1(c), 1e-15)
	assert.InDelta(t, 0.5018025782891317, e.D2(c), 1e-15)

	// d1 - d2 == σ/√T under the legacy formula
	c = mustContract(t, Call, 100, 95, 0.03, 0.25, 4, 1)
	assert.InDelta(t, 0.25/2, e.D1(c)-e.D2(c), 1e-12)
}

// Under the legacy formula the put leg discounts Φ(d2), so textbook parity
// becomes call − put = S − 2·K·e^(−rT)·Φ(d2).
func TestBlackScholesLegacyCallPutIdentity(t *testing.T) {
	e := NewEngine()

	cases := []struct {
		spot, strike, rate, vol, maturity float64
	}{
		{1.0, 0.9, 0.015, 0.2, 1},
		{100, 100, 0.05, 0.2, 1},
		{100, 120, 0.01, 0.45, 2},
		{50, 40, -0.005, 0.3, 3},
		{10, 12, 0, 0.8, 0.25},
	}

	for _, tc := range cases {
		call := mustContract(t, Call, tc.spot, tc.strike, tc.rate, tc.vol, tc.maturity, 1)
		put := call.WithType(Put)

		lhs := e.Value(call) - e.Value(put)
		rhs := tc.spot - 2*tc.strike*math.Exp(-tc.rate*tc.maturity)*NormCDF(e.D2(call))

		if math.Abs(lhs-rhs) > 1e-9 {
			t.Fatalf("legacy call/put identity violated for %+v: LHS=%v RHS=%v", tc, lhs, rhs)
		}
	}
}

// Textbook put-call parity does not hold for the legacy formula.
func TestBlackScholesLegacyBreaksTextbookParity(t *testing.T) {
	e := NewEngine()
	call := ReferenceContract(Call)
	put := ReferenceContract(Put)

	lhs := e.Value(call) - e.Value(put)
	rhs := RefSpot - RefStrike*math.Exp(-RefRate*RefMaturity)
	assert.Greater(t, math.Abs(lhs-rhs), 0.1)
}

func TestBlackScholesCanonicalPutCallParity(t *testing.T) {
	e := NewEngine(WithFormula(FormulaCanonical))

	cases := []struct {
		spot, strike, rate, vol, maturity float64
	}{
		{1.0, 0.9, 0.015, 0.2, 1},
		{100, 100, 0.05, 0.2, 45.0 / 365.0},
		{100, 120, 0.01, 0.45, 2},
		{50, 40, -0.005, 0.3, 3},
	}

	for _, tc := range cases {
		call := mustContract(t, Call, tc.spot, tc.strike, tc.rate, tc.vol, tc.maturity, 1)
		put := call.WithType(Put)

		lhs := e.Value(call) - e.Value(put)
		rhs := tc.spot - tc.strike*math.Exp(-tc.rate*tc.maturity)

		if math.Abs(lhs-rhs) > 1e-9 {
			t.Fatalf("put-call parity violated for %+v: LHS=%v RHS=%v", tc, lhs, rhs)
		}
	}
}

// With a one-year maturity the two formulas agree on calls.
func TestBlackScholesFormulasAgreeAtOneYear(t *testing.T) {
	legacy := NewEngine()
	canonical := NewEngine(WithFormula(FormulaCanonical))

	c := mustContract(t, Call, 105, 100, 0.02, 0.3, 1, 3)
	assert.Equal(t, legacy.Value(c), canonical.Value(c))
}

func TestBlackScholesQuantityScaling(t *testing.T) {
	for _, f := range []Formula{FormulaLegacy, FormulaCanonical} {
		e := NewEngine(WithFormula(f))
		for _, typ := range []OptionType{Call, Put} {
			unit := mustContract(t, typ, 100, 95, 0.03, 0.25, 2, 1)
			base := e.Value(unit)

			for _, q := range []float64{0, 1, -1, 2.5, -7, 100} {
				got := e.Value(unit.WithQuantity(q))
				assert.InDelta(t, q*base, got, 1e-9, "formula=%s type=%s q=%v", f, typ, q)
			}
		}
	}
}

func TestBlackScholesCallMonotoneInVolatility(t *testing.T) {
	engines := map[string]struct {
		e        *Engine
		maturity float64
	}{
		"canonical": {NewEngine(WithFormula(FormulaCanonical)), 0.5},
		"legacy":    {NewEngine(), 1},
	}

	for name, tc := range engines {
		t.Run(name, func(t *testing.T) {
			prev := math.Inf(-1)
			for vol := 0.05; vol <= 1.5; vol += 0.05 {
				c := mustContract(t, Call, 100, 105, 0.02, vol, tc.maturity, 1)
				v := tc.e.Value(c)
				if v < prev {
					t.Fatalf("call value decreased at vol=%v: %v < %v", vol, v, prev)
				}
				prev = v
			}
		})
	}
}

func TestBlackScholesCallBasic(t *testing.T) {
	c := mustContract(t, Call, 100, 100, 0.05, 0.2, 30.0/365.0, 1)
	call := NewEngine(WithFormula(FormulaCanonical)).Value(c)
	if call <= 0 {
		t.Fatalf("expected call price > 0, got %f", call)
	}
}

func TestBlackScholesCustomCDF(t *testing.T) {
	calls := 0
	e := NewEngine(WithCDF(func(x float64) float64 {
		calls++
		return NormCDF(x)
	}))

	assert.Equal(t, RefCallValue, e.Value(ReferenceContract(Call)))
	assert.Equal(t, 2, calls)

	// nil keeps the default
	assert.Equal(t, RefPutValue, NewEngine(WithCDF(nil)).Value(ReferenceContract(Put)))
}

func TestBlackScholesDegenerateInputsDoNotPanic(t *testing.T) {
	e := NewEngine()
	cases := []Contract{
		{Type: Call, Spot: 1, Strike: 1, Rate: 0, Volatility: 0, Maturity: 1, Quantity: 1},
		{Type: Put, Spot: 1, Strike: 0.9, Rate: 0.01, Volatility: 0.2, Maturity: 0, Quantity: 1},
		{Type: Call, Spot: 0, Strike: 0.9, Rate: 0.01, Volatility: 0.2, Maturity: 1, Quantity: 1},
	}

	for _, c := range cases {
		assert.NotPanics(t, func() { e.Value(c) })
	}

	// 0/0 in d1 propagates as NaN
	assert.True(t, math.IsNaN(e.Value(cases[0])))
}

func TestParseFormula(t *testing.T) {
	f, err := ParseFormula("canonical")
	require.NoError(t, err)
	assert.Equal(t, FormulaCanonical, f)

	f, err = ParseFormula("")
	require.NoError(t, err)
	assert.Equal(t, FormulaLegacy, f)

	_, err = ParseFormula("textbook")
	assert.Error(t, err)
}
