package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

func contracts(t *testing.T) []pricing.Contract {
	t.Helper()
	var out []pricing.Contract
	for _, args := range [][7]float64{
		{0, 1.0, 0.9, 0.015, 0.2, 1, 1},
		{1, 1.0, 0.9, 0.015, 0.2, 1, 1},
		{0, 100, 105, 0.02, 0.25, 2, 10},
		{1, 100, 95, 0.01, 0.3, 1, -5},
	} {
		c, err := pricing.NewContract(pricing.OptionType(args[0]), args[1], args[2], args[3], args[4], args[5], args[6])
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func TestEvaluateKeepsEveryRowInOrder(t *testing.T) {
	e := pricing.NewEngine()
	cs := contracts(t)

	vals := Evaluate(e, cs)
	require.Len(t, vals, len(cs))

	for i, v := range vals {
		assert.Equal(t, i+1, v.Row)
		assert.Equal(t, cs[i], v.Contract)
		assert.Equal(t, e.Value(cs[i]), v.Value)
	}
	assert.Equal(t, pricing.RefCallValue, vals[0].Value)
	assert.Equal(t, pricing.RefPutValue, vals[1].Value)
}

// The legacy output is the value of the final row alone.
func TestLastMatchesFinalRow(t *testing.T) {
	e := pricing.NewEngine()
	cs := contracts(t)

	last, ok := Last(Evaluate(e, cs))
	require.True(t, ok)
	assert.Equal(t, e.Value(cs[len(cs)-1]), last.Value)
	assert.Equal(t, len(cs), last.Row)

	_, ok = Last(nil)
	assert.False(t, ok)
}

func TestAllIsLazyAndRestartable(t *testing.T) {
	calls := 0
	e := pricing.NewEngine(pricing.WithCDF(func(x float64) float64 {
		calls++
		return pricing.NormCDF(x)
	}))
	seq := All(e, contracts(t))

	for i, v := range seq {
		assert.Equal(t, 0, i)
		assert.Equal(t, 1, v.Row)
		break
	}
	assert.Equal(t, 2, calls)

	n := 0
	for range seq {
		n++
	}
	assert.Equal(t, 4, n)
}

func TestSummarize(t *testing.T) {
	vals := []Valuation{
		{Row: 1, Contract: pricing.ReferenceContract(pricing.Call), Value: 1.5},
		{Row: 2, Contract: pricing.ReferenceContract(pricing.Put), Value: -0.25},
		{Row: 3, Contract: pricing.ReferenceContract(pricing.Call), Value: 2},
	}

	s := Summarize(vals)
	assert.Equal(t, Summary{Count: 3, Calls: 2, Puts: 1, Total: 3.25}, s)
	assert.Equal(t, Summary{}, Summarize(nil))
}
