// Package batch evaluates sequences of contracts with a pricing engine.
//
// The legacy pricer reported only the value of the final row of a file.
// Evaluate returns every row instead; Last recovers the legacy output.
package batch

import (
	"iter"

	"gonum.org/v1/gonum/floats"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Valuation is the priced result of one input row.
type Valuation struct {
	Row      int              `json:"row"` // 1-based input position
	Contract pricing.Contract `json:"-"`
	Value    float64          `json:"value"`
}

// Summary aggregates a set of valuations.
type Summary struct {
	Count int     `json:"count"`
	Calls int     `json:"calls"`
	Puts  int     `json:"puts"`
	Total float64 `json:"total"`
}

// All lazily prices contracts in input order. The sequence may be ranged
// over any number of times.
func All(e *pricing.Engine, contracts []pricing.Contract) iter.Seq2[int, Valuation] {
	return func(yield func(int, Valuation) bool) {
		for i, c := range contracts {
			v := Valuation{Row: i + 1, Contract: c, Value: e.Value(c)}
			logger.Tracef("row=%d type=%s value=%v", v.Row, c.Type, v.Value)
			if !yield(i, v) {
				return
			}
		}
	}
}

// Evaluate prices every contract and returns the valuations in input order.
func Evaluate(e *pricing.Engine, contracts []pricing.Contract) []Valuation {
	out := make([]Valuation, 0, len(contracts))
	for _, v := range All(e, contracts) {
		out = append(out, v)
	}
	return out
}

// Last returns the final valuation, or false when vals is empty.
func Last(vals []Valuation) (Valuation, bool) {
	if len(vals) == 0 {
		return Valuation{}, false
	}
	return vals[len(vals)-1], true
}

// Summarize counts valuations by option type and sums their values.
func Summarize(vals []Valuation) Summary {
	s := Summary{Count: len(vals)}
	values := make([]float64, len(vals))
	for i, v := range vals {
		values[i] = v.Value
		if v.Contract.Type == pricing.Call {
			s.Calls++
		} else {
			s.Puts++
		}
	}
	s.Total = floats.Sum(values)
	return s
}
