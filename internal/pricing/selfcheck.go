package pricing

import (
	"errors"
	"fmt"
)

// ErrRegression marks a self-check whose values drifted from the reference fixture.
var ErrRegression = errors.New("pricing regression")

// Reference fixture shared by every build of the pricer.
const (
	RefSpot       = 1.0
	RefStrike     = 0.9
	RefRate       = 0.015
	RefVolatility = 0.2
	RefMaturity   = 1
	RefQuantity   = 1

	RefCallValue = 0.14498531543284654
	RefPutValue  = 0.37221239391036487
)

// RegressionError carries the mismatching leg of the self-check.
type RegressionError struct {
	Type     OptionType
	Got      float64
	Expected float64
}

func (e *RegressionError) Error() string {
	return fmt.Sprintf("%v: %s value %v, expected %v", ErrRegression, e.Type, e.Got, e.Expected)
}

func (e *RegressionError) Unwrap() error { return ErrRegression }

// ReferenceContract returns the fixture contract of type t.
func ReferenceContract(t OptionType) Contract {
	c, err := NewContract(t, RefSpot, RefStrike, RefRate, RefVolatility, RefMaturity, RefQuantity)
	if err != nil {
		panic(err) // fixture constants are in-domain
	}
	return c
}

// SelfCheck prices the reference call and put with e and requires exact
// equality with the recorded values. Only FormulaLegacy is expected to pass.
func SelfCheck(e *Engine) error {
	fixtures := []struct {
		t        OptionType
		expected float64
	}{
		{Call, RefCallValue},
		{Put, RefPutValue},
	}

	for _, f := range fixtures {
		got := e.Value(ReferenceContract(f.t))
		if got != f.expected {
			return &RegressionError{Type: f.t, Got: got, Expected: f.expected}
		}
	}
	return nil
}
