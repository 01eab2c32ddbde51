package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// OptionType is the exercise right of a European option.
type OptionType int

const (
	Call OptionType = iota // Call is the right to buy at the strike.
	Put                    // Put is the right to sell at the strike.
)

var (
	// ErrUnknownOptionType is returned when option kind text is neither "call" nor "put".
	ErrUnknownOptionType = errors.New("unknown option type")

	// ErrDomain marks a contract whose parameters leave the pricing formula undefined.
	ErrDomain = errors.New("contract outside pricing domain")
)

func (t OptionType) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("OptionType(%d)", int(t))
	}
}

// ParseOptionType maps "call" or "put" to an OptionType.
// Matching is case-sensitive; surrounding whitespace is ignored.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.TrimSpace(s) {
	case "call":
		return Call, nil
	case "put":
		return Put, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOptionType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t OptionType) MarshalText() ([]byte, error) {
	if t != Call && t != Put {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOptionType, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *OptionType) UnmarshalText(b []byte) error {
	v, err := ParseOptionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// DomainError reports the contract field that failed validation.
type DomainError struct {
	Field string
	Value float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%v: %s=%v", ErrDomain, e.Field, e.Value)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

// Contract is a single European option position.
// Build it with NewContract so every value the engine sees is in-domain.
type Contract struct {
	Type       OptionType
	Spot       float64 // current underlying price
	Strike     float64
	Rate       float64 // continuously compounded, annualized
	Volatility float64 // annualized
	Maturity   float64 // years
	Quantity   float64 // signed position size
}

// NewContract validates the parameters and returns the contract.
//
// Spot, strike, volatility and maturity must be strictly positive; every
// field must be finite. Rate and quantity may be zero or negative.
func NewContract(t OptionType, spot, strike, rate, volatility, maturity, quantity float64) (Contract, error) {
	if t != Call && t != Put {
		return Contract{}, fmt.Errorf("%w: %d", ErrUnknownOptionType, int(t))
	}

	positive := []struct {
		name string
		v    float64
	}{
		{"spot", spot},
		{"strike", strike},
		{"volatility", volatility},
		{"maturity", maturity},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return Contract{}, &DomainError{Field: p.name, Value: p.v}
		}
	}

	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Contract{}, &DomainError{Field: "rate", Value: rate}
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return Contract{}, &DomainError{Field: "quantity", Value: quantity}
	}

	return Contract{
		Type:       t,
		Spot:       spot,
		Strike:     strike,
		Rate:       rate,
		Volatility: volatility,
		Maturity:   maturity,
		Quantity:   quantity,
	}, nil
}

// WithQuantity returns a copy of c holding quantity q.
func (c Contract) WithQuantity(q float64) Contract {
	c.Quantity = q
	return c
}

// WithType returns a copy of c with the option type switched to t.
func (c Contract) WithType(t OptionType) Contract {
	c.Type = t
	return c
}
