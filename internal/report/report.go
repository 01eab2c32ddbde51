package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/batch"
)

// Options controls how valuations are rendered.
type Options struct {
	// Precision is the number of decimal places for values; negative keeps
	// the shortest representation that round-trips.
	Precision int
	// All writes every row to the text sink instead of only the last one.
	All bool
}

// Row is the flat rendering of one valuation.
type Row struct {
	Row        int     `json:"row" csv:"row"`
	Type       string  `json:"type" csv:"type"`
	Spot       float64 `json:"spot" csv:"spot"`
	Strike     float64 `json:"strike" csv:"strike"`
	Rate       float64 `json:"rate" csv:"rate"`
	Volatility float64 `json:"volatility" csv:"volatility"`
	Maturity   float64 `json:"maturity" csv:"maturity"`
	Quantity   float64 `json:"quantity" csv:"quantity"`
	Value      float64 `json:"value" csv:"-"`
	ValueText  string  `json:"-" csv:"value"`
}

// MarshalJSON writes NaN and ±Inf values as their text form, since JSON
// has no number for them.
func (r Row) MarshalJSON() ([]byte, error) {
	type plain Row
	return json.Marshal(struct {
		plain
		Value any `json:"value"`
	}{plain(r), jsonNumber(r.Value, r.ValueText)})
}

// UnmarshalJSON accepts the value as a number or as "NaN", "+Inf", "-Inf".
func (r *Row) UnmarshalJSON(b []byte) error {
	type plain Row
	aux := struct {
		*plain
		Value json.RawMessage `json:"value"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if len(aux.Value) == 0 {
		return nil
	}

	text := string(aux.Value)
	if aux.Value[0] == '"' {
		if err := json.Unmarshal(aux.Value, &text); err != nil {
			return err
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return errors.Wrapf(err, "row %d value", r.Row)
	}
	r.Value = v
	r.ValueText = text
	return nil
}

// Document is the JSON report layout.
type Document struct {
	Valuations []Row         `json:"valuations"`
	Summary    batch.Summary `json:"summary"`
}

func (d Document) MarshalJSON() ([]byte, error) {
	type summary struct {
		Count int `json:"count"`
		Calls int `json:"calls"`
		Puts  int `json:"puts"`
		Total any `json:"total"`
	}
	s := d.Summary
	return json.Marshal(struct {
		Valuations []Row   `json:"valuations"`
		Summary    summary `json:"summary"`
	}{
		Valuations: d.Valuations,
		Summary:    summary{s.Count, s.Calls, s.Puts, jsonNumber(s.Total, FormatValue(s.Total, -1))},
	})
}

func jsonNumber(v float64, text string) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return text
	}
	return v
}

// FormatValue renders v with the given precision.
func FormatValue(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	d := decimal.NewFromFloat(v)
	if precision < 0 {
		return d.String()
	}
	return d.StringFixed(int32(precision))
}

func roundValue(v float64, precision int) float64 {
	if precision < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(int32(precision)).Float64()
	return f
}

// Rows flattens valuations for the JSON and CSV sinks.
func Rows(vals []batch.Valuation, opts Options) []Row {
	rows := make([]Row, 0, len(vals))
	for _, v := range vals {
		c := v.Contract
		rows = append(rows, Row{
			Row:        v.Row,
			Type:       c.Type.String(),
			Spot:       c.Spot,
			Strike:     c.Strike,
			Rate:       c.Rate,
			Volatility: c.Volatility,
			Maturity:   c.Maturity,
			Quantity:   c.Quantity,
			Value:      roundValue(v.Value, opts.Precision),
			ValueText:  FormatValue(v.Value, opts.Precision),
		})
	}
	return rows
}

// WriteText writes the console rendering. By default only the last
// valuation is printed, one value per line; opts.All prints every row.
func WriteText(w io.Writer, vals []batch.Valuation, opts Options) error {
	if !opts.All {
		last, ok := batch.Last(vals)
		if !ok {
			return errors.New("no valuations to report")
		}
		_, err := fmt.Fprintln(w, FormatValue(last.Value, opts.Precision))
		return err
	}

	for _, v := range vals {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", v.Row, v.Contract.Type, FormatValue(v.Value, opts.Precision)); err != nil {
			return err
		}
	}
	return nil
}

func WriteJSON(w io.Writer, vals []batch.Valuation, opts Options) error {
	doc := Document{
		Valuations: Rows(vals, opts),
		Summary:    batch.Summarize(vals),
	}
	doc.Summary.Total = roundValue(doc.Summary.Total, opts.Precision)

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode json report")
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func WriteCSV(w io.Writer, vals []batch.Valuation, opts Options) error {
	rows := Rows(vals, opts)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return errors.Wrap(err, "encode csv report")
	}
	return nil
}

// Write dispatches on format: "text", "json" or "csv".
func Write(w io.Writer, format string, vals []batch.Valuation, opts Options) error {
	switch format {
	case "", "text":
		return WriteText(w, vals, opts)
	case "json":
		return WriteJSON(w, vals, opts)
	case "csv":
		return WriteCSV(w, vals, opts)
	}
	return errors.Errorf("unknown report format %q", format)
}
