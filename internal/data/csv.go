// Package data loads option contracts from tabular sources.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Columns is the number of positional fields in a contract row:
// kind, spot, strike, rate, volatility, maturity, quantity.
const Columns = 7

// ReadOptions controls how a contract table is read.
type ReadOptions struct {
	// HasHeader skips the first record. Contract files carry a header
	// row unless told otherwise.
	HasHeader bool
}

// DefaultReadOptions matches the layout of existing contract files.
var DefaultReadOptions = ReadOptions{HasHeader: true}

// RowError reports the 1-based data row that could not become a contract.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// kind decodes the option type column.
type kind pricing.OptionType

func (k *kind) UnmarshalCSV(s string) error {
	t, err := pricing.ParseOptionType(s)
	if err != nil {
		return err
	}
	*k = kind(t)
	return nil
}

// number decodes a numeric column; empty cells are rejected instead of
// becoming zero.
type number float64

func (n *number) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("empty numeric field")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = number(v)
	return nil
}

// contractRow mirrors one CSV record in column order.
type contractRow struct {
	Kind       kind   `csv:"kind"`
	Spot       number `csv:"spot"`
	Strike     number `csv:"strike"`
	Rate       number `csv:"rate"`
	Volatility number `csv:"volatility"`
	Maturity   number `csv:"maturity"`
	Quantity   number `csv:"quantity"`
}

func (r contractRow) contract() (pricing.Contract, error) {
	return pricing.NewContract(
		pricing.OptionType(r.Kind),
		float64(r.Spot),
		float64(r.Strike),
		float64(r.Rate),
		float64(r.Volatility),
		float64(r.Maturity),
		float64(r.Quantity),
	)
}

// ReadContracts parses every row of r into a validated contract, keeping
// input order. Any malformed or out-of-domain row aborts the read.
func ReadContracts(r io.Reader, opts ReadOptions) ([]pricing.Contract, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = Columns
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	if opts.HasHeader {
		header, err := reader.Read()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading header")
		}
		logger.Tracef("skipping header %v", header)
	}

	var rows []contractRow
	if err := gocsv.UnmarshalCSVWithoutHeaders(&rowCounter{r: reader}, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		var re *RowError
		if errors.As(err, &re) {
			return nil, re
		}
		// conversion errors raised by gocsv count data rows from 1
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, &RowError{Row: pe.Line, Err: pe.Err}
		}
		return nil, errors.Wrap(err, "decoding contract rows")
	}

	contracts := make([]pricing.Contract, 0, len(rows))
	for i, row := range rows {
		c, err := row.contract()
		if err != nil {
			return nil, &RowError{Row: i + 1, Err: err}
		}
		contracts = append(contracts, c)
	}

	logger.Debugf("read %d contracts", len(contracts))
	return contracts, nil
}

// rowCounter numbers the records it hands to gocsv so that reader errors
// (field count, quoting) report data rows rather than file lines, which
// also count the header and comment lines.
type rowCounter struct {
	r    *csv.Reader
	rows int
}

func (c *rowCounter) Read() ([]string, error) {
	rec, err := c.r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, err
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return nil, &RowError{Row: c.rows + 1, Err: err}
	}
	c.rows++
	return rec, nil
}

func (c *rowCounter) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		rec, err := c.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// LoadContracts opens path and reads its contracts.
func LoadContracts(path string, opts ReadOptions) ([]pricing.Contract, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open contracts file")
	}
	defer f.Close()

	contracts, err := ReadContracts(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return contracts, nil
}
