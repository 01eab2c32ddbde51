package marketdata

import (
	"context"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/contactkeval/option-pricer/internal/logger"
)

type spotRow struct {
	Ticker string  `csv:"ticker"`
	Spot   float64 `csv:"spot"`
}

// ReadSpots parses a ticker,spot CSV with a header row into a static
// source. Later rows override earlier ones for the same ticker.
func ReadSpots(r io.Reader) (StaticSpotSource, error) {
	var rows []spotRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return StaticSpotSource{}, nil
		}
		return nil, errors.Wrap(err, "reading spots")
	}

	out := make(StaticSpotSource, len(rows))
	for i, row := range rows {
		t := normalize(row.Ticker)
		if t == "" || !(row.Spot > 0) {
			return nil, errors.Errorf("spots row %d: invalid entry %q=%v", i+1, row.Ticker, row.Spot)
		}
		out[t] = row.Spot
	}
	return out, nil
}

// LoadSpots reads a spot file from disk.
func LoadSpots(path string) (StaticSpotSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open spots file")
	}
	defer f.Close()

	s, err := ReadSpots(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	logger.Debugf("loaded %d spots from %s", len(s), path)
	return s, nil
}

// chain asks primary first and falls back to secondary when primary has
// no quote for the ticker.
type chain struct {
	primary, secondary SpotSource
}

// WithSecondary returns a source that consults secondary for tickers
// primary does not know. A nil secondary returns primary unchanged.
func WithSecondary(primary, secondary SpotSource) SpotSource {
	if secondary == nil {
		return primary
	}
	if primary == nil {
		return secondary
	}
	return &chain{primary: primary, secondary: secondary}
}

func (c *chain) Spot(ctx context.Context, ticker string) (float64, error) {
	v, err := c.primary.Spot(ctx, ticker)
	if err == nil || !errors.Is(err, ErrNoQuote) {
		return v, err
	}
	logger.Tracef("no primary quote for %s, delegating to secondary", ticker)
	return c.secondary.Spot(ctx, ticker)
}
