// Package marketdata resolves underlying spot prices for contracts priced
// by ticker instead of an explicit spot.
package marketdata

import (
	"context"
	"math"
	"strings"
	"sync"

	massive "github.com/massive-com/client-go/v2/rest"
	"github.com/massive-com/client-go/v2/rest/models"
	"github.com/pkg/errors"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// ErrNoQuote is returned when a source has no usable price for a ticker.
var ErrNoQuote = errors.New("no quote")

// SpotSource supplies the current spot price of an underlying.
type SpotSource interface {
	Spot(ctx context.Context, ticker string) (float64, error)
}

// prevCloser is the slice of the Massive REST client used here.
type prevCloser interface {
	GetPreviousCloseAgg(ctx context.Context, params *models.GetPreviousCloseAggParams, options ...models.RequestOption) (*models.GetPreviousCloseAggResponse, error)
}

// MassiveSpotSource prices an underlying at its previous session close.
// Results are cached per ticker for the lifetime of the source.
type MassiveSpotSource struct {
	client prevCloser

	mu    sync.Mutex
	cache map[string]float64
}

// NewMassiveSpotSource builds a source over the Massive REST API.
func NewMassiveSpotSource(apiKey string) (*MassiveSpotSource, error) {
	if apiKey == "" {
		return nil, errors.New("massive: api key is required")
	}
	logger.Infof("initializing Massive spot source")
	return newMassiveSpotSource(massive.New(apiKey)), nil
}

func newMassiveSpotSource(c prevCloser) *MassiveSpotSource {
	return &MassiveSpotSource{client: c, cache: map[string]float64{}}
}

func (s *MassiveSpotSource) Spot(ctx context.Context, ticker string) (float64, error) {
	ticker = normalize(ticker)
	if ticker == "" {
		return 0, errors.New("massive: empty ticker")
	}

	s.mu.Lock()
	if v, ok := s.cache[ticker]; ok {
		s.mu.Unlock()
		logger.Tracef("spot cache hit %s=%v", ticker, v)
		return v, nil
	}
	s.mu.Unlock()

	logger.Debugf("previous close request: %s", ticker)
	params := models.GetPreviousCloseAggParams{Ticker: ticker}.WithAdjusted(true)
	resp, err := s.client.GetPreviousCloseAgg(ctx, params)
	if err != nil {
		logger.Errorf("previous close request failed for %s: %v", ticker, err)
		return 0, errors.Wrapf(err, "massive: previous close %s", ticker)
	}
	if resp == nil || len(resp.Results) == 0 {
		return 0, errors.Wrapf(ErrNoQuote, "massive: %s", ticker)
	}

	px := resp.Results[len(resp.Results)-1].Close
	if !(px > 0) || math.IsInf(px, 0) {
		return 0, errors.Wrapf(ErrNoQuote, "massive: %s close %v", ticker, px)
	}

	s.mu.Lock()
	s.cache[ticker] = px
	s.mu.Unlock()

	logger.Tracef("spot resolved %s=%v", ticker, px)
	return px, nil
}

// StaticSpotSource serves fixed prices keyed by upper-case ticker.
type StaticSpotSource map[string]float64

func (s StaticSpotSource) Spot(_ context.Context, ticker string) (float64, error) {
	v, ok := s[normalize(ticker)]
	if !ok {
		return 0, errors.Wrapf(ErrNoQuote, "static: %s", ticker)
	}
	return v, nil
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
