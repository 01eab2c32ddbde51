// Package server exposes the pricing engine over HTTP.
package server

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/contactkeval/option-pricer/internal/batch"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/marketdata"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
)

// ErrNoSpotSource is returned for ticker requests on a server without
// market data access.
var ErrNoSpotSource = errors.New("ticker given but no spot source is configured")

// ContractRequest is the JSON form of one contract. Spot may be omitted
// when Ticker is set and the server has a spot source.
type ContractRequest struct {
	Type       *pricing.OptionType `json:"type" binding:"required"`
	Spot       float64             `json:"spot"`
	Ticker     string              `json:"ticker"`
	Strike     float64             `json:"strike" binding:"gt=0"`
	Rate       float64             `json:"rate"`
	Volatility float64             `json:"volatility" binding:"gt=0"`
	Maturity   float64             `json:"maturity" binding:"gt=0"`
	Quantity   *float64            `json:"quantity"` // defaults to 1
}

type BatchRequest struct {
	Contracts []ContractRequest `json:"contracts" binding:"required,min=1,dive"`
}

type PriceResponse struct {
	Value   float64 `json:"value"`
	Formula string  `json:"formula"`
}

// Handler serves pricing requests against one engine.
type Handler struct {
	engine *pricing.Engine
	spots  marketdata.SpotSource
}

// NewHandler builds a handler. spots may be nil, in which case requests
// must carry an explicit spot.
func NewHandler(e *pricing.Engine, spots marketdata.SpotSource) *Handler {
	return &Handler{engine: e, spots: spots}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
	v1 := r.Group("/v1")
	{
		v1.POST("/price", h.Price)
		v1.POST("/batch", h.Batch)
	}
}

func (h *Handler) Health(c *gin.Context) {
	// the reference fixture only pins the legacy formula
	if h.engine.Formula() == pricing.FormulaLegacy {
		if err := pricing.SelfCheck(h.engine); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "regression", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "formula": h.engine.Formula().String()})
}

func (h *Handler) Price(c *gin.Context) {
	var req ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ct, err := h.contract(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}

	v := h.engine.Value(ct)
	logger.Debugf("priced %s S=%v K=%v value=%v", ct.Type, ct.Spot, ct.Strike, v)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "contract value is not a finite number",
			"value": report.FormatValue(v, -1),
		})
		return
	}
	c.JSON(http.StatusOK, PriceResponse{Value: v, Formula: h.engine.Formula().String()})
}

func (h *Handler) Batch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cs := make([]pricing.Contract, 0, len(req.Contracts))
	for i, r := range req.Contracts {
		ct, err := h.contract(c.Request.Context(), r)
		if err != nil {
			c.JSON(statusOf(err), gin.H{"error": err.Error(), "row": i + 1})
			return
		}
		cs = append(cs, ct)
	}

	vals := batch.Evaluate(h.engine, cs)
	logger.Debugf("priced batch of %d", len(vals))
	c.JSON(http.StatusOK, report.Document{
		Valuations: report.Rows(vals, report.Options{Precision: -1}),
		Summary:    batch.Summarize(vals),
	})
}

func (h *Handler) contract(ctx context.Context, r ContractRequest) (pricing.Contract, error) {
	spot := r.Spot
	if spot == 0 && r.Ticker != "" {
		if h.spots == nil {
			return pricing.Contract{}, ErrNoSpotSource
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		s, err := h.spots.Spot(ctx, r.Ticker)
		if err != nil {
			return pricing.Contract{}, errors.Wrap(err, "spot lookup")
		}
		spot = s
	}

	qty := 1.0
	if r.Quantity != nil {
		qty = *r.Quantity
	}
	return pricing.NewContract(*r.Type, spot, r.Strike, r.Rate, r.Volatility, r.Maturity, qty)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, pricing.ErrDomain), errors.Is(err, ErrNoSpotSource):
		return http.StatusBadRequest
	case errors.Is(err, marketdata.ErrNoQuote):
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// RequestIDHeader carries the per-request identifier echoed back to clients.
const RequestIDHeader = "X-Request-ID"

// requestID tags every request with an id, reusing the caller's if sent,
// and logs the request outcome at debug level.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()
		logger.Debugf("%s %s %d id=%s took=%s", c.Request.Method, c.FullPath(), c.Writer.Status(), id, time.Since(start))
	}
}

// New returns a gin engine with recovery, request ids and the pricing routes.
func New(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID())
	h.RegisterRoutes(r)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h *Handler) error {
	srv := &http.Server{Addr: addr, Handler: New(h)}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server starting addr=%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	logger.Infof("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
