package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"TickerLens/internal/calculator"
	"TickerLens/internal/collector"
	"TickerLens/internal/glossary"
	"TickerLens/internal/render"
	"TickerLens/internal/strategy"
)

// paramQuery carries optional indicator overrides from the query string.
type paramQuery struct {
	SMAFast        *int     `form:"sma_fast"`
	SMASlow        *int     `form:"sma_slow"`
	EMASpan        *int     `form:"ema"`
	RSIWindow      *int     `form:"rsi"`
	RSIMethod      *string  `form:"rsi_method"`
	MACDFast       *int     `form:"macd_fast"`
	MACDSlow       *int     `form:"macd_slow"`
	MACDSignal     *int     `form:"macd_signal"`
	BBWindow       *int     `form:"bb_window"`
	BBStdDev       *float64 `form:"bb_k"`
	StochWindow    *int     `form:"stoch"`
	StochSmoothing *int     `form:"stoch_smooth"`
}

func (q paramQuery) apply(p calculator.Params) calculator.Params {
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&p.SMAFast, q.SMAFast)
	setInt(&p.SMASlow, q.SMASlow)
	setInt(&p.EMASpan, q.EMASpan)
	setInt(&p.RSIWindow, q.RSIWindow)
	setInt(&p.MACDFast, q.MACDFast)
	setInt(&p.MACDSlow, q.MACDSlow)
	setInt(&p.MACDSignal, q.MACDSignal)
	setInt(&p.BBWindow, q.BBWindow)
	setInt(&p.StochWindow, q.StochWindow)
	setInt(&p.StochSmoothing, q.StochSmoothing)
	if q.BBStdDev != nil {
		p.BBStdDev = *q.BBStdDev
	}
	if q.RSIMethod != nil {
		p.RSIMethod = strings.ToLower(strings.TrimSpace(*q.RSIMethod))
	}
	return p
}

func (s *Server) params(c *gin.Context) (calculator.Params, error) {
	var q paramQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return calculator.Params{}, errors.Join(calculator.ErrInvalidParameter, err)
	}
	return q.apply(s.collector.Params), nil
}

func (s *Server) handleIndicators(c *gin.Context) {
	params, err := s.params(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	a, err := s.collector.CollectWithParams(c.Request.Context(), c.Param("symbol"), params)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":     a.Symbol,
		"source":     a.Source,
		"fetched_at": a.FetchedAt,
		"params":     params,
		"snapshot":   a.Snapshot,
		"indicators": a.Indicators,
		"warnings":   a.Warnings,
	})
}

func (s *Server) handleOutlook(c *gin.Context) {
	a, err := s.collector.Collect(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":    a.Symbol,
		"snapshot":  a.Snapshot,
		"outlook":   strategy.Evaluate(a.Symbol, a.Snapshot),
		"valuation": strategy.RecommendValuation(a.Fundamentals),
		"warnings":  a.Warnings,
	})
}

func (s *Server) handleFundamentals(c *gin.Context) {
	f, err := s.collector.Fundamentals(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":         f.Symbol,
		"name":           f.Name(),
		"fundamentals":   f,
		"key_statistics": strategy.KeyStatistics(f),
		"sections":       strategy.FundamentalSections(f),
		"valuation":      strategy.RecommendValuation(f),
	})
}

func (s *Server) handleNews(c *gin.Context) {
	r, err := s.collector.News(c.Request.Context(), c.Param("symbol"), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleGlossary(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	entries := glossary.All()
	if q != "" {
		entries = glossary.Search(q)
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "entries": entries})
}

func (s *Server) handleChart(c *gin.Context) {
	params, err := s.params(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	a, err := s.collector.CollectWithParams(c.Request.Context(), c.Param("symbol"), params)
	if err != nil {
		s.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := render.Page(&buf, a); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, collector.ErrInvalidSymbol), errors.Is(err, calculator.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, collector.ErrUnknownSymbol):
		return http.StatusNotFound
	case errors.Is(err, collector.ErrNotSupported):
		return http.StatusNotImplemented
	case errors.Is(err, collector.ErrNewsUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, calculator.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, collector.ErrProvider):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	ev := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		ev = s.logger.Error()
	}
	ev.Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg("Request failed")
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
