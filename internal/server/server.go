// Package server exposes the ledger over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradeledger/chart"
	"github.com/rustyeddy/tradeledger/ledger"
	"github.com/rustyeddy/tradeledger/stats"
)

type Server struct {
	R        *gin.Engine
	Ledger   *ledger.Ledger
	Triggers ledger.Triggers
	Labels   chart.LabelSet
	Logger   *zap.Logger
	Metrics  *Metrics
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type messageRequest struct {
	Text string `json:"text" binding:"required"`
}

type messageResponse struct {
	*ledger.Outcome
	Reply        string `json:"reply"`
	Trigger      string `json:"trigger"`
	ChartFailure string `json:"chart_error,omitempty"`
	StoreFailure string `json:"store_error,omitempty"`
}

type pivotResponse struct {
	Rows []stats.DailyAggregate `json:"rows"`
}

// NewServer wires the router, middleware and handlers.
func NewServer(l *ledger.Ledger, triggers ledger.Triggers, labels chart.LabelSet, logger *zap.Logger) *Server {
	g := gin.New()

	s := &Server{
		R:        g,
		Ledger:   l,
		Triggers: triggers,
		Labels:   labels,
		Logger:   logger,
		Metrics:  NewMetrics(),
	}

	// Request logging and latency
	g.Use(func(cn *gin.Context) {
		start := time.Now()
		cn.Next()
		elapsed := time.Since(start)
		route := cn.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.Metrics.RequestDuration.
			WithLabelValues(cn.Request.Method, route, strconv.Itoa(cn.Writer.Status())).
			Observe(elapsed.Seconds())
		logger.Info("http_request",
			zap.String("method", cn.Request.Method),
			zap.String("path", cn.Request.URL.Path),
			zap.Int("status", cn.Writer.Status()),
			zap.String("ip", cn.ClientIP()),
			zap.Duration("latency", elapsed),
		)
	})

	g.Use(gin.Recovery())

	g.GET("/healthz", func(cn *gin.Context) { cn.JSON(http.StatusOK, gin.H{"ok": true}) })
	g.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	v1 := g.Group("/v1")
	v1.POST("/messages", s.postMessage)
	v1.GET("/stats", s.getStats)
	v1.GET("/pivot", s.getPivot)
	v1.GET("/chart", s.getChart)

	return s
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.R}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("http listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShut); err != nil {
		return err
	}
	s.Logger.Info("shutdown complete")
	return nil
}

// --- Helpers ---

func (s *Server) badRequest(c *gin.Context, code, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Code: code, Message: msg})
}

func (s *Server) internalError(c *gin.Context, where string, err error) {
	s.Logger.Error("internal_error", zap.String("where", where), zap.Error(err))
	c.JSON(http.StatusInternalServerError, apiError{Code: "internal_server_error", Message: "internal server error"})
}

// --- Handlers ---

func (s *Server) postMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "bad_request", "body must be JSON with a non-empty text field")
		return
	}

	trigger, ok := s.Triggers.Match(req.Text)
	if !ok {
		s.Metrics.MessagesTotal.WithLabelValues("ignored").Inc()
		s.badRequest(c, "no_trigger", "message does not start with an enabled trigger")
		return
	}

	out, err := s.Ledger.Handle(c.Request.Context(), req.Text, trigger)
	s.Metrics.Observe(out, err)
	if err != nil && out.ParseErr == nil {
		s.internalError(c, "Handle", err)
		return
	}

	resp := messageResponse{
		Outcome:      out,
		Reply:        out.Reply(),
		Trigger:      trigger,
		ChartFailure: out.ChartError(),
		StoreFailure: out.StoreError(),
	}
	status := http.StatusOK
	switch {
	case out.ParseErr != nil:
		status = http.StatusUnprocessableEntity
	case out.Added > 0:
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

func (s *Server) getStats(c *gin.Context) {
	snap, err := s.Ledger.Snapshot(c.Request.Context())
	if err != nil {
		s.internalError(c, "Snapshot", err)
		return
	}
	c.JSON(http.StatusOK, snap.Stats)
}

func (s *Server) getPivot(c *gin.Context) {
	snap, err := s.Ledger.Snapshot(c.Request.Context())
	if err != nil {
		s.internalError(c, "Snapshot", err)
		return
	}
	rows := snap.Pivot
	if rows == nil {
		rows = []stats.DailyAggregate{}
	}
	c.JSON(http.StatusOK, pivotResponse{Rows: rows})
}

func (s *Server) getChart(c *gin.Context) {
	snap, err := s.Ledger.Snapshot(c.Request.Context())
	if err != nil {
		s.internalError(c, "Snapshot", err)
		return
	}
	png, err := chart.Render(snap.Pivot, s.Labels.Labels())
	if errors.Is(err, chart.ErrNoChart) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		s.Metrics.FailuresTotal.WithLabelValues("chart").Inc()
		s.internalError(c, "Render", err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
