// Package httpapi serves region and apartment search over HTTP with gin.
//
//	GET /region_code?address=서울 강남   region codes matching an address
//	GET /region_code?code=1168         region codes starting with a code prefix
//	GET /apart/search?addr=&apt_name=  complexes resolved by region and name
//	                  &ranked=true     closest names first
//	GET /rate?address=                 deposit interest rate region
//	GET /healthz
//	GET /metrics                       Prometheus exposition
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bastiangx/jamofind/internal/logger"
	"github.com/bastiangx/jamofind/internal/utils"
	"github.com/bastiangx/jamofind/pkg/region"
	"github.com/bastiangx/jamofind/pkg/resolve"
	"github.com/bastiangx/jamofind/pkg/server"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// BaseResponse wraps region code answers.
type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Result  T      `json:"result"`
	Error   string `json:"error,omitempty"`
}

// Options configure an API.
type Options struct {
	Addr  string
	Debug bool
	// Bounds validate the address and name parameters.
	Bounds utils.QueryBounds
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// API is the HTTP surface over the search indexes.
type API struct {
	deps    server.Deps
	opts    Options
	engine  *gin.Engine
	started time.Time
	logger  *log.Logger
}

// New creates an API and registers its routes.
func New(deps server.Deps, opts Options) *API {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	a := &API{
		deps:    deps,
		opts:    opts,
		engine:  gin.New(),
		started: time.Now(),
		logger:  logger.New("http"),
	}
	a.engine.Use(gin.Recovery(), a.requestLogger())
	a.routes()
	return a
}

func (a *API) routes() {
	a.engine.GET("/region_code", a.handleRegionCode)
	a.engine.GET("/apart/search", a.handleApartSearch)
	a.engine.GET("/rate", a.handleRate)
	a.engine.GET("/healthz", a.handleHealth)
	a.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.opts.Gatherer, promhttp.HandlerOpts{})))
}

// Handler exposes the engine, mostly for tests.
func (a *API) Handler() http.Handler {
	return a.engine
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (a *API) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.opts.Addr,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("Listening on %s", a.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}

func (a *API) handleRegionCode(c *gin.Context) {
	if address, ok := c.GetQuery("address"); ok {
		if reason := a.opts.Bounds.Check(address); reason != "" {
			c.JSON(http.StatusBadRequest, BaseResponse[[]region.Code]{Error: reason})
			return
		}
		c.JSON(http.StatusOK, BaseResponse[[]region.Code]{
			Success: true,
			Result:  nonNil(a.deps.Regions.Search(address)),
		})
		return
	}
	if code, ok := c.GetQuery("code"); ok {
		if !utils.IsOnlyNumbers(code) {
			c.JSON(http.StatusBadRequest, BaseResponse[[]region.Code]{Error: "code must be digits"})
			return
		}
		c.JSON(http.StatusOK, BaseResponse[[]region.Code]{
			Success: true,
			Result:  nonNil(a.deps.Regions.Decode(code)),
		})
		return
	}
	c.JSON(http.StatusBadRequest, BaseResponse[[]region.Code]{Error: "address or code is required"})
}

func (a *API) handleApartSearch(c *gin.Context) {
	addr := c.Query("addr")
	aptName := c.Query("apt_name")
	if reason := a.opts.Bounds.Check(addr); reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	ids, err := a.deps.Resolver.Search(c.Request.Context(), addr, aptName)
	if err != nil {
		a.logger.Errorf("Resolving %q %q: %v", addr, aptName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ranked, _ := strconv.ParseBool(c.Query("ranked")); ranked {
		ids = resolve.RankByName(ids, aptName)
	}
	c.JSON(http.StatusOK, nonNil(ids))
}

func (a *API) handleRate(c *gin.Context) {
	address := c.Query("address")
	if reason := a.opts.Bounds.Check(address); reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}
	if codes := a.deps.Regions.Search(address); len(codes) > 0 {
		address = codes[0].Address
	}
	c.JSON(http.StatusOK, gin.H{
		"address": address,
		"region":  resolve.RateRegion(address),
	})
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(a.started).Round(time.Second).String(),
	})
}

// nonNil keeps empty results rendering as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
