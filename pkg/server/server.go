package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bastiangx/jamofind/internal/logger"
	"github.com/bastiangx/jamofind/internal/utils"
	"github.com/bastiangx/jamofind/pkg/apartment"
	"github.com/bastiangx/jamofind/pkg/config"
	"github.com/bastiangx/jamofind/pkg/region"
	"github.com/bastiangx/jamofind/pkg/resolve"
	"github.com/charmbracelet/log"
	"github.com/panjf2000/ants/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Regions is the region index as the server uses it.
type Regions interface {
	Search(query string) []region.Code
	Decode(prefix string) []region.Code
}

// Apartments is the apartment index as the server uses it.
type Apartments interface {
	Search(query string) []apartment.Address
}

// Resolver joins region and apartment searches.
type Resolver interface {
	Search(ctx context.Context, addr, aptName string) ([]resolve.ApartmentID, error)
}

// Deps are the indexes a Server answers from.
type Deps struct {
	Regions    Regions
	Apartments Apartments
	Resolver   Resolver
}

// Server handles msgpack IPC for search requests.
type Server struct {
	deps   Deps
	cfg    config.ServerConfig
	bounds utils.QueryBounds

	dec *msgpack.Decoder

	writeMu sync.Mutex
	enc     *msgpack.Encoder

	pool     *ants.Pool
	inflight sync.WaitGroup
	logger   *log.Logger
}

// NewServer creates a server reading requests from r and writing responses to w.
// At most cfg.Workers requests are handled at once.
func NewServer(deps Deps, cfg config.ServerConfig, r io.Reader, w io.Writer) (*Server, error) {
	pool, err := ants.NewPool(max(cfg.Workers, 1))
	if err != nil {
		return nil, fmt.Errorf("server pool: %w", err)
	}
	return &Server{
		deps:   deps,
		cfg:    cfg,
		bounds: utils.QueryBounds{Min: cfg.MinQuery, Max: cfg.MaxQuery},
		dec:    msgpack.NewDecoder(r),
		enc:    msgpack.NewEncoder(w),
		pool:   pool,
		logger: logger.New("server"),
	}, nil
}

// Start writes the ready frame and serves requests until the input ends or ctx is done.
// It returns once every accepted request has been answered.
func (s *Server) Start(ctx context.Context) error {
	defer s.pool.Release()
	defer s.inflight.Wait()

	s.logger.Debug("Starting server")
	s.send(StatusResponse{Status: "ready"})

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.logger.Debug("Input closed, shutting down")
				return nil
			}
			s.logger.Errorf("Reading request: %v", err)
			return err
		}

		var req SearchRequest
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.logger.Errorf("Decoding request: %v", err)
			s.sendError("", "invalid request", 400)
			continue
		}

		s.inflight.Add(1)
		if err := s.pool.Submit(func() {
			defer s.inflight.Done()
			s.handle(ctx, req)
		}); err != nil {
			s.inflight.Done()
			s.logger.Errorf("Submitting request %s: %v", req.ID, err)
			s.sendError(req.ID, "server busy", 503)
		}
	}
}

// handle answers one request.
func (s *Server) handle(ctx context.Context, req SearchRequest) {
	if reason := s.validate(req); reason != "" {
		s.logger.Debugf("Rejected request %s: %s", req.ID, reason)
		s.sendError(req.ID, reason, 400)
		return
	}

	start := time.Now()
	var (
		results any
		count   int
	)

	switch req.Kind {
	case KindRegion:
		res := truncate(s.deps.Regions.Search(req.Query), s.limit(req))
		results, count = res, len(res)
	case KindDecode:
		res := truncate(s.deps.Regions.Decode(req.Query), s.limit(req))
		results, count = res, len(res)
	case KindApart:
		res := truncate(s.deps.Apartments.Search(req.Query), s.limit(req))
		results, count = res, len(res)
	case KindResolve:
		res, err := s.deps.Resolver.Search(ctx, req.Query, req.Apt)
		if err != nil {
			s.logger.Errorf("Resolving request %s: %v", req.ID, err)
			s.sendError(req.ID, err.Error(), 500)
			return
		}
		res = truncate(res, s.limit(req))
		results, count = res, len(res)
	case KindRate:
		res := []RateResult{s.rate(req.Query)}
		results, count = res, len(res)
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown kind: %s", req.Kind), 400)
		return
	}

	elapsed := time.Since(start)
	s.logger.Debugf("Took [ %v ] for %s '%s' (%d results)", elapsed, req.Kind, req.Query, count)

	s.send(SearchResponse{
		ID:        req.ID,
		Results:   results,
		Count:     count,
		TimeTaken: elapsed.Microseconds(),
	})
}

// validate returns "" for an acceptable request.
func (s *Server) validate(req SearchRequest) string {
	if req.ID == "" {
		return "missing id"
	}
	if req.Kind == KindResolve && req.Query == "" && req.Apt != "" {
		return "missing address"
	}
	return s.bounds.Check(req.Query)
}

// limit is the request limit clamped to the configured maximum.
func (s *Server) limit(req SearchRequest) int {
	if req.Limit <= 0 || req.Limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return req.Limit
}

func (s *Server) rate(query string) RateResult {
	address := utils.CollapseSpaces(query)
	if codes := s.deps.Regions.Search(query); len(codes) > 0 {
		address = codes[0].Address
	}
	return RateResult{Address: address, Region: resolve.RateRegion(address)}
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// send writes one frame. Frames from concurrent handlers never interleave.
func (s *Server) send(v any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.enc.Encode(v); err != nil {
		s.logger.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
