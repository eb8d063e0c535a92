package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bastiangx/jamofind/internal/utils"
	"github.com/bastiangx/jamofind/pkg/apartment"
	"github.com/bastiangx/jamofind/pkg/config"
	"github.com/bastiangx/jamofind/pkg/finder"
	"github.com/bastiangx/jamofind/pkg/metrics"
	"github.com/bastiangx/jamofind/pkg/region"
	"github.com/bastiangx/jamofind/pkg/resolve"
	"github.com/bastiangx/jamofind/pkg/server"
	"github.com/bastiangx/jamofind/pkg/store"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
)

// engine ties the store, both indexes and the resolver together for one command.
type engine struct {
	cfg      *config.Config
	store    *store.Store
	regions  *region.Index
	aparts   *apartment.Index
	resolver *resolve.Resolver
}

// openStore opens the configured store. A relative path lives under the data directory.
func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.Store.InMemory {
		log.Debug("Using in-memory store")
		return store.Open("", true)
	}
	pr, err := utils.NewPathResolver()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	path := pr.ResolveDataPath(cfg.Store.Path)
	log.Debugf("Using store at: %s", path)
	return store.Open(path, false)
}

// newEngine creates empty indexes over st. Metrics are registered on reg when it is not nil.
func newEngine(cfg *config.Config, st *store.Store, reg prometheus.Registerer) (*engine, error) {
	opts := finder.Options{
		CacheSize:     cfg.Server.CacheSize,
		ProgressEvery: cfg.Index.ProgressEvery,
	}
	if reg != nil {
		observer, err := metrics.NewPrometheusObserver("", reg)
		if err != nil {
			return nil, err
		}
		opts.Observer = observer
	}

	e := &engine{
		cfg:     cfg,
		store:   st,
		regions: region.NewIndex(opts),
		aparts:  apartment.NewIndex(cfg.Index.NGram, opts),
	}
	e.resolver = resolve.New(e.regions, e.aparts, cfg.Server.Workers)
	return e, nil
}

func (e *engine) deps() server.Deps {
	return server.Deps{
		Regions:    e.regions,
		Apartments: e.aparts,
		Resolver:   e.resolver,
	}
}

// build rebuilds both indexes from the store, regions first since rents are
// placed through the region index. Snapshots are written when enabled.
func (e *engine) build(ctx context.Context) error {
	start := time.Now()

	codes, err := e.store.Regions(ctx)
	if err != nil {
		return fmt.Errorf("load regions: %w", err)
	}
	if err := e.regions.Build(ctx, codes); err != nil {
		return fmt.Errorf("build %s index: %w", region.IndexName, err)
	}
	if err := e.aparts.Build(ctx, e.store, e.regions); err != nil {
		return fmt.Errorf("build %s index: %w", apartment.IndexName, err)
	}

	log.Infof("Indexed %s regions and %s complexes in %v",
		humanize.Comma(int64(e.regions.Finder().Len())),
		humanize.Comma(int64(e.aparts.Finder().Len())),
		time.Since(start).Round(time.Millisecond))

	if !e.cfg.Index.Snapshot {
		return nil
	}
	return e.saveSnapshots()
}

func (e *engine) saveSnapshots() error {
	if err := saveSnapshot(e.store, region.IndexName, e.regions.Finder()); err != nil {
		return err
	}
	return saveSnapshot(e.store, apartment.IndexName, e.aparts.Finder())
}

func saveSnapshot[T any](st *store.Store, name string, f *finder.Finder[T]) error {
	var buf bytes.Buffer
	if err := f.Export(&buf); err != nil {
		return fmt.Errorf("export %s snapshot: %w", name, err)
	}
	if err := st.PutSnapshot(name, buf.Bytes()); err != nil {
		return fmt.Errorf("store %s snapshot: %w", name, err)
	}
	log.Debugf("Saved %s snapshot (%s)", name, humanize.Bytes(uint64(buf.Len())))
	return nil
}

func loadSnapshot[T any](st *store.Store, name string) (*finder.Finder[T], error) {
	blob, err := st.Snapshot(name)
	if err != nil {
		return nil, err
	}
	return finder.Import[T](bytes.NewReader(blob))
}

// load restores both indexes from their snapshots and falls back to a full
// build when a snapshot is missing or unreadable.
func (e *engine) load(ctx context.Context) error {
	if e.cfg.Index.Snapshot {
		err := e.restore()
		if err == nil {
			log.Debug("Indexes restored from snapshots")
			return nil
		}
		if errors.Is(err, store.ErrNotFound) {
			log.Info("No snapshots yet, building indexes")
		} else {
			log.Warnf("Snapshots unusable, rebuilding: %v", err)
		}
	}
	return e.build(ctx)
}

func (e *engine) restore() error {
	regions, err := loadSnapshot[region.Code](e.store, region.IndexName)
	if err != nil {
		return err
	}
	aparts, err := loadSnapshot[apartment.Address](e.store, apartment.IndexName)
	if err != nil {
		return err
	}
	e.regions.Restore(regions)
	e.aparts.Restore(aparts)
	return nil
}

func (e *engine) Close() error {
	return e.store.Close()
}
