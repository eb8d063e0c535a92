package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	prompt "github.com/bastiangx/jamofind/internal/cli"
	"github.com/bastiangx/jamofind/internal/logger"
	"github.com/bastiangx/jamofind/internal/utils"
	"github.com/bastiangx/jamofind/pkg/apartment"
	"github.com/bastiangx/jamofind/pkg/config"
	"github.com/bastiangx/jamofind/pkg/httpapi"
	"github.com/bastiangx/jamofind/pkg/region"
	"github.com/bastiangx/jamofind/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

// loadConfig reads the config named by --config, or the default one, and
// applies the --store override.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, path, err := config.LoadConfigWithPriority(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log.Debugf("Using config file: (%s)", path)
	if p := c.String("store"); p != "" {
		cfg.Store.Path = p
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// sigHandler closes e and exits on SIGINT or SIGTERM. The stdin driven
// commands block in Read and cannot observe a cancelled context.
func sigHandler(e *engine) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		if err := e.Close(); err != nil {
			log.Errorf("Closing store: %v", err)
		}
		os.Exit(0)
	}()
}

// openEngine opens the store and loads both indexes from snapshots or the corpus.
func openEngine(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*engine, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	e, err := newEngine(cfg, st, reg)
	if err != nil {
		st.Close()
		return nil, err
	}
	if err := e.load(ctx); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func importCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	regionsPath, tradesPath, rentsPath := c.String("regions"), c.String("trades"), c.String("rents")
	if regionsPath == "" && tradesPath == "" && rentsPath == "" {
		return errors.New("nothing to import: pass --regions, --trades or --rents")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if regionsPath != "" {
		codes, err := readFile(regionsPath, region.ParseTSV)
		if err != nil {
			return err
		}
		if err := st.PutRegions(codes); err != nil {
			return err
		}
		log.Infof("Imported %s region codes", humanize.Comma(int64(len(codes))))
	}

	batch := c.Int("batch")
	for _, imp := range []struct {
		kind, path string
		load       func(context.Context, io.Reader, int) (int, error)
	}{
		{"trades", tradesPath, st.ImportTrades},
		{"rents", rentsPath, st.ImportRents},
	} {
		if imp.path == "" {
			continue
		}
		n, err := readFile(imp.path, func(r io.Reader) (int, error) {
			return imp.load(ctx, r, batch)
		})
		if err != nil {
			return err
		}
		log.Infof("Imported %s %s", humanize.Comma(int64(n)), imp.kind)
	}

	if !c.Bool("build") {
		log.Info("Index snapshots invalidated, the next start rebuilds them (or run build)")
		return nil
	}
	e, err := newEngine(cfg, st, nil)
	if err != nil {
		return err
	}
	return e.build(ctx)
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(utils.GetAbsolutePath(path))
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()

	v, err := read(f)
	if err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func buildCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	e, err := newEngine(cfg, st, nil)
	if err != nil {
		st.Close()
		return err
	}
	defer e.Close()
	return e.build(ctx)
}

func serveCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	e, err := openEngine(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer e.Close()
	sigHandler(e)

	srv, err := server.NewServer(e.deps(), cfg.Server, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	showStartupInfo(e)
	return srv.Start(ctx)
}

func httpCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if addr := c.String("addr"); addr != "" {
		cfg.HTTP.Addr = addr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e, err := openEngine(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer e.Close()

	api := httpapi.New(e.deps(), httpapi.Options{
		Addr:     cfg.HTTP.Addr,
		Debug:    cfg.HTTP.Debug,
		Bounds:   utils.QueryBounds{Min: cfg.Server.MinQuery, Max: cfg.Server.MaxQuery},
		Gatherer: reg,
	})
	return api.ListenAndServe(ctx)
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	e, err := openEngine(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer e.Close()
	sigHandler(e)

	limit := c.Int("limit")
	if limit <= 0 {
		limit = cfg.Server.MaxLimit
	}
	log.SetReportTimestamp(false)
	log.Debug("Input info:", "minQuery", cfg.Server.MinQuery, "maxQuery", cfg.Server.MaxQuery, "limit", limit)

	input := prompt.NewInputHandler(e.deps(),
		utils.QueryBounds{Min: cfg.Server.MinQuery, Max: cfg.Server.MaxQuery},
		limit, os.Stdin, log.Default())
	return input.Start(ctx)
}

func statsCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	e, err := openEngine(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	rows, err := e.store.Stats()
	if err != nil {
		return err
	}
	log.Info("store", "trades", rows["trades"], "rents", rows["rents"], "regions", rows["regions"], "snapshots", rows["snapshots"])
	for name, stats := range map[string]map[string]int{
		region.IndexName:    e.regions.Stats(),
		apartment.IndexName: e.aparts.Stats(),
	} {
		log.Info(name, "records", stats["records"], "tags", stats["tags"],
			"forwardNodes", stats["forwardNodes"], "reverseNodes", stats["reverseNodes"])
	}
	return nil
}

func versionCommand(*cli.Context) error {
	vlog := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	vlog.SetStyles(styles)

	vlog.Print("")
	vlog.Print("[ jamofind ] Finds Korean regions and apartments from a few keystrokes")
	vlog.Print("", "version", Version)
	vlog.Print("")
	vlog.Print("use -h or --help to see available options")
	vlog.Print("Github Repo", "gh", gh)
	return nil
}

// showStartupInfo displays some basic info about the loaded indexes.
func showStartupInfo(e *engine) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" jamofind ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("regions: %s", humanize.Comma(int64(e.regions.Finder().Len())))
	log.Infof("complexes: %s", humanize.Comma(int64(e.aparts.Finder().Len())))
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
