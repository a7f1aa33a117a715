package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
	"github.com/ertis-research/opentwins-docsite/internal/linkcheck"
	"github.com/ertis-research/opentwins-docsite/internal/logfields"
	"github.com/ertis-research/opentwins-docsite/internal/metrics"
	"github.com/ertis-research/opentwins-docsite/internal/siteconfig"
	"github.com/ertis-research/opentwins-docsite/internal/sitecheck"
	"github.com/ertis-research/opentwins-docsite/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Interval    time.Duration `help:"Periodic re-check interval (0 disables)" default:"5m"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address, e.g. :9464"`
	Debounce    time.Duration `help:"Quiet period after a change before re-checking" default:"500ms"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.run(ctx, root)
}

func (w *WatchCmd) run(ctx context.Context, root *CLI) error {
	opts := sitecheck.Options{ConfigPath: root.ConfigPath(), SiteDir: root.SiteDir}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if w.MetricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		stop, err := serveMetrics(w.MetricsAddr, reg)
		if err != nil {
			return err
		}
		defer stop()
	}

	docs, files := watchedPaths(opts)
	watcher, err := watch.New(watch.Options{
		ConfigPath: opts.ConfigPath,
		DocsDir:    docs,
		Files:      files,
		Interval:   w.Interval,
		Debounce:   w.Debounce,
		Recorder:   recorder,
		Check: func(context.Context) (*linkcheck.Report, error) {
			res, err := sitecheck.Run(opts)
			if res == nil {
				return nil, err
			}
			return res.Report, err
		},
	})
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

// watchedPaths returns the docs dir and the other files the check reads. They
// are resolved once at startup; a changed path needs a restart.
func watchedPaths(opts sitecheck.Options) (string, []string) {
	cfg, err := siteconfig.Load(opts.ConfigPath)
	if err != nil {
		slog.Warn("Cannot read configuration yet; watching default site paths", logfields.Error(err))
		cfg = siteconfig.Default()
	}

	var files []string
	if classic := cfg.Classic(); classic != nil {
		if classic.Docs != nil && classic.Docs.SidebarPath != "" {
			files = append(files, siteconfig.ResolvePath(opts.SiteDir, classic.Docs.SidebarPath))
		}
		if classic.Theme != nil && classic.Theme.CustomCSS != "" {
			files = append(files, siteconfig.ResolvePath(opts.SiteDir, classic.Theme.CustomCSS))
		}
	}
	if cfg.Favicon != "" {
		files = append(files, cfg.StaticPath(opts.SiteDir, cfg.Favicon))
	}
	if tc := cfg.ThemeConfig; tc != nil && tc.Navbar != nil && tc.Navbar.Logo != nil && tc.Navbar.Logo.Src != "" {
		files = append(files, cfg.StaticPath(opts.SiteDir, tc.Navbar.Logo.Src))
	}
	return siteconfig.ResolvePath(opts.SiteDir, cfg.DocsDir()), files
}

func serveMetrics(addr string, reg *prom.Registry) (func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return nil, derrors.RuntimeError("failed to start metrics server").WithCause(err).
			WithContext("addr", addr).
			Build()
	case <-time.After(100 * time.Millisecond):
	}
	slog.Info("Serving metrics", slog.String("addr", addr))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop metrics server", logfields.Error(err))
		}
	}, nil
}
