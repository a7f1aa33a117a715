// Package watch re-runs the site check when the configuration or the docs
// change, and on a fixed interval.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
	"github.com/ertis-research/opentwins-docsite/internal/linkcheck"
	"github.com/ertis-research/opentwins-docsite/internal/logfields"
	"github.com/ertis-research/opentwins-docsite/internal/metrics"
)

// DefaultDebounce coalesces bursts of editor writes into one run.
const DefaultDebounce = 500 * time.Millisecond

// DefaultRetryDelay is the first delay before re-running a check that failed
// with a transient error. It doubles on each further transient failure.
const DefaultRetryDelay = 2 * time.Second

const maxRetryShift = 5

// CheckFunc performs one check run. A nil report means the run stopped
// before link checking.
type CheckFunc func(ctx context.Context) (*linkcheck.Report, error)

// Run describes one finished check run.
type Run struct {
	ID       string
	Trigger  metrics.Trigger
	Outcome  metrics.Outcome
	Duration time.Duration
	Report   *linkcheck.Report
	Err      error
}

// Options configures a Watcher.
type Options struct {
	ConfigPath string
	DocsDir    string
	// Files lists other site inputs, such as the sidebars file, custom CSS
	// and static assets, whose edits trigger a run.
	Files []string
	// Interval schedules periodic runs; zero disables them.
	Interval   time.Duration
	Debounce   time.Duration
	RetryDelay time.Duration
	Check      CheckFunc
	Recorder metrics.Recorder
	// OnRun is called after every run, from the watch goroutine.
	OnRun func(Run)
}

// Watcher drives check runs until its context is canceled.
type Watcher struct {
	opts       Options
	configPath string
	docsDir    string
	files      map[string]bool
	requests   chan metrics.Trigger
}

// New validates opts and resolves the watched paths.
func New(opts Options) (*Watcher, error) {
	if opts.Check == nil {
		return nil, derrors.InternalError("watch requires a check function").Build()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	configPath, err := filepath.Abs(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	docsDir, err := filepath.Abs(opts.DocsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve docs dir: %w", err)
	}
	files := make(map[string]bool, len(opts.Files))
	for _, f := range opts.Files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve watched file: %w", err)
		}
		files[abs] = true
	}
	return &Watcher{
		opts:       opts,
		configPath: configPath,
		docsDir:    docsDir,
		files:      files,
		requests:   make(chan metrics.Trigger, 1),
	}, nil
}

// Run performs an initial check, then watches until ctx is canceled. Runs
// never overlap. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return derrors.RuntimeError("failed to create file watcher").WithCause(err).Build()
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil {
			slog.Error("Error closing file watcher", logfields.Error(cerr))
		}
	}()

	// Watch the directory containing the config file (editors replace files on save).
	if err := fw.Add(filepath.Dir(w.configPath)); err != nil {
		return derrors.RuntimeError("failed to watch config directory").WithCause(err).
			WithContext("path", filepath.Dir(w.configPath)).
			Build()
	}
	if err := w.addTree(fw, w.docsDir); err != nil {
		return err
	}
	for f := range w.files {
		if err := fw.Add(filepath.Dir(f)); err != nil {
			slog.Warn("Cannot watch site file", logfields.Path(f), logfields.Error(err))
		}
	}

	if w.opts.Interval > 0 {
		sched, err := w.schedule()
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if serr := sched.Shutdown(); serr != nil {
				slog.Error("Error stopping scheduler", logfields.Error(serr))
			}
		}()
	}

	slog.Info("Watching site",
		logfields.Path(w.configPath),
		slog.String("docs_dir", w.docsDir),
		slog.Duration("interval", w.opts.Interval))

	debounce := time.NewTimer(w.opts.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	retry := time.NewTimer(w.opts.RetryDelay)
	retry.Stop()
	defer retry.Stop()
	retries := 0
	check := func(trigger metrics.Trigger) {
		run := w.execute(ctx, trigger)
		if run.Outcome != metrics.OutcomeErrored || !derrors.CanRetry(run.Err) {
			retries = 0
			return
		}
		delay := w.opts.RetryDelay << min(retries, maxRetryShift)
		retries++
		slog.Info("Scheduling check retry", logfields.RunID(run.ID), slog.Duration("delay", delay))
		retry.Reset(delay)
	}

	check(metrics.TriggerStartup)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watcher")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(fw, event) {
				slog.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				debounce.Reset(w.opts.Debounce)
			}
		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(werr))
		case <-debounce.C:
			check(metrics.TriggerChange)
		case <-retry.C:
			check(metrics.TriggerRetry)
		case trigger := <-w.requests:
			check(trigger)
		}
	}
}

func (w *Watcher) schedule() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, derrors.RuntimeError("failed to create gocron scheduler").WithCause(err).Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(w.request, metrics.TriggerInterval),
		gocron.WithName("periodic-check"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, derrors.RuntimeError("failed to create periodic check job").WithCause(err).Build()
	}
	return s, nil
}

// request queues a run unless one is already pending.
func (w *Watcher) request(trigger metrics.Trigger) {
	select {
	case w.requests <- trigger:
	default:
	}
}

// addTree watches dir and every directory below it; fsnotify is not recursive.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Docs directory does not exist yet", logfields.Path(dir))
			return nil
		}
		return derrors.RuntimeError("failed to watch docs directory").WithCause(err).
			WithContext("path", dir).
			Build()
	}
	return nil
}

// relevant filters events down to the config file, the listed site files and
// docs content. New directories under the docs dir are added to the watch list.
func (w *Watcher) relevant(fw *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == w.configPath || (filepath.Base(name) == ".env" && filepath.Dir(name) == filepath.Dir(w.configPath)) {
		return true
	}
	if w.files[name] {
		return true
	}
	if name != w.docsDir && !strings.HasPrefix(name, w.docsDir+string(filepath.Separator)) {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if err := w.addTree(fw, name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(name), logfields.Error(err))
			}
			return true
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".mdx" || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func (w *Watcher) execute(ctx context.Context, trigger metrics.Trigger) Run {
	if ctx.Err() != nil {
		return Run{Trigger: trigger}
	}
	run := Run{ID: uuid.NewString(), Trigger: trigger}
	w.opts.Recorder.IncRun(trigger)

	start := time.Now()
	run.Report, run.Err = w.opts.Check(ctx)
	run.Duration = time.Since(start)
	run.Outcome = OutcomeOf(run.Report, run.Err)

	w.opts.Recorder.ObserveCheckDuration(run.Duration)
	w.opts.Recorder.IncCheckOutcome(run.Outcome)
	if run.Report != nil {
		for kind, n := range run.Report.CountByKind() {
			w.opts.Recorder.SetFindings(string(kind), n)
		}
	}

	attrs := []any{
		logfields.RunID(run.ID),
		logfields.Trigger(string(trigger)),
		logfields.Outcome(string(run.Outcome)),
		logfields.DurationMS(float64(run.Duration.Microseconds()) / 1000),
	}
	switch run.Outcome {
	case metrics.OutcomePassed:
		slog.Info("Check passed", attrs...)
	case metrics.OutcomeWarnings:
		slog.Warn("Check passed with warnings", append(attrs, logfields.Count(len(run.Report.Warnings())))...)
	default:
		slog.Error("Check failed", append(attrs, logfields.Error(run.Err))...)
	}

	if w.opts.OnRun != nil {
		w.opts.OnRun(run)
	}
	return run
}

// OutcomeOf classifies a run result. Validation, link and docs errors are
// failures of the site; anything else means the run itself broke.
func OutcomeOf(report *linkcheck.Report, err error) metrics.Outcome {
	if err != nil {
		switch derrors.GetCategory(err) {
		case derrors.CategoryValidation, derrors.CategoryLinks, derrors.CategoryDocs, derrors.CategoryConfig:
			return metrics.OutcomeFailed
		default:
			return metrics.OutcomeErrored
		}
	}
	if report != nil && len(report.Warnings()) > 0 {
		return metrics.OutcomeWarnings
	}
	return metrics.OutcomePassed
}
