package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
	"github.com/ertis-research/opentwins-docsite/internal/linkcheck"
	"github.com/ertis-research/opentwins-docsite/internal/metrics"
)

type testRecorder struct {
	mu       sync.Mutex
	runs     map[metrics.Trigger]int
	outcomes map[metrics.Outcome]int
	findings map[string]int
	observed int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{runs: map[metrics.Trigger]int{}, outcomes: map[metrics.Outcome]int{}, findings: map[string]int{}}
}

func (r *testRecorder) IncRun(t metrics.Trigger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[t]++
}

func (r *testRecorder) ObserveCheckDuration(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed++
}

func (r *testRecorder) IncCheckOutcome(o metrics.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[o]++
}

func (r *testRecorder) SetFindings(kind string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findings[kind] = n
}

type site struct {
	config string
	docs   string
}

func newSite(t *testing.T) site {
	t.Helper()
	dir := t.TempDir()
	s := site{config: filepath.Join(dir, "docsite.yaml"), docs: filepath.Join(dir, "docs")}
	require.NoError(t, os.WriteFile(s.config, []byte("title: x\n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(s.docs, "guides"), 0o750))
	return s
}

func startWatcher(t *testing.T, opts Options) (<-chan Run, func()) {
	t.Helper()
	runs := make(chan Run, 16)
	opts.OnRun = func(r Run) {
		select {
		case runs <- r:
		default:
		}
	}
	w, err := New(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	stop := func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not stop")
		}
	}
	return runs, stop
}

func waitRun(t *testing.T, runs <-chan Run, trigger metrics.Trigger) Run {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-runs:
			if r.Trigger == trigger {
				return r
			}
		case <-deadline:
			t.Fatalf("no %s run", trigger)
		}
	}
}

func TestWatcherRunsOnChange(t *testing.T) {
	s := newSite(t)
	rec := newTestRecorder()
	report := &linkcheck.Report{Findings: []linkcheck.Finding{{Kind: linkcheck.KindLink, Severity: derrors.SeverityWarning}}}

	runs, stop := startWatcher(t, Options{
		ConfigPath: s.config,
		DocsDir:    s.docs,
		Debounce:   20 * time.Millisecond,
		Recorder:   rec,
		Check:      func(context.Context) (*linkcheck.Report, error) { return report, nil },
	})

	first := waitRun(t, runs, metrics.TriggerStartup)
	require.NotEmpty(t, first.ID)
	require.Equal(t, metrics.OutcomeWarnings, first.Outcome)

	require.NoError(t, os.WriteFile(filepath.Join(s.docs, "guides", "intro.md"), []byte("# Intro\n"), 0o600))
	changed := waitRun(t, runs, metrics.TriggerChange)
	require.NotEqual(t, first.ID, changed.ID)

	require.NoError(t, os.WriteFile(s.config, []byte("title: y\n"), 0o600))
	waitRun(t, runs, metrics.TriggerChange)

	stop()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, 1, rec.runs[metrics.TriggerStartup])
	require.GreaterOrEqual(t, rec.runs[metrics.TriggerChange], 2)
	require.Equal(t, rec.observed, rec.outcomes[metrics.OutcomeWarnings])
	require.Equal(t, 1, rec.findings[string(linkcheck.KindLink)])
	require.Equal(t, 0, rec.findings[string(linkcheck.KindNavbarDoc)])
}

func TestWatcherRunsOnSiteFileChange(t *testing.T) {
	s := newSite(t)
	sidebar := filepath.Join(filepath.Dir(s.config), "sidebars.json")
	require.NoError(t, os.WriteFile(sidebar, []byte(`{"docs": []}`), 0o600))

	runs, stop := startWatcher(t, Options{
		ConfigPath: s.config,
		DocsDir:    s.docs,
		Files:      []string{sidebar},
		Debounce:   20 * time.Millisecond,
		Check:      func(context.Context) (*linkcheck.Report, error) { return &linkcheck.Report{}, nil },
	})
	defer stop()

	waitRun(t, runs, metrics.TriggerStartup)
	require.NoError(t, os.WriteFile(sidebar, []byte(`{"docs": ["intro"]}`), 0o600))
	waitRun(t, runs, metrics.TriggerChange)
}

func TestRelevant(t *testing.T) {
	s := newSite(t)
	siteDir := filepath.Dir(s.config)
	sidebar := filepath.Join(siteDir, "sidebars.json")
	css := filepath.Join(siteDir, "src", "css", "custom.css")
	w, err := New(Options{
		ConfigPath: s.config,
		DocsDir:    s.docs,
		Files:      []string{sidebar, css, ""},
		Check:      func(context.Context) (*linkcheck.Report, error) { return nil, nil },
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{s.config, fsnotify.Write, true},
		{filepath.Join(siteDir, ".env"), fsnotify.Create, true},
		{sidebar, fsnotify.Write, true},
		{sidebar, fsnotify.Chmod, false},
		{css, fsnotify.Rename, true},
		{filepath.Join(siteDir, "package.json"), fsnotify.Write, false},
		{filepath.Join(s.docs, "guides", "intro.md"), fsnotify.Write, true},
		{filepath.Join(s.docs, "guides", "notes.txt"), fsnotify.Write, false},
		{filepath.Join(s.docs, "guides", "old.png"), fsnotify.Remove, true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, w.relevant(nil, fsnotify.Event{Name: tt.name, Op: tt.op}), "%s %s", tt.name, tt.op)
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	s := newSite(t)
	runs, stop := startWatcher(t, Options{
		ConfigPath: s.config,
		DocsDir:    s.docs,
		Debounce:   20 * time.Millisecond,
		Check:      func(context.Context) (*linkcheck.Report, error) { return &linkcheck.Report{}, nil },
	})
	defer stop()

	waitRun(t, runs, metrics.TriggerStartup)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(s.config), "notes.txt"), []byte("x"), 0o600))

	select {
	case r := <-runs:
		t.Fatalf("unexpected %s run", r.Trigger)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherInterval(t *testing.T) {
	s := newSite(t)
	runs, stop := startWatcher(t, Options{
		ConfigPath: s.config,
		DocsDir:    s.docs,
		Interval:   50 * time.Millisecond,
		Check: func(context.Context) (*linkcheck.Report, error) {
			return nil, derrors.ValidationError("site configuration is invalid").Build()
		},
	})
	defer stop()

	r := waitRun(t, runs, metrics.TriggerInterval)
	require.Equal(t, metrics.OutcomeFailed, r.Outcome)
	require.Error(t, r.Err)
}

func TestWatcherRetriesTransientFailures(t *testing.T) {
	s := newSite(t)
	var mu sync.Mutex
	calls := 0
	runs, stop := startWatcher(t, Options{
		ConfigPath: s.config,
		DocsDir:    s.docs,
		RetryDelay: 20 * time.Millisecond,
		Check: func(context.Context) (*linkcheck.Report, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls == 1 {
				return nil, derrors.FileSystemError("failed to scan docs directory").Build()
			}
			return &linkcheck.Report{}, nil
		},
	})
	defer stop()

	first := waitRun(t, runs, metrics.TriggerStartup)
	require.Equal(t, metrics.OutcomeErrored, first.Outcome)
	retried := waitRun(t, runs, metrics.TriggerRetry)
	require.Equal(t, metrics.OutcomePassed, retried.Outcome)
}

func TestWatcherDoesNotRetrySiteFailures(t *testing.T) {
	s := newSite(t)
	runs, stop := startWatcher(t, Options{
		ConfigPath: s.config,
		DocsDir:    s.docs,
		RetryDelay: 20 * time.Millisecond,
		Check: func(context.Context) (*linkcheck.Report, error) {
			return nil, derrors.ValidationError("site configuration is invalid").Build()
		},
	})
	defer stop()

	waitRun(t, runs, metrics.TriggerStartup)
	select {
	case r := <-runs:
		t.Fatalf("unexpected %s run", r.Trigger)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNew(t *testing.T) {
	_, err := New(Options{ConfigPath: "docsite.yaml", DocsDir: "docs"})
	require.Error(t, err)

	w, err := New(Options{ConfigPath: "docsite.yaml", DocsDir: "docs", Check: func(context.Context) (*linkcheck.Report, error) { return nil, nil }})
	require.NoError(t, err)
	require.Equal(t, DefaultDebounce, w.opts.Debounce)
	require.Equal(t, DefaultRetryDelay, w.opts.RetryDelay)
	require.True(t, filepath.IsAbs(w.configPath))
	require.IsType(t, metrics.NoopRecorder{}, w.opts.Recorder)
}

func TestOutcomeOf(t *testing.T) {
	warn := &linkcheck.Report{Findings: []linkcheck.Finding{{Severity: derrors.SeverityWarning}}}
	tests := []struct {
		name   string
		report *linkcheck.Report
		err    error
		want   metrics.Outcome
	}{
		{"clean", &linkcheck.Report{}, nil, metrics.OutcomePassed},
		{"no report", nil, nil, metrics.OutcomePassed},
		{"warnings", warn, nil, metrics.OutcomeWarnings},
		{"links", warn, derrors.LinkError("broken links found").Build(), metrics.OutcomeFailed},
		{"config", nil, derrors.ConfigError("bad yaml").Build(), metrics.OutcomeFailed},
		{"filesystem", nil, derrors.FileSystemError("disk").Build(), metrics.OutcomeErrored},
		{"plain", nil, errors.New("boom"), metrics.OutcomeErrored},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, OutcomeOf(tt.report, tt.err))
		})
	}
}
