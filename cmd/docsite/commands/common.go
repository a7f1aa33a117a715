package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Out receives user-facing command output. Nil means stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Site configuration file (YAML or JSON), relative to --site-dir" default:"docsite.yaml"`
	SiteDir string           `name:"site-dir" help:"Site directory holding docs, static files and sidebars" default:"."`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init     InitCmd     `cmd:"" help:"Write the default site configuration"`
	Validate ValidateCmd `cmd:"" help:"Validate the site configuration and the files it references"`
	Check    CheckCmd    `cmd:"" help:"Validate, then check docs, sidebars and links against the broken-link policies"`
	Render   RenderCmd   `cmd:"" help:"Render the configuration for the static-site generator"`
	Watch    WatchCmd    `cmd:"" help:"Re-run the check on changes and on an interval"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// ConfigPath resolves --config against --site-dir.
func (c *CLI) ConfigPath() string {
	if filepath.IsAbs(c.Config) {
		return c.Config
	}
	return filepath.Join(c.SiteDir, c.Config)
}
