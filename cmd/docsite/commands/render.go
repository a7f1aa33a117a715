package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ertis-research/opentwins-docsite/internal/logfields"
	"github.com/ertis-research/opentwins-docsite/internal/render"
	"github.com/ertis-research/opentwins-docsite/internal/sitecheck"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Format string `help:"Output format" enum:"json,yaml,js" default:"js"`
	Output string `short:"o" help:"Output file; '-' writes to stdout (default: docusaurus.config.<format> in --site-dir)"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	cfg, err := sitecheck.Validate(sitecheck.Options{ConfigPath: root.ConfigPath(), SiteDir: root.SiteDir})
	if err != nil {
		return err
	}

	format := render.Format(r.Format)
	renderer := &render.Renderer{}
	if r.Output == "-" {
		data, err := renderer.Render(cfg, format)
		if err != nil {
			return err
		}
		_, err = g.out().Write(data)
		return err
	}

	out := r.Output
	if out == "" {
		out = filepath.Join(root.SiteDir, render.DefaultFileName(format))
	}
	if err := renderer.WriteFile(out, cfg, format); err != nil {
		return err
	}
	slog.Debug("Rendered configuration", logfields.Path(out), logfields.Format(r.Format))
	_, _ = fmt.Fprintf(g.out(), "Wrote %s\n", out)
	return nil
}
