// Package sitecheck runs the full structural check of a site: configuration
// validation, docs tree indexing, sidebar loading and broken-link policies.
package sitecheck

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/ertis-research/opentwins-docsite/internal/docstree"
	"github.com/ertis-research/opentwins-docsite/internal/linkcheck"
	"github.com/ertis-research/opentwins-docsite/internal/logfields"
	"github.com/ertis-research/opentwins-docsite/internal/sidebars"
	"github.com/ertis-research/opentwins-docsite/internal/siteconfig"
)

// Options locates the site.
type Options struct {
	ConfigPath string
	SiteDir    string
}

// Result carries what a check produced. Report is nil when the run stopped
// before link checking.
type Result struct {
	Config *siteconfig.SiteConfig
	Tree   *docstree.Tree
	Report *linkcheck.Report
}

// Validate loads the configuration and validates it, including the files it
// references under the site dir.
func Validate(opts Options) (*siteconfig.SiteConfig, error) {
	cfg, err := siteconfig.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := siteconfig.Validate(cfg, siteconfig.ValidateOptions{SiteDir: opts.SiteDir}); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Run validates the site and checks every reference. The returned error is
// the first failing stage, or the aggregated link errors.
func Run(opts Options) (*Result, error) {
	cfg, err := Validate(opts)
	res := &Result{Config: cfg}
	if err != nil {
		return res, err
	}

	docsDir := siteconfig.ResolvePath(opts.SiteDir, cfg.DocsDir())
	tree, err := docstree.Scan(docsDir)
	if err != nil {
		return res, err
	}
	res.Tree = tree

	sb, err := loadSidebars(cfg, opts.SiteDir)
	if err != nil {
		return res, err
	}

	res.Report = linkcheck.Check(linkcheck.Input{
		Config:   cfg,
		Tree:     tree,
		Sidebars: sb,
		SiteDir:  opts.SiteDir,
	})
	slog.Debug("Check finished",
		logfields.Path(filepath.Clean(opts.SiteDir)),
		logfields.Count(len(res.Report.Findings)))
	return res, res.Report.Err()
}

// loadSidebars returns nil sidebars when none are configured or the file can
// only be evaluated by the external tool.
func loadSidebars(cfg *siteconfig.SiteConfig, siteDir string) (sidebars.Sidebars, error) {
	o := cfg.Classic()
	if o == nil || o.Docs == nil || o.Docs.SidebarPath == "" {
		return nil, nil
	}
	sb, err := sidebars.Load(siteconfig.ResolvePath(siteDir, o.Docs.SidebarPath))
	if errors.Is(err, sidebars.ErrUnsupportedFormat) {
		return nil, nil
	}
	return sb, err
}
