package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
	"github.com/ertis-research/opentwins-docsite/internal/gitremote"
	"github.com/ertis-research/opentwins-docsite/internal/logfields"
	"github.com/ertis-research/opentwins-docsite/internal/siteconfig"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force   bool `help:"Overwrite existing configuration file"`
	FromGit bool `name:"from-git" help:"Fill organization, project, URLs and edit links from the git origin remote"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	cfg := siteconfig.Default()
	if i.FromGit {
		if err := applyRemote(cfg, root.SiteDir); err != nil {
			return err
		}
	}

	path := root.ConfigPath()
	if err := siteconfig.Init(path, cfg, i.Force); err != nil {
		return err
	}
	slog.Debug("Configuration written", logfields.Path(path), slog.Bool("from_git", i.FromGit))
	_, _ = fmt.Fprintf(g.out(), "Wrote %s\n", path)
	return nil
}

func applyRemote(cfg *siteconfig.SiteConfig, siteDir string) error {
	remote, err := gitremote.Detect(siteDir)
	if err != nil {
		return err
	}
	sub := ""
	if remote.Root != "" {
		abs, err := filepath.Abs(siteDir)
		if err != nil {
			return derrors.FileSystemError("failed to resolve site directory").WithCause(err).Build()
		}
		if rel, err := filepath.Rel(remote.Root, abs); err == nil {
			sub = filepath.ToSlash(rel)
		}
	}
	gitremote.Apply(cfg, remote, sub)
	slog.Info("Applied git remote",
		slog.String("owner", remote.Owner),
		slog.String("name", remote.Name),
		slog.String("branch", remote.Branch))
	return nil
}
