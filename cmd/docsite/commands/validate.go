package commands

import (
	"fmt"

	"github.com/ertis-research/opentwins-docsite/internal/sitecheck"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct{}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	path := root.ConfigPath()
	if _, err := sitecheck.Validate(sitecheck.Options{ConfigPath: path, SiteDir: root.SiteDir}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "%s is valid\n", path)
	return nil
}
