package commands

import (
	"fmt"
	"io"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
	"github.com/ertis-research/opentwins-docsite/internal/sitecheck"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct{}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	res, err := sitecheck.Run(sitecheck.Options{ConfigPath: root.ConfigPath(), SiteDir: root.SiteDir})
	if res != nil && res.Report != nil {
		printReport(g.out(), res)
	}
	return err
}

func printReport(w io.Writer, res *sitecheck.Result) {
	for _, f := range res.Report.Findings {
		label := "error"
		if f.Severity == derrors.SeverityWarning {
			label = "warning"
		}
		_, _ = fmt.Fprintf(w, "%s: %s\n", label, f)
	}
	_, _ = fmt.Fprintf(w, "%d docs checked: %d errors, %d warnings\n",
		len(res.Tree.Docs()), len(res.Report.Errors()), len(res.Report.Warnings()))
}

