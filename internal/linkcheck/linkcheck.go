// Package linkcheck enforces the broken-link policies of a site
// configuration against its docs tree and sidebar file.
package linkcheck

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/ertis-research/opentwins-docsite/internal/docstree"
	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
	"github.com/ertis-research/opentwins-docsite/internal/logfields"
	"github.com/ertis-research/opentwins-docsite/internal/markdown"
	"github.com/ertis-research/opentwins-docsite/internal/sidebars"
	"github.com/ertis-research/opentwins-docsite/internal/siteconfig"
)

// Kind classifies a finding.
type Kind string

const (
	KindNavbarDoc     Kind = "navbar-doc"
	KindNavbarSidebar Kind = "navbar-sidebar"
	KindSidebarDoc    Kind = "sidebar-doc"
	KindMarkdownLink  Kind = "markdown-link"
	KindLink          Kind = "link"
)

// Kinds lists every kind, in report order.
var Kinds = []Kind{KindNavbarDoc, KindNavbarSidebar, KindSidebarDoc, KindMarkdownLink, KindLink}

// Finding is one broken reference.
type Finding struct {
	Kind     Kind
	Source   string // config field, sidebar id or doc path
	Line     int
	Target   string
	Severity derrors.ErrorSeverity
}

func (f Finding) String() string {
	src := f.Source
	if f.Line > 0 {
		src = fmt.Sprintf("%s:%d", src, f.Line)
	}
	return fmt.Sprintf("%s: %s -> %s", f.Kind, src, f.Target)
}

// Input is everything a check needs. Sidebars may be nil when the sidebar
// file cannot be read as data.
type Input struct {
	Config   *siteconfig.SiteConfig
	Tree     *docstree.Tree
	Sidebars sidebars.Sidebars
	SiteDir  string
}

// Report is the outcome of Check.
type Report struct {
	Findings []Finding
}

// Errors returns the findings that fail the check.
func (r *Report) Errors() []Finding { return r.filter(derrors.SeverityError) }

// Warnings returns the findings that are only reported.
func (r *Report) Warnings() []Finding { return r.filter(derrors.SeverityWarning) }

func (r *Report) filter(sev derrors.ErrorSeverity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// CountByKind counts findings per kind; every kind is present.
func (r *Report) CountByKind() map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, k := range Kinds {
		counts[k] = 0
	}
	for _, f := range r.Findings {
		counts[f.Kind]++
	}
	return counts
}

// Err aggregates the error findings into one classified error, or nil.
func (r *Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, f := range errs {
		merr = multierror.Append(merr, errors.New(f.String()))
	}
	merr.ErrorFormat = func(es []error) string {
		lines := make([]string, len(es))
		for i, e := range es {
			lines[i] = "  - " + e.Error()
		}
		return strings.Join(lines, "\n")
	}
	return derrors.LinkError("broken links found").
		Fatal().
		WithContext("errors", len(errs)).
		WithContext("warnings", len(r.Warnings())).
		WithCause(merr).
		Build()
}

// Check resolves every reference and applies the configured policies.
// Navbar and sidebar references to unknown docs are always errors; markdown
// file links follow onBrokenMarkdownLinks and site paths follow onBrokenLinks.
func Check(in Input) *Report {
	c := &checker{in: in, report: &Report{}}
	c.navbar()
	c.sidebars()
	c.docs()
	sort.SliceStable(c.report.Findings, func(i, j int) bool {
		return kindRank(c.report.Findings[i].Kind) < kindRank(c.report.Findings[j].Kind)
	})
	return c.report
}

func kindRank(k Kind) int {
	for i, kk := range Kinds {
		if kk == k {
			return i
		}
	}
	return len(Kinds)
}

type checker struct {
	in     Input
	report *Report
}

func (c *checker) fail(f Finding) {
	f.Severity = derrors.SeverityError
	c.report.Findings = append(c.report.Findings, f)
}

func (c *checker) withPolicy(policy siteconfig.BrokenLinkPolicy, f Finding) {
	switch policy {
	case siteconfig.PolicyIgnore:
		return
	case siteconfig.PolicyWarn:
		f.Severity = derrors.SeverityWarning
		slog.Warn("Broken link",
			logfields.Kind(string(f.Kind)),
			logfields.Path(f.Source),
			logfields.Target(f.Target),
			logfields.Policy(string(policy)))
	default:
		f.Severity = derrors.SeverityError
	}
	c.report.Findings = append(c.report.Findings, f)
}

func (c *checker) navbar() {
	tc := c.in.Config.ThemeConfig
	if tc == nil || tc.Navbar == nil {
		return
	}
	for i, item := range tc.Navbar.Items {
		field := fmt.Sprintf("themeConfig.navbar.items[%d]", i)
		switch item.Type.Normalized() {
		case siteconfig.ItemDoc:
			if !c.in.Tree.Has(item.DocID) {
				c.fail(Finding{Kind: KindNavbarDoc, Source: field, Target: item.DocID})
			}
		case siteconfig.ItemDocSidebar:
			if c.in.Sidebars == nil {
				slog.Debug("Skipping docSidebar check without readable sidebars", logfields.Sidebar(item.SidebarID))
				continue
			}
			if !c.in.Sidebars.Has(item.SidebarID) {
				c.fail(Finding{Kind: KindNavbarSidebar, Source: field, Target: item.SidebarID})
			}
		case siteconfig.ItemDefault:
			if item.To != "" && !c.sitePathExists(item.To) {
				c.withPolicy(c.in.Config.OnBrokenLinks, Finding{Kind: KindLink, Source: field, Target: item.To})
			}
		}
	}
}

func (c *checker) sidebars() {
	if c.in.Sidebars == nil {
		return
	}
	for _, ref := range c.in.Sidebars.DocRefs() {
		if !c.in.Tree.Has(ref.DocID) {
			c.fail(Finding{Kind: KindSidebarDoc, Source: sidebarSource(ref.Sidebar, ref.Path), Target: ref.DocID})
		}
	}
	for _, dir := range c.in.Sidebars.AutogeneratedDirs() {
		if !c.in.Tree.InDir(dir.DirName) {
			c.fail(Finding{Kind: KindSidebarDoc, Source: "sidebar " + dir.Sidebar, Target: dir.DirName + "/"})
		}
	}
}

func sidebarSource(id string, categories []string) string {
	if len(categories) == 0 {
		return "sidebar " + id
	}
	return "sidebar " + id + " > " + strings.Join(categories, " > ")
}

func (c *checker) docs() {
	for _, doc := range c.in.Tree.Docs() {
		for _, link := range doc.Links {
			c.docLink(doc, link)
		}
	}
}

func (c *checker) docLink(doc *docstree.Doc, link markdown.Link) {
	if link.Kind == markdown.LinkKindAuto {
		return
	}
	dest := stripSuffixes(link.Destination)
	if dest == "" || isExternal(link.Destination) {
		return
	}
	if unescaped, err := url.PathUnescape(dest); err == nil {
		dest = unescaped
	}

	source := path.Join(c.docsDir(), doc.RelPath)
	if strings.HasPrefix(dest, "/") {
		if !c.sitePathExists(dest) {
			c.withPolicy(c.in.Config.OnBrokenLinks, Finding{Kind: KindLink, Source: source, Line: link.Line, Target: link.Destination})
		}
		return
	}

	ext := strings.ToLower(path.Ext(dest))
	if ext == "" {
		// URL-relative route such as "../installation"; resolved by the router.
		return
	}
	target := path.Join(path.Dir(doc.RelPath), dest)
	if ext == ".md" || ext == ".mdx" {
		if strings.HasPrefix(target, "../") {
			c.withPolicy(c.in.Config.OnBrokenMarkdownLinks, Finding{Kind: KindMarkdownLink, Source: source, Line: link.Line, Target: link.Destination})
			return
		}
		if _, ok := c.in.Tree.ByPath(target); !ok {
			c.withPolicy(c.in.Config.OnBrokenMarkdownLinks, Finding{Kind: KindMarkdownLink, Source: source, Line: link.Line, Target: link.Destination})
		}
		return
	}
	if !fileExists(filepath.Join(c.in.Tree.Root(), filepath.FromSlash(target))) {
		c.withPolicy(c.in.Config.OnBrokenMarkdownLinks, Finding{Kind: KindMarkdownLink, Source: source, Line: link.Line, Target: link.Destination})
	}
}

func (c *checker) docsDir() string { return filepath.ToSlash(c.in.Config.DocsDir()) }

// sitePathExists resolves an absolute site path, with or without baseUrl,
// against doc routes, the blog and static files.
func (c *checker) sitePathExists(p string) bool {
	p = stripSuffixes(p)
	base := strings.TrimSuffix(c.in.Config.SiteBaseURL(), "/")
	if base != "" && (p == base || strings.HasPrefix(p, base+"/")) {
		p = strings.TrimPrefix(p, base)
	}
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return true
	}

	if docPath, ok := c.docPath(p); ok && c.docRouteExists(docPath) {
		return true
	}
	if c.in.Config.BlogEnabled() {
		blog := "/" + c.in.Config.BlogRouteBase()
		if p == blog || strings.HasPrefix(p, blog+"/") {
			return true
		}
	}
	if c.in.SiteDir != "" && fileExists(c.in.Config.StaticPath(c.in.SiteDir, p)) {
		return true
	}
	return false
}

// docPath strips the docs route base from a site path.
func (c *checker) docPath(p string) (string, bool) {
	routeBase := c.in.Config.DocsRouteBase()
	if routeBase == "" {
		return strings.TrimPrefix(p, "/"), true
	}
	prefix := "/" + routeBase
	if p == prefix {
		return "", true
	}
	if !strings.HasPrefix(p, prefix+"/") {
		return "", false
	}
	return strings.TrimPrefix(p, prefix+"/"), true
}

// docRouteExists reports whether a doc is served at docPath, honouring slugs
// and category index pages.
func (c *checker) docRouteExists(docPath string) bool {
	return c.in.Tree.HasRoute(docPath)
}

func stripSuffixes(dest string) string {
	if i := strings.IndexAny(dest, "#?"); i >= 0 {
		return dest[:i]
	}
	return dest
}

func isExternal(dest string) bool {
	if strings.HasPrefix(dest, "//") {
		return true
	}
	u, err := url.Parse(dest)
	return err == nil && u.Scheme != ""
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
