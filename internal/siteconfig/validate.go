package siteconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/net/idna"
	"golang.org/x/text/language"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
)

// ValidateOptions controls the checks that touch the filesystem.
type ValidateOptions struct {
	// SiteDir is the site root that relative paths resolve against. When empty
	// no file checks run.
	SiteDir string
}

var languageIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Validate checks the record against the schema the external tool expects.
// All violations are collected; the returned error wraps a multierror of
// ClassifiedErrors, one per violation, each carrying the offending field.
func Validate(cfg *SiteConfig, opts ValidateOptions) error {
	if cfg == nil {
		return derrors.ValidationError("site configuration is empty").Build()
	}
	v := &validator{cfg: cfg, opts: opts}
	v.required()
	v.urls()
	v.policies()
	v.i18n()
	v.presets()
	v.themeConfig()
	if opts.SiteDir != "" {
		v.files()
	}
	return v.err()
}

// Violations unpacks the individual violations of a Validate error.
func Violations(err error) []*derrors.ClassifiedError {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		if c, ok := derrors.AsClassified(err); ok {
			return []*derrors.ClassifiedError{c}
		}
		return nil
	}
	out := make([]*derrors.ClassifiedError, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		if c, ok := derrors.AsClassified(e); ok {
			out = append(out, c)
		}
	}
	return out
}

type validator struct {
	cfg  *SiteConfig
	opts ValidateOptions
	errs *multierror.Error
}

func (v *validator) add(field, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	v.errs = multierror.Append(v.errs, derrors.ValidationError(field+": "+msg).
		WithContext("field", field).
		Build())
}

func (v *validator) err() error {
	if v.errs == nil || len(v.errs.Errors) == 0 {
		return nil
	}
	v.errs.ErrorFormat = formatViolations
	return derrors.ValidationError("site configuration is invalid").
		WithContext("violations", len(v.errs.Errors)).
		WithCause(v.errs).
		Build()
}

func formatViolations(errs []error) string {
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		if c, ok := derrors.AsClassified(e); ok {
			lines = append(lines, "  - "+c.Message())
			continue
		}
		lines = append(lines, "  - "+e.Error())
	}
	return strings.Join(lines, "\n")
}

func (v *validator) required() {
	c := v.cfg
	for _, f := range []struct{ name, value string }{
		{"title", c.Title},
		{"tagline", c.Tagline},
		{"url", c.URL},
		{"baseUrl", c.BaseURL},
		{"favicon", c.Favicon},
		{"organizationName", c.OrganizationName},
		{"projectName", c.ProjectName},
	} {
		if strings.TrimSpace(f.value) == "" {
			v.add(f.name, "is required")
		}
	}
	if c.I18n == nil {
		v.add("i18n", "is required")
	}
	if len(c.Presets) == 0 {
		v.add("presets", "is required")
	}
	if c.ThemeConfig == nil {
		v.add("themeConfig", "is required")
	}
}

func (v *validator) urls() {
	c := v.cfg
	if c.URL != "" {
		if err := checkAbsoluteURL(c.URL); err != nil {
			v.add("url", "%v", err)
		} else if u, _ := url.Parse(c.URL); u.Path != "" && u.Path != "/" {
			v.add("url", "must not contain a path (%q); put it in baseUrl", u.Path)
		}
	}
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "/") {
		v.add("baseUrl", "must start with '/' (got %q)", c.BaseURL)
	}
}

func checkAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an absolute http(s) URL (got %q)", raw)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("must include a host (got %q)", raw)
	}
	if _, err := idna.Lookup.ToASCII(u.Hostname()); err != nil {
		return fmt.Errorf("has an invalid host %q: %w", u.Hostname(), err)
	}
	return nil
}

func (v *validator) policies() {
	if !v.cfg.OnBrokenLinks.Valid() {
		v.add("onBrokenLinks", "must be one of throw, warn, ignore (got %q)", v.cfg.OnBrokenLinks)
	}
	if !v.cfg.OnBrokenMarkdownLinks.Valid() {
		v.add("onBrokenMarkdownLinks", "must be one of throw, warn, ignore (got %q)", v.cfg.OnBrokenMarkdownLinks)
	}
}

func (v *validator) i18n() {
	in := v.cfg.I18n
	if in == nil {
		return
	}
	if in.DefaultLocale == "" {
		v.add("i18n.defaultLocale", "is required")
	} else if _, err := language.Parse(in.DefaultLocale); err != nil {
		v.add("i18n.defaultLocale", "%q is not a valid BCP 47 tag", in.DefaultLocale)
	}
	if len(in.Locales) == 0 {
		v.add("i18n.locales", "must list at least one locale")
		return
	}
	seen := make(map[string]bool, len(in.Locales))
	for i, loc := range in.Locales {
		field := fmt.Sprintf("i18n.locales[%d]", i)
		if _, err := language.Parse(loc); err != nil {
			v.add(field, "%q is not a valid BCP 47 tag", loc)
		}
		if seen[loc] {
			v.add(field, "duplicate locale %q", loc)
		}
		seen[loc] = true
	}
	if in.DefaultLocale != "" && !seen[in.DefaultLocale] {
		v.add("i18n.locales", "must contain defaultLocale %q", in.DefaultLocale)
	}
}

func (v *validator) presets() {
	if len(v.cfg.Presets) == 0 {
		return
	}
	if v.cfg.Presets[0].Name != PresetClassic {
		v.add("presets[0]", "must be the %q preset (got %q)", PresetClassic, v.cfg.Presets[0].Name)
	}
	seen := map[string]bool{}
	for i, p := range v.cfg.Presets {
		field := fmt.Sprintf("presets[%d]", i)
		if p.Name == "" {
			v.add(field, "preset name is required")
		}
		if seen[p.Name] {
			v.add(field, "duplicate preset %q", p.Name)
		}
		seen[p.Name] = true
	}

	o := v.cfg.Classic()
	if o == nil {
		return
	}
	if o.Docs != nil {
		if o.Docs.EditURL != "" {
			if err := checkAbsoluteURL(o.Docs.EditURL); err != nil {
				v.add("presets[0].docs.editUrl", "%v", err)
			}
		}
		if escapes(o.Docs.Path) {
			v.add("presets[0].docs.path", "must stay inside the site directory (got %q)", o.Docs.Path)
		}
	}
	if o.Blog != nil {
		if o.Blog.EditURL != "" {
			if err := checkAbsoluteURL(o.Blog.EditURL); err != nil {
				v.add("presets[0].blog.editUrl", "%v", err)
			}
		}
		if escapes(o.Blog.Path) {
			v.add("presets[0].blog.path", "must stay inside the site directory (got %q)", o.Blog.Path)
		}
	}
}

func escapes(p string) bool {
	if p == "" {
		return false
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	return filepath.IsAbs(p) || clean == ".." || strings.HasPrefix(clean, "../")
}

func (v *validator) themeConfig() {
	tc := v.cfg.ThemeConfig
	if tc == nil {
		return
	}
	if nb := tc.Navbar; nb != nil {
		if nb.Logo != nil && nb.Logo.Src == "" {
			v.add("themeConfig.navbar.logo.src", "is required when a logo is set")
		}
		for i, item := range nb.Items {
			v.navbarItem(fmt.Sprintf("themeConfig.navbar.items[%d]", i), item)
		}
	}
	if f := tc.Footer; f != nil && f.Style != "" && !f.Style.Valid() {
		v.add("themeConfig.footer.style", "must be dark or light (got %q)", f.Style)
	}
	if p := tc.Prism; p != nil {
		if p.Theme != "" && !p.Theme.Valid() {
			v.add("themeConfig.prism.theme", "unknown prism theme %q", p.Theme)
		}
		if p.DarkTheme != "" && !p.DarkTheme.Valid() {
			v.add("themeConfig.prism.darkTheme", "unknown prism theme %q", p.DarkTheme)
		}
		seen := map[string]bool{}
		for i, lang := range p.AdditionalLanguages {
			field := fmt.Sprintf("themeConfig.prism.additionalLanguages[%d]", i)
			if !languageIDPattern.MatchString(lang) {
				v.add(field, "%q is not a prism language id", lang)
			}
			if seen[lang] {
				v.add(field, "duplicate language %q", lang)
			}
			seen[lang] = true
		}
	}
	if cm := tc.ColorMode; cm != nil && !cm.DefaultMode.Valid() {
		v.add("themeConfig.colorMode.defaultMode", "must be light or dark (got %q)", cm.DefaultMode)
	}
}

func (v *validator) navbarItem(field string, item NavbarItem) {
	if !item.Type.Valid() {
		v.add(field+".type", "unknown navbar item type %q", item.Type)
		return
	}
	if !item.Position.Valid() {
		v.add(field+".position", "must be left or right (got %q)", item.Position)
	}
	switch item.Type.Normalized() {
	case ItemDoc:
		if item.DocID == "" {
			v.add(field+".docId", "is required for doc items")
		}
		if item.Href != "" || item.To != "" {
			v.add(field, "doc items link through docId, not href/to")
		}
	case ItemDocSidebar:
		if item.SidebarID == "" {
			v.add(field+".sidebarId", "is required for docSidebar items")
		}
	case ItemDefault:
		if item.Label == "" {
			v.add(field+".label", "is required")
		}
		switch {
		case item.Href == "" && item.To == "":
			v.add(field, "needs href or to")
		case item.Href != "" && item.To != "":
			v.add(field, "sets both href and to")
		case item.Href != "":
			if u, err := url.Parse(item.Href); err != nil || u.Scheme == "" {
				v.add(field+".href", "must be an absolute URL (got %q)", item.Href)
			}
		case !strings.HasPrefix(item.To, "/"):
			v.add(field+".to", "must be a site path starting with '/' (got %q)", item.To)
		}
	}
}

func (v *validator) files() {
	dir := v.opts.SiteDir
	if o := v.cfg.Classic(); o != nil {
		if o.Docs != nil && o.Docs.SidebarPath != "" {
			v.fileExists("presets[0].docs.sidebarPath", ResolvePath(dir, o.Docs.SidebarPath))
		}
		if o.Theme != nil && o.Theme.CustomCSS != "" {
			v.fileExists("presets[0].theme.customCss", ResolvePath(dir, o.Theme.CustomCSS))
		}
	}
	if v.cfg.Favicon != "" && !isRemote(v.cfg.Favicon) {
		v.fileExists("favicon", v.cfg.StaticPath(dir, v.cfg.Favicon))
	}
	if tc := v.cfg.ThemeConfig; tc != nil && tc.Navbar != nil && tc.Navbar.Logo != nil {
		if src := tc.Navbar.Logo.Src; src != "" && !isRemote(src) {
			v.fileExists("themeConfig.navbar.logo.src", v.cfg.StaticPath(dir, src))
		}
	}
}

func (v *validator) fileExists(field, p string) {
	info, err := os.Stat(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		v.add(field, "%s does not exist", p)
	case err != nil:
		v.add(field, "cannot stat %s: %v", p, err)
	case info.IsDir():
		v.add(field, "%s is a directory", p)
	}
}

func isRemote(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "//")
}

// ResolvePath resolves a site-relative path such as "./sidebars.json" the
// way require.resolve does from the config file's directory.
func ResolvePath(siteDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(siteDir, filepath.FromSlash(p))
}

// StaticPath resolves a static asset reference (favicon, logo) to a file.
func (c *SiteConfig) StaticPath(siteDir, p string) string {
	return filepath.Join(siteDir, c.StaticDir(), filepath.FromSlash(strings.TrimPrefix(p, "/")))
}
