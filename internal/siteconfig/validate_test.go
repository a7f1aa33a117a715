package siteconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
)

func fields(err error) []string {
	var out []string
	for _, v := range Violations(err) {
		f, _ := v.Context().GetString("field")
		out = append(out, f)
	}
	return out
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SiteConfig)
		field  string
	}{
		{"missing title", func(c *SiteConfig) { c.Title = "" }, "title"},
		{"missing tagline", func(c *SiteConfig) { c.Tagline = " " }, "tagline"},
		{"missing i18n", func(c *SiteConfig) { c.I18n = nil }, "i18n"},
		{"missing presets", func(c *SiteConfig) { c.Presets = nil }, "presets"},
		{"missing themeConfig", func(c *SiteConfig) { c.ThemeConfig = nil }, "themeConfig"},
		{"relative url", func(c *SiteConfig) { c.URL = "ertis-research.github.io" }, "url"},
		{"url with path", func(c *SiteConfig) { c.URL = "https://ertis-research.github.io/opentwins" }, "url"},
		{"bad host", func(c *SiteConfig) { c.URL = "https://exa mple.com" }, "url"},
		{"baseUrl without slash", func(c *SiteConfig) { c.BaseURL = "opentwins" }, "baseUrl"},
		{"unknown policy", func(c *SiteConfig) { c.OnBrokenLinks = "explode" }, "onBrokenLinks"},
		{"unknown markdown policy", func(c *SiteConfig) { c.OnBrokenMarkdownLinks = "log" }, "onBrokenMarkdownLinks"},
		{"default locale not listed", func(c *SiteConfig) { c.I18n.DefaultLocale = "es" }, "i18n.locales"},
		{"invalid locale", func(c *SiteConfig) { c.I18n.Locales = append(c.I18n.Locales, "not a locale") }, "i18n.locales[1]"},
		{"duplicate locale", func(c *SiteConfig) { c.I18n.Locales = []string{"en", "en"} }, "i18n.locales[1]"},
		{"empty locales", func(c *SiteConfig) { c.I18n.Locales = nil }, "i18n.locales"},
		{"first preset not classic", func(c *SiteConfig) { c.Presets[0].Name = "bootstrap" }, "presets[0]"},
		{"duplicate preset", func(c *SiteConfig) { c.Presets = append(c.Presets, Preset{Name: PresetClassic}) }, "presets[1]"},
		{"relative editUrl", func(c *SiteConfig) { c.Classic().Docs.EditURL = "tree/main" }, "presets[0].docs.editUrl"},
		{"blog path escapes", func(c *SiteConfig) { c.Classic().Blog.Path = "../blog" }, "presets[0].blog.path"},
		{"doc item without docId", func(c *SiteConfig) { c.ThemeConfig.Navbar.Items[0].DocID = "" }, "themeConfig.navbar.items[0].docId"},
		{"doc item with href", func(c *SiteConfig) { c.ThemeConfig.Navbar.Items[0].Href = "https://x.io" }, "themeConfig.navbar.items[0]"},
		{"unknown item type", func(c *SiteConfig) { c.ThemeConfig.Navbar.Items[0].Type = "dropdownish" }, "themeConfig.navbar.items[0].type"},
		{"bad position", func(c *SiteConfig) { c.ThemeConfig.Navbar.Items[1].Position = "center" }, "themeConfig.navbar.items[1].position"},
		{"link without target", func(c *SiteConfig) { c.ThemeConfig.Navbar.Items[1].Href = "" }, "themeConfig.navbar.items[1]"},
		{"link with both targets", func(c *SiteConfig) { c.ThemeConfig.Navbar.Items[1].To = "/blog" }, "themeConfig.navbar.items[1]"},
		{"relative href", func(c *SiteConfig) { c.ThemeConfig.Navbar.Items[1].Href = "github" }, "themeConfig.navbar.items[1].href"},
		{"to without slash", func(c *SiteConfig) {
			c.ThemeConfig.Navbar.Items[1].Href = ""
			c.ThemeConfig.Navbar.Items[1].To = "blog"
		}, "themeConfig.navbar.items[1].to"},
		{"link without label", func(c *SiteConfig) { c.ThemeConfig.Navbar.Items[1].Label = "" }, "themeConfig.navbar.items[1].label"},
		{"docSidebar without id", func(c *SiteConfig) {
			c.ThemeConfig.Navbar.Items = append(c.ThemeConfig.Navbar.Items, NavbarItem{Type: ItemDocSidebar, Label: "Guides"})
		}, "themeConfig.navbar.items[2].sidebarId"},
		{"logo without src", func(c *SiteConfig) { c.ThemeConfig.Navbar.Logo.Src = "" }, "themeConfig.navbar.logo.src"},
		{"footer style", func(c *SiteConfig) { c.ThemeConfig.Footer.Style = "grey" }, "themeConfig.footer.style"},
		{"prism theme", func(c *SiteConfig) { c.ThemeConfig.Prism.Theme = "solarized" }, "themeConfig.prism.theme"},
		{"prism dark theme", func(c *SiteConfig) { c.ThemeConfig.Prism.DarkTheme = "monokai" }, "themeConfig.prism.darkTheme"},
		{"prism language", func(c *SiteConfig) { c.ThemeConfig.Prism.AdditionalLanguages = []string{"C#"} }, "themeConfig.prism.additionalLanguages[0]"},
		{"duplicate prism language", func(c *SiteConfig) {
			c.ThemeConfig.Prism.AdditionalLanguages = []string{"csharp", "csharp"}
		}, "themeConfig.prism.additionalLanguages[1]"},
		{"color mode", func(c *SiteConfig) { c.ThemeConfig.ColorMode.DefaultMode = "auto" }, "themeConfig.colorMode.defaultMode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg, ValidateOptions{})
			require.Error(t, err)
			require.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
			require.Contains(t, fields(err), tt.field)
		})
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	cfg := Default()
	cfg.Title = ""
	cfg.BaseURL = "x"
	cfg.ThemeConfig.ColorMode.DefaultMode = "auto"

	err := Validate(cfg, ValidateOptions{})
	require.Error(t, err)
	require.Equal(t, []string{"title", "baseUrl", "themeConfig.colorMode.defaultMode"}, fields(err))

	c, ok := derrors.AsClassified(err)
	require.True(t, ok)
	n, _ := c.Context().Get("violations")
	require.Equal(t, 3, n)
	require.True(t, strings.Contains(c.Cause().Error(), "  - title: is required"))
}

func TestValidate_NilConfig(t *testing.T) {
	require.Error(t, Validate(nil, ValidateOptions{}))
}

func writeFile(t *testing.T, p string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
}

func TestValidate_FilesResolveInSiteDir(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()

	err := Validate(cfg, ValidateOptions{SiteDir: dir})
	require.Error(t, err)
	require.ElementsMatch(t, []string{
		"presets[0].docs.sidebarPath",
		"presets[0].theme.customCss",
		"favicon",
		"themeConfig.navbar.logo.src",
	}, fields(err))

	writeFile(t, filepath.Join(dir, "sidebars.json"))
	writeFile(t, filepath.Join(dir, "src", "css", "custom.css"))
	writeFile(t, filepath.Join(dir, "static", "img", "favicon.ico"))
	writeFile(t, filepath.Join(dir, "static", "img", "logo.svg"))

	require.NoError(t, Validate(cfg, ValidateOptions{SiteDir: dir}))
}

func TestValidate_SidebarPathMustBeFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sidebars.json"), 0o755))
	cfg := Default()
	cfg.Classic().Theme = nil
	cfg.Favicon = "https://cdn.example.org/favicon.ico"
	cfg.ThemeConfig.Navbar.Logo = nil

	err := Validate(cfg, ValidateOptions{SiteDir: dir})
	require.Equal(t, []string{"presets[0].docs.sidebarPath"}, fields(err))
}
