package siteconfig

import (
	"path"
	"strconv"
	"strings"
)

// YearPlaceholder is replaced with the build year when the copyright is rendered.
const YearPlaceholder = "{year}"

// templateEditURL is the edit link the site was scaffolded with.
const templateEditURL = "https://github.com/facebook/docusaurus/tree/main/packages/create-docusaurus/templates/shared/"

const (
	defaultDocsDir   = "docs"
	defaultBlogDir   = "blog"
	defaultStaticDir = "static"
)

func boolPtr(b bool) *bool { return &b }

// Default returns the reference site definition.
func Default() *SiteConfig {
	return &SiteConfig{
		Title:                 "OpenTwins",
		Tagline:               "Open Source Digital Twins Platform",
		URL:                   "https://ertis-research.github.io",
		BaseURL:               "/opentwins",
		OnBrokenLinks:         PolicyThrow,
		OnBrokenMarkdownLinks: PolicyWarn,
		Favicon:               "img/favicon.ico",
		OrganizationName:      "ertis-research",
		ProjectName:           "OpenTwins",
		TrailingSlash:         boolPtr(false),
		I18n: &I18n{
			DefaultLocale: "en",
			Locales:       []string{"en"},
		},
		Presets: []Preset{{
			Name: PresetClassic,
			Options: &PresetOptions{
				Docs: &DocsOptions{
					SidebarPath: "./sidebars.json",
					EditURL:     templateEditURL,
				},
				Blog: &BlogOptions{
					ShowReadingTime: true,
					EditURL:         templateEditURL,
				},
				Theme: &ThemeOptions{
					CustomCSS: "./src/css/custom.css",
				},
			},
		}},
		ThemeConfig: &ThemeConfig{
			Navbar: &Navbar{
				Title: "OpenTwins",
				Logo:  &Logo{Alt: "OpenTwins Logo", Src: "img/logo.svg"},
				Items: []NavbarItem{
					{Type: ItemDoc, DocID: "quickstart", Position: PositionLeft, Label: "Documentation"},
					{Href: "https://github.com/ertis-research/opentwins", Label: "GitHub", Position: PositionRight},
				},
			},
			Footer: &Footer{
				Style:     FooterDark,
				Copyright: "Copyright © " + YearPlaceholder + " OpenTwins. Built with Docusaurus. Icons from Flaticon.",
			},
			Prism: &Prism{
				Theme:               "github",
				DarkTheme:           "dracula",
				AdditionalLanguages: []string{"csharp"},
			},
			ColorMode: &ColorMode{DefaultMode: ColorModeDark},
		},
	}
}

// applyDefaults fills the policies the external tool would otherwise default.
func applyDefaults(c *SiteConfig) {
	if c.OnBrokenLinks == "" {
		c.OnBrokenLinks = PolicyThrow
	}
	if c.OnBrokenMarkdownLinks == "" {
		c.OnBrokenMarkdownLinks = PolicyWarn
	}
}

// DocsDir is the docs content directory relative to the site dir.
func (c *SiteConfig) DocsDir() string {
	if o := c.Classic(); o != nil && o.Docs != nil && o.Docs.Path != "" {
		return o.Docs.Path
	}
	return defaultDocsDir
}

// DocsRouteBase is the URL segment docs are served under.
func (c *SiteConfig) DocsRouteBase() string {
	if o := c.Classic(); o != nil && o.Docs != nil && o.Docs.RouteBasePath != "" {
		return strings.Trim(o.Docs.RouteBasePath, "/")
	}
	return defaultDocsDir
}

// BlogEnabled reports whether the classic preset configures a blog.
func (c *SiteConfig) BlogEnabled() bool {
	o := c.Classic()
	return o != nil && o.Blog != nil
}

// BlogRouteBase is the URL segment blog posts are served under.
func (c *SiteConfig) BlogRouteBase() string {
	if o := c.Classic(); o != nil && o.Blog != nil && o.Blog.RouteBasePath != "" {
		return strings.Trim(o.Blog.RouteBasePath, "/")
	}
	return defaultBlogDir
}

// StaticDir is the directory static assets (favicon, logo, images) live in.
func (c *SiteConfig) StaticDir() string { return defaultStaticDir }

// SiteBaseURL returns baseUrl with the trailing slash the external tool adds.
func (c *SiteConfig) SiteBaseURL() string {
	if c.BaseURL == "" {
		return "/"
	}
	if strings.HasSuffix(c.BaseURL, "/") {
		return c.BaseURL
	}
	return c.BaseURL + "/"
}

// DocsRoute returns the public path of a doc, without trailing slash.
func (c *SiteConfig) DocsRoute(docID string) string {
	return path.Join(c.SiteBaseURL(), c.DocsRouteBase(), docID)
}

// Copyright returns the footer copyright with the year filled in.
func (c *SiteConfig) Copyright(year int) string {
	if c.ThemeConfig == nil || c.ThemeConfig.Footer == nil {
		return ""
	}
	return strings.ReplaceAll(c.ThemeConfig.Footer.Copyright, YearPlaceholder, strconv.Itoa(year))
}
