// Package siteconfig models the configuration record handed to the external
// static-site generator: site metadata, the classic preset and theme options.
//
// Field names follow the external tool's schema so that the JSON and YAML
// encodings can be consumed without translation.
package siteconfig

// SiteConfig is the complete site definition. It is built once, by Default or
// Load, and treated as read-only afterwards.
type SiteConfig struct {
	Title                 string           `yaml:"title" json:"title"`
	Tagline               string           `yaml:"tagline" json:"tagline"`
	URL                   string           `yaml:"url" json:"url"`
	BaseURL               string           `yaml:"baseUrl" json:"baseUrl"`
	OnBrokenLinks         BrokenLinkPolicy `yaml:"onBrokenLinks" json:"onBrokenLinks"`
	OnBrokenMarkdownLinks BrokenLinkPolicy `yaml:"onBrokenMarkdownLinks" json:"onBrokenMarkdownLinks"`
	Favicon               string           `yaml:"favicon" json:"favicon"`
	OrganizationName      string           `yaml:"organizationName" json:"organizationName"`
	ProjectName           string           `yaml:"projectName" json:"projectName"`
	TrailingSlash         *bool            `yaml:"trailingSlash,omitempty" json:"trailingSlash,omitempty"`
	I18n                  *I18n            `yaml:"i18n" json:"i18n"`
	Presets               []Preset         `yaml:"presets" json:"presets"`
	ThemeConfig           *ThemeConfig     `yaml:"themeConfig" json:"themeConfig"`
}

// I18n lists the site locales.
type I18n struct {
	DefaultLocale string   `yaml:"defaultLocale" json:"defaultLocale"`
	Locales       []string `yaml:"locales" json:"locales"`
}

// PresetOptions are the options of the classic preset.
type PresetOptions struct {
	Docs  *DocsOptions  `yaml:"docs,omitempty" json:"docs,omitempty"`
	Blog  *BlogOptions  `yaml:"blog,omitempty" json:"blog,omitempty"`
	Theme *ThemeOptions `yaml:"theme,omitempty" json:"theme,omitempty"`
}

// DocsOptions configures the docs plugin.
type DocsOptions struct {
	Path          string `yaml:"path,omitempty" json:"path,omitempty"`
	RouteBasePath string `yaml:"routeBasePath,omitempty" json:"routeBasePath,omitempty"`
	SidebarPath   string `yaml:"sidebarPath,omitempty" json:"sidebarPath,omitempty"`
	EditURL       string `yaml:"editUrl,omitempty" json:"editUrl,omitempty"`
}

// BlogOptions configures the blog plugin.
type BlogOptions struct {
	Path            string `yaml:"path,omitempty" json:"path,omitempty"`
	RouteBasePath   string `yaml:"routeBasePath,omitempty" json:"routeBasePath,omitempty"`
	ShowReadingTime bool   `yaml:"showReadingTime,omitempty" json:"showReadingTime,omitempty"`
	EditURL         string `yaml:"editUrl,omitempty" json:"editUrl,omitempty"`
}

// ThemeOptions configures the classic theme.
type ThemeOptions struct {
	CustomCSS string `yaml:"customCss,omitempty" json:"customCss,omitempty"`
}

// ThemeConfig holds the UI options read by the theme at runtime.
type ThemeConfig struct {
	Navbar    *Navbar    `yaml:"navbar,omitempty" json:"navbar,omitempty"`
	Footer    *Footer    `yaml:"footer,omitempty" json:"footer,omitempty"`
	Prism     *Prism     `yaml:"prism,omitempty" json:"prism,omitempty"`
	ColorMode *ColorMode `yaml:"colorMode,omitempty" json:"colorMode,omitempty"`
}

type Navbar struct {
	Title string       `yaml:"title,omitempty" json:"title,omitempty"`
	Logo  *Logo        `yaml:"logo,omitempty" json:"logo,omitempty"`
	Items []NavbarItem `yaml:"items,omitempty" json:"items,omitempty"`
}

type Logo struct {
	Alt string `yaml:"alt,omitempty" json:"alt,omitempty"`
	Src string `yaml:"src" json:"src"`
}

// NavbarItem is one navbar entry. Which fields apply depends on Type:
// doc items use DocID, docSidebar items use SidebarID, plain links use
// exactly one of Href (external) or To (site path).
type NavbarItem struct {
	Type      NavbarItemType `yaml:"type,omitempty" json:"type,omitempty"`
	DocID     string         `yaml:"docId,omitempty" json:"docId,omitempty"`
	SidebarID string         `yaml:"sidebarId,omitempty" json:"sidebarId,omitempty"`
	Href      string         `yaml:"href,omitempty" json:"href,omitempty"`
	To        string         `yaml:"to,omitempty" json:"to,omitempty"`
	Position  NavbarPosition `yaml:"position,omitempty" json:"position,omitempty"`
	Label     string         `yaml:"label,omitempty" json:"label,omitempty"`
}

type Footer struct {
	Style     FooterStyle `yaml:"style,omitempty" json:"style,omitempty"`
	Copyright string      `yaml:"copyright,omitempty" json:"copyright,omitempty"`
}

// Prism selects syntax highlighting themes and extra grammars.
type Prism struct {
	Theme               PrismTheme `yaml:"theme,omitempty" json:"theme,omitempty"`
	DarkTheme           PrismTheme `yaml:"darkTheme,omitempty" json:"darkTheme,omitempty"`
	AdditionalLanguages []string   `yaml:"additionalLanguages,omitempty" json:"additionalLanguages,omitempty"`
}

type ColorMode struct {
	DefaultMode ColorModeName `yaml:"defaultMode" json:"defaultMode"`
}
