package siteconfig

import "slices"

// BrokenLinkPolicy tells the external build what to do with a broken link.
type BrokenLinkPolicy string

const (
	PolicyThrow  BrokenLinkPolicy = "throw"
	PolicyWarn   BrokenLinkPolicy = "warn"
	PolicyIgnore BrokenLinkPolicy = "ignore"
)

func (p BrokenLinkPolicy) Valid() bool {
	switch p {
	case PolicyThrow, PolicyWarn, PolicyIgnore:
		return true
	}
	return false
}

// ColorModeName is the initial UI color scheme.
type ColorModeName string

const (
	ColorModeLight ColorModeName = "light"
	ColorModeDark  ColorModeName = "dark"
)

func (m ColorModeName) Valid() bool { return m == ColorModeLight || m == ColorModeDark }

// FooterStyle selects the footer palette.
type FooterStyle string

const (
	FooterDark  FooterStyle = "dark"
	FooterLight FooterStyle = "light"
)

func (s FooterStyle) Valid() bool { return s == FooterDark || s == FooterLight }

// NavbarPosition places an item on one side of the navbar. Empty means left.
type NavbarPosition string

const (
	PositionLeft  NavbarPosition = "left"
	PositionRight NavbarPosition = "right"
)

func (p NavbarPosition) Valid() bool { return p == "" || p == PositionLeft || p == PositionRight }

// NavbarItemType is the kind of a navbar entry. Empty means a plain link.
type NavbarItemType string

const (
	ItemDefault        NavbarItemType = "default"
	ItemDoc            NavbarItemType = "doc"
	ItemDocSidebar     NavbarItemType = "docSidebar"
	ItemSearch         NavbarItemType = "search"
	ItemLocaleDropdown NavbarItemType = "localeDropdown"
)

// Normalized maps the empty type to ItemDefault.
func (t NavbarItemType) Normalized() NavbarItemType {
	if t == "" {
		return ItemDefault
	}
	return t
}

func (t NavbarItemType) Valid() bool {
	switch t.Normalized() {
	case ItemDefault, ItemDoc, ItemDocSidebar, ItemSearch, ItemLocaleDropdown:
		return true
	}
	return false
}

// PrismTheme names a theme module shipped by prism-react-renderer.
type PrismTheme string

// PrismThemes lists the theme modules under prism-react-renderer/themes.
var PrismThemes = []PrismTheme{
	"dracula", "duotoneDark", "duotoneLight", "github", "nightOwl", "nightOwlLight",
	"oceanicNext", "okaidia", "palenight", "shadesOfPurple", "synthwave84",
	"ultramin", "vsDark", "vsLight",
}

func (t PrismTheme) Valid() bool { return slices.Contains(PrismThemes, t) }

// Module returns the require() path of the theme.
func (t PrismTheme) Module() string { return "prism-react-renderer/themes/" + string(t) }

// PresetClassic is the only preset the site uses.
const PresetClassic = "classic"
