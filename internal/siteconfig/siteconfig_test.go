package siteconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
)

func TestDefault_Validates(t *testing.T) {
	require.NoError(t, Validate(Default(), ValidateOptions{}))
}

func TestDefault_LocalesContainDefaultLocale(t *testing.T) {
	cfg := Default()
	require.Contains(t, cfg.I18n.Locales, cfg.I18n.DefaultLocale)
}

func TestDefault_FirstPresetIsClassic(t *testing.T) {
	cfg := Default()
	require.Equal(t, PresetClassic, cfg.Presets[0].Name)
	require.NotNil(t, cfg.Classic())
	require.Equal(t, "./sidebars.json", cfg.Classic().Docs.SidebarPath)
}

func TestLoad_YAMLMatchesDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "opentwins.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("loaded config differs from Default() (-want +got):\n%s", diff)
	}
}

func TestLoad_JSONExpandsEnvironmentAndAppliesDefaults(t *testing.T) {
	t.Setenv("DOCSITE_TEST_HOST", "docs.example.org")

	cfg, err := Load(filepath.Join("testdata", "minimal.json"))
	require.NoError(t, err)
	require.Equal(t, "https://docs.example.org", cfg.URL)
	require.Equal(t, PolicyThrow, cfg.OnBrokenLinks)
	require.Equal(t, PolicyWarn, cfg.OnBrokenMarkdownLinks)
	require.Equal(t, []Preset{{Name: PresetClassic}}, cfg.Presets)
	require.Equal(t, "docs", cfg.DocsDir())
	require.NoError(t, Validate(cfg, ValidateOptions{}))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("docusaurus.config.js")
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("title: x\ntagLine: typo\n"), FormatYAML)
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryConfig))

	_, err = Parse([]byte(`{"title":"x","tagLine":"typo"}`), FormatJSON)
	require.Error(t, err)
}

func TestParse_RejectsUnknownPresetOptionKeys(t *testing.T) {
	_, err := Parse([]byte("title: x\npresets:\n  - - classic\n    - docs:\n        sidebarPat: ./sidebars.json\n"), FormatYAML)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sidebarPat")

	_, err = Parse([]byte(`{"title":"x","presets":[["classic",{"docs":{"sidebarPat":"./sidebars.json"}}]]}`), FormatJSON)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sidebarPat")

	cfg, err := Parse([]byte("title: x\npresets:\n  - - classic\n    - docs:\n        sidebarPath: ./sidebars.json\n"), FormatYAML)
	require.NoError(t, err)
	require.Equal(t, "./sidebars.json", cfg.Classic().Docs.SidebarPath)
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			first, err := Marshal(Default(), format)
			require.NoError(t, err)

			reloaded, err := Parse(first, format)
			require.NoError(t, err)
			if diff := cmp.Diff(Default(), reloaded); diff != "" {
				t.Fatalf("round trip changed the config (-want +got):\n%s", diff)
			}

			second, err := Marshal(reloaded, format)
			require.NoError(t, err)
			require.Equal(t, string(first), string(second))
		})
	}
}

func TestInit_RefusesToOverwriteWithoutForce(t *testing.T) {
	p := filepath.Join(t.TempDir(), "docsite.yaml")
	require.NoError(t, Init(p, Default(), false))

	err := Init(p, Default(), false)
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryAlreadyExists))

	require.NoError(t, Init(p, Default(), true))
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "OpenTwins", cfg.Title)
}

func TestRoutesAndCopyright(t *testing.T) {
	cfg := Default()
	require.Equal(t, "/opentwins/", cfg.SiteBaseURL())
	require.Equal(t, "/opentwins/docs/quickstart", cfg.DocsRoute("quickstart"))
	require.Equal(t, "blog", cfg.BlogRouteBase())
	require.True(t, cfg.BlogEnabled())
	require.Equal(t, "Copyright © 2026 OpenTwins. Built with Docusaurus. Icons from Flaticon.", cfg.Copyright(2026))

	cfg.Classic().Docs.RouteBasePath = "/"
	require.Equal(t, "/opentwins/quickstart", cfg.DocsRoute("quickstart"))
}

func TestResolvePath(t *testing.T) {
	require.Equal(t, filepath.Join("site", "sidebars.json"), ResolvePath("site", "./sidebars.json"))
	abs := filepath.Join(string(os.PathSeparator), "abs", "x.css")
	require.Equal(t, abs, ResolvePath("site", abs))
}
