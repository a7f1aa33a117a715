package sidebars

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
)

func TestLoad_JSON(t *testing.T) {
	sb, err := Load(filepath.Join("testdata", "sidebars.json"))
	require.NoError(t, err)
	require.Equal(t, []string{"api", "docs"}, sb.IDs())
	require.True(t, sb.Has("docs"))
	require.False(t, sb.Has("tutorial"))

	require.Equal(t, []DocRef{
		{Sidebar: "api", DocID: "api/overview"},
		{Sidebar: "docs", DocID: "quickstart"},
		{Sidebar: "docs", DocID: "installation/using-helm", Path: []string{"Installation"}},
		{Sidebar: "docs", DocID: "installation/manual", Path: []string{"Installation"}},
		{Sidebar: "docs", DocID: "guides/advanced/ditto", Path: []string{"Guides", "Advanced"}},
	}, sb.DocRefs())

	require.Equal(t, []AutogeneratedDir{{Sidebar: "docs", DirName: "guides"}}, sb.AutogeneratedDirs())
}

func TestLoad_YAML(t *testing.T) {
	sb, err := Load(filepath.Join("testdata", "sidebars.yaml"))
	require.NoError(t, err)
	refs := sb.DocRefs()
	require.Len(t, refs, 2)
	require.Equal(t, "installation/using-helm", refs[1].DocID)
}

func TestLoad_ShorthandCategories(t *testing.T) {
	want := []DocRef{
		{Sidebar: "docs", DocID: "intro", Path: []string{"Getting Started"}},
		{Sidebar: "docs", DocID: "installation/using-helm", Path: []string{"Getting Started"}},
		{Sidebar: "docs", DocID: "guides/ditto", Path: []string{"Guides", "Eclipse Ditto"}},
		{Sidebar: "tutorial", DocID: "tutorial/basics", Path: []string{"Basics"}},
		{Sidebar: "tutorial", DocID: "tutorial/next", Path: []string{"Advanced"}},
	}

	files := map[string]string{
		"sidebars.json": `{
  "docs": [
    {"Getting Started": ["intro", "installation/using-helm"]},
    {"type": "category", "label": "Guides", "items": [{"Eclipse Ditto": ["guides/ditto"]}]}
  ],
  "tutorial": {"Basics": ["tutorial/basics"], "Advanced": ["tutorial/next"]}
}`,
		"sidebars.yaml": `docs:
  - Getting Started: [intro, installation/using-helm]
  - type: category
    label: Guides
    items:
      - Eclipse Ditto: [guides/ditto]
tutorial:
  Basics: [tutorial/basics]
  Advanced: [tutorial/next]
`,
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
			sb, err := Load(p)
			require.NoError(t, err)
			require.Equal(t, want, sb.DocRefs())
		})
	}
}

func TestLoad_ShorthandEntryWithSeveralLabels(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sidebars.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"docs": [{"A": ["a"], "B": ["b"]}]}`), 0o600))
	_, err := Load(p)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exactly one label")
}

func TestLoad_JavaScriptIsUnsupported(t *testing.T) {
	_, err := Load("sidebars.js")
	require.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "sidebars.json"))
	require.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))
}

func TestLoad_InvalidItems(t *testing.T) {
	cases := map[string]string{
		"unknown type":         `{"docs": [{"type": "html", "value": "<hr/>"}]}`,
		"sidebar not a list":   `{"docs": "quickstart"}`,
		"file not an object":   `["quickstart"]`,
		"doc without id":       `{"docs": [{"type": "doc"}]}`,
		"category no label":    `{"docs": [{"type": "category", "items": []}]}`,
		"autogenerated no dir": `{"docs": [{"type": "autogenerated"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "sidebars.json")
			require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
			_, err := Load(p)
			require.Error(t, err)
			require.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
		})
	}
}
