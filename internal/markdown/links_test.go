package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLinks_InlineLink(t *testing.T) {
	links := ExtractLinks([]byte("See [API](api.md) for details."))
	require.Len(t, links, 1)
	require.Equal(t, LinkKindInline, links[0].Kind)
	require.Equal(t, "api.md", links[0].Destination)
	require.Equal(t, 1, links[0].Line)
}

func TestExtractLinks_ImageLink(t *testing.T) {
	links := ExtractLinks([]byte("![Architecture](/img/architecture.png)"))
	require.Len(t, links, 1)
	require.Equal(t, LinkKindImage, links[0].Kind)
	require.Equal(t, "/img/architecture.png", links[0].Destination)
}

func TestExtractLinks_AutoLink(t *testing.T) {
	links := ExtractLinks([]byte("<https://github.com/ertis-research/opentwins>"))
	require.Len(t, links, 1)
	require.Equal(t, LinkKindAuto, links[0].Kind)
	require.Equal(t, "https://github.com/ertis-research/opentwins", links[0].Destination)
}

func TestExtractLinks_ReferenceLinkResolvesDestination(t *testing.T) {
	links := ExtractLinks([]byte("See [install][ref].\n\n[ref]: ./installation.md\n"))
	require.Len(t, links, 1)
	require.Equal(t, "./installation.md", links[0].Destination)
}

func TestExtractLinks_SkipsCode(t *testing.T) {
	src := []byte("" +
		"Inline code: `[Link](./ignored-inline.md)`\n" +
		"\n" +
		"```\n" +
		"[Link](./ignored-fence.md)\n" +
		"```\n" +
		"\n" +
		"Real: [OK](./real.md)\n")

	links := ExtractLinks(src)
	require.Len(t, links, 1)
	require.Equal(t, "./real.md", links[0].Destination)
	require.Equal(t, 7, links[0].Line)
}

func TestExtractLinks_LineNumbersFollowBlocks(t *testing.T) {
	src := []byte("# Title\n\nfirst [a](a.md)\n\n- item [b](b.md)\n")
	links := ExtractLinks(src)
	require.Len(t, links, 2)
	require.Equal(t, 3, links[0].Line)
	require.Equal(t, 5, links[1].Line)
}
