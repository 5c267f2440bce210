package content

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func destinations(links []Link, kind LinkKind) []string {
	var out []string
	for _, l := range links {
		if l.Kind == kind {
			out = append(out, l.Destination)
		}
	}
	return out
}

func TestExtractLinks_Kinds(t *testing.T) {
	body := []byte(`# Post

An [inline link](../about.md) and an image:

![diagram](images/diagram.png)

Auto: <https://example.com/feed>

A [reference][ref] too.

[ref]: https://example.com/reference
`)

	links := ExtractLinks(body)

	require.Contains(t, destinations(links, LinkKindInline), "../about.md")
	require.Contains(t, destinations(links, LinkKindImage), "images/diagram.png")
	require.Contains(t, destinations(links, LinkKindAuto), "https://example.com/feed")
	require.Contains(t, destinations(links, LinkKindReferenceDefinition), "https://example.com/reference")
	// The resolved reference usage also surfaces as an inline link.
	require.Contains(t, destinations(links, LinkKindInline), "https://example.com/reference")
}

func TestExtractLinks_EmptyBody(t *testing.T) {
	require.Empty(t, ExtractLinks(nil))
	require.Empty(t, ExtractLinks([]byte("plain text, no links")))
}
