package content

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSplitFrontMatter_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := SplitFrontMatter(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplitFrontMatter_YAML_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\n---\n# Title\n")

	fm, body, had, err := SplitFrontMatter(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplitFrontMatter_EmptyFrontmatter(t *testing.T) {
	input := []byte("---\n---\nbody\n")

	fm, body, had, err := SplitFrontMatter(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("body\n"), body)
}

func TestSplitFrontMatter_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	input := []byte("---\ntitle: Hello\n# Title\n")

	_, _, had, err := SplitFrontMatter(input)
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestParseMeta_Fields(t *testing.T) {
	fm := []byte("title: First Post\ndate: 2026-08-01\nslug: first\ndraft: true\ntags:\n  - go\n  - blogging\n")

	meta, err := ParseMeta(fm)
	require.NoError(t, err)
	require.Equal(t, "First Post", meta.Title)
	require.Equal(t, "2026-08-01", meta.Date)
	require.Equal(t, "first", meta.Slug)
	require.True(t, meta.Draft)
	require.Equal(t, []string{"go", "blogging"}, meta.Tags)
}

func TestParsedDate_AcceptedLayouts(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2026-08-01", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-08-01T09:30:00", time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)},
		{"2026-08-01 09:30:00", time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)},
		{"2026-08-01T09:30:00Z", time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		meta := PostMeta{Date: tc.raw}
		got, err := meta.ParsedDate()
		require.NoError(t, err, tc.raw)
		require.True(t, got.Equal(tc.want), "%s parsed to %s", tc.raw, got)
	}

	_, err := PostMeta{Date: "next tuesday"}.ParsedDate()
	require.Error(t, err)
}
