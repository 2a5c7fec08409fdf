package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleWikitext = `Coffee is a brewed drink.{{citation needed|date=May 2024}}

Coffee is consumed worldwide.<ref>Some source</ref>

== History ==
Coffee cultivation began in Yemen.{{cn}}

Trade routes carried it north.

== Reception ==
Critics called it the devil's drink.{{Citation needed}} Clergy later approved it.<ref name="pope"/>
`

func TestExtractGroupsBySections(t *testing.T) {
	t.Parallel()

	got, err := New().Extract(sampleWikitext, 10, 1000)
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.Equal(t, "", got[0].Section)
	require.Equal(t, []string{"Coffee is a brewed drink."}, got[0].Snippets)

	require.Equal(t, "History", got[1].Section)
	require.Equal(t, []string{"Coffee cultivation began in Yemen."}, got[1].Snippets)

	require.Equal(t, "Reception", got[2].Section)
	require.Equal(t,
		[]string{"Critics called it the devil's drink. Clergy later approved it."},
		got[2].Snippets)
}

func TestExtractHonorsSizeBounds(t *testing.T) {
	t.Parallel()

	text := "Tiny.{{cn}}\n\nA somewhat longer flagged sentence right here.{{cn}}\n"

	got, err := New().Extract(text, 20, 1000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []string{"A somewhat longer flagged sentence right here."}, got[0].Snippets)

	got, err = New().Extract(text, 1, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []string{"Tiny."}, got[0].Snippets)
}

func TestExtractNoMarkersYieldsNothing(t *testing.T) {
	t.Parallel()

	got, err := New().Extract("Perfectly sourced text.<ref>x</ref>\n", 1, 1000)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestExtractStripsMarkup(t *testing.T) {
	t.Parallel()

	text := "Claim one.{{fact|date=June 2023}} <!-- dubious --> Claim two.<ref>cite</ref>\n"

	got, err := New().Extract(text, 1, 1000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []string{"Claim one. Claim two."}, got[0].Snippets)
}

func TestExtractRejectsBadBounds(t *testing.T) {
	t.Parallel()

	_, err := New().Extract("x", 100, 10)
	require.Error(t, err)
	_, err = New().Extract("x", -1, 10)
	require.Error(t, err)
}

func TestExtractMultilineParagraph(t *testing.T) {
	t.Parallel()

	text := "First line of the claim\ncontinues on a second line.{{cn}}\n\nNext paragraph.\n"

	got, err := New().Extract(text, 1, 1000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t,
		[]string{"First line of the claim continues on a second line."},
		got[0].Snippets)
}
