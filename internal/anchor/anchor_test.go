package anchor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		section string
		want    string
	}{
		{name: "plain words", section: "See also", want: "See_also"},
		{name: "already safe", section: "History", want: "History"},
		{name: "colon survives encoding", section: "Note: disputed", want: "Note:_disputed"},
		{name: "percent degrades to dot", section: "50% done", want: "50.25_done"},
		{name: "utf8 bytes encoded", section: "Ænigma", want: ".C3.86nigma"},
		{name: "tilde is not safe", section: "a~b", want: "a.7Eb"},
		{name: "punctuation", section: "Q&A (short)", want: "Q.26A_.28short.29"},
		{name: "empty", section: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, FromSection(tt.section))
		})
	}
}

func TestFromSectionDeterministic(t *testing.T) {
	t.Parallel()

	const section = "Criticism: 100% unsourced"
	first := FromSection(section)
	require.Equal(t, first, FromSection(section))
	require.Equal(t, "Criticism:_100.25_unsourced", first)
}
