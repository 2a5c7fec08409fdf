package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/citesweep/citesweep/internal/pipeline"
)

func TestReadPageIDs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pageids")
	require.NoError(t, os.WriteFile(path, []byte("101\n  102  \n\n103\n"), 0o600))

	ids, err := readPageIDs(path)
	require.NoError(t, err)
	require.Equal(t, []pipeline.PageID{"101", "102", "103"}, ids)
}

func TestReadPageIDsMissingFile(t *testing.T) {
	t.Parallel()

	_, err := readPageIDs(filepath.Join(t.TempDir(), "absent"))
	require.ErrorContains(t, err, "open pageid file")
}

func TestParseCmdRequiresPageidFile(t *testing.T) {
	t.Parallel()

	cmd := newParseCmd()
	cmd.SetArgs(nil)
	require.Error(t, cmd.Execute())
}
