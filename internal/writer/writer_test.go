package writer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/dictscrape/internal/types"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestOpenWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// Reopen; the header must not repeat.
	w, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(types.VariableSummary{Name: "VAR1"}, nil))
	require.NoError(t, w.Close())

	records := readAll(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, types.Fieldnames, records[0])
	assert.Equal(t, "VAR1", records[1][0])
}

func TestAppendAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(types.VariableSummary{Name: "VAR1", Description: "first", Type: "char"}, types.VariableDetail{"label": "Foo"}))
	require.NoError(t, w.Close())

	w, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(types.VariableSummary{Name: "VAR2"}, types.VariableDetail{"format": "YYYY"}))
	require.NoError(t, w.Close())

	records := readAll(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"VAR1", "first", "char", "Foo", "", "", "", "", ""}, records[1])
	assert.Equal(t, []string{"VAR2", "", "", "", "", "", "YYYY", "", ""}, records[2])
}

func TestAppendQuotesEmbeddedNewlines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := Open(path)
	require.NoError(t, err)
	detail := types.VariableDetail{"value": "1 = yes\n2 = no\n9 = unknown"}
	require.NoError(t, w.Append(types.VariableSummary{Name: "VAR1"}, detail))
	require.NoError(t, w.Close())

	records := readAll(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "1 = yes\n2 = no\n9 = unknown", records[1][7])
}
