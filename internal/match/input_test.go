package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadInputs(t *testing.T) {
	path := writeFile(t, "original,clean_legal_name,search_core_name,predecessor,status\n"+
		"BofA Corp,Bank of America Corporation,Bank of America,NCNB,Active\n"+
		",,,,,\n"+
		"Alpha Trust,Alpha Trust,,,Unknown\n")

	inputs, err := ReadInputs(path)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, Input{Original: "BofA Corp", CoreName: "Bank of America", Predecessor: "NCNB"}, inputs[0])
	assert.Equal(t, Input{Original: "Alpha Trust"}, inputs[1])
}

func TestReadInputs_AlternateColumnNames(t *testing.T) {
	path := writeFile(t, "name,predecessor_name\nBeta Savings,Old Beta\n")

	inputs, err := ReadInputs(path)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "Beta Savings", inputs[0].Original)
	assert.Equal(t, "Old Beta", inputs[0].Predecessor)
}

func TestReadInputs_MissingNameColumn(t *testing.T) {
	path := writeFile(t, "foo,bar\n1,2\n")
	_, err := ReadInputs(path)
	assert.Error(t, err)
}
