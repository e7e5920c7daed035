package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocorda/domain/confidence"
	"gocorda/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadConfidenceCSV(t *testing.T) {
	path := writeFile(t, "conf.csv", "reaction,confidence\nr1,1\nr2,-1\n\nEX_A,2.0\n")

	m, err := ReadConfidence(path, DefaultTableConfig())
	require.NoError(t, err)
	assert.Equal(t, confidence.Map{"r1": confidence.Low, "r2": confidence.Exclude, "EX_A": confidence.Medium}, m)
}

func TestReadConfidenceTSVWithOtherHeaders(t *testing.T) {
	path := writeFile(t, "genes.tsv", "name\tscore\nb0001\t3\nb0002\t0\n")

	m, err := ReadConfidence(path, DefaultTableConfig())
	require.NoError(t, err)
	assert.Equal(t, confidence.High, m["b0001"])
	assert.Equal(t, confidence.Unknown, m["b0002"])
}

func TestReadConfidenceRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"out of range": "reaction,confidence\nr1,4\n",
		"fractional":   "reaction,confidence\nr1,1.5\n",
		"text":         "reaction,confidence\nr1,high\n",
		"conflict":     "reaction,confidence\nr1,1\nr1,2\n",
		"empty id":     "reaction,confidence\n,1\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadConfidence(writeFile(t, "c.csv", content), DefaultTableConfig())
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
		})
	}
}

func TestWriteAndReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.xlsx")
	m := confidence.Map{"r1": confidence.Low, "r2": confidence.Exclude, "EX_C": confidence.High}

	require.NoError(t, WriteConfidence(path, m))
	got, err := ReadConfidence(path, DefaultTableConfig())
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestReadConfidenceExplicitColumns(t *testing.T) {
	path := writeFile(t, "c.csv", "tissue,rxn_name,liver\nx,r1,3\ny,r2,1\n")
	cfg := TableConfig{IDColumn: "rxn_name", ValueColumn: "liver"}

	m, err := ReadConfidence(path, cfg)
	require.NoError(t, err)
	assert.Equal(t, confidence.Map{"r1": confidence.High, "r2": confidence.Low}, m)
}

func TestReadTableMissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.xlsx"), DefaultTableConfig(), nil)
	assert.Error(t, err)

	_, err = ReadTable(filepath.Join(t.TempDir(), "nope.csv"), DefaultTableConfig(), nil)
	assert.Error(t, err)
}

func TestReadTableHeaderOnly(t *testing.T) {
	_, err := ReadTable(writeFile(t, "c.csv", "reaction,confidence\n\n"), DefaultTableConfig(), nil)
	assert.Error(t, err)
}

func TestNewTableTrimsAndSkipsBlankRows(t *testing.T) {
	table := newTable([][]string{
		{" reaction ", "confidence"},
		{"r1", " 2 ", "extra"},
		{"", "  "},
		{"r2"},
	})

	assert.Equal(t, []string{"reaction", "confidence"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, Row{"reaction": "r1", "confidence": "2"}, table.Rows[0])
	assert.Equal(t, Row{"reaction": "r2"}, table.Rows[1])

	col, err := table.Column([]string{"CONFIDENCE"}, -1)
	require.NoError(t, err)
	assert.Equal(t, "confidence", col)
	_, err = table.Column([]string{"score"}, 5)
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, formatCSV, formatOf("a/B.CSV"))
	assert.Equal(t, formatTSV, formatOf("genes.tsv"))
	assert.Equal(t, formatXLSX, formatOf("conf.xlsx"))
}
