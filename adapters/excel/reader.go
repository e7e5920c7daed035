package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocorda/internal"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type format int

const (
	formatXLSX format = iota
	formatCSV
	formatTSV
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return formatCSV
	case ".tsv", ".tab":
		return formatTSV
	default:
		return formatXLSX
	}
}

// ReadTable loads the first sheet named by cfg (or a delimited file) as a
// header row plus non-blank data rows. A nil logger discards read timings.
func ReadTable(path string, cfg TableConfig, logger *internal.Logger) (*Table, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	start := time.Now()

	var (
		rows [][]string
		err  error
	)
	switch formatOf(path) {
	case formatCSV:
		rows, err = readDelimited(path, ',')
	case formatTSV:
		rows, err = readDelimited(path, '\t')
	default:
		sheet := cfg.Sheet
		if sheet == "" {
			sheet = DefaultTableConfig().Sheet
		}
		rows, err = readSheet(path, sheet)
	}
	if err != nil {
		return nil, err
	}

	t := newTable(rows)
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("%s: need a header row and at least one data row", filepath.Base(path))
	}
	logger.Debug("table read",
		zap.String("path", path),
		zap.Int("columns", len(t.Headers)),
		zap.Int("rows", len(t.Rows)),
		zap.Duration("elapsed", time.Since(start)))
	return t, nil
}

func readSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readDelimited(path string, comma rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseDelimited(file, comma)
}

func parseDelimited(r io.Reader, comma rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited table: %w", err)
	}
	return rows, nil
}

// newTable keys each data row by the trimmed header. Cells past the last
// header are dropped and blank rows skipped.
func newTable(rows [][]string) *Table {
	t := &Table{}
	if len(rows) == 0 {
		return t
	}
	for _, h := range rows[0] {
		t.Headers = append(t.Headers, strings.TrimSpace(h))
	}
	for _, raw := range rows[1:] {
		row := make(Row, len(t.Headers))
		blank := true
		for j, cell := range raw {
			if j >= len(t.Headers) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				blank = false
			}
			row[t.Headers[j]] = cell
		}
		if !blank {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// Column returns the first header equal (ignoring case) to one of names,
// else the header at position fallback.
func (t *Table) Column(names []string, fallback int) (string, error) {
	for _, name := range names {
		for _, h := range t.Headers {
			if strings.EqualFold(h, name) {
				return h, nil
			}
		}
	}
	if fallback >= 0 && fallback < len(t.Headers) {
		return t.Headers[fallback], nil
	}
	return "", fmt.Errorf("no column among %v", names)
}
