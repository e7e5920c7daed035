package excel

import (
	"fmt"
	"strconv"
	"strings"

	"gocorda/domain/confidence"
	"gocorda/internal/errors"

	"github.com/xuri/excelize/v2"
)

// ReadConfidence reads an id -> confidence table from .xlsx, .csv or .tsv.
// Values must be integers in [-1, 3]; fractional cells such as "2.0" are accepted.
func ReadConfidence(path string, cfg TableConfig) (confidence.Map, error) {
	data, err := ReadTable(path, cfg, nil)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	idCol := cfg.IDColumn
	if idCol == "" {
		if idCol, err = data.Column(idColumnNames, 0); err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
	}
	valCol := cfg.ValueColumn
	if valCol == "" {
		if valCol, err = data.Column(valueColumnNames, 1); err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
	}

	out := make(confidence.Map, len(data.Rows))
	for i, row := range data.Rows {
		id := row[idCol]
		if id == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: empty %s", i+2, idCol))
		}
		l, err := parseLevel(row[valCol])
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("row %d (%s): %w", i+2, id, err))
		}
		if prev, dup := out[id]; dup && prev != l {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: conflicting confidence for %s", i+2, id))
		}
		out[id] = l
	}
	return out, nil
}

func parseLevel(cell string) (confidence.Level, error) {
	cell = strings.TrimSpace(cell)
	v, err := strconv.Atoi(cell)
	if err != nil {
		f, ferr := strconv.ParseFloat(cell, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("not an integer confidence: %q", cell)
		}
		v = int(f)
	}
	return confidence.ParseLevel(v)
}

// WriteConfidence writes a two-column sheet "reaction | confidence" in id order
func WriteConfidence(path string, m confidence.Map) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"reaction", "confidence"}); err != nil {
		return err
	}
	for i, id := range m.IDs() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{id, int(m[id])}); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
