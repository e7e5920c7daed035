package excel

// Row maps column headers to cell values
type Row map[string]string

// Table is a header row plus data rows
type Table struct {
	Headers []string
	Rows    []Row
}

// TableConfig selects the sheet and columns of a confidence table
type TableConfig struct {
	Sheet string `json:"sheet"`
	// IDColumn and ValueColumn are detected from the headers when empty
	IDColumn    string `json:"id_column"`
	ValueColumn string `json:"value_column"`
}

// DefaultTableConfig reads Sheet1 and detects both columns
func DefaultTableConfig() TableConfig {
	return TableConfig{Sheet: "Sheet1"}
}

var (
	idColumnNames    = []string{"reaction", "reaction_id", "rxn", "gene", "gene_id", "id", "key"}
	valueColumnNames = []string{"confidence", "level", "score", "value"}
)
