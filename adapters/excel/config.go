package excel

// ExcelConfig holds configuration for spreadsheet event logs and reports
type ExcelConfig struct {
	SheetName string `json:"sheet_name"` // sheet read from xlsx event logs
	Precision int    `json:"precision"`  // decimals kept for probabilities in reports, -1 keeps all
}

// DefaultExcelConfig returns sensible defaults for Excel processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		SheetName: "Sheet1",
		Precision: -1,
	}
}
