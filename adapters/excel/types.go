package excel

// RawRowData represents a row of raw Excel data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents the complete Excel dataset
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Event log columns
const (
	ColBehaviorUUID = "behavior_uuid"
	ColKey          = "key"
	ColDescription  = "description"
	ColContinuous   = "continuous"
	ColStartMillis  = "start_ms"
	ColEndMillis    = "end_ms"
)

// EventLogHeaders is the header row of an event log export
var EventLogHeaders = []string{
	ColBehaviorUUID, ColKey, ColDescription, ColContinuous, ColStartMillis, ColEndMillis,
}
