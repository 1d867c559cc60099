package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gocondprob/domain/behavior"
	"gocondprob/domain/core"

	"github.com/xuri/excelize/v2"
)

// EventLogReader reads flat event log exports (xlsx or csv) into sessions.
// Each row is one event; discrete rows leave end_ms empty.
type EventLogReader struct {
	config ExcelConfig
}

// NewEventLogReader creates a reader for event log spreadsheets
func NewEventLogReader(config ExcelConfig) *EventLogReader {
	if config.SheetName == "" {
		config.SheetName = DefaultExcelConfig().SheetName
	}
	return &EventLogReader{config: config}
}

func fileType(path string) string {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return "csv"
	}
	return "xlsx"
}

// ReadSession reads the event log at path and rebuilds its schema from the rows
func (r *EventLogReader) ReadSession(ctx context.Context, path string) (*behavior.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := r.ReadData(path)
	if err != nil {
		return nil, err
	}
	s, err := toSession(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Schema.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return s, nil
}

// ReadData reads rows from Excel or CSV files into structured format
func (r *EventLogReader) ReadData(path string) (*ExcelData, error) {
	ft := fileType(path)
	log.Printf("[EventLogReader] Starting to read %s file: %s", ft, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file %s: %w", strings.ToUpper(ft), path, core.ErrNotFound)
	}

	var rows [][]string
	var err error
	readStart := time.Now()
	if ft == "csv" {
		rows, err = readCSVRows(path)
	} else {
		rows, err = r.readExcelRows(path)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[EventLogReader] %s read in %.2fms (%d rows)",
		path, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("%s file must have a header row", strings.ToUpper(ft))
	}
	return processRows(rows), nil
}

func (r *EventLogReader) readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.config.SheetName, err)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows converts raw string rows into ExcelData format
func processRows(rows [][]string) *ExcelData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData)
		empty := true
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
				if rowData[headers[j]] != "" {
					empty = false
				}
			}
		}
		if !empty {
			dataRows = append(dataRows, rowData)
		}
	}
	return &ExcelData{Headers: headers, Rows: dataRows}
}

// toSession rebuilds the schema in order of first appearance and splits rows
// into discrete and continuous records
func toSession(data *ExcelData) (*behavior.Session, error) {
	for _, col := range []string{ColKey, ColStartMillis} {
		if !hasHeader(data.Headers, col) {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	s := &behavior.Session{ID: core.SessionID(core.NewID())}
	seen := make(map[core.BehaviorID]int)
	for i, row := range data.Rows {
		line := i + 2

		id := core.BehaviorID(row[ColBehaviorUUID])
		if id == "" {
			id = core.BehaviorID(row[ColKey])
		}
		if id == "" {
			return nil, fmt.Errorf("row %d: %w: missing behavior", line, core.ErrInvalidEvent)
		}
		continuous, err := parseBool(row[ColContinuous])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, core.NewInvalidEventError(id, err.Error()))
		}

		if idx, ok := seen[id]; ok {
			if s.Schema.Behaviors[idx].Continuous != continuous {
				return nil, fmt.Errorf("row %d: %w", line,
					core.NewInvalidEventError(id, "mixes discrete and continuous rows"))
			}
		} else {
			seen[id] = len(s.Schema.Behaviors)
			s.Schema.Behaviors = append(s.Schema.Behaviors, behavior.KeyBehaviorMapping{
				ID:          id,
				Key:         row[ColKey],
				Description: row[ColDescription],
				Continuous:  continuous,
			})
		}

		start, err := parseMillis(row[ColStartMillis])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, core.NewInvalidEventError(id, "start_ms: "+err.Error()))
		}
		if !continuous {
			s.Discrete = append(s.Discrete, behavior.DiscreteRecord{Behavior: id, Time: start})
			continue
		}
		end, err := parseMillis(row[ColEndMillis])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, core.NewInvalidEventError(id, "end_ms: "+err.Error()))
		}
		s.Continuous = append(s.Continuous, behavior.ContinuousRecord{Behavior: id, StartTime: start, EndTime: end})
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.Duration = s.LastTime()
	log.Printf("[EventLogReader] Rebuilt session with %d behaviors (%d discrete, %d continuous)",
		len(s.Schema.Behaviors), len(s.Discrete), len(s.Continuous))
	return s, nil
}

func hasHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "", "0", "false", "no", "n", "discrete":
		return false, nil
	case "1", "true", "yes", "y", "continuous":
		return true, nil
	}
	return false, fmt.Errorf("invalid continuous flag %q", v)
}

// parseMillis accepts integer milliseconds; spreadsheet numbers may carry a
// trailing ".0"
func parseMillis(v string) (core.Millis, error) {
	if v == "" {
		return 0, fmt.Errorf("empty value")
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return core.Millis(n), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid milliseconds %q", v)
	}
	return core.Millis(f), nil
}
