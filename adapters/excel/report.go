package excel

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"gocondprob/domain/core"
	"gocondprob/domain/stats"

	"github.com/xuri/excelize/v2"
)

// ReportWriter writes ranked analyses as spreadsheets: a summary block, a
// three-row header, then one row per candidate in rank order
type ReportWriter struct {
	config ExcelConfig
}

// NewReportWriter creates a spreadsheet report writer
func NewReportWriter(config ExcelConfig) *ReportWriter {
	return &ReportWriter{config: config}
}

// measure groups in column order; each spans Sample, Condition and Background
var reportGroups = []struct {
	family, variant string
	measure         stats.Measure
}{
	{"Binary", "EO", stats.BinaryEO},
	{"", "Non-EO", stats.BinaryNonEO},
	{"Proportion", "EO", stats.ProportionEO},
	{"", "Non-EO", stats.ProportionNonEO},
}

const (
	summaryRows = 3
	headerRows  = 3
)

// WriteReport writes a new workbook at dest, or adds a sheet to the workbook
// already at dest when appendTo is set
func (w *ReportWriter) WriteReport(ctx context.Context, analysis *stats.Analysis, dest string, appendTo bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var f *excelize.File
	var sheet string
	if appendTo {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			return fmt.Errorf("append target %s: %w", dest, core.ErrNotFound)
		}
		existing, err := excelize.OpenFile(dest)
		if err != nil {
			return fmt.Errorf("failed to open workbook: %w", err)
		}
		f = existing
		sheet = nextSheetName(f)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to add sheet: %w", err)
		}
		f.SetActiveSheet(idx)
	} else {
		f = excelize.NewFile()
		sheet = "Sheet1"
	}
	defer f.Close()

	if err := w.writeSheet(f, sheet, analysis, filepath.Base(dest)); err != nil {
		return err
	}
	if err := f.SaveAs(dest); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	log.Printf("[ReportWriter] Wrote %d candidates to %s (sheet %s)", len(analysis.Candidates), dest, sheet)
	return nil
}

func nextSheetName(f *excelize.File) string {
	for n := f.SheetCount + 1; ; n++ {
		name := fmt.Sprintf("Sheet%d", n)
		if idx, err := f.GetSheetIndex(name); err == nil && idx == -1 {
			return name
		}
	}
}

func (w *ReportWriter) writeSheet(f *excelize.File, sheet string, a *stats.Analysis, fileName string) error {
	set := func(col, row int, v interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, v)
	}

	// summary
	summary := [][2]interface{}{
		{"File", fileName},
		{"Target", a.Target.Label()},
		{"Window Size (seconds)", a.Window.Seconds()},
	}
	for i, kv := range summary {
		if err := set(1, i+1, kv[0]); err != nil {
			return err
		}
		if err := set(2, i+1, kv[1]); err != nil {
			return err
		}
	}

	// headers
	familyRow, variantRow, columnRow := summaryRows+1, summaryRows+2, summaryRows+3
	if err := set(1, columnRow, "Behavior"); err != nil {
		return err
	}
	for g, group := range reportGroups {
		first := 2 + 3*g
		if group.family != "" {
			if err := set(first, familyRow, group.family); err != nil {
				return err
			}
			from, _ := excelize.CoordinatesToCellName(first, familyRow)
			to, _ := excelize.CoordinatesToCellName(first+5, familyRow)
			if err := f.MergeCell(sheet, from, to); err != nil {
				return err
			}
		}
		if err := set(first, variantRow, group.variant); err != nil {
			return err
		}
		from, _ := excelize.CoordinatesToCellName(first, variantRow)
		to, _ := excelize.CoordinatesToCellName(first+2, variantRow)
		if err := f.MergeCell(sheet, from, to); err != nil {
			return err
		}
		for i, label := range []string{"Sample", "Condition", "Background"} {
			if err := set(first+i, columnRow, label); err != nil {
				return err
			}
		}
	}

	// details
	for i, c := range a.Candidates {
		row := summaryRows + headerRows + 1 + i
		if err := set(1, row, c.Behavior.Label()); err != nil {
			return err
		}
		for g, group := range reportGroups {
			r := c.Results.Get(group.measure)
			first := 2 + 3*g
			values := []interface{}{r.Sampled, w.round(r.Probability), w.background(c.Baseline, group.measure)}
			for j, v := range values {
				if err := set(first+j, row, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (w *ReportWriter) background(b *stats.Baseline, m stats.Measure) float64 {
	if b == nil {
		return 0
	}
	return w.round(b.Mean(m))
}

func (w *ReportWriter) round(v float64) float64 {
	if w.config.Precision < 0 || v == stats.Undefined {
		return v
	}
	p := math.Pow(10, float64(w.config.Precision))
	return math.Round(v*p) / p
}
