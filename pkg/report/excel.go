package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/oDuPrado/Benchmark-case/internal/model"
)

const resultsSheet = "Results"

// WriteWorkbook exports the comparison table to an Excel workbook with
// a native column chart of write times, for people who want the raw
// matrix outside the notebook.
func WriteWorkbook(path string, rep *model.BenchmarkReport, table *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]interface{}, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	lastRow := len(table.Rows) + 1
	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$B$1", resultsSheet),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", resultsSheet, lastRow),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", resultsSheet, lastRow),
			},
		},
		Title: []excelize.RichTextRun{
			{Text: "Write time by format (s)"},
		},
	}
	if err := f.AddChart(resultsSheet, "A6", chart); err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
