package csvexport

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"paperlens/internal/domain"
	"paperlens/internal/record"
)

const defaultSheet = "Sheet1"

// formattedColumns is the header of a formatted sheet. Column meaning is defined
// by the prompt, so the sheet only numbers them.
var formattedColumns = func() []interface{} {
	cols := make([]interface{}, 0, domain.RecordFieldCount)
	for i := 1; i <= domain.RecordFieldCount; i++ {
		cols = append(cols, fmt.Sprintf("Field %d", i))
	}
	return cols
}()

var unformattedColumns = []interface{}{"Filename", "Reply"}

// WriteWorkbook collects the CSV outputs of each named step into one .xlsx file.
// Each step gets a sheet with its records re-split into columns and a second
// sheet with its unformatted replies.
func WriteWorkbook(path string, outputs map[string]domain.OutputPair) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pair := outputs[name]

		recs, err := ReadFormatted(pair.Formatted)
		if err != nil {
			return err
		}
		if err := writeFormattedSheet(f, SheetName(name), recs); err != nil {
			return err
		}

		fallbacks, err := ReadUnformatted(pair.Unformatted)
		if err != nil {
			return err
		}
		if err := writeUnformattedSheet(f, SheetName(name)+"_unformatted", fallbacks); err != nil {
			return err
		}
	}

	if len(names) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
		f.SetActiveSheet(0)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

// SheetName capitalizes a step name for use as a worksheet title.
func SheetName(step string) string {
	if step == "" {
		return step
	}
	return strings.ToUpper(step[:1]) + step[1:]
}

func writeFormattedSheet(f *excelize.File, sheet string, recs []domain.StructuredRecord) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}
	header := formattedColumns
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header of %s: %w", sheet, err)
	}
	for i, rec := range recs {
		row := recordCells(rec)
		if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(i+2), &row); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

func writeUnformattedSheet(f *excelize.File, sheet string, recs []domain.FallbackRecord) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}
	header := unformattedColumns
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header of %s: %w", sheet, err)
	}
	for i, rec := range recs {
		row := []interface{}{rec.Filename, rec.Raw}
		if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(i+2), &row); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

// recordCells splits a record into cells, storing numeric fields as numbers.
func recordCells(rec domain.StructuredRecord) []interface{} {
	fields := rec.Fields()
	cells := make([]interface{}, len(fields))
	for i, field := range fields {
		field = strings.TrimSpace(field)
		cells[i] = field
		if i >= domain.NumericFieldStart && record.IsNumericField(field) {
			if v, err := strconv.ParseFloat(field, 64); err == nil {
				cells[i] = v
			}
		}
	}
	return cells
}
