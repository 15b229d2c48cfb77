package testutil

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Workbook is the text content of an xlsx file
type Workbook struct {
	Sheets []string
	Rows   map[string][][]string
}

// ReadWorkbook opens xlsx content and returns every sheet's rows
func ReadWorkbook(t *testing.T, content []byte) Workbook {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	wb := Workbook{Sheets: f.GetSheetList(), Rows: make(map[string][][]string)}
	for _, sheet := range wb.Sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			t.Fatalf("Failed to read sheet %q: %v", sheet, err)
		}
		wb.Rows[sheet] = rows
	}
	return wb
}

// LastRow returns the final row of a sheet, or nil when it is empty
func (w Workbook) LastRow(sheet string) []string {
	rows := w.Rows[sheet]
	if len(rows) == 0 {
		return nil
	}
	return rows[len(rows)-1]
}
