// Package xlsx writes decoded tables to an Excel workbook, one sheet per
// document.
package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/sco1/anthro-tables/fixfmt"
)

// MaxSheetName is the longest sheet name Excel accepts.
const MaxSheetName = 31

// Sheet is one table to write and the name to give its sheet.
type Sheet struct {
	Name  string
	Table *fixfmt.Table
}

// Write writes sheets as an xlsx workbook to w. The header row is bold and
// holds the column names, SUBJECT ID first; each following row is one
// subject in table order.
func Write(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("xlsx: no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	used := make(map[string]bool)
	for i, s := range sheets {
		name := uniqueName(SheetName(s.Name), used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("xlsx: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx: new sheet %q: %w", name, err)
		}
		if err := writeTable(f, name, s.Table, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, t *fixfmt.Table, headerStyle int) error {
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: sheet %q header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("xlsx: sheet %q header style: %w", sheet, err)
	}

	rowx := 2
	err := t.Rows(func(id int64, row []interface{}) error {
		cell, _ := excelize.CoordinatesToCellName(1, rowx)
		values := append([]interface{}(nil), row...)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx: sheet %q subject %d: %w", sheet, id, err)
		}
		rowx++
		return nil
	})
	if err != nil {
		return err
	}

	for i, c := range t.Columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(len(c) + 4)
		if width < 12 {
			width = 12
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("xlsx: sheet %q column width: %w", sheet, err)
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// SheetName turns a document name into a valid sheet name: characters
// Excel rejects are replaced by '_' and the result is cut to MaxSheetName
// runes.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(name, "'")
	if strings.TrimSpace(name) == "" {
		name = "Sheet"
	}
	return truncate(name, MaxSheetName)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// uniqueName appends "~2", "~3", ... until name is unused. Excel compares
// sheet names case-insensitively.
func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := "~" + strconv.Itoa(n)
		candidate = truncate(name, MaxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
