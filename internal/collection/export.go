package collection

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ExportHeader is also the native import layout.
var ExportHeader = []string{
	"Title", "Authors", "Description", "Published date", "Publisher", "Number of pages",
	"Language", "ISBN-10", "ISBN-13", "Categories", "Ownership Status", "Reading Status",
}

func exportRecord(it Item) []string {
	b := it.Book
	pages := ""
	if b.PageCount != nil {
		pages = strconv.Itoa(*b.PageCount)
	}
	return []string{
		b.Title,
		strings.Join(b.Authors, "; "),
		b.Description,
		b.PublishedDate,
		b.Publisher,
		pages,
		b.Language,
		b.ISBN10,
		b.ISBN13,
		strings.Join(b.Categories, "; "),
		string(it.Ownership),
		string(it.Reading),
	}
}

// ExportFilename names an export file after the minute it was taken.
func ExportFilename(format ExportFormat, now time.Time) string {
	return "libro_library_export_" + now.Format("200601021504") + "." + string(format)
}

// WriteCSV writes the header bare and quotes every data field.
func WriteCSV(w io.Writer, items []Item) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(ExportHeader, ",")); err != nil {
		return err
	}
	for _, it := range items {
		rec := exportRecord(it)
		for i, field := range rec {
			rec[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
		}
		if _, err := bw.WriteString("\n" + strings.Join(rec, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

const xlsxSheet = "Library"

// WriteXLSX writes a single-sheet workbook with the CSV columns.
func WriteXLSX(w io.Writer, items []Item) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}

	header := make([]any, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return err
	}

	for i, it := range items {
		rec := exportRecord(it)
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		if it.Book.PageCount != nil {
			row[5] = *it.Book.PageCount
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}
