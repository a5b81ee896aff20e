package etl

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"

	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/normalize"
)

const (
	plainSheet       = "Sheet1"
	highlightSheet   = "Cleaned Data"
	highlightWidth   = 20
	removedFillColor = "FFCDD2"
	changedFillColor = "FFF9C4"
)

// WriteFile writes ds to path, picking the encoder from the extension. When
// original is non-nil and the target is XLSX, changed cells are highlighted.
func WriteFile(path string, ds *Dataset, original []cleaning.Row) error {
	format, err := DetectFileFormat(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", format, err)
	}
	if err := Encode(file, format, ds, original); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Encode writes ds to w in the given format
func Encode(w io.Writer, format FileFormat, ds *Dataset, original []cleaning.Row) error {
	var err error
	switch format {
	case FormatCSV:
		err = encodeCSV(w, ds)
	case FormatXLSX:
		err = encodeXLSX(w, ds, original)
	case FormatParquet:
		err = encodeParquet(w, ds)
	case FormatJSONL:
		err = encodeJSONL(w, ds)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("%s encoding failed: %w", format, err)
	}
	return nil
}

// encodeCSV writes a UTF-8 BOM first so spreadsheet tools detect Hangul.
func encodeCSV(w io.Writer, ds *Dataset) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(ds.Columns); err != nil {
		return err
	}
	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, c := range ds.Columns {
			record[i] = cleaning.Stringify(row[c])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func encodeJSONL(w io.Writer, ds *Dataset) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	for _, row := range ds.Rows {
		if err := encoder.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

// cellFill picks the highlight for a changed cell: red when a garbage value
// was blanked or zeroed, yellow for any other edit. Unchanged cells get none.
func cellFill(before, after string) string {
	if before == after {
		return ""
	}
	if normalize.IsGarbage(before) && (after == "" || after == "0") {
		return removedFillColor
	}
	return changedFillColor
}

func encodeXLSX(w io.Writer, ds *Dataset, original []cleaning.Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := plainSheet
	if original != nil {
		sheet = highlightSheet
		if err := f.SetSheetName(plainSheet, sheet); err != nil {
			return err
		}
	}

	header := make([]any, len(ds.Columns))
	for i, c := range ds.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	styles := make(map[string]int, 2)
	if original != nil {
		for _, color := range []string{removedFillColor, changedFillColor} {
			id, err := f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
				Border: []excelize.Border{
					{Type: "top", Style: 1, Color: "000000"},
					{Type: "left", Style: 1, Color: "000000"},
					{Type: "bottom", Style: 1, Color: "000000"},
					{Type: "right", Style: 1, Color: "000000"},
				},
			})
			if err != nil {
				return err
			}
			styles[color] = id
		}
		if len(ds.Columns) > 0 {
			last, err := excelize.ColumnNumberToName(len(ds.Columns))
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet, "A", last, highlightWidth); err != nil {
				return err
			}
		}
	}

	values := make([]any, len(ds.Columns))
	for r, row := range ds.Rows {
		for i, c := range ds.Columns {
			values[i] = cleaning.Stringify(row[c])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}

		if original == nil || r >= len(original) {
			continue
		}
		for i, c := range ds.Columns {
			color := cellFill(cleaning.Stringify(original[r][c]), values[i].(string))
			if color == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, name, name, styles[color]); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// encodeParquet stores every column as an optional UTF-8 string. The header
// order travels in file metadata.
func encodeParquet(w io.Writer, ds *Dataset) error {
	group := make(parquet.Group, len(ds.Columns))
	for _, c := range ds.Columns {
		group[c] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema("laundry", group)

	order, err := json.Marshal(ds.Columns)
	if err != nil {
		return err
	}
	writer := parquet.NewWriter(w, schema, parquet.KeyValueMetadata(columnOrderKey, string(order)))

	leaves := make([]string, len(ds.Columns))
	copy(leaves, ds.Columns)
	sort.Strings(leaves)

	rows := make([]parquet.Row, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		pr := make(parquet.Row, len(leaves))
		for i, c := range leaves {
			v, ok := row[c]
			if !ok || v == nil {
				pr[i] = parquet.NullValue().Level(0, 0, i)
				continue
			}
			pr[i] = parquet.ByteArrayValue([]byte(cleaning.Stringify(v))).Level(0, 1, i)
		}
		rows = append(rows, pr)
	}

	if _, err := writer.WriteRows(rows); err != nil {
		return err
	}
	return writer.Close()
}
