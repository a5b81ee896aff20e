package etl

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"

	"github.com/raaihank/data-laundry/internal/cleaning"
)

const (
	utf8BOM = "\ufeff"
	// columnOrderKey stores the header order in parquet metadata since parquet
	// groups sort their fields by name.
	columnOrderKey = "data-laundry.columns"
)

// ReadFile loads a dataset, picking the decoder from the file extension
func ReadFile(path string) (*Dataset, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", format, err)
	}
	defer file.Close()

	return Decode(file, format)
}

// Decode reads a dataset of the given format from r
func Decode(r io.Reader, format FileFormat) (*Dataset, error) {
	var (
		ds  *Dataset
		err error
	)
	switch format {
	case FormatCSV:
		ds, err = decodeCSV(r)
	case FormatXLSX:
		ds, err = decodeXLSX(r)
	case FormatParquet:
		ds, err = decodeParquet(r)
	case FormatJSONL:
		ds, err = decodeJSONL(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s decoding failed: %w", format, err)
	}
	return ds, nil
}

// headerNames names blank headers by position and suffixes duplicates so
// every column key is unique.
func headerNames(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		if h == "" {
			h = "column" + strconv.Itoa(i+1)
		}
		if n := seen[h]; n > 0 {
			seen[h]++
			h = h + "_" + strconv.Itoa(n+1)
		} else {
			seen[h] = 1
		}
		out[i] = h
	}
	return out
}

// tableRows builds rows from header-aligned records, skipping records whose
// cells are all blank.
func tableRows(header []string, records [][]string) []cleaning.Row {
	rows := make([]cleaning.Row, 0, len(records))
	for _, record := range records {
		blank := true
		for _, v := range record {
			if strings.TrimSpace(v) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		row := make(cleaning.Row, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func decodeCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Dataset{}, nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := headerNames(header)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}
	return &Dataset{Columns: columns, Rows: tableRows(columns, records)}, nil
}

func decodeXLSX(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets found")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return &Dataset{}, nil
	}
	columns := headerNames(records[0])
	return &Dataset{Columns: columns, Rows: tableRows(columns, records[1:])}, nil
}

func decodeJSONL(r io.Reader) (*Dataset, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var rows []cleaning.Row
	for {
		var row cleaning.Row
		err := decoder.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(rows)+1, err)
		}
		if row != nil {
			rows = append(rows, row)
		}
	}
	return &Dataset{Columns: cleaning.Columns(rows), Rows: rows}, nil
}

func decodeParquet(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	leaves := file.Schema().Columns()
	names := make([]string, len(leaves))
	for i, path := range leaves {
		names[i] = strings.Join(path, ".")
	}

	columns := names
	if stored, ok := file.Lookup(columnOrderKey); ok {
		var ordered []string
		if json.Unmarshal([]byte(stored), &ordered) == nil && len(ordered) == len(names) {
			columns = ordered
		}
	}

	reader := parquet.NewReader(bytes.NewReader(data))
	defer reader.Close()

	var rows []cleaning.Row
	buf := make([]parquet.Row, 128)
	for {
		n, err := reader.ReadRows(buf)
		for _, pr := range buf[:n] {
			row := make(cleaning.Row, len(names))
			for _, name := range names {
				row[name] = nil
			}
			for _, v := range pr {
				if col := v.Column(); col >= 0 && col < len(names) && !v.IsNull() {
					row[names[col]] = parquetValue(v)
				}
			}
			rows = append(rows, row)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}
	return &Dataset{Columns: columns, Rows: rows}, nil
}

func parquetValue(v parquet.Value) any {
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	}
	return v.String()
}
