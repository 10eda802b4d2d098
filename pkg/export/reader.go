package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Record is one imported row keyed by normalised header (lower case, trimmed).
type Record map[string]string

// ReadRecords parses an uploaded CSV, JSON or XLSX table. JSON input must be an
// array of objects; scalar values are stringified.
func ReadRecords(format Format, r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	switch format {
	case FormatCSV:
		reader := csv.NewReader(bytes.NewReader(data))
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		return fromRows(rows)
	case FormatJSON:
		return fromJSON(data)
	case FormatXLSX:
		return fromWorkbook(data)
	default:
		return nil, fmt.Errorf("import from %s is not supported", format)
	}
}

func fromRows(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
	}
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := make(Record, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			rec[h] = cellValue(row, i)
		}
		records = append(records, rec)
	}
	return records, nil
}

func fromJSON(data []byte) ([]Record, error) {
	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		rec := make(Record, len(item))
		for k, v := range item {
			switch val := v.(type) {
			case nil:
				rec[normalizeHeader(k)] = ""
			case string:
				rec[normalizeHeader(k)] = strings.TrimSpace(val)
			default:
				rec[normalizeHeader(k)] = fmt.Sprint(val)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func fromWorkbook(data []byte) ([]Record, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
