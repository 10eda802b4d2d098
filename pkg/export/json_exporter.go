package export

import (
	"encoding/json"
	"fmt"
)

// JSONExporter renders a dataset as an indented array of objects.
type JSONExporter struct{}

// NewJSONExporter builds a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Render encodes every row, filling absent columns with empty strings.
func (e *JSONExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("json"); err != nil {
		return nil, err
	}
	rows := make([]map[string]string, 0, len(data.Rows))
	for _, row := range data.Rows {
		out := make(map[string]string, len(data.Headers))
		for _, header := range data.Headers {
			out[header] = row[header]
		}
		rows = append(rows, out)
	}
	body, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return body, nil
}
