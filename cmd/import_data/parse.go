package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/foodgram/backend/internal/types"
)

// format picks the decoder from the file extension, sniffing the content
// when the extension is unknown.
func format(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".csv":
		return "csv"
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return "json"
	}
	return "csv"
}

func parseIngredients(path string, data []byte) ([]types.IngredientView, error) {
	if format(path, data) == "json" {
		var records []types.IngredientView
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("invalid ingredients JSON: %w", err)
		}
		return records, nil
	}

	rows, err := readCSV(data, 2, []string{"name", "measurement_unit"})
	if err != nil {
		return nil, err
	}
	records := make([]types.IngredientView, 0, len(rows))
	for _, row := range rows {
		records = append(records, types.IngredientView{Name: row[0], MeasurementUnit: row[1]})
	}
	return records, nil
}

func parseTags(path string, data []byte) ([]types.TagView, error) {
	if format(path, data) == "json" {
		var records []types.TagView
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("invalid tags JSON: %w", err)
		}
		return records, nil
	}

	rows, err := readCSV(data, 3, []string{"name", "color", "slug"})
	if err != nil {
		return nil, err
	}
	records := make([]types.TagView, 0, len(rows))
	for _, row := range rows {
		records = append(records, types.TagView{Name: row[0], Color: row[1], Slug: row[2]})
	}
	return records, nil
}

// readCSV returns rows of exactly width columns, dropping an optional header row.
func readCSV(data []byte, width int, header []string) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = width
	r.TrimLeadingSpace = true

	var rows [][]string
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV: %w", err)
		}
		if line == 1 && isHeader(row, header) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isHeader(row, header []string) bool {
	for i := range header {
		if !strings.EqualFold(strings.TrimSpace(row[i]), header[i]) {
			return false
		}
	}
	return true
}
