package features

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ReadCSV loads a dataset from CSV. The first record is the header; empty
// and N/A cells become missing values.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	dataset := NewDataset(header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		row := make([]Cell, len(record))
		for i, raw := range record {
			row[i] = ParseCell(raw)
		}
		if err := dataset.AppendRow(row); err != nil {
			return nil, err
		}
	}

	return dataset, nil
}

// LoadCSV loads a dataset from a CSV file on disk
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dataset, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return dataset, nil
}

// WriteCSV writes the dataset as CSV with a header row. Missing cells are
// written as empty strings.
func WriteCSV(w io.Writer, d *Dataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(d.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(d.Columns))
	for _, row := range d.Rows {
		for i, cell := range row {
			switch cell.Kind {
			case CellNumeric:
				record[i] = strconv.FormatFloat(cell.Num, 'g', -1, 64)
			case CellString:
				record[i] = cell.Str
			default:
				record[i] = ""
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the dataset to a CSV file on disk
func SaveCSV(path string, d *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return WriteCSV(f, d)
}
