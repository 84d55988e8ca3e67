package parser

import (
	"encoding/csv"
	stdErrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = stdErrors.New("unsupported file format")

// headerAliases maps normalized header names to Row fields.
var headerAliases = map[string]string{
	"firstname":    "firstName",
	"first name":   "firstName",
	"first_name":   "firstName",
	"lastname":     "lastName",
	"last name":    "lastName",
	"last_name":    "lastName",
	"email":        "email",
	"password":     "password",
	"role":         "role",
	"phone":        "phone",
	"phone number": "phone",
	"phone_number": "phone",
	"department":   "department",
	"dept":         "department",
}

// Parse reads the rows of a CSV or Excel upload. The format is chosen by the
// file name's extension.
func Parse(r io.Reader, fileName string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return parseCSV(r)
	case ".xlsx", ".xls":
		return parseExcel(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func parseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	columns := mapHeader(header)

	rows := []Row{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error parsing CSV file: %w", err)
		}
		row := toRow(columns, record)
		row.Line, _ = reader.FieldPos(0)
		rows = append(rows, row)
	}
	return rows, nil
}

func parseExcel(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, stdErrors.New("excel file is empty")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error parsing Excel file: %w", err)
	}
	if len(records) == 0 {
		return nil, stdErrors.New("excel file is empty")
	}

	columns := mapHeader(records[0])
	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		if blank(record) {
			continue
		}
		row := toRow(columns, record)
		row.Line = RowNumber(i)
		rows = append(rows, row)
	}
	return rows, nil
}

// mapHeader returns, per column index, the Row field it feeds ("" if none).
// The first column claiming a field wins.
func mapHeader(header []string) []string {
	columns := make([]string, len(header))
	taken := map[string]bool{}
	for i, h := range header {
		field, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok || taken[field] {
			continue
		}
		columns[i] = field
		taken[field] = true
	}
	return columns
}

func toRow(columns []string, record []string) Row {
	var row Row
	for i, field := range columns {
		if field == "" || i >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[i])
		switch field {
		case "firstName":
			row.FirstName = value
		case "lastName":
			row.LastName = value
		case "email":
			row.Email = value
		case "password":
			row.Password = value
		case "role":
			row.Role = value
		case "phone":
			row.Phone = value
		case "department":
			row.Department = value
		}
	}
	return row
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
