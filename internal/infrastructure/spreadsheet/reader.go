// Package spreadsheet turns an uploaded workbook into raw user records.
package spreadsheet

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/xuri/excelize/v2"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headerAliases = map[string]string{
	"name":         domain.FieldName,
	"full name":    domain.FieldName,
	"email":        domain.FieldEmail,
	"e-mail":       domain.FieldEmail,
	"phone":        domain.FieldPhone,
	"phone number": domain.FieldPhone,
	"mobile":       domain.FieldPhone,
	"gender":       domain.FieldGender,
}

var requiredColumns = []string{domain.FieldName, domain.FieldEmail, domain.FieldPhone}

type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// Read parses the whole workbook before returning, so a corrupt file never
// yields a partial set of rows.
func (Reader) Read(r io.Reader) ([]domain.SourceRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", domain.ErrUnsupportedFormat, err)
	}

	mime := mimetype.Detect(data)
	if !mime.Is(xlsxMIME) && !mime.Is("application/zip") {
		return nil, fmt.Errorf("%w: unexpected content type %s", domain.ErrUnsupportedFormat, mime.String())
	}

	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", domain.ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrUnsupportedFormat)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", domain.ErrUnsupportedFormat, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header row", domain.ErrUnsupportedFormat)
	}

	columns, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]domain.SourceRow, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		record := make(domain.RawRecord, len(columns))
		blank := true
		for idx, field := range columns {
			if idx >= len(cells) {
				continue
			}
			value := cells[idx]
			if strings.TrimSpace(value) != "" {
				blank = false
			}
			record[field] = value
		}
		if blank {
			continue
		}
		// Sheet rows are 1-based and the header occupies row 1.
		out = append(out, domain.SourceRow{Number: int64(i + 2), Record: record})
	}
	return out, nil
}

// mapHeader returns column index -> field name for recognised headers.
func mapHeader(header []string) (map[int]string, error) {
	columns := make(map[int]string, len(header))
	seen := make(map[string]bool, len(header))
	for idx, cell := range header {
		field, ok := headerAliases[strings.ToLower(strings.TrimSpace(cell))]
		if !ok || seen[field] {
			continue
		}
		columns[idx] = field
		seen[field] = true
	}

	for _, field := range requiredColumns {
		if !seen[field] {
			return nil, fmt.Errorf("%w: missing %q column", domain.ErrUnsupportedFormat, field)
		}
	}
	return columns, nil
}
