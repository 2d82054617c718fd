/*
Package ingest turns uploaded payroll exports into validated, typed rows.

PURPOSE:
  The pipeline has two layers with very different error contracts:

  1. Structural parsing (this file): bytes -> rows of string cells.
     Coarse by design - the only failure is a single generic "corrupted
     file" error with no partial output. Precise diagnostics are the
     validator's job.
  2. Semantic validation (validator.go): three staged passes over the
     parsed rows, producing either fully typed rows or a field-addressable
     error list.

FORMATS:
  CSV via encoding/csv and XLSX via excelize (first sheet). Both feed the
  same RawRow shape, so the validator never knows which format arrived.

SEE ALSO:
  - validator.go: Stages 1-3 and the typed row output
*/
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrCorruptFile is the single structural-parse failure. Callers get no
// detail beyond this: either every row parses or the file is rejected.
var ErrCorruptFile = errors.New("file is corrupted or cannot be parsed")

// RawRow is one parsed row of string cells, immutable once produced.
// Row numbers are positional: the header is row 1, data starts at row 2.
type RawRow []string

// =============================================================================
// CSV
// =============================================================================

// ParseCSV reads every row of a CSV stream. Rows may have differing cell
// counts; the validator decides what that means.
func ParseCSV(r io.Reader) ([]RawRow, error) {
	return parseCSV(r, false)
}

// ParseCSVStrict additionally rejects the file when any row's cell count
// differs from the first row's.
func ParseCSVStrict(r io.Reader) ([]RawRow, error) {
	return parseCSV(r, true)
}

func parseCSV(r io.Reader, strict bool) ([]RawRow, error) {
	reader := csv.NewReader(r)
	if strict {
		reader.FieldsPerRecord = 0 // lock to first row's width
	} else {
		reader.FieldsPerRecord = -1
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Unclosed quotes, ragged rows in strict mode, etc.
			return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
		}
		rows = append(rows, RawRow(record))
	}

	if len(rows) == 0 {
		return nil, ErrCorruptFile
	}
	return rows, nil
}

// =============================================================================
// XLSX
// =============================================================================

// ParseXLSX reads the first sheet of a spreadsheet into rows of string
// cells, with the same all-or-nothing contract as ParseCSV.
func ParseXLSX(r io.Reader) ([]RawRow, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrCorruptFile
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	var rows []RawRow
	for _, record := range records {
		rows = append(rows, RawRow(record))
	}
	if len(rows) == 0 {
		return nil, ErrCorruptFile
	}
	return rows, nil
}
