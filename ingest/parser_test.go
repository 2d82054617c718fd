package ingest_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fairwork/compliance-engine/ingest"
)

// =============================================================================
// CSV
// =============================================================================

func TestParseCSV_ReadsAllRows(t *testing.T) {
	in := "a,b,c\n1,2,3\n4,5,6\n"

	rows, err := ingest.ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ingest.RawRow{"a", "b", "c"}, rows[0])
	assert.Equal(t, ingest.RawRow{"4", "5", "6"}, rows[2])
}

func TestParseCSV_RaggedRowsTolerated(t *testing.T) {
	// Non-strict parsing keeps ragged rows; the validator turns the
	// missing cells into field errors later.
	in := "a,b,c\n1,2\n"

	rows, err := ingest.ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[1], 2)
}

func TestParseCSVStrict_RaggedRowsRejected(t *testing.T) {
	in := "a,b,c\n1,2\n"

	_, err := ingest.ParseCSVStrict(strings.NewReader(in))
	assert.True(t, errors.Is(err, ingest.ErrCorruptFile))
}

func TestParseCSV_UnclosedQuote(t *testing.T) {
	in := "a,b\n\"unterminated,2\n3,4\n"

	_, err := ingest.ParseCSV(strings.NewReader(in))
	assert.True(t, errors.Is(err, ingest.ErrCorruptFile))
}

func TestParseCSV_EmptyFile(t *testing.T) {
	_, err := ingest.ParseCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, ingest.ErrCorruptFile))
}

// =============================================================================
// XLSX
// =============================================================================

func TestParseXLSX_FirstSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Employee ID", "First Name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"EMP001", "Jordan"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ingest.ParseXLSX(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "EMP001", rows[1][0])
	assert.Equal(t, "Jordan", rows[1][1])
}

func TestParseXLSX_NotASpreadsheet(t *testing.T) {
	_, err := ingest.ParseXLSX(bytes.NewReader([]byte("plain text, not a zip")))
	assert.True(t, errors.Is(err, ingest.ErrCorruptFile))
}
