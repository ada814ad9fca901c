package source

import (
	"github.com/xuri/excelize/v2"

	"github.com/eventmill/eventmill/internal/errors"
)

// parseExcel normalizes an XLSX export. Excel truncates timestamps to whole
// seconds, so two distinct sub-second events can collapse onto one identity
// tuple; the resulting SubSecond=false is surfaced as a precision warning.
func parseExcel(path string) (*ParseResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewInputError(errors.CodeUnparseableFile, "failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewInputError(errors.CodeEmptyFile, "workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewInputError(errors.CodeUnparseableFile, "failed to read sheet", err)
	}
	if len(rows) < 2 {
		return nil, errors.NewInputError(errors.CodeEmptyFile, "file contains no data rows", nil)
	}

	return normalizeRecords(rows[0], rows[1:])
}
