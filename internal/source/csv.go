package source

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/eventmill/eventmill/internal/errors"
)

// parseCSV normalizes a CSV export. This is the sub-second-precision
// encoding; timestamps keep their fractional seconds.
func parseCSV(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInputError(errors.CodeUnparseableFile, "failed to open file", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.NewInputError(errors.CodeUnparseableFile, "failed to read CSV", err)
	}
	if len(records) < 2 {
		return nil, errors.NewInputError(errors.CodeEmptyFile, "file contains no data rows", nil)
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "﻿")
	}

	return normalizeRecords(headers, records[1:])
}
