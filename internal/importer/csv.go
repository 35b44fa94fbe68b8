// Package importer reads delimited credential exports into raw records for
// the vault's bulk import. It only splits fields; choosing columns and
// validating records is left to the session.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Options control how a delimited file is read
type Options struct {
	// Comma is the field delimiter; zero means ','.
	Comma rune
	// SkipHeader drops the first record.
	SkipHeader bool
}

// Rejected is a line the reader could not split into fields
type Rejected struct {
	Line   int
	Reason string
}

// Result holds the records read from a file and the lines that were dropped
type Result struct {
	Records  [][]string
	Rejected []Rejected
}

// Read splits r into records. Records may have differing field counts. A line
// with broken quoting is rejected and reading continues with the next one.
func Read(r io.Reader, opts Options) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	result := &Result{}
	first := true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Rejected = append(result.Rejected, Rejected{Line: parseErr.Line, Reason: parseErr.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("failed to read records: %w", err)
		}

		if first {
			first = false
			if len(record) > 0 {
				record[0] = strings.TrimPrefix(record[0], "\ufeff")
			}
			if opts.SkipHeader {
				continue
			}
		}

		result.Records = append(result.Records, record)
	}

	return result, nil
}

// ReadFile reads the delimited file at path
func ReadFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	return Read(f, opts)
}
