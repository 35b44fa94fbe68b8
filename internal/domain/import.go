package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidColumns is returned for an unusable column specification
var ErrInvalidColumns = errors.New("invalid import columns")

// ImportColumns are the zero-based field indices of a delimited record
type ImportColumns struct {
	Username int `yaml:"username_column"`
	Password int `yaml:"password_column"`
	Website  int `yaml:"website_column"`
}

// DefaultImportColumns matches the browser export layout the vault has
// always accepted: username, password and website in fields 1, 2 and 5.
func DefaultImportColumns() ImportColumns {
	return ImportColumns{Username: 1, Password: 2, Website: 5}
}

// Validate rejects negative indices
func (c ImportColumns) Validate() error {
	if c.Username < 0 || c.Password < 0 || c.Website < 0 {
		return fmt.Errorf("%w: indices must not be negative", ErrInvalidColumns)
	}
	return nil
}

// ParseColumns reads a "username,password,website" index list such as "1, 2, 5".
// An empty string yields the defaults.
func ParseColumns(raw string) (ImportColumns, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultImportColumns(), nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return ImportColumns{}, fmt.Errorf("%w: expected 3 comma-separated indices, got %d", ErrInvalidColumns, len(parts))
	}

	idx := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return ImportColumns{}, fmt.Errorf("%w: %q is not a number", ErrInvalidColumns, part)
		}
		idx[i] = n
	}

	cols := ImportColumns{Username: idx[0], Password: idx[1], Website: idx[2]}
	return cols, cols.Validate()
}

// SkippedRecord describes one record an import did not apply
type SkippedRecord struct {
	Index  int
	Reason string
}

// ImportReport summarizes a bulk import
type ImportReport struct {
	Imported   int
	Duplicates int
	Skipped    []SkippedRecord
}

// NormalizeName trims and NFC-normalizes an imported website or username so
// that visually identical names from different exporters share one key.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Import applies each record with the same rule as Add. Records lacking one of
// the referenced fields, with a blank website or with text that is not valid
// UTF-8 are skipped and reported; they never abort the import.
func (m AccountMap) Import(records [][]string, cols ImportColumns) ImportReport {
	var report ImportReport

	for i, record := range records {
		website, username, password, reason := extract(record, cols)
		if reason != "" {
			report.Skipped = append(report.Skipped, SkippedRecord{Index: i, Reason: reason})
			continue
		}

		if m.Add(website, username, password) {
			report.Imported++
		} else {
			report.Duplicates++
		}
	}

	return report
}

func extract(record []string, cols ImportColumns) (website, username, password, reason string) {
	for _, col := range []struct {
		name  string
		index int
	}{
		{"username", cols.Username},
		{"password", cols.Password},
		{"website", cols.Website},
	} {
		if col.index < 0 || col.index >= len(record) {
			return "", "", "", fmt.Sprintf("missing %s field (column %d of %d)", col.name, col.index, len(record))
		}
	}

	website = record[cols.Website]
	username, password = record[cols.Username], record[cols.Password]
	if strings.TrimSpace(website) == "" {
		return "", "", "", "empty website field"
	}
	// Checked before normalizing so that no invalid byte is rewritten
	if err := ValidateAccount(website, username, password); err != nil {
		return "", "", "", err.Error()
	}

	return NormalizeName(website), NormalizeName(username), password, ""
}
