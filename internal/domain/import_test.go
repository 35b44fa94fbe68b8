package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumns(t *testing.T) {
	cols, err := ParseColumns("")
	require.NoError(t, err)
	assert.Equal(t, DefaultImportColumns(), cols)

	cols, err = ParseColumns(" 0, 1 ,2 ")
	require.NoError(t, err)
	assert.Equal(t, ImportColumns{Username: 0, Password: 1, Website: 2}, cols)

	for _, raw := range []string{"1,2", "1,2,3,4", "a,b,c", "1,-2,3"} {
		_, err := ParseColumns(raw)
		assert.ErrorIs(t, err, ErrInvalidColumns, raw)
	}
}

func TestImportSkipsMalformedRecords(t *testing.T) {
	m := NewAccountMap()
	records := [][]string{
		{"x", "alice", "p1", "", "", "example.com"},
		{"x", "bob"},
		{"x", "carol", "p3", "", "", "github.com"},
	}

	report := m.Import(records, DefaultImportColumns())

	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 0, report.Duplicates)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 1, report.Skipped[0].Index)
	assert.Contains(t, report.Skipped[0].Reason, "missing")

	assert.Equal(t, []string{"example.com", "github.com"}, m.Websites())
}

func TestImportDuplicatesAndNormalization(t *testing.T) {
	m := NewAccountMap()
	m.Add("caf\u00e9.com", "alice", "old")

	cols := ImportColumns{Username: 0, Password: 1, Website: 2}
	records := [][]string{
		// decomposed \u00e9 and surrounding whitespace
		{" alice ", "new", "cafe\u0301.com "},
		{"bob", "pw", "   "},
		{"bob", "pw", "caf\u00e9.com"},
	}

	report := m.Import(records, cols)

	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.Duplicates)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "empty website field", report.Skipped[0].Reason)

	password, _ := m.Password("caf\u00e9.com", "alice")
	assert.Equal(t, "old", password)
	assert.Len(t, m.Accounts("caf\u00e9.com"), 2)
}

func TestImportSkipsInvalidUTF8(t *testing.T) {
	m := NewAccountMap()
	cols := ImportColumns{Username: 0, Password: 1, Website: 2}
	records := [][]string{
		{"alice", "p1", "caf\xe9.com"},
		{"bob\xff", "p2", "example.com"},
		{"carol", "p\xe83", "example.com"},
		{"dave", "p4", "example.com"},
	}

	report := m.Import(records, cols)

	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Skipped, 3)
	for i, skipped := range report.Skipped {
		assert.Equal(t, i, skipped.Index)
		assert.Contains(t, skipped.Reason, "invalid UTF-8")
	}
	assert.NotContains(t, report.Skipped[2].Reason, "p\xe83")
	assert.Equal(t, []string{"example.com"}, m.Websites())
}

func TestValidateAccount(t *testing.T) {
	require.NoError(t, ValidateAccount("caf\u00e9.com", "", ""))

	assert.ErrorIs(t, ValidateAccount("", "alice", "pw"), ErrEmptyWebsite)
	assert.ErrorIs(t, ValidateAccount("caf\xe9.com", "alice", "pw"), ErrInvalidText)
	assert.ErrorIs(t, ValidateAccount("example.com", "\xc3", "pw"), ErrInvalidText)
	assert.ErrorIs(t, ValidatePassword("p\xe8ss"), ErrInvalidText)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "caf\u00e9", NormalizeName("  cafe\u0301\t"))
}
