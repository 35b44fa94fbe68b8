package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadVariableWidthRecords(t *testing.T) {
	input := "\ufeffname,url,username,password\n" +
		"GitHub,https://github.com,alice,p1\n" +
		"short,row\n" +
		"\"Quoted, name\",https://example.com,bob,\"p,2\"\n"

	result, err := Read(strings.NewReader(input), Options{})
	require.NoError(t, err)

	require.Len(t, result.Records, 4)
	assert.Equal(t, "name", result.Records[0][0], "byte order mark is stripped")
	assert.Len(t, result.Records[2], 2)
	assert.Equal(t, []string{"Quoted, name", "https://example.com", "bob", "p,2"}, result.Records[3])
	assert.Empty(t, result.Rejected)
}

func TestReadSkipHeaderAndDelimiter(t *testing.T) {
	input := "user;pass;site\nalice;p1;example.com\n"

	result, err := Read(strings.NewReader(input), Options{Comma: ';', SkipHeader: true})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"alice", "p1", "example.com"}}, result.Records)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n"), 0o600))

	result, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}}, result.Records)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)
}
