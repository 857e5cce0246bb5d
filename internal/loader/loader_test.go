package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func strp(s string) *string { return &s }

func readTable(t *testing.T, dbPath, table string) ([]string, [][]*string) {
	t.Helper()
	ctx := context.Background()

	store, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	cols, err := store.Columns(ctx, table)
	require.NoError(t, err)
	rows, err := store.SelectAll(ctx, table)
	require.NoError(t, err)
	return cols, rows
}

func TestLoadCSV_CreatesTable(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "fashion_collections.csv",
		"product_name,price,url\nShirt A,$10,/a\nShirt B,$20,/b\n")
	dbPath := filepath.Join(dir, "fashion_collections.sqlite")

	result, err := LoadCSV(context.Background(), csvPath, dbPath, "fashion_collections")
	require.NoError(t, err)
	assert.Equal(t, "fashion_collections", result.Table)
	assert.Equal(t, dbPath, result.Database)
	assert.Equal(t, []string{"product_name", "price", "url"}, result.Columns)
	assert.Equal(t, 2, result.Rows)

	cols, rows := readTable(t, dbPath, "fashion_collections")
	assert.Equal(t, []string{"product_name", "price", "url"}, cols)
	assert.Equal(t, [][]*string{
		{strp("Shirt A"), strp("$10"), strp("/a")},
		{strp("Shirt B"), strp("$20"), strp("/b")},
	}, rows)
}

func TestLoadCSV_IsIdempotent(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "items.csv", "product_name,price,url\nA,$1,/a\nB,$2,/b\nC,$3,/c\n")
	dbPath := filepath.Join(dir, "items.sqlite")
	ctx := context.Background()

	first, err := LoadCSV(ctx, csvPath, dbPath, "items")
	require.NoError(t, err)
	_, firstRows := readTable(t, dbPath, "items")

	second, err := LoadCSV(ctx, csvPath, dbPath, "items")
	require.NoError(t, err)
	_, secondRows := readTable(t, dbPath, "items")

	assert.Equal(t, 3, first.Rows)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Len(t, secondRows, 3)
	assert.Equal(t, firstRows, secondRows)
}

func TestLoadCSV_ReplacesDifferentShape(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "items.sqlite")
	ctx := context.Background()

	wide := writeCSV(t, dir, "wide.csv", "a,b,c,d\n1,2,3,4\n5,6,7,8\n")
	_, err := LoadCSV(ctx, wide, dbPath, "items")
	require.NoError(t, err)

	narrow := writeCSV(t, dir, "narrow.csv", "product_name,price,url\nOnly,$1,/o\n")
	_, err = LoadCSV(ctx, narrow, dbPath, "items")
	require.NoError(t, err)

	cols, rows := readTable(t, dbPath, "items")
	assert.Equal(t, []string{"product_name", "price", "url"}, cols)
	assert.Len(t, rows, 1)
}

func TestLoadCSV_HeaderOnlyGivesEmptyTable(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "empty.csv", "product_name,price,url\n")
	dbPath := filepath.Join(dir, "empty.sqlite")

	result, err := LoadCSV(context.Background(), csvPath, dbPath, "empty")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Rows)

	cols, rows := readTable(t, dbPath, "empty")
	assert.Equal(t, []string{"product_name", "price", "url"}, cols)
	assert.Empty(t, rows)
}

func TestLoadCSV_EmptyCellsAreNull(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "partial.csv", "product_name,price,url\n,$5,\nName,,/n\n")
	dbPath := filepath.Join(dir, "partial.sqlite")

	_, err := LoadCSV(context.Background(), csvPath, dbPath, "partial")
	require.NoError(t, err)

	_, rows := readTable(t, dbPath, "partial")
	assert.Equal(t, [][]*string{
		{nil, strp("$5"), nil},
		{strp("Name"), nil, strp("/n")},
	}, rows)
}

func TestLoadCSV_QuotedIdentifiers(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "odd.csv", "select,\"we\"\"ird\"\nx,y\n")
	dbPath := filepath.Join(dir, "odd.sqlite")

	_, err := LoadCSV(context.Background(), csvPath, dbPath, "order")
	require.NoError(t, err)

	cols, rows := readTable(t, dbPath, "order")
	assert.Equal(t, []string{"select", `we"ird`}, cols)
	assert.Len(t, rows, 1)
}

func TestLoadCSV_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := writeCSV(t, dir, "empty.csv", "")
	ragged := writeCSV(t, dir, "ragged.csv", "a,b\n1\n")

	tests := []struct {
		name    string
		path    string
		message string
	}{
		{"missing file", filepath.Join(dir, "missing.csv"), "failed to read CSV"},
		{"no header", empty, "no columns"},
		{"ragged rows", ragged, "failed to read CSV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := LoadCSV(context.Background(), tt.path, filepath.Join(dir, "out.sqlite"), "items")
			require.Error(t, err)
			assert.Nil(t, result)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, "items", loadErr.Table)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadCSV_DatabaseUnwritable(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "items.csv", "a\n1\n")
	blocker := writeCSV(t, dir, "blocker", "not a directory")

	_, err := LoadCSV(context.Background(), csvPath, filepath.Join(blocker, "items.sqlite"), "items")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestStore_ReplaceTable(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "store.sqlite"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.ReplaceTable(ctx, "t", []string{"a", "b"}, [][]*string{{strp("1"), nil}}))

	n, err := store.CountRows(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = store.ReplaceTable(ctx, "t", []string{"a", "b"}, [][]*string{{strp("1")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1 has 1 values")

	// Failed replace rolls back and leaves the previous table intact
	n, err = store.CountRows(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = store.ReplaceTable(ctx, "t", nil, nil)
	assert.Error(t, err)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"fashion_collections"`, quoteIdent("fashion_collections"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}
