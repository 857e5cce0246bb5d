//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRecord_JSONMarshaling(t *testing.T) {
	record := ProductRecord{
		ProductName: StringPtr("Linen Shirt"),
		Price:       StringPtr("Rp 349.000"),
	}

	jsonBytes, err := json.MarshalIndent(record, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"product_name": "Linen Shirt"`)
	assert.Contains(t, string(jsonBytes), `"price": "Rp 349.000"`)
	assert.Contains(t, string(jsonBytes), `"url": null`)
}

func TestProductRecord_Values(t *testing.T) {
	record := ProductRecord{ProductName: StringPtr("Shirt A"), URL: StringPtr("/a")}
	assert.Equal(t, []string{"Shirt A", "", "/a"}, record.Values())
}

func TestRow_Record(t *testing.T) {
	row := Row{
		FieldProductName: "Shirt A",
		FieldPrice:       nil,
		FieldURL:         "",
	}

	record := row.Record()
	require.NotNil(t, record.ProductName)
	assert.Equal(t, "Shirt A", *record.ProductName)
	assert.Nil(t, record.Price)
	require.NotNil(t, record.URL)
	assert.Equal(t, "", *record.URL)
}

func TestRow_Record_MissingKeys(t *testing.T) {
	record := Row{}.Record()
	assert.Nil(t, record.ProductName)
	assert.Nil(t, record.Price)
	assert.Nil(t, record.URL)
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "", Deref(nil))
	assert.Equal(t, "x", Deref(StringPtr("x")))
}
