// Package types provides type definitions for structured data used throughout the catalog-etl system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Field names in their fixed column order
const (
	FieldProductName = "product_name"
	FieldPrice       = "price"
	FieldURL         = "url"
)

// Fields is the column order used by every CSV file and database table.
var Fields = []string{FieldProductName, FieldPrice, FieldURL}

// ProductRecord is one product card extracted from a listing page.
// A nil field means the element was missing from the markup.
type ProductRecord struct {
	ProductName *string `json:"product_name"`
	Price       *string `json:"price"`
	URL         *string `json:"url"`
}

// RecordSet is the ordered collection of records from a single run, in document order.
type RecordSet []ProductRecord

// Values returns the record's fields in column order, with nil rendered as "".
func (r ProductRecord) Values() []string {
	return []string{Deref(r.ProductName), Deref(r.Price), Deref(r.URL)}
}

// Row is one key-value record read back from a stored file.
// CSV rows hold strings; JSON rows hold strings or nil.
type Row map[string]any

// Record converts a row back into a ProductRecord.
// Non-string values (including nil) become nil fields.
func (r Row) Record() ProductRecord {
	return ProductRecord{
		ProductName: r.stringField(FieldProductName),
		Price:       r.stringField(FieldPrice),
		URL:         r.stringField(FieldURL),
	}
}

func (r Row) stringField(key string) *string {
	s, ok := r[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
