// Package extraction turns listing-page markup into product records.
package extraction

import "fmt"

// ParseError represents markup that could not be parsed or queried at all.
// Missing elements inside a product card are not errors.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
