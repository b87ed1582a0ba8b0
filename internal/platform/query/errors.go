package query

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrEmptyQuery = errors.New("empty query")

// InvalidQueryError is returned when the query text can not be parsed.
type InvalidQueryError struct {
	Err error
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("Invalid query: %v", e.Err)
}

func (e *InvalidQueryError) Unwrap() error {
	return e.Err
}

// UnsupportedFieldsError lists the root fields that are not whitelisted.
type UnsupportedFieldsError struct {
	Fields []string
}

func (e *UnsupportedFieldsError) Error() string {
	return fmt.Sprintf("Unsupported status query fields: %q", e.Fields)
}
