// Package fielderrs carries validation failures keyed by field name so handlers can
// render them as a field -> messages mapping in 400 responses.
package fielderrs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps a field name to the validation messages raised for it.
type FieldErrors map[string][]string

// New returns a FieldErrors holding a single message.
func New(field, message string) FieldErrors {
	return FieldErrors{field: {message}}
}

// Add appends a message for the given field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", field, strings.Join(fe[field], ", "))
	}
	return b.String()
}

// From unwraps err into a FieldErrors when one is in the chain.
func From(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
