package fielderrs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAccumulates(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("email", "This field is required.")
	fe.Add("email", "Enter a valid email address.")
	fe.Add("name", "This field is required.")

	assert.Len(t, fe["email"], 2)
	assert.Len(t, fe["name"], 1)
}

func TestErrorIsDeterministic(t *testing.T) {
	fe := FieldErrors{
		"quantity": {"Quantity must be greater than 0."},
		"product":  {"This field is required."},
	}
	want := "product: This field is required.; quantity: Quantity must be greater than 0."
	assert.Equal(t, want, fe.Error())
}

func TestFromUnwrapsChain(t *testing.T) {
	wrapped := fmt.Errorf("creating order: %w", New("status", "select a valid choice."))

	fe, ok := From(wrapped)
	require.True(t, ok)
	assert.Equal(t, []string{"select a valid choice."}, fe["status"])
}

func TestFromRejectsOtherErrors(t *testing.T) {
	_, ok := From(errors.New("boom"))
	assert.False(t, ok)

	_, ok = From(nil)
	assert.False(t, ok)
}
