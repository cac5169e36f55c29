package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Email    string `validate:"omitempty,email"`
	Quantity int    `validate:"required,gte=1,lte=9"`
	Delivery string `validate:"required,oneof=pickup standard express"`
}

func TestValidate_Success(t *testing.T) {
	s := testStruct{Email: "kari@example.com", Quantity: 3, Delivery: "express"}
	err := Validate(s)
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	s := testStruct{Quantity: 3}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Delivery")
	assert.Equal(t, "is required", fields["Delivery"])
}

func TestValidate_InvalidEmail(t *testing.T) {
	s := testStruct{Email: "not-an-email", Quantity: 3, Delivery: "pickup"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Email")
	assert.Equal(t, "must be a valid email address", fields["Email"])
}

func TestValidate_OutOfRange(t *testing.T) {
	s := testStruct{Quantity: 12, Delivery: "standard"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Quantity")
	assert.Contains(t, fields["Quantity"], "9")
}

func TestValidate_OneOf(t *testing.T) {
	s := testStruct{Quantity: 3, Delivery: "drone"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields["Delivery"], "pickup standard express")
}

func TestValidate_MultipleErrors(t *testing.T) {
	s := testStruct{Email: "nope"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Email")
	assert.Contains(t, fields, "Quantity")
	assert.Contains(t, fields, "Delivery")
}

func TestValidationError_ErrorString(t *testing.T) {
	s := testStruct{}
	err := Validate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Quantity'")
	assert.Contains(t, err.Error(), "is required")
}
