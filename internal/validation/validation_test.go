package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind,omitempty" validate:"omitempty,oneof=a b"`
}

func TestStructReportsJSONNames(t *testing.T) {
	v := New()

	err := v.Struct("sample", sample{Kind: "c"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "sample", vErr.Subject)

	byField := map[string]FieldError{}
	for _, f := range vErr.Fields {
		byField[f.Field] = f
	}
	require.Contains(t, byField, "name")
	assert.Equal(t, "required", byField["name"].Type)
	assert.Equal(t, "name is a required field", byField["name"].Message)
	require.Contains(t, byField, "kind")
	assert.Equal(t, "oneof", byField["kind"].Type)
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, New().Struct("sample", sample{Name: "x", Kind: "a"}))
}

func TestFieldError(t *testing.T) {
	err := Field("user", "id", "required", "id is a required field")
	assert.EqualError(t, err, "invalid user: id is a required field")
	assert.Equal(t, []FieldError{{Field: "id", Message: "id is a required field", Type: "required"}}, err.Fields)
}
