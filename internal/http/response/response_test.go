package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	resp := OK()
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Message)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")
	assert.False(t, resp.Success)
	assert.Equal(t, "something went wrong", resp.Message)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
	}

	err := validator.New().Struct(payload{Email: "not-an-email"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "field Name is a required field")
	assert.Contains(t, resp.Message, "field Email must be a valid email")
}
