package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-console/pkg/errors"
)

type signupForm struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password,omitempty" validate:"omitempty,min=6"`
	ConfirmPassword string `json:"-" validate:"eqfield=Password"`
}

func TestStructReportsFirstFailureByJSONName(t *testing.T) {
	v := New()

	err := v.Struct(signupForm{Email: "a@b.co"})
	require.Error(t, err)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Code)
	assert.Equal(t, "name", appErr.Field)
	assert.Equal(t, "name is required", appErr.Message)
}

func TestStructMessages(t *testing.T) {
	v := New()

	tests := []struct {
		name string
		form signupForm
		msg  string
	}{
		{"bad email", signupForm{Name: "n", Email: "nope"}, "email must be a valid email"},
		{"short password", signupForm{Name: "n", Email: "a@b.co", Password: "123", ConfirmPassword: "123"}, "password must be at least 6 characters long"},
		{"mismatched confirmation", signupForm{Name: "n", Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret2"}, "confirmPassword must match password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.form)
			require.Error(t, err)
			assert.Equal(t, tt.msg, errors.Message(err, ""))
		})
	}
}

func TestStructValid(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(&signupForm{Name: "n", Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"}))
}

func TestRequired(t *testing.T) {
	v := New()

	err := v.Required(signupForm{Name: "n", Email: "a@b.co"}, "password")
	require.Error(t, err)
	assert.Equal(t, "password is required", errors.Message(err, ""))

	assert.NoError(t, v.Required(signupForm{Password: "secret1"}, "password"))
	assert.Error(t, v.Required(signupForm{}, "missing"))
}
