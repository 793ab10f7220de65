package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadEligible(t *testing.T) {
	assert.True(t, Lead{Status: LeadStatusNew}.Eligible())
	assert.True(t, Lead{}.Eligible(), "missing status defaults to new")
	assert.False(t, Lead{Status: LeadStatusContacted}.Eligible())
	assert.False(t, Lead{Status: LeadStatusLost}.Eligible())
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	c := Customer{Status: CustomerStatusInactive}.WithDefaults()
	assert.Equal(t, CustomerStatusInactive, c.Status)

	c = Customer{}.WithDefaults()
	assert.Equal(t, CustomerStatusActive, c.Status)

	f := FAQ{}.WithDefaults()
	require.NotNil(t, f.Active)
	assert.True(t, *f.Active)
	assert.Equal(t, "general", f.Category)

	r := Role{}.WithDefaults()
	assert.NotNil(t, r.Permissions)
}

func TestStaffConfirmPasswordNeverSerialized(t *testing.T) {
	body, err := json.Marshal(Staff{Name: "Ada", Email: "ada@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	assert.NotContains(t, string(body), "onfirm")

	var s Staff
	require.NoError(t, json.Unmarshal([]byte(`{"id":"s1","name":"Ada"}`), &s))
	assert.Empty(t, s.Password)
	assert.Equal(t, Option{ID: "s1", Name: "Ada"}, s.Option())
}
