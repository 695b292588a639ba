package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleIsAdmin(t *testing.T) {
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleStudent.IsAdmin())
	assert.False(t, Role("Admin").IsAdmin())
	assert.False(t, Role("").IsAdmin())
}

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	u := User{ID: "u1", Name: "A", Enrollment: "E1", Email: "a@x.com", PasswordHash: "secret", Role: RoleStudent}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "passwordHash")
	assert.NotContains(t, fields, "PasswordHash")
	assert.Equal(t, "u1", fields["_id"])
	assert.Equal(t, "student", fields["role"])
}

func TestProfile(t *testing.T) {
	u := &User{Name: "A", Enrollment: "E1", Email: "a@x.com", Role: RoleAdmin}
	assert.Equal(t, Profile{Name: "A", Enrollment: "E1", Role: RoleAdmin}, u.Profile())
}
