package permissions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/permissions"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	t.Run("public availability", func(t *testing.T) {
		assert.True(t, data.FindPermissions("/v1/reservations/available", "GET").Skip)
	})

	t.Run("listing everything is admin only", func(t *testing.T) {
		p := data.FindPermissions("/v1/reservations/all", "GET")

		assert.False(t, p.Skip)
		assert.ElementsMatch(t, []string{"admin", "superadmin"}, p.Permissions)
	})

	t.Run("trailing slash ignored", func(t *testing.T) {
		assert.True(t, data.FindPermissions("/v1/rooms/", "GET").Skip)
	})

	t.Run("method matters", func(t *testing.T) {
		assert.NotEmpty(t, data.FindPermissions("/v1/rooms/{id}", "DELETE").Permissions)
		assert.True(t, data.FindPermissions("/v1/rooms/{id}", "GET").Skip)
	})

	t.Run("unknown route", func(t *testing.T) {
		assert.Equal(t, permissions.Permission{}, data.FindPermissions("/v1/unknown", "GET"))
	})
}

func TestParse(t *testing.T) {
	_, err := permissions.Parse([]byte("{"))

	assert.Error(t, err)
}
