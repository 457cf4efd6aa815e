package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = ParseRole("Admin")
	assert.False(t, ok)
	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, ThemeDark.Valid())
	assert.False(t, Theme("solarized").Valid())
	assert.True(t, PostPublished.Valid())
	assert.False(t, PostStatus("archived").Valid())
}
