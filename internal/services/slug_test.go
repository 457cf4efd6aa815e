package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" Hello  World! ", "hello-world"},
		{"Go 1.24: What's New?", "go-124-whats-new"},
		{"--already-slugged--", "already-slugged"},
		{"Tabs\tand\nnewlines", "tabs-and-newlines"},
		{"a - b", "a-b"},
		{"!!!", ""},
		{"Ünïcode Title", "ncode-title"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := PostSlug(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, PostSlug(got), "slug must be idempotent")
		})
	}
}

func TestTagSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AI", "ai"},
		{"Web Dev", "web-dev"},
		{"Machine   Learning", "machine-learning"},
		{"C++ Dev", "c++-dev"},
		{"  padded ", "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := TagSlug(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, TagSlug(got))
		})
	}
}

func TestCategorySlug(t *testing.T) {
	assert.Equal(t, "web-development", CategorySlug("Web Development"))
	assert.Equal(t, CategorySlug("Web Development"), CategorySlug(CategorySlug("Web Development")))
}

func TestCleanTags(t *testing.T) {
	got := CleanTags([]string{" AI ", "", "Web Dev", "AI", "   "})
	assert.Equal(t, []string{"AI", "Web Dev"}, got)
	assert.Empty(t, CleanTags(nil))
}

func TestOptionalString(t *testing.T) {
	blank := "  "
	value := " /uploads/a.png "
	assert.Nil(t, optionalString(nil))
	assert.Nil(t, optionalString(&blank))
	assert.Equal(t, "/uploads/a.png", *optionalString(&value))
}

func TestNormalizeRequired(t *testing.T) {
	value, err := NormalizeRequired("  Demo ", "title")
	assert.NoError(t, err)
	assert.Equal(t, "Demo", value)

	_, err = NormalizeRequired(" \t", "title")
	var serr ServiceError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
	assert.Equal(t, "title is required", serr.Message)
}
