package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampSize(t *testing.T) {
	assert.Equal(t, defaultSize, clampSize(0))
	assert.Equal(t, defaultSize, clampSize(-3))
	assert.Equal(t, defaultSize, clampSize(maxSize+1))
	assert.Equal(t, 25, clampSize(25))
}

func TestSearchQuery(t *testing.T) {
	q := searchQuery("", 5)
	assert.Equal(t, 5, q["size"])
	assert.Contains(t, q["query"], "match_all")

	q = searchQuery("berlin", 0)
	assert.Equal(t, defaultSize, q["size"])
	mm := q["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "berlin", mm["query"])
	assert.Contains(t, mm["fields"], "location")
}

func TestUserMapping(t *testing.T) {
	props := userMapping()["mappings"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, "keyword", props["id"].(map[string]any)["type"])
	assert.Equal(t, "keyword", props["role"].(map[string]any)["type"])
	email := props["email"].(map[string]any)
	assert.Equal(t, "text", email["type"])
	assert.Contains(t, email["fields"], "raw")
	for _, f := range []string{"name", "lastName", "location"} {
		assert.Contains(t, props, f)
	}
}
