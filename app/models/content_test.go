package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentSection_Key(t *testing.T) {
	assert.Equal(t, "hero", ContentSection{ID: "x1", ContentID: "hero"}.Key())
	assert.Equal(t, "x1", ContentSection{ID: "x1"}.Key())
}

func TestContentSection_Items(t *testing.T) {
	s := ContentSection{Metadata: map[string]any{
		"items": []any{
			map[string]any{"name": "Ravi", "location": "Sivakasi", "rating": 5, "text": "Bright!"},
		},
	}}

	var got []Testimonial
	assert.True(t, s.Items(&got))
	assert.Equal(t, []Testimonial{{Name: "Ravi", Location: "Sivakasi", Rating: 5, Text: "Bright!"}}, got)

	var none []Feature
	assert.False(t, ContentSection{}.Items(&none))
	assert.Nil(t, none)

	bad := ContentSection{Metadata: map[string]any{"items": "not a list"}}
	assert.False(t, bad.Items(&none))
}

func TestContentKind_Valid(t *testing.T) {
	assert.True(t, KindSteps.Valid())
	assert.False(t, ContentKind("carousel").Valid())
}
