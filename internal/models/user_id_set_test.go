package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserIDSet_With(t *testing.T) {
	var s UserIDSet

	s, added := s.With(3)
	assert.True(t, added)
	s, added = s.With(3)
	assert.False(t, added)
	s, _ = s.With(4)

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(5))
}

func TestUserIDSet_WithoutCopies(t *testing.T) {
	orig := UserIDSet{1, 2, 3}

	out, removed := orig.Without(2)
	assert.True(t, removed)
	assert.Equal(t, UserIDSet{1, 3}, out)
	assert.Equal(t, UserIDSet{1, 2, 3}, orig)

	same, removed := out.Without(9)
	assert.False(t, removed)
	assert.Equal(t, out, same)
}

func TestPost_HasTag(t *testing.T) {
	p := &Post{Tags: []string{"go", "news"}}
	assert.True(t, p.HasTag("go"))
	assert.False(t, p.HasTag("golang"))
}
