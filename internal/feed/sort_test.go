package feed

import (
	"testing"

	"github.com/anonto42/nano-midea/feed/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestParseSortMode(t *testing.T) {
	tests := map[string]SortMode{
		"":         SortRecent,
		"recent":   SortRecent,
		"popular":  SortPopular,
		"POPULAR":  SortPopular,
		" liked ":  SortLiked,
		"trending": SortRecent,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseSortMode(in), "input %q", in)
	}
}

func TestSortMode_OffsetBased(t *testing.T) {
	assert.False(t, SortRecent.OffsetBased())
	assert.True(t, SortLiked.OffsetBased())
	assert.True(t, SortPopular.OffsetBased())
}

func TestScore_DefaultWeights(t *testing.T) {
	a := &models.Post{LikedBy: models.UserIDSet{1, 2, 3, 4, 5}}
	b := &models.Post{ViewCount: 11}
	c := &models.Post{LikedBy: models.UserIDSet{1, 2}, CommentCount: 1}

	assert.Equal(t, 10.0, DefaultScoreWeights.Score(a))
	assert.Equal(t, 5.5, DefaultScoreWeights.Score(b))
	assert.Equal(t, 5.0, DefaultScoreWeights.Score(c))
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "golang", NormalizeTag("  GoLang "))
	assert.Equal(t, "", NormalizeTag("   "))
}
