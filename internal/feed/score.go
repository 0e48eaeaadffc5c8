package feed

import "github.com/anonto42/nano-midea/feed/internal/models"

// ScoreWeights are the coefficients of the popular ranking. The score has no
// age decay.
type ScoreWeights struct {
	Like    float64
	Comment float64
	View    float64
}

// DefaultScoreWeights ranks a like as two comments and a comment as two views.
var DefaultScoreWeights = ScoreWeights{Like: 2, Comment: 1, View: 0.5}

// Score returns the popularity score of p.
func (w ScoreWeights) Score(p *models.Post) float64 {
	return float64(p.LikedBy.Len())*w.Like +
		float64(p.CommentCount)*w.Comment +
		float64(p.ViewCount)*w.View
}
