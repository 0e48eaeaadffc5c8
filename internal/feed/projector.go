package feed

import "github.com/anonto42/nano-midea/feed/internal/models"

// Project maps a stored post to its public shape for viewerID. A zero
// viewerID is an anonymous viewer and gets both flags false. The result
// shares no slices with p's membership sets.
func Project(p *models.Post, author models.UserCompact, viewerID uint) models.FeedPost {
	media := p.Media
	if media == nil {
		media = []string{}
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	if author.ID == 0 {
		author.ID = p.AuthorID
	}

	return models.FeedPost{
		ID:            p.ID.Hex(),
		Title:         p.Title,
		Content:       p.Content,
		Media:         media,
		Tags:          tags,
		Likes:         p.LikedBy.Len(),
		BookmarkCount: p.BookmarkedBy.Len(),
		Comments:      p.CommentCount,
		Views:         p.ViewCount,
		IsLiked:       viewerID != 0 && p.LikedBy.Contains(viewerID),
		IsBookmarked:  viewerID != 0 && p.BookmarkedBy.Contains(viewerID),
		Author:        author,
		CreatedAt:     p.CreatedAt,
	}
}
