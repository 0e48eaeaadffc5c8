package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/nano-midea/feed/internal/feed"
	"github.com/anonto42/nano-midea/feed/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryPostRepository is a PostRepository held in process memory. It ranks
// with the same keys and tie-breaks as the MongoDB pipeline.
type MemoryPostRepository struct {
	posts map[primitive.ObjectID]*models.Post
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemoryPostRepository creates an empty in-memory post store.
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		posts: make(map[primitive.ObjectID]*models.Post),
		now:   time.Now,
	}
}

func (r *MemoryPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	preparePost(post, r.now())
	stored := clonePost(post)
	r.posts[stored.ID] = &stored
	return nil
}

func (r *MemoryPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[objID]
	if !ok {
		return nil, ErrPostNotFound
	}
	out := clonePost(post)
	return &out, nil
}

func (r *MemoryPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := parsePostID(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[objID]; !ok {
		return ErrPostNotFound
	}
	delete(r.posts, objID)
	return nil
}

func (r *MemoryPostRepository) QueryFeed(ctx context.Context, q feed.Query) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	matched := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if q.Tag != "" && !p.HasTag(q.Tag) {
			continue
		}
		if q.Sort == feed.SortRecent && !q.AfterID.IsZero() && !recentAfter(p, q) {
			continue
		}
		matched = append(matched, clonePost(p))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return rankedBefore(q, &matched[i], &matched[j])
	})

	if q.Sort.OffsetBased() {
		if q.Skip >= int64(len(matched)) {
			return []models.Post{}, nil
		}
		matched = matched[q.Skip:]
	}
	if q.Limit >= 0 && int64(len(matched)) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// recentAfter reports whether p comes strictly after the cursor position of q
// in recent order.
func recentAfter(p *models.Post, q feed.Query) bool {
	if !p.CreatedAt.Equal(q.AfterCreatedAt) {
		return p.CreatedAt.Before(q.AfterCreatedAt)
	}
	return compareObjectIDs(p.ID, q.AfterID) < 0
}

// rankedBefore orders by the mode's key, then created_at, then _id, all descending.
func rankedBefore(q feed.Query, a, b *models.Post) bool {
	switch q.Sort {
	case feed.SortLiked:
		if a.LikedBy.Len() != b.LikedBy.Len() {
			return a.LikedBy.Len() > b.LikedBy.Len()
		}
	case feed.SortPopular:
		sa, sb := q.Weights.Score(a), q.Weights.Score(b)
		if sa != sb {
			return sa > sb
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return compareObjectIDs(a.ID, b.ID) > 0
}

func (r *MemoryPostRepository) AddLike(ctx context.Context, postID string, userID uint) (bool, error) {
	return r.updateMembers(postID, func(p *models.Post) bool {
		var added bool
		p.LikedBy, added = p.LikedBy.With(userID)
		return added
	})
}

func (r *MemoryPostRepository) RemoveLike(ctx context.Context, postID string, userID uint) (bool, error) {
	return r.updateMembers(postID, func(p *models.Post) bool {
		var removed bool
		p.LikedBy, removed = p.LikedBy.Without(userID)
		return removed
	})
}

func (r *MemoryPostRepository) AddBookmark(ctx context.Context, postID string, userID uint) (bool, error) {
	return r.updateMembers(postID, func(p *models.Post) bool {
		var added bool
		p.BookmarkedBy, added = p.BookmarkedBy.With(userID)
		return added
	})
}

func (r *MemoryPostRepository) RemoveBookmark(ctx context.Context, postID string, userID uint) (bool, error) {
	return r.updateMembers(postID, func(p *models.Post) bool {
		var removed bool
		p.BookmarkedBy, removed = p.BookmarkedBy.Without(userID)
		return removed
	})
}

func (r *MemoryPostRepository) IncrementViewCount(ctx context.Context, postID string) error {
	_, err := r.updateMembers(postID, func(p *models.Post) bool {
		p.ViewCount++
		return true
	})
	return err
}

func (r *MemoryPostRepository) IncrementCommentCount(ctx context.Context, postID string) error {
	_, err := r.updateMembers(postID, func(p *models.Post) bool {
		p.CommentCount++
		return true
	})
	return err
}

func (r *MemoryPostRepository) DecrementCommentCount(ctx context.Context, postID string) error {
	_, err := r.updateMembers(postID, func(p *models.Post) bool {
		if p.CommentCount == 0 {
			return false
		}
		p.CommentCount--
		return true
	})
	return err
}

// updateMembers applies fn to the stored post under the write lock.
func (r *MemoryPostRepository) updateMembers(postID string, fn func(p *models.Post) bool) (bool, error) {
	objID, err := parsePostID(postID)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[objID]
	if !ok {
		return false, ErrPostNotFound
	}
	return fn(post), nil
}

func compareObjectIDs(a, b primitive.ObjectID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func clonePost(p *models.Post) models.Post {
	out := *p
	out.Media = append([]string(nil), p.Media...)
	out.Tags = append([]string{}, p.Tags...)
	out.LikedBy = append(models.UserIDSet{}, p.LikedBy...)
	out.BookmarkedBy = append(models.UserIDSet{}, p.BookmarkedBy...)
	return out
}
