package repositories

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/nano-midea/feed/internal/feed"
	"github.com/anonto42/nano-midea/feed/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newClockedRepo returns a repository whose clock advances one minute per post.
func newClockedRepo() *MemoryPostRepository {
	r := NewMemoryPostRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var n int
	r.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return r
}

func mustCreate(t *testing.T, r *MemoryPostRepository, title string, tags ...string) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: 1, Title: title, Tags: tags}
	require.NoError(t, r.CreatePost(context.Background(), p))
	return p
}

func TestMemoryPostRepository_CreateAndGet(t *testing.T) {
	r := newClockedRepo()
	ctx := context.Background()

	p := mustCreate(t, r, "hello", "go")
	assert.False(t, p.ID.IsZero())
	assert.NotNil(t, p.LikedBy)
	assert.NotNil(t, p.BookmarkedBy)

	got, err := r.GetPostByID(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Title)

	// The returned copy is detached from the stored post.
	got.Tags[0] = "mutated"
	again, err := r.GetPostByID(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, again.Tags)

	_, err = r.GetPostByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = r.GetPostByID(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestMemoryPostRepository_Delete(t *testing.T) {
	r := newClockedRepo()
	ctx := context.Background()
	p := mustCreate(t, r, "bye")

	require.NoError(t, r.DeletePost(ctx, p.ID.Hex()))
	assert.ErrorIs(t, r.DeletePost(ctx, p.ID.Hex()), ErrPostNotFound)
}

func TestMemoryPostRepository_LikeSetSemantics(t *testing.T) {
	r := newClockedRepo()
	ctx := context.Background()
	p := mustCreate(t, r, "liked")

	added, err := r.AddLike(ctx, p.ID.Hex(), 5)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = r.AddLike(ctx, p.ID.Hex(), 5)
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := r.RemoveLike(ctx, p.ID.Hex(), 6)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = r.RemoveLike(ctx, p.ID.Hex(), 5)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = r.AddLike(ctx, primitive.NewObjectID().Hex(), 5)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestMemoryPostRepository_ConcurrentDoubleSubmit(t *testing.T) {
	r := newClockedRepo()
	ctx := context.Background()
	p := mustCreate(t, r, "race")

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			added, err := r.AddLike(ctx, p.ID.Hex(), 9)
			assert.NoError(t, err)
			if added {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			_, err := r.AddBookmark(ctx, p.ID.Hex(), 9)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := r.GetPostByID(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, wins)
	assert.Equal(t, models.UserIDSet{9}, got.LikedBy)
	assert.Equal(t, models.UserIDSet{9}, got.BookmarkedBy)
}

func TestMemoryPostRepository_Counters(t *testing.T) {
	r := newClockedRepo()
	ctx := context.Background()
	p := mustCreate(t, r, "counted")

	require.NoError(t, r.IncrementViewCount(ctx, p.ID.Hex()))
	require.NoError(t, r.IncrementCommentCount(ctx, p.ID.Hex()))
	require.NoError(t, r.DecrementCommentCount(ctx, p.ID.Hex()))
	require.NoError(t, r.DecrementCommentCount(ctx, p.ID.Hex()))

	got, err := r.GetPostByID(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ViewCount)
	assert.Equal(t, int64(0), got.CommentCount)
}

func TestMemoryPostRepository_QueryFeedRecent(t *testing.T) {
	r := newClockedRepo()
	ctx := context.Background()
	p1 := mustCreate(t, r, "1", "go")
	p2 := mustCreate(t, r, "2")
	p3 := mustCreate(t, r, "3", "go")

	posts, err := r.QueryFeed(ctx, feed.Query{Sort: feed.SortRecent, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{p3.ID, p2.ID, p1.ID}, postIDs(posts))

	posts, err = r.QueryFeed(ctx, feed.Query{Sort: feed.SortRecent, AfterID: p3.ID, AfterCreatedAt: p3.CreatedAt, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{p2.ID}, postIDs(posts))

	posts, err = r.QueryFeed(ctx, feed.Query{Sort: feed.SortRecent, Tag: "go", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{p3.ID, p1.ID}, postIDs(posts))
}

// skewedPosts returns posts whose _id order disagrees with their created_at
// order, including equal creation times.
func skewedPosts() []models.Post {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	minutes := []int{5, 1, 7, 1, 3, 7, 0, 2}
	posts := make([]models.Post, 0, len(minutes))
	for i, m := range minutes {
		p := models.Post{AuthorID: 1, Title: "skewed"}
		preparePost(&p, base.Add(time.Duration(m)*time.Minute))
		p.ID = primitive.NewObjectIDFromTimestamp(base.Add(time.Duration(i) * time.Second))
		posts = append(posts, p)
	}
	return posts
}

func expectedRecentOrder(posts []models.Post) []primitive.ObjectID {
	sorted := append([]models.Post(nil), posts...)
	q := feed.Query{Sort: feed.SortRecent}
	sort.Slice(sorted, func(i, j int) bool { return rankedBefore(q, &sorted[i], &sorted[j]) })
	return postIDs(sorted)
}

// walkRecent pages through the recent feed of store, passing every cursor
// through its token form, and returns the ids in the order served.
func walkRecent(t *testing.T, store feed.PostStore, batch int) []primitive.ObjectID {
	t.Helper()
	cursor := feed.StartCursor(feed.SortRecent)
	var seen []primitive.ObjectID
	for i := 0; i < 100; i++ {
		raw, err := store.QueryFeed(context.Background(), feed.Query{
			Sort:           feed.SortRecent,
			AfterID:        cursor.AfterID,
			AfterCreatedAt: cursor.AfterCreatedAt,
			Limit:          int64(batch) + 1,
		})
		require.NoError(t, err)

		window := feed.Paginate(raw, batch, cursor, feed.PostKey)
		seen = append(seen, postIDs(window.Items)...)
		if !window.HasMore {
			return seen
		}
		cursor, err = feed.DecodeCursor(feed.SortRecent, window.NextCursor.Encode())
		require.NoError(t, err)
	}
	t.Fatal("pagination did not terminate")
	return nil
}

func TestMemoryPostRepository_RecentWalkWhenCreatedAtAndIDDisagree(t *testing.T) {
	r := NewMemoryPostRepository()
	posts := skewedPosts()
	for i := range posts {
		stored := clonePost(&posts[i])
		r.posts[stored.ID] = &stored
	}

	want := expectedRecentOrder(posts)
	require.Len(t, want, len(posts))
	for _, batch := range []int{1, 2, 3, 8} {
		assert.Equal(t, want, walkRecent(t, r, batch), "batch=%d", batch)
	}
}

func TestMemoryPostRepository_RankerServesOlderPostWithLargerID(t *testing.T) {
	r := NewMemoryPostRepository()
	newer := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Second)
	times := []time.Time{newer, older}
	r.now = func() time.Time {
		next := times[0]
		times = times[1:]
		return next
	}
	a := mustCreate(t, r, "a")
	b := mustCreate(t, r, "b")
	require.Equal(t, 1, compareObjectIDs(b.ID, a.ID))

	ranker := feed.NewRanker(r, NewMemoryUserRepository(), feed.DefaultOptions(), zerolog.Nop())
	one := 1
	req := feed.Request{Sort: feed.SortRecent, BatchSize: &one}

	var served []string
	for i := 0; i < 10; i++ {
		page, err := ranker.Feed(context.Background(), req)
		require.NoError(t, err)
		for _, p := range page.Posts {
			served = append(served, p.ID)
		}
		if !page.HasMore {
			break
		}
		req.Cursor = *page.NextCursor
	}
	assert.Equal(t, []string{a.ID.Hex(), b.ID.Hex()}, served)
}

func TestMemoryPostRepository_QueryFeedOffsetModes(t *testing.T) {
	r := newClockedRepo()
	ctx := context.Background()
	p1 := mustCreate(t, r, "1")
	p2 := mustCreate(t, r, "2")
	p3 := mustCreate(t, r, "3")
	for _, u := range []uint{1, 2} {
		_, err := r.AddLike(ctx, p1.ID.Hex(), u)
		require.NoError(t, err)
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, r.IncrementViewCount(ctx, p2.ID.Hex()))
	}

	liked, err := r.QueryFeed(ctx, feed.Query{Sort: feed.SortLiked, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{p1.ID, p3.ID, p2.ID}, postIDs(liked))

	popular, err := r.QueryFeed(ctx, feed.Query{Sort: feed.SortPopular, Weights: feed.DefaultScoreWeights, Skip: 1, Limit: 1})
	require.NoError(t, err)
	// p2 scores 5, p1 scores 4.
	assert.Equal(t, []primitive.ObjectID{p1.ID}, postIDs(popular))

	past, err := r.QueryFeed(ctx, feed.Query{Sort: feed.SortLiked, Skip: 5, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestMemoryPostRepository_QueryFeedCanceled(t *testing.T) {
	r := newClockedRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.QueryFeed(ctx, feed.Query{Limit: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func postIDs(posts []models.Post) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
