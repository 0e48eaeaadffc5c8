package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/anonto42/nano-midea/feed/internal/feed"
	"github.com/anonto42/nano-midea/feed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func startMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("MongoDB container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, port.Port())))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })
	return client.Database("feed_test")
}

func TestMongoPostRepository(t *testing.T) {
	db := startMongo(t)
	ctx := context.Background()
	repo := NewMongoPostRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))

	var created []*models.Post
	for i := 0; i < 5; i++ {
		p := &models.Post{AuthorID: 1, Title: fmt.Sprintf("post %d", i), Tags: []string{"all"}}
		if i%2 == 0 {
			p.Tags = append(p.Tags, "even")
		}
		require.NoError(t, repo.CreatePost(ctx, p))
		created = append(created, p)
		time.Sleep(2 * time.Millisecond)
	}

	t.Run("membership is a set", func(t *testing.T) {
		id := created[0].ID.Hex()
		added, err := repo.AddLike(ctx, id, 7)
		require.NoError(t, err)
		assert.True(t, added)

		added, err = repo.AddLike(ctx, id, 7)
		require.NoError(t, err)
		assert.False(t, added)

		got, err := repo.GetPostByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.UserIDSet{7}, got.LikedBy)

		removed, err := repo.RemoveBookmark(ctx, id, 7)
		require.NoError(t, err)
		assert.False(t, removed)

		_, err = repo.AddLike(ctx, primitive.NewObjectID().Hex(), 7)
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("recent with cursor and tag", func(t *testing.T) {
		posts, err := repo.QueryFeed(ctx, feed.Query{Sort: feed.SortRecent, Limit: 3})
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, created[4].ID, posts[0].ID)

		stored, err := repo.GetPostByID(ctx, created[2].ID.Hex())
		require.NoError(t, err)
		posts, err = repo.QueryFeed(ctx, feed.Query{Sort: feed.SortRecent, AfterID: stored.ID, AfterCreatedAt: stored.CreatedAt, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{created[1].ID, created[0].ID}, postIDs(posts))

		posts, err = repo.QueryFeed(ctx, feed.Query{Sort: feed.SortRecent, Tag: "even", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{created[4].ID, created[2].ID, created[0].ID}, postIDs(posts))
	})

	t.Run("popular and liked", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.IncrementViewCount(ctx, created[3].ID.Hex()))
		}

		liked, err := repo.QueryFeed(ctx, feed.Query{Sort: feed.SortLiked, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{created[0].ID}, postIDs(liked))

		// created[0] scores 2, created[3] scores 1.5, the rest 0.
		popular, err := repo.QueryFeed(ctx, feed.Query{Sort: feed.SortPopular, Weights: feed.DefaultScoreWeights, Skip: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{created[3].ID, created[4].ID}, postIDs(popular))
	})

	t.Run("comment count never goes negative", func(t *testing.T) {
		id := created[1].ID.Hex()
		require.NoError(t, repo.DecrementCommentCount(ctx, id))
		require.NoError(t, repo.IncrementCommentCount(ctx, id))

		got, err := repo.GetPostByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.CommentCount)
	})

	t.Run("recent walk when created_at and _id disagree", func(t *testing.T) {
		skewed := NewMongoPostRepository(db.Client().Database("feed_skew_test"))
		require.NoError(t, skewed.EnsureIndexes(ctx))

		posts := skewedPosts()
		docs := make([]interface{}, 0, len(posts))
		for i := range posts {
			docs = append(docs, &posts[i])
		}
		_, err := skewed.collection.InsertMany(ctx, docs)
		require.NoError(t, err)

		for _, batch := range []int{1, 2, 3} {
			assert.Equal(t, expectedRecentOrder(posts), walkRecent(t, skewed, batch), "batch=%d", batch)
		}
	})

	t.Run("delete", func(t *testing.T) {
		id := created[1].ID.Hex()
		require.NoError(t, repo.DeletePost(ctx, id))
		_, err := repo.GetPostByID(ctx, id)
		assert.ErrorIs(t, err, ErrPostNotFound)
	})
}
