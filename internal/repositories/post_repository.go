package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/nano-midea/feed/internal/feed"
	"github.com/anonto42/nano-midea/feed/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrPostNotFound is returned when no post has the requested ID.
var ErrPostNotFound = errors.New("post not found")

// PostRepository defines the interface for post data operations
type PostRepository interface {
	feed.PostStore
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	// AddLike and the other membership methods report whether the set changed.
	AddLike(ctx context.Context, postID string, userID uint) (bool, error)
	RemoveLike(ctx context.Context, postID string, userID uint) (bool, error)
	AddBookmark(ctx context.Context, postID string, userID uint) (bool, error)
	RemoveBookmark(ctx context.Context, postID string, userID uint) (bool, error)
	IncrementViewCount(ctx context.Context, postID string) error
	IncrementCommentCount(ctx context.Context, postID string) error
	DecrementCommentCount(ctx context.Context, postID string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes backing the recent and tag-filtered feeds.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
	})
	return err
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	preparePost(post, time.Now())
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := parsePostID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// QueryFeed runs the ranking pipeline for q and returns at most q.Limit posts.
func (r *MongoPostRepository) QueryFeed(ctx context.Context, q feed.Query) ([]models.Post, error) {
	cursor, err := r.collection.Aggregate(ctx, feedPipeline(q))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// feedPipeline builds the aggregation for one feed window. Every ordering ends
// in _id so equal keys still produce a total order.
func feedPipeline(q feed.Query) mongo.Pipeline {
	match := bson.M{}
	if q.Tag != "" {
		match["tags"] = q.Tag
	}
	if q.Sort == feed.SortRecent && !q.AfterID.IsZero() {
		match["$or"] = bson.A{
			bson.M{"created_at": bson.M{"$lt": q.AfterCreatedAt}},
			bson.M{"created_at": q.AfterCreatedAt, "_id": bson.M{"$lt": q.AfterID}},
		}
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: match}}}
	likeCount := bson.M{"$size": bson.M{"$ifNull": bson.A{"$liked_by", bson.A{}}}}

	switch q.Sort {
	case feed.SortLiked:
		pipeline = append(pipeline,
			bson.D{{Key: "$addFields", Value: bson.M{"like_count": likeCount}}},
			bson.D{{Key: "$sort", Value: bson.D{
				{Key: "like_count", Value: -1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			}}},
			bson.D{{Key: "$skip", Value: q.Skip}},
		)
	case feed.SortPopular:
		score := bson.M{"$add": bson.A{
			bson.M{"$multiply": bson.A{likeCount, q.Weights.Like}},
			bson.M{"$multiply": bson.A{bson.M{"$ifNull": bson.A{"$comment_count", 0}}, q.Weights.Comment}},
			bson.M{"$multiply": bson.A{bson.M{"$ifNull": bson.A{"$view_count", 0}}, q.Weights.View}},
		}}
		pipeline = append(pipeline,
			bson.D{{Key: "$addFields", Value: bson.M{"popularity": score}}},
			bson.D{{Key: "$sort", Value: bson.D{
				{Key: "popularity", Value: -1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			}}},
			bson.D{{Key: "$skip", Value: q.Skip}},
		)
	default:
		pipeline = append(pipeline,
			bson.D{{Key: "$sort", Value: bson.D{
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			}}},
		)
	}

	pipeline = append(pipeline, bson.D{{Key: "$limit", Value: q.Limit}})
	if q.Sort.OffsetBased() {
		pipeline = append(pipeline, bson.D{{Key: "$unset", Value: bson.A{"like_count", "popularity"}}})
	}
	return pipeline
}

// AddLike adds userID to the post's likers
func (r *MongoPostRepository) AddLike(ctx context.Context, postID string, userID uint) (bool, error) {
	return r.updateMembers(ctx, postID, "$addToSet", "liked_by", userID)
}

// RemoveLike removes userID from the post's likers
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID string, userID uint) (bool, error) {
	return r.updateMembers(ctx, postID, "$pull", "liked_by", userID)
}

// AddBookmark adds userID to the post's bookmarkers
func (r *MongoPostRepository) AddBookmark(ctx context.Context, postID string, userID uint) (bool, error) {
	return r.updateMembers(ctx, postID, "$addToSet", "bookmarked_by", userID)
}

// RemoveBookmark removes userID from the post's bookmarkers
func (r *MongoPostRepository) RemoveBookmark(ctx context.Context, postID string, userID uint) (bool, error) {
	return r.updateMembers(ctx, postID, "$pull", "bookmarked_by", userID)
}

func (r *MongoPostRepository) updateMembers(ctx context.Context, postID, op, field string, userID uint) (bool, error) {
	objID, err := parsePostID(postID)
	if err != nil {
		return false, err
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{op: bson.M{field: userID}})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrPostNotFound
	}
	return res.ModifiedCount > 0, nil
}

// IncrementViewCount increments the view count of a post
func (r *MongoPostRepository) IncrementViewCount(ctx context.Context, postID string) error {
	return r.incCounter(ctx, postID, "view_count", 1, bson.M{})
}

// IncrementCommentCount increments the comment count of a post
func (r *MongoPostRepository) IncrementCommentCount(ctx context.Context, postID string) error {
	return r.incCounter(ctx, postID, "comment_count", 1, bson.M{})
}

// DecrementCommentCount decrements the comment count of a post, stopping at zero
func (r *MongoPostRepository) DecrementCommentCount(ctx context.Context, postID string) error {
	return r.incCounter(ctx, postID, "comment_count", -1, bson.M{"comment_count": bson.M{"$gt": 0}})
}

func (r *MongoPostRepository) incCounter(ctx context.Context, postID, field string, delta int64, guard bson.M) error {
	objID, err := parsePostID(postID)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": objID}
	for k, v := range guard {
		filter[k] = v
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 && len(guard) == 0 {
		return ErrPostNotFound
	}
	return nil
}

func parsePostID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid post ID format", ErrPostNotFound)
	}
	return objID, nil
}

// preparePost assigns identity and timestamps and makes the membership sets
// empty arrays rather than null, which $addToSet and $size require.
func preparePost(post *models.Post, now time.Time) {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.LikedBy == nil {
		post.LikedBy = models.UserIDSet{}
	}
	if post.BookmarkedBy == nil {
		post.BookmarkedBy = models.UserIDSet{}
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
}
