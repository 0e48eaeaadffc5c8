package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID     uint               `json:"author_id" bson:"author_id"` // PostgreSQL ID of the author
	Title        string             `json:"title" bson:"title"`
	Content      string             `json:"content" bson:"content"`
	Media        []string           `json:"media,omitempty" bson:"media,omitempty"`
	Tags         []string           `json:"tags" bson:"tags"`
	LikedBy      UserIDSet          `json:"-" bson:"liked_by"`
	BookmarkedBy UserIDSet          `json:"-" bson:"bookmarked_by"`
	ViewCount    int64              `json:"view_count" bson:"view_count"`
	CommentCount int64              `json:"comment_count" bson:"comment_count"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// HasTag reports whether the post is tagged with tag.
func (p *Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string   `json:"title" validate:"required,min=1,max=200"`
	Content string   `json:"content" validate:"required,min=1,max=5000"`
	Media   []string `json:"media,omitempty" validate:"omitempty,max=10,dive,url"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=32"`
}
