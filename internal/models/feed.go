package models

import "time"

// FeedPost is the public shape of a post. It carries engagement counts and the
// viewer-relative flags, never the membership sets themselves.
type FeedPost struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Content       string      `json:"content"`
	Media         []string    `json:"media"`
	Tags          []string    `json:"tags"`
	Likes         int         `json:"likes"`
	BookmarkCount int         `json:"bookmarkCount"`
	Comments      int64       `json:"comments"`
	Views         int64       `json:"views"`
	IsLiked       bool        `json:"isLiked"`
	IsBookmarked  bool        `json:"isBookmarked"`
	Author        UserCompact `json:"author"`
	CreatedAt     time.Time   `json:"createdAt"`
}
