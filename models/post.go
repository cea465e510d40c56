package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Text         string             `bson:"text" json:"text"`
	Image        string             `bson:"image,omitempty" json:"image,omitempty"` // Cloudinary URL or /uploads path
	Likes        LikeSet            `bson:"likes" json:"likes"`
	CommentCount int                `bson:"commentCount" json:"commentCount"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Post) LikeSet() *LikeSet { return &p.Likes }

// PostView is a post with author and likers resolved for display.
// Populated in responses only.
type PostView struct {
	ID           primitive.ObjectID `json:"id"`
	Author       UserSummary        `json:"author"`
	Text         string             `json:"text"`
	Image        string             `json:"image,omitempty"`
	Likes        []UserSummary      `json:"likes"`
	CommentCount int                `json:"commentCount"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// PostWithComments is a feed entry: a post followed by its comments, newest first.
type PostWithComments struct {
	*PostView
	Comments []*CommentView `json:"comments"`
}
