package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"postId" json:"postId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	Likes     LikeSet            `bson:"likes" json:"likes"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Comment) LikeSet() *LikeSet { return &c.Likes }

type CommentView struct {
	ID        primitive.ObjectID `json:"id"`
	PostID    primitive.ObjectID `json:"postId"`
	Author    UserSummary        `json:"author"`
	Text      string             `json:"text"`
	Likes     []UserSummary      `json:"likes"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
