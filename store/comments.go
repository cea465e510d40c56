package store

import (
	"context"
	"fmt"

	"postboard/database"
	"postboard/models"
	"postboard/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CommentStore struct {
	coll *mongo.Collection
}

func NewCommentStore(coll *mongo.Collection) *CommentStore {
	return &CommentStore{coll: coll}
}

func (s *CommentStore) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackStore(database.CommentsCollection, "create")()

	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.Likes == nil {
		comment.Likes = models.LikeSet{}
	}
	ts := now()
	comment.CreatedAt, comment.UpdatedAt = ts, ts

	if _, err := s.coll.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *CommentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	defer observability.TrackStore(database.CommentsCollection, "find")()
	return findByID[models.Comment](ctx, s.coll, id, "Comment")
}

// FindByPost returns the comments of one post, newest first.
func (s *CommentStore) FindByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	defer observability.TrackStore(database.CommentsCollection, "find_by_post")()
	return findAll[models.Comment](ctx, s.coll, bson.M{"postId": postID}, newestFirst(), "comments")
}

func (s *CommentStore) Save(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackStore(database.CommentsCollection, "save")()

	comment.UpdatedAt = now()
	return replaceByID(ctx, s.coll, comment.ID, comment, "Comment")
}

func (s *CommentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer observability.TrackStore(database.CommentsCollection, "delete")()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Comment")
	}
	return nil
}
