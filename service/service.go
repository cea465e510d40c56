// Package service implements posts, comments, likes and accounts on top of
// the stores.
package service

import (
	"context"
	"errors"

	"postboard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Save(ctx context.Context, post *models.Post) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	FindByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error)
	Save(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserDirectory resolves display identities.
type UserDirectory interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error)
}

type UserStore interface {
	UserDirectory
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// classify passes AppErrors through and turns anything else into an internal error.
func classify(err error) error {
	var appErr *models.AppError
	if err == nil || errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
