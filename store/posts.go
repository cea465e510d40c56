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

type PostStore struct {
	coll *mongo.Collection
}

func NewPostStore(coll *mongo.Collection) *PostStore {
	return &PostStore{coll: coll}
}

// Create assigns the id and timestamps and inserts the post.
func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackStore(database.PostsCollection, "create")()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = models.LikeSet{}
	}
	ts := now()
	post.CreatedAt, post.UpdatedAt = ts, ts

	if _, err := s.coll.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *PostStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	defer observability.TrackStore(database.PostsCollection, "find")()
	return findByID[models.Post](ctx, s.coll, id, "Post")
}

// List returns every post, newest first.
func (s *PostStore) List(ctx context.Context) ([]*models.Post, error) {
	defer observability.TrackStore(database.PostsCollection, "list")()
	return findAll[models.Post](ctx, s.coll, bson.M{}, newestFirst(), "posts")
}

// Save persists the whole post, bumping updatedAt.
func (s *PostStore) Save(ctx context.Context, post *models.Post) error {
	defer observability.TrackStore(database.PostsCollection, "save")()

	post.UpdatedAt = now()
	return replaceByID(ctx, s.coll, post.ID, post, "Post")
}
