// Package store holds the MongoDB-backed collections: posts, comments, users
// and push subscriptions.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postboard/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// now is truncated to milliseconds, the resolution BSON dates keep, so a
// document read back compares equal to the value that was written.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func findByID[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, resource string) (*T, error) {
	var out T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError(resource)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", resource, err)
	}
	return &out, nil
}

func replaceByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, doc any, resource string) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("save %s: %w", resource, err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError(resource)
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions, resource string) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", resource, err)
	}
	defer cursor.Close(ctx)

	out := []*T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", resource, err)
	}
	return out, nil
}

// newestFirst sorts by creation time, newest first, with the id as tiebreak.
func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
}
