package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection     = "users"
	PostsCollection     = "posts"
	CommentsCollection  = "comments"
	PushSubsCollection  = "push_subscriptions"
	connectAttempts     = 3
	connectRetryBackoff = 2 * time.Second
)

type Database struct {
	Client   *mongo.Client
	Users    *mongo.Collection
	Posts    *mongo.Collection
	Comments *mongo.Collection
	PushSubs *mongo.Collection
}

// Connect dials MongoDB, retrying a few times, and pings it before returning.
func Connect(ctx context.Context, uri, name string) (*Database, error) {
	var lastErr error
	for i := 1; i <= connectAttempts; i++ {
		client, err := connectOnce(ctx, uri)
		if err == nil {
			return New(client, name), nil
		}
		lastErr = err
		slog.Warn("mongodb connection attempt failed", slog.Int("attempt", i), slog.String("error", err.Error()))
		if i < connectAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(connectRetryBackoff):
			}
		}
	}
	return nil, fmt.Errorf("connect to mongodb: %w", lastErr)
}

func connectOnce(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// New wires the collections of database name on an existing client.
func New(client *mongo.Client, name string) *Database {
	db := client.Database(name)
	return &Database{
		Client:   client,
		Users:    db.Collection(UsersCollection),
		Posts:    db.Collection(PostsCollection),
		Comments: db.Collection(CommentsCollection),
		PushSubs: db.Collection(PushSubsCollection),
	}
}

// EnsureIndexes creates the indexes the stores rely on. It is idempotent.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := d.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := d.Posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("posts index: %w", err)
	}
	if _, err := d.Comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("comments index: %w", err)
	}
	if _, err := d.PushSubs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("push subscriptions index: %w", err)
	}
	return nil
}

func (d *Database) Disconnect(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return d.Client.Disconnect(ctx)
}
