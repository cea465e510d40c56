package store

import (
	"context"
	"errors"
	"fmt"

	"postboard/database"
	"postboard/models"
	"postboard/observability"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SubscriptionStore struct {
	coll *mongo.Collection
}

func NewSubscriptionStore(coll *mongo.Collection) *SubscriptionStore {
	return &SubscriptionStore{coll: coll}
}

// Upsert replaces the user's subscription, inserting it if none exists.
func (s *SubscriptionStore) Upsert(ctx context.Context, userID primitive.ObjectID, sub webpush.Subscription) error {
	defer observability.TrackStore(database.PushSubsCollection, "upsert")()

	_, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"userId": userID, "sub": sub}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error) {
	defer observability.TrackStore(database.PushSubsCollection, "find")()

	var sub models.PushSubscription
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("Subscription")
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return &sub, nil
}

func (s *SubscriptionStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	defer observability.TrackStore(database.PushSubsCollection, "delete")()

	if _, err := s.coll.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}
