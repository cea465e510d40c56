package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postboard/database"
	"postboard/models"
	"postboard/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore is the users collection. Besides accounts it serves the display
// identities joined into posts and comments.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(coll *mongo.Collection) *UserStore {
	return &UserStore{coll: coll}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackStore(database.UsersCollection, "create")()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = now()

	_, err := s.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return models.NewConflictError("Email already in use")
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	defer observability.TrackStore(database.UsersCollection, "find_by_email")()

	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("User")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	defer observability.TrackStore(database.UsersCollection, "find")()
	return findByID[models.User](ctx, s.coll, id, "User")
}

// Summaries resolves display identities for ids in one query. Ids without a
// user document are absent from the result.
func (s *UserStore) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	defer observability.TrackStore(database.UsersCollection, "summaries")()

	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1})
	users, err := findAll[models.UserSummary](ctx, s.coll, bson.M{"_id": bson.M{"$in": ids}}, opts, "users")
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = *u
	}
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
