package service

import (
	"context"

	"postboard/models"
	"postboard/observability"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toggleLike flips userID's like on entity and persists it with save. It
// returns true when the user likes the entity afterwards.
func toggleLike[T models.Likeable](
	ctx context.Context,
	kind string,
	entity T,
	userID primitive.ObjectID,
	save func(context.Context, T) error,
) (bool, error) {
	liked := entity.LikeSet().Toggle(userID)
	if err := save(ctx, entity); err != nil {
		return false, err
	}

	action := "unliked"
	if liked {
		action = "liked"
	}
	observability.LikeToggles.WithLabelValues(kind, action).Inc()
	return liked, nil
}
