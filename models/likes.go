package models

import (
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeSet is the ordered set of users who like a post or comment.
// It never holds the same id twice.
type LikeSet []primitive.ObjectID

// Has reports whether userID is in the set.
func (s LikeSet) Has(userID primitive.ObjectID) bool {
	return slices.Contains(s, userID)
}

// Toggle removes userID if present, otherwise appends it. It returns true
// when the user likes the entity after the call.
func (s *LikeSet) Toggle(userID primitive.ObjectID) bool {
	if i := slices.Index(*s, userID); i >= 0 {
		*s = slices.Delete(*s, i, i+1)
		return false
	}
	*s = append(*s, userID)
	return true
}

// Likeable is anything carrying a LikeSet: posts and comments.
type Likeable interface {
	LikeSet() *LikeSet
}
