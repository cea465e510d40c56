package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLikeSet_Toggle(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	var s LikeSet
	assert.True(t, s.Toggle(a))
	assert.True(t, s.Toggle(b))
	assert.Equal(t, LikeSet{a, b}, s)

	assert.False(t, s.Toggle(a))
	assert.Equal(t, LikeSet{b}, s)
	assert.False(t, s.Has(a))

	assert.True(t, s.Toggle(a))
	assert.Equal(t, LikeSet{b, a}, s, "re-like appends at the end")
}

func TestLikeSet_ToggleTwiceIsNoop(t *testing.T) {
	u := primitive.NewObjectID()
	post := &Post{Likes: LikeSet{primitive.NewObjectID()}}
	before := append(LikeSet(nil), post.Likes...)

	post.LikeSet().Toggle(u)
	post.LikeSet().Toggle(u)

	assert.Equal(t, before, post.Likes)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", NewUnauthorizedError("Unauthorized"), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("Not authorized"), http.StatusForbidden},
		{"not found", NewNotFoundError("Post"), http.StatusNotFound},
		{"validation", NewValidationError("Comment text is required"), http.StatusBadRequest},
		{"conflict", NewConflictError("Email already in use"), http.StatusConflict},
		{"internal", NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("socket closed"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("load: %w", NewNotFoundError("Comment")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestAppError_Message(t *testing.T) {
	err := NewInternalError(errors.New("connection reset"))
	assert.Equal(t, "Server Error: connection reset", err.Error())
	assert.True(t, HasCode(err, CodeInternal))
	assert.Equal(t, "Post not found", NewNotFoundError("Post").Error())
}
