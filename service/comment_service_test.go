package service

import (
	"context"
	"errors"
	"testing"

	"postboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCommentService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.users.Add("Alice")
	bob := f.users.Add("Bob")

	post, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: alice, Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, 0, post.CommentCount)

	comment, err := f.cmtSvc.AddComment(ctx, post.ID, bob, "hi")
	require.NoError(t, err)
	assert.Equal(t, bob, comment.Author.ID)
	assert.Equal(t, post.ID, comment.PostID)
	assertCommentCount(t, f, post.ID, 1)

	_, liked, err := f.cmtSvc.ToggleLike(ctx, comment.ID, alice)
	require.NoError(t, err)
	assert.True(t, liked)

	_, err = f.cmtSvc.EditComment(ctx, comment.ID, alice, "hijacked")
	assertCode(t, err, models.CodeForbidden)

	edited, err := f.cmtSvc.EditComment(ctx, comment.ID, bob, "  hi there ")
	require.NoError(t, err)
	assert.Equal(t, "hi there", edited.Text)
	require.Len(t, edited.Likes, 1)
	assert.Equal(t, alice, edited.Likes[0].ID)

	_, err = f.cmtSvc.DeleteComment(ctx, comment.ID, alice)
	assertCode(t, err, models.CodeForbidden)

	deleted, err := f.cmtSvc.DeleteComment(ctx, comment.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, comment.ID, deleted.ID)
	assertCommentCount(t, f, post.ID, 0)

	remaining, err := f.cmtSvc.GetComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func assertCommentCount(t *testing.T, f *fixture, postID primitive.ObjectID, want int) {
	t.Helper()
	post, err := f.posts.FindByID(context.Background(), postID)
	require.NoError(t, err)
	assert.Equal(t, want, post.CommentCount)
}

func TestCommentService_AddComment_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.users.Add("Alice")
	post, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: alice, Text: "hello"})
	require.NoError(t, err)

	_, err = f.cmtSvc.AddComment(ctx, post.ID, primitive.NilObjectID, "hi")
	assertCode(t, err, models.CodeUnauthorized)

	_, err = f.cmtSvc.AddComment(ctx, post.ID, alice, "   ")
	assertCode(t, err, models.CodeValidation)

	_, err = f.cmtSvc.AddComment(ctx, primitive.NewObjectID(), alice, "hi")
	assertCode(t, err, models.CodeNotFound)

	comments, err := f.cmtSvc.GetComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentService_AddComment_CountSaveFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.users.Add("Alice")
	post, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: alice, Text: "hello"})
	require.NoError(t, err)

	f.posts.SaveErr = errors.New("write conflict")
	_, err = f.cmtSvc.AddComment(ctx, post.ID, alice, "hi")
	assertCode(t, err, models.CodeInternal)

	// The comment stays and the count under-reports.
	f.posts.SaveErr = nil
	comments, err := f.cmtSvc.GetComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
	assertCommentCount(t, f, post.ID, 0)
}

func TestCommentService_GetComments_NewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.users.Add("Alice")
	post, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: alice, Text: "hello"})
	require.NoError(t, err)

	for _, text := range []string{"a", "b", "c"} {
		_, err := f.cmtSvc.AddComment(ctx, post.ID, alice, text)
		require.NoError(t, err)
	}

	comments, err := f.cmtSvc.GetComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{comments[0].Text, comments[1].Text, comments[2].Text})
}

func TestCommentService_EditComment_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.users.Add("Alice")
	post, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: alice, Text: "hello"})
	require.NoError(t, err)
	comment, err := f.cmtSvc.AddComment(ctx, post.ID, alice, "hi")
	require.NoError(t, err)

	_, err = f.cmtSvc.EditComment(ctx, comment.ID, alice, " \t")
	assertCode(t, err, models.CodeValidation)

	_, err = f.cmtSvc.EditComment(ctx, primitive.NewObjectID(), alice, "x")
	assertCode(t, err, models.CodeNotFound)

	for _, other := range []primitive.ObjectID{f.users.Add("Bob"), primitive.NewObjectID(), primitive.NilObjectID} {
		_, err = f.cmtSvc.EditComment(ctx, comment.ID, other, "x")
		assertCode(t, err, models.CodeForbidden)
	}
}

func TestCommentService_DeleteComment_FloorsAtZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.users.Add("Alice")
	post, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: alice, Text: "hello"})
	require.NoError(t, err)

	comment := &models.Comment{PostID: post.ID, UserID: alice, Text: "orphan count"}
	require.NoError(t, f.comments.Create(ctx, comment))

	_, err = f.cmtSvc.DeleteComment(ctx, comment.ID, alice)
	require.NoError(t, err)
	assertCommentCount(t, f, post.ID, 0)
}

func TestCommentService_DeleteComment_PostGone(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.users.Add("Alice")

	comment := &models.Comment{PostID: primitive.NewObjectID(), UserID: alice, Text: "dangling"}
	require.NoError(t, f.comments.Create(ctx, comment))

	_, err := f.cmtSvc.DeleteComment(ctx, comment.ID, alice)
	require.NoError(t, err)

	_, err = f.comments.FindByID(ctx, comment.ID)
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentService_DeleteComment_NotFound(t *testing.T) {
	_, err := newFixture().cmtSvc.DeleteComment(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentService_ToggleLike(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.users.Add("Alice")
	post, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: alice, Text: "hello"})
	require.NoError(t, err)
	comment, err := f.cmtSvc.AddComment(ctx, post.ID, alice, "hi")
	require.NoError(t, err)

	_, _, err = f.cmtSvc.ToggleLike(ctx, comment.ID, primitive.NilObjectID)
	assertCode(t, err, models.CodeUnauthorized)

	_, _, err = f.cmtSvc.ToggleLike(ctx, primitive.NewObjectID(), alice)
	assertCode(t, err, models.CodeNotFound)

	view, liked, err := f.cmtSvc.ToggleLike(ctx, comment.ID, alice)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Len(t, view.Likes, 1)

	view, liked, err = f.cmtSvc.ToggleLike(ctx, comment.ID, alice)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, view.Likes)
}
