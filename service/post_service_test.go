package service

import (
	"context"
	"errors"
	"testing"

	"postboard/models"
	"postboard/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	posts    *storetest.Posts
	comments *storetest.Comments
	users    *storetest.Users
	postSvc  *PostService
	cmtSvc   *CommentService
}

func newFixture() *fixture {
	f := &fixture{
		posts:    storetest.NewPosts(),
		comments: storetest.NewComments(),
		users:    storetest.NewUsers(),
	}
	projector := NewProjector(f.users)
	f.postSvc = NewPostService(f.posts, f.comments, projector)
	f.cmtSvc = NewCommentService(f.comments, f.posts, projector, nil)
	return f
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}

// panicPosts fails the test if any store method is reached.
type panicPosts struct{ PostStore }

func TestPostService_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated never touches the store", func(t *testing.T) {
		svc := NewPostService(panicPosts{}, storetest.NewComments(), NewProjector(storetest.NewUsers()))
		_, err := svc.CreatePost(ctx, CreatePostInput{Text: "hello"})
		assertCode(t, err, models.CodeUnauthorized)
	})

	t.Run("blank text", func(t *testing.T) {
		f := newFixture()
		_, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: primitive.NewObjectID(), Text: "  \n"})
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture()
		alice := f.users.Add("Alice")

		post, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: alice, Text: " hello ", Image: "/uploads/a.png"})
		require.NoError(t, err)
		assert.False(t, post.ID.IsZero())
		assert.Equal(t, "hello", post.Text)
		assert.Equal(t, "/uploads/a.png", post.Image)
		assert.Equal(t, 0, post.CommentCount)
		assert.Equal(t, "Alice", post.Author.Name)
		assert.Equal(t, "alice@example.com", post.Author.Email)
		assert.NotNil(t, post.Likes)
		assert.Empty(t, post.Likes)
	})
}

func TestPostService_ToggleLike(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.users.Add("Alice")
	bob := f.users.Add("Bob")

	post, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: alice, Text: "hello"})
	require.NoError(t, err)

	view, liked, err := f.postSvc.ToggleLike(ctx, post.ID, alice)
	require.NoError(t, err)
	assert.True(t, liked)
	require.Len(t, view.Likes, 1)
	assert.Equal(t, "Alice", view.Likes[0].Name)

	view, liked, err = f.postSvc.ToggleLike(ctx, post.ID, bob)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Len(t, view.Likes, 2)

	view, liked, err = f.postSvc.ToggleLike(ctx, post.ID, alice)
	require.NoError(t, err)
	assert.False(t, liked)
	require.Len(t, view.Likes, 1)
	assert.Equal(t, bob, view.Likes[0].ID)

	stored, err := f.posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LikeSet{bob}, stored.Likes)
}

func TestPostService_ToggleLike_TwiceIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.users.Add("Alice")
	post, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: alice, Text: "hello"})
	require.NoError(t, err)

	for _, u := range []primitive.ObjectID{alice, f.users.Add("Bob"), primitive.NewObjectID()} {
		_, _, err := f.postSvc.ToggleLike(ctx, post.ID, u)
		require.NoError(t, err)
		view, _, err := f.postSvc.ToggleLike(ctx, post.ID, u)
		require.NoError(t, err)
		assert.Empty(t, view.Likes)
	}
}

func TestPostService_ToggleLike_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, _, err := f.postSvc.ToggleLike(ctx, primitive.NewObjectID(), primitive.NilObjectID)
	assertCode(t, err, models.CodeUnauthorized)

	_, _, err = f.postSvc.ToggleLike(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	assertCode(t, err, models.CodeNotFound)
}

func TestPostService_ListPostsWithComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.users.Add("Alice")
	bob := f.users.Add("Bob")

	first, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: alice, Text: "first"})
	require.NoError(t, err)
	second, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: bob, Text: "second"})
	require.NoError(t, err)

	_, err = f.cmtSvc.AddComment(ctx, first.ID, bob, "one")
	require.NoError(t, err)
	_, err = f.cmtSvc.AddComment(ctx, first.ID, alice, "two")
	require.NoError(t, err)

	feed, err := f.postSvc.ListPostsWithComments(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	assert.Equal(t, second.ID, feed[0].ID)
	assert.NotNil(t, feed[0].Comments)
	assert.Empty(t, feed[0].Comments)

	assert.Equal(t, first.ID, feed[1].ID)
	assert.Equal(t, 2, feed[1].CommentCount)
	require.Len(t, feed[1].Comments, 2)
	assert.Equal(t, "two", feed[1].Comments[0].Text)
	assert.Equal(t, "Alice", feed[1].Comments[0].Author.Name)
	assert.Equal(t, "one", feed[1].Comments[1].Text)
}

func TestPostService_ListPostsWithComments_Empty(t *testing.T) {
	feed, err := newFixture().postSvc.ListPostsWithComments(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)
}

func TestPostService_ListPostsWithComments_CommentFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: f.users.Add("Alice"), Text: "hello"})
	require.NoError(t, err)

	f.comments.FindByPostErr = errors.New("connection reset")
	_, err = f.postSvc.ListPostsWithComments(ctx)
	assertCode(t, err, models.CodeInternal)
	assert.ErrorContains(t, err, "connection reset")
}

func TestPostService_Author(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.users.Add("Alice")
	post, err := f.postSvc.CreatePost(ctx, CreatePostInput{UserID: alice, Text: "hello"})
	require.NoError(t, err)

	author, err := f.postSvc.Author(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, author)

	_, err = f.postSvc.Author(ctx, primitive.NewObjectID())
	assertCode(t, err, models.CodeNotFound)
}
