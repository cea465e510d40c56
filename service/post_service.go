package service

import (
	"context"
	"strings"

	"postboard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// commentFanOut bounds concurrent comment queries while building the feed.
const commentFanOut = 8

type PostService struct {
	posts     PostStore
	comments  CommentStore
	projector *Projector
}

type CreatePostInput struct {
	UserID primitive.ObjectID
	Text   string
	Image  string
}

func NewPostService(posts PostStore, comments CommentStore, projector *Projector) *PostService {
	return &PostService{
		posts:     posts,
		comments:  comments,
		projector: projector,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostView, error) {
	if in.UserID.IsZero() {
		return nil, models.NewUnauthorizedError("Unauthorized")
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("Post text is required")
	}

	post := &models.Post{
		UserID: in.UserID,
		Text:   text,
		Image:  in.Image,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, classify(err)
	}

	view, err := s.projector.Post(ctx, post)
	return view, classify(err)
}

// ListPostsWithComments returns every post, newest first, each carrying its
// comments. Comments are fetched per post concurrently.
func (s *PostService) ListPostsWithComments(ctx context.Context) ([]*models.PostWithComments, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, classify(err)
	}
	views, err := s.projector.Posts(ctx, posts)
	if err != nil {
		return nil, classify(err)
	}

	feed := make([]*models.PostWithComments, len(views))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(commentFanOut)
	for i, view := range views {
		i, view := i, view
		g.Go(func() error {
			comments, err := s.comments.FindByPost(gctx, view.ID)
			if err != nil {
				return err
			}
			projected, err := s.projector.Comments(gctx, comments)
			if err != nil {
				return err
			}
			feed[i] = &models.PostWithComments{PostView: view, Comments: projected}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, classify(err)
	}
	return feed, nil
}

// ToggleLike likes the post for userID, or unlikes it if already liked.
// The returned bool reports the state after the call.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.PostView, bool, error) {
	if userID.IsZero() {
		return nil, false, models.NewUnauthorizedError("Unauthorized")
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, false, classify(err)
	}

	liked, err := toggleLike(ctx, "post", post, userID, s.posts.Save)
	if err != nil {
		return nil, false, classify(err)
	}

	view, err := s.projector.Post(ctx, post)
	if err != nil {
		return nil, false, classify(err)
	}
	return view, liked, nil
}

// Author returns the author of a post, for notifications.
func (s *PostService) Author(ctx context.Context, postID primitive.ObjectID) (primitive.ObjectID, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return primitive.NilObjectID, classify(err)
	}
	return post.UserID, nil
}
