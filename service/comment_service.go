package service

import (
	"context"
	"log/slog"
	"strings"

	"postboard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentService struct {
	comments  CommentStore
	posts     PostStore
	projector *Projector
	logger    *slog.Logger
}

func NewCommentService(comments CommentStore, posts PostStore, projector *Projector, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		comments:  comments,
		posts:     posts,
		projector: projector,
		logger:    logger,
	}
}

// AddComment creates a comment on postID and bumps the post's comment count.
// The two writes are not atomic; if the count update fails the comment stays
// and the count under-reports.
func (s *CommentService) AddComment(ctx context.Context, postID, userID primitive.ObjectID, text string) (*models.CommentView, error) {
	if userID.IsZero() {
		return nil, models.NewUnauthorizedError("Unauthorized")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, classify(err)
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: userID,
		Text:   text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, classify(err)
	}

	post.CommentCount++
	if err := s.posts.Save(ctx, post); err != nil {
		s.logger.ErrorContext(ctx, "comment count update failed",
			slog.String("post_id", postID.Hex()),
			slog.String("comment_id", comment.ID.Hex()),
			slog.String("error", err.Error()),
		)
		return nil, classify(err)
	}

	view, err := s.projector.Comment(ctx, comment)
	return view, classify(err)
}

func (s *CommentService) GetComments(ctx context.Context, postID primitive.ObjectID) ([]*models.CommentView, error) {
	comments, err := s.comments.FindByPost(ctx, postID)
	if err != nil {
		return nil, classify(err)
	}
	views, err := s.projector.Comments(ctx, comments)
	return views, classify(err)
}

func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID primitive.ObjectID) (*models.CommentView, bool, error) {
	if userID.IsZero() {
		return nil, false, models.NewUnauthorizedError("Unauthorized")
	}
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, false, classify(err)
	}

	liked, err := toggleLike(ctx, "comment", comment, userID, s.comments.Save)
	if err != nil {
		return nil, false, classify(err)
	}

	view, err := s.projector.Comment(ctx, comment)
	if err != nil {
		return nil, false, classify(err)
	}
	return view, liked, nil
}

func (s *CommentService) EditComment(ctx context.Context, commentID, userID primitive.ObjectID, text string) (*models.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, classify(err)
	}
	if comment.UserID != userID {
		return nil, models.NewForbiddenError("Not authorized")
	}

	comment.Text = text
	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, classify(err)
	}

	view, err := s.projector.Comment(ctx, comment)
	return view, classify(err)
}

// DeleteComment removes the comment and decrements its post's comment count,
// floored at zero. The count update is best-effort: failures are logged and
// the delete still succeeds. The deleted comment is returned.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID primitive.ObjectID) (*models.Comment, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, classify(err)
	}
	if comment.UserID != userID {
		return nil, models.NewForbiddenError("Not authorized")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return nil, classify(err)
	}

	s.decrementCount(ctx, comment.PostID)
	return comment, nil
}

func (s *CommentService) decrementCount(ctx context.Context, postID primitive.ObjectID) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		s.logger.WarnContext(ctx, "comment count not decremented",
			slog.String("post_id", postID.Hex()),
			slog.String("error", err.Error()),
		)
		return
	}

	post.CommentCount = max(0, post.CommentCount-1)
	if err := s.posts.Save(ctx, post); err != nil {
		s.logger.WarnContext(ctx, "comment count not decremented",
			slog.String("post_id", postID.Hex()),
			slog.String("error", err.Error()),
		)
	}
}
