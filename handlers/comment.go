package handlers

import (
	"net/http"

	"postboard/middleware"
	"postboard/models"
	"postboard/notify"
	"postboard/websocket"

	"github.com/gin-gonic/gin"
)

type CommentRequest struct {
	Text string `form:"text" json:"text"`
}

func (h *Handler) bindComment(c *gin.Context) (string, bool) {
	var req CommentRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, models.NewValidationError(err.Error()))
		return "", false
	}
	return req.Text, true
}

func (h *Handler) AddComment(c *gin.Context) {
	postID, found := h.objectID(c, "postId", "Post")
	if !found {
		return
	}
	text, bound := h.bindComment(c)
	if !bound {
		return
	}
	userID := middleware.UserID(c)

	ctx, cancel := h.context(c)
	defer cancel()

	comment, err := h.Comments.AddComment(ctx, postID, userID, text)
	if err != nil {
		h.fail(c, err)
		return
	}

	if author, err := h.Posts.Author(ctx, postID); err == nil && author != userID {
		h.notify(ctx, author, notify.Notification{
			Title: comment.Author.Name + " commented on your post",
			Body:  comment.Text,
			URL:   "/posts/" + postID.Hex(),
		})
	}
	h.broadcast(websocket.EventCommentAdded, comment)
	ok(c, http.StatusCreated, "Comment added successfully", comment)
}

// GetComments answers with a bare array, newest first.
func (h *Handler) GetComments(c *gin.Context) {
	postID, found := h.objectID(c, "postId", "Post")
	if !found {
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	comments, err := h.Comments.GetComments(ctx, postID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) EditComment(c *gin.Context) {
	commentID, found := h.objectID(c, "commentId", "Comment")
	if !found {
		return
	}
	text, bound := h.bindComment(c)
	if !bound {
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	comment, err := h.Comments.EditComment(ctx, commentID, middleware.UserID(c), text)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.broadcast(websocket.EventCommentUpdated, comment)
	ok(c, http.StatusOK, "Comment updated successfully", comment)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	commentID, found := h.objectID(c, "commentId", "Comment")
	if !found {
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	comment, err := h.Comments.DeleteComment(ctx, commentID, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.broadcast(websocket.EventCommentDeleted, gin.H{"id": comment.ID, "postId": comment.PostID})
	ok(c, http.StatusOK, "Comment deleted", nil)
}

func (h *Handler) ToggleLikeComment(c *gin.Context) {
	commentID, found := h.objectID(c, "commentId", "Comment")
	if !found {
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	comment, liked, err := h.Comments.ToggleLike(ctx, commentID, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	message := "Comment unliked"
	if liked {
		message = "Comment liked"
	}
	h.broadcast(websocket.EventCommentLiked, comment)
	ok(c, http.StatusOK, message, comment)
}
