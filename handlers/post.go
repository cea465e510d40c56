package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"postboard/middleware"
	"postboard/models"
	"postboard/notify"
	"postboard/service"
	"postboard/uploads"
	"postboard/websocket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreatePostRequest struct {
	Text string `form:"text" json:"text"`
}

// CreatePost accepts multipart (text plus optional image file) or JSON.
func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, models.NewValidationError(err.Error()))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.fail(c, models.NewValidationError("Post text is required"))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	var image string
	if fh, err := c.FormFile("image"); err == nil {
		image, err = h.storeImage(ctx, fh)
		if err != nil {
			h.fail(c, err)
			return
		}
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		h.fail(c, models.NewValidationError("Invalid image upload"))
		return
	}

	post, err := h.Posts.CreatePost(ctx, service.CreatePostInput{
		UserID: middleware.UserID(c),
		Text:   req.Text,
		Image:  image,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.broadcast(websocket.EventPostCreated, post)
	ok(c, http.StatusCreated, "Post created successfully", post)
}

func (h *Handler) storeImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > h.MaxUploadBytes {
		return "", models.NewValidationError(fmt.Sprintf("Image must be at most %d MB", h.MaxUploadBytes>>20))
	}
	if h.Uploader == nil {
		return "", models.NewInternalError(errors.New("image uploads are not configured"))
	}

	f, err := fh.Open()
	if err != nil {
		return "", models.NewValidationError("Invalid image upload")
	}
	defer f.Close()

	ext, err := uploads.Sniff(f)
	if errors.Is(err, uploads.ErrUnsupportedType) {
		return "", models.NewValidationError("Only jpeg, png, gif and webp images are allowed")
	}
	if err != nil {
		return "", models.NewInternalError(err)
	}

	url, err := h.Uploader.Upload(ctx, f, primitive.NewObjectID().Hex(), ext)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return url, nil
}

// GetAllPosts answers with a bare array of posts, each with its comments.
func (h *Handler) GetAllPosts(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	feed, err := h.Posts.ListPostsWithComments(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *Handler) ToggleLikePost(c *gin.Context) {
	postID, found := h.objectID(c, "postId", "Post")
	if !found {
		return
	}
	userID := middleware.UserID(c)

	ctx, cancel := h.context(c)
	defer cancel()

	post, liked, err := h.Posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	message := "Post unliked"
	if liked {
		message = "Post liked"
		if post.Author.ID != userID {
			h.notify(ctx, post.Author.ID, notify.Notification{
				Title: likerName(post.Likes, userID) + " liked your post",
				Body:  post.Text,
				URL:   "/posts/" + post.ID.Hex(),
			})
		}
	}
	h.broadcast(websocket.EventPostLiked, post)
	ok(c, http.StatusOK, message, post)
}

func likerName(likes []models.UserSummary, userID primitive.ObjectID) string {
	for _, u := range likes {
		if u.ID == userID && u.Name != "" {
			return u.Name
		}
	}
	return "Someone"
}
