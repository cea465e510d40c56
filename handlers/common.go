package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"postboard/models"
	"postboard/notify"
	"postboard/service"
	"postboard/uploads"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultTimeout = 10 * time.Second

// Broadcaster publishes realtime feed events.
type Broadcaster interface {
	Broadcast(eventType string, payload any)
}

// Notifier delivers push notifications without blocking the request.
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, n notify.Notification)
}

type Deps struct {
	Posts          *service.PostService
	Comments       *service.CommentService
	Auth           *service.AuthService
	Pusher         *notify.Pusher
	Uploader       uploads.Uploader
	Hub            Broadcaster
	Notifier       Notifier
	Logger         *slog.Logger
	MaxUploadBytes int64
	Timeout        time.Duration
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Timeout == 0 {
		d.Timeout = defaultTimeout
	}
	if d.MaxUploadBytes == 0 {
		d.MaxUploadBytes = 10 << 20
	}
	return &Handler{Deps: d}
}

func (h *Handler) context(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.Timeout)
}

func (h *Handler) broadcast(eventType string, payload any) {
	if h.Hub != nil {
		h.Hub.Broadcast(eventType, payload)
	}
}

func (h *Handler) notify(ctx context.Context, userID primitive.ObjectID, n notify.Notification) {
	if h.Notifier != nil {
		h.Notifier.Notify(ctx, userID, n)
	}
}

func ok(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// fail answers with the status of err. Unclassified and internal errors are
// reported as "Server Error" with the underlying text in "error".
func (h *Handler) fail(c *gin.Context, err error) {
	status := models.StatusOf(err)
	body := gin.H{"success": false}

	var appErr *models.AppError
	if errors.As(err, &appErr) && status != http.StatusInternalServerError {
		body["message"] = appErr.Message
		c.JSON(status, body)
		return
	}

	detail := err
	if appErr != nil && appErr.Err != nil {
		detail = appErr.Err
	}
	h.Logger.ErrorContext(c.Request.Context(), "request error", slog.String("error", err.Error()))
	_ = c.Error(err)
	body["message"] = "Server Error"
	body["error"] = detail.Error()
	c.JSON(http.StatusInternalServerError, body)
}

// objectID reads an id path parameter. A malformed id cannot name an
// existing entity, so it is answered with resource's NotFound.
func (h *Handler) objectID(c *gin.Context, param, resource string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		h.fail(c, models.NewNotFoundError(resource))
		return primitive.NilObjectID, false
	}
	return id, true
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Route not found"})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Backend is running"})
}
