package routes

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"postboard/auth"
	"postboard/handlers"
	"postboard/middleware"
	"postboard/uploads"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Origins []string
	Tokens  *auth.Tokens
	// Realtime serves the websocket feed at /ws when set.
	Realtime http.Handler
	// UploadDir is served at /uploads when set.
	UploadDir string
	Logger    *slog.Logger
}

func SetupRouter(h *handlers.Handler, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(opts.Logger))
	router.Use(cors.New(corsConfig(opts.Origins)))

	router.GET("/api/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.Realtime != nil {
		router.GET("/ws", gin.WrapH(opts.Realtime))
	}
	if opts.UploadDir != "" {
		router.Static(uploads.PublicPrefix, opts.UploadDir)
	}

	requireAuth := middleware.JWTAuthMiddleware(opts.Tokens)

	authGroup := router.Group("/api/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", requireAuth, h.Me)

	posts := router.Group("/api/posts")
	posts.POST("/create", requireAuth, h.CreatePost)
	posts.GET("/getall", h.GetAllPosts)
	posts.POST("/:postId/like", requireAuth, h.ToggleLikePost)
	posts.POST("/:postId/comments", requireAuth, h.AddComment)
	posts.GET("/:postId/comments", h.GetComments)
	posts.PUT("/comments/:commentId", requireAuth, h.EditComment)
	posts.DELETE("/comments/:commentId", requireAuth, h.DeleteComment)
	posts.POST("/comments/:commentId/like", requireAuth, h.ToggleLikeComment)

	push := router.Group("/api/push")
	push.GET("/vapid-public-key", h.GetVapidPublicKey)
	push.POST("/subscribe", requireAuth, h.SubscribePush)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			handlers.NotFound(c)
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
