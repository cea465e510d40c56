package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postboard/auth"
	"postboard/config"
	"postboard/database"
	"postboard/handlers"
	"postboard/notify"
	"postboard/observability"
	"postboard/routes"
	"postboard/service"
	"postboard/store"
	"postboard/uploads"
	"postboard/websocket"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stdout, cfg.IsProduction(), cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to mongodb", slog.String("database", cfg.MongoDatabase))
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Disconnect(dctx); err != nil {
			logger.Warn("mongodb disconnect", slog.String("error", err.Error()))
		}
	}()

	ictx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = db.EnsureIndexes(ictx)
	cancel()
	if err != nil {
		return err
	}
	logger.Info("mongodb ready")

	// Stores and services
	users := store.NewUserStore(db.Users)
	posts := store.NewPostStore(db.Posts)
	comments := store.NewCommentStore(db.Comments)
	subs := store.NewSubscriptionStore(db.PushSubs)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	projector := service.NewProjector(users)

	uploader, err := uploads.New(cfg.CloudinaryURL, cfg.UploadDir, logger)
	if err != nil {
		return err
	}
	var uploadDir string
	if disk, ok := uploader.(*uploads.Disk); ok {
		uploadDir = disk.Dir()
	}

	pusher := notify.NewPusher(subs, cfg.VAPIDPublic, cfg.VAPIDPrivate, cfg.VAPIDSubject, logger)
	if !pusher.Enabled() {
		logger.Warn("VAPID keys not set, push notifications disabled; run cmd/vapidkeys to create a pair")
	}

	hub := websocket.NewHub(tokens, logger)
	go hub.Run(ctx)

	h := handlers.New(handlers.Deps{
		Posts:          service.NewPostService(posts, comments, projector),
		Comments:       service.NewCommentService(comments, posts, projector, logger),
		Auth:           service.NewAuthService(users, tokens, bcrypt.DefaultCost),
		Pusher:         pusher,
		Uploader:       uploader,
		Hub:            hub,
		Notifier:       pusher,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Timeout:        cfg.RequestTimeout,
	})

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(h, routes.Options{
		Origins:   cfg.Origins(),
		Tokens:    tokens,
		Realtime:  hub,
		UploadDir: uploadDir,
		Logger:    logger,
	})
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
