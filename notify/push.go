// Package notify delivers web push notifications to post authors.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"postboard/models"
	"postboard/observability"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	deliveryTimeout = 5 * time.Second
	pushTTL         = 30
	maxBodyLen      = 100
)

type Subscriptions interface {
	Upsert(ctx context.Context, userID primitive.ObjectID, sub webpush.Subscription) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

type sendFunc func(payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

// Pusher sends notifications with VAPID credentials. With no credentials it
// accepts subscriptions but delivers nothing.
type Pusher struct {
	subs       Subscriptions
	publicKey  string
	privateKey string
	subscriber string
	logger     *slog.Logger
	send       sendFunc
}

func NewPusher(subs Subscriptions, publicKey, privateKey, subscriber string, logger *slog.Logger) *Pusher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pusher{
		subs:       subs,
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		logger:     logger,
		send:       webpush.SendNotification,
	}
}

func (p *Pusher) Enabled() bool {
	return p.publicKey != "" && p.privateKey != ""
}

func (p *Pusher) PublicKey() string { return p.publicKey }

// Subscribe stores the user's browser endpoint, replacing any previous one.
func (p *Pusher) Subscribe(ctx context.Context, userID primitive.ObjectID, sub webpush.Subscription) error {
	return p.subs.Upsert(ctx, userID, sub)
}

// Notify delivers n to userID in the background. It returns immediately.
func (p *Pusher) Notify(ctx context.Context, userID primitive.ObjectID, n Notification) {
	if !p.Enabled() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.ErrorContext(ctx, "panic in push notification", slog.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
		defer cancel()
		p.deliver(ctx, userID, n)
	}()
}

// deliver sends synchronously and reports the outcome recorded in metrics.
func (p *Pusher) deliver(ctx context.Context, userID primitive.ObjectID, n Notification) string {
	outcome := p.attempt(ctx, userID, n)
	observability.PushDeliveries.WithLabelValues(outcome).Inc()
	return outcome
}

func (p *Pusher) attempt(ctx context.Context, userID primitive.ObjectID, n Notification) string {
	log := p.logger.With(slog.String("recipient", userID.Hex()))

	sub, err := p.subs.FindByUser(ctx, userID)
	if models.HasCode(err, models.CodeNotFound) {
		return "no_subscription"
	}
	if err != nil {
		log.ErrorContext(ctx, "find push subscription", slog.String("error", err.Error()))
		return "error"
	}

	if len(n.Body) > maxBodyLen {
		n.Body = n.Body[:maxBodyLen] + "..."
	}
	payload, err := json.Marshal(map[string]any{
		"title": n.Title,
		"body":  n.Body,
		"data": map[string]any{
			"url":       n.URL,
			"timestamp": time.Now().Unix(),
		},
	})
	if err != nil {
		log.ErrorContext(ctx, "marshal push payload", slog.String("error", err.Error()))
		return "error"
	}

	resp, err := p.send(payload, &sub.Sub, &webpush.Options{
		Subscriber:      p.subscriber,
		VAPIDPublicKey:  p.publicKey,
		VAPIDPrivateKey: p.privateKey,
		TTL:             pushTTL,
	})
	if err != nil {
		log.WarnContext(ctx, "send push notification", slog.String("error", err.Error()))
		return "error"
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		log.InfoContext(ctx, "push subscription expired, deleting", slog.Int("status", resp.StatusCode))
		if err := p.subs.DeleteByUser(ctx, userID); err != nil {
			log.ErrorContext(ctx, "delete expired subscription", slog.String("error", err.Error()))
		}
		return "expired"
	}
	if resp.StatusCode >= http.StatusBadRequest {
		log.WarnContext(ctx, "push service rejected notification", slog.Int("status", resp.StatusCode))
		return "rejected"
	}
	return "sent"
}
