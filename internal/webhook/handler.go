// Package webhook implements the Clerk webhook ingress: Svix signature verification
// followed by user synchronization for user.created events.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/focusnest/webhook-service/internal/clerk"
	"github.com/focusnest/webhook-service/internal/metrics"
	"github.com/focusnest/webhook-service/internal/shared/logging"
	"github.com/focusnest/webhook-service/internal/user"
)

// Route is the path Clerk delivers to.
const Route = "/clerk-webhook"

// DefaultMaxBodyBytes bounds the request body when Config.MaxBodyBytes is unset.
const DefaultMaxBodyBytes = 1 << 20

const (
	msgProcessed      = "Webhook processed successfully"
	msgMissingHeaders = "Missing required Svix headers"
	msgVerifyFailed   = "Error verifying webhook"
	msgInvalidPayload = "Invalid webhook payload"
	msgNoEmail        = "User has no email"
	msgSyncFailed     = "Error creating user"
	msgMisconfigured  = "Webhook secret is not configured"
)

// ErrMissingSecret is reported when no signing secret was configured.
var ErrMissingSecret = errors.New("clerk webhook secret is not configured")

// Verifier checks a raw payload against the Svix headers.
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

// Syncer is the downstream user store.
type Syncer interface {
	SyncUser(ctx context.Context, cmd user.SyncUserCommand) (*user.User, error)
}

// Config carries the handler's settings.
type Config struct {
	Secret       string
	MaxBodyBytes int64
}

// Handler serves POST /clerk-webhook.
type Handler struct {
	verifier    Verifier
	verifierErr error
	maxBody     int64
	syncer      Syncer
	logger      *slog.Logger
	metrics     metrics.Recorder
}

// NewHandler builds the handler. A missing or malformed secret does not fail construction;
// every request is answered with a 500 until the secret is fixed.
func NewHandler(cfg Config, syncer Syncer, logger *slog.Logger, recorder metrics.Recorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	verifier, err := NewSvixVerifier(cfg.Secret)
	return &Handler{
		verifier:    verifier,
		verifierErr: err,
		maxBody:     maxBody,
		syncer:      syncer,
		logger:      logger,
		metrics:     recorder,
	}
}

// NewSvixVerifier decodes a "whsec_" prefixed (or bare base64) signing secret.
func NewSvixVerifier(secret string) (Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("decode clerk webhook secret: %w", err)
	}
	return wh, nil
}

// Err reports the configuration error the handler is answering 500 for, if any.
func (h *Handler) Err() error {
	return h.verifierErr
}

// RegisterRoutes mounts the webhook route.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post(Route, h.ServeHTTP)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromRequest(r.Context(), h.logger)

	if h.verifierErr != nil {
		logger.Error("clerk webhook misconfigured", slog.Any("error", h.verifierErr))
		h.respond(w, "", metrics.OutcomeMisconfigured, http.StatusInternalServerError, msgMisconfigured)
		return
	}

	headers := extractSvixHeaders(r.Header)
	if missing := headers.missing(); len(missing) > 0 {
		logger.Warn("missing svix headers", slog.Any("missing", missing))
		h.respond(w, "", metrics.OutcomeMissingHeaders, http.StatusBadRequest, msgMissingHeaders)
		return
	}

	// Verify the bytes exactly as received; decoding happens only afterwards.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		logger.Error("failed to read webhook body", slog.Any("error", err))
		h.respond(w, "", metrics.OutcomeVerificationFailed, http.StatusBadRequest, msgVerifyFailed)
		return
	}

	if err := h.verifier.Verify(body, headers.header()); err != nil {
		logger.Error("error verifying webhook",
			slog.String("svixId", headers.ID),
			slog.Any("error", err),
		)
		h.respond(w, "", metrics.OutcomeVerificationFailed, http.StatusBadRequest, msgVerifyFailed)
		return
	}

	evt, err := clerk.DecodeEvent(body)
	if err != nil {
		logger.Error("invalid webhook payload", slog.String("svixId", headers.ID), slog.Any("error", err))
		h.respond(w, "", metrics.OutcomeInvalidPayload, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	logger = logger.With(slog.String("svixId", headers.ID), slog.String("eventType", evt.Type))

	switch evt.Type {
	case clerk.EventUserCreated:
		h.handleUserCreated(r.Context(), w, logger, evt)
	default:
		logger.Debug("ignoring clerk event")
		h.respond(w, evt.Type, metrics.OutcomeIgnored, http.StatusOK, msgProcessed)
	}
}

func (h *Handler) handleUserCreated(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, evt clerk.Event) {
	data, err := evt.UserData()
	if err != nil {
		logger.Error("invalid user payload", slog.Any("error", err))
		h.respond(w, evt.Type, metrics.OutcomeInvalidPayload, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	email, err := data.Email()
	if err != nil {
		logger.Warn("user has no email", slog.String("userId", data.ID))
		h.respond(w, evt.Type, metrics.OutcomeNoEmail, http.StatusBadRequest, msgNoEmail)
		return
	}

	cmd := user.SyncUserCommand{
		ClerkID: data.ID,
		Email:   email,
		Name:    data.DisplayName(),
		Image:   data.ImageURL,
	}

	started := time.Now()
	_, err = h.syncer.SyncUser(ctx, cmd)
	h.metrics.RecordSyncLatency(time.Since(started))
	if err != nil {
		logger.Error("error creating user", slog.String("userId", data.ID), slog.Any("error", err))
		h.respond(w, evt.Type, metrics.OutcomeSyncFailed, http.StatusInternalServerError, msgSyncFailed)
		return
	}

	logger.Info("user synced", slog.String("userId", data.ID))
	h.respond(w, evt.Type, metrics.OutcomeProcessed, http.StatusOK, msgProcessed)
}

func (h *Handler) respond(w http.ResponseWriter, eventType, outcome string, status int, message string) {
	h.metrics.RecordOutcome(eventType, outcome)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, message)
}
