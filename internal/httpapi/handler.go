package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/focusnest/webhook-service/internal/shared/auth"
	apierrors "github.com/focusnest/webhook-service/internal/shared/errors"
	"github.com/focusnest/webhook-service/internal/shared/logging"
	"github.com/focusnest/webhook-service/internal/user"
)

const serviceTimeout = 8 * time.Second

// RegisterRoutes registers the authenticated user routes.
func RegisterRoutes(r chi.Router, service user.Service, verifier auth.Verifier, logger *slog.Logger) {
	r.Route("/v1/users", func(r chi.Router) {
		r.Use(auth.Middleware(verifier))
		r.Get("/me", getMe(service, logger))
	})
}

func getMe(service user.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.UserFromContext(r.Context())
		if !ok || caller.UserID == "" {
			apierrors.Write(w, r, apierrors.CodeUnauthorized, "missing user")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		u, err := service.GetUser(ctx, caller.UserID)
		if errors.Is(err, user.ErrNotFound) {
			apierrors.Write(w, r, apierrors.CodeNotFound, "user has not been synced")
			return
		}
		if err != nil {
			logging.FromRequest(r.Context(), logger).Error("failed to load user",
				slog.String("userId", caller.UserID),
				slog.Any("error", err),
			)
			apierrors.Write(w, r, apierrors.CodeInternal, "failed to load user")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
