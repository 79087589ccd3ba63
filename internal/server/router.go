package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/shopmate/ingest/internal/auth"
	orderhttp "github.com/shopmate/ingest/internal/orders/adapters/http"
	rawhttp "github.com/shopmate/ingest/internal/raworders/adapters/http"
)

// Credentials is the bootstrap user checked by the token endpoint. The hash
// is computed once at startup.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Deps carries everything the HTTP surface needs. CheckHealth reports
// database connectivity; a non-nil error maps to a degraded status, never a
// failure of the endpoint itself.
type Deps struct {
	Auth        *auth.Authenticator
	Credentials Credentials
	RawOrders   *rawhttp.Handler
	Orders      *orderhttp.Handler
	CheckHealth func(ctx context.Context) error
	Metrics     *Metrics
	Logger      *slog.Logger
}

// NewRouter assembles the full HTTP surface.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	if deps.Logger != nil {
		r.Use(withLogging(deps.Logger))
	}
	if deps.Metrics != nil {
		r.Use(withMetrics(deps.Metrics))
	}

	r.Get("/health", handleHealth(deps.CheckHealth))
	r.Post("/token", handleToken(deps.Auth, deps.Credentials))

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.RequireToken)

		r.Get("/me", handleMe)

		r.Post("/raw-orders", deps.RawOrders.Create)
		r.Get("/raw-orders/{uid}", deps.RawOrders.Get)

		r.Post("/orders", deps.Orders.Create)
		r.Get("/orders", deps.Orders.List)
		r.Get("/orders/{id}", deps.Orders.Get)
		r.Post("/orders/{id}/cancel", deps.Orders.Cancel)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.VerifyWebhook)

		r.Post("/webhooks/orders", deps.RawOrders.ReceiveWebhook)
	})

	return r
}

func handleHealth(checkHealth func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checkHealth != nil {
			if err := checkHealth(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleToken(authenticator *auth.Authenticator, creds Credentials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid form data")
			return
		}

		username := r.PostFormValue("username")
		password := r.PostFormValue("password")

		if username != creds.Username || !authenticator.VerifyPassword(password, creds.PasswordHash) {
			writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := authenticator.IssueToken(username)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Failed to issue token")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"access_token": token,
			"token_type":   "bearer",
		})
	}
}

func handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated_user": map[string]string{
			"user_id": auth.UserIDFromContext(r.Context()),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
