package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

type ctxKeyUserID struct{}

// RequireToken rejects requests without a valid bearer token and stores the
// token subject in the request context.
func (a *Authenticator) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		subject, err := a.Authenticate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID{}, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VerifyWebhook checks the HMAC signature header against the raw request
// body before the handler runs. The body is restored for downstream reads.
func (a *Authenticator) VerifyWebhook(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if err := a.VerifyWebhookSignature(body, r.Header.Get(SignatureHeader)); err != nil {
			if errors.Is(err, ErrMissingSignature) {
				writeDetail(w, http.StatusBadRequest, "Missing HMAC header")
				return
			}
			writeDetail(w, http.StatusUnauthorized, "Invalid webhook signature")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// UserIDFromContext returns the authenticated subject, or "" when the
// request did not pass through RequireToken.
func UserIDFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(ctxKeyUserID{}).(string)
	return subject
}

func writeDetail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": message})
}
