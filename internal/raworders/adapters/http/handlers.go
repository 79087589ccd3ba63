package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shopmate/ingest/internal/raworders/app"
	"github.com/shopmate/ingest/internal/raworders/domain"
	"github.com/shopmate/ingest/internal/raworders/ports"
)

// Handler exposes HTTP endpoints for the raw layer.
type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Create accepts an arbitrary JSON body and stores it verbatim.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if !json.Valid(body) {
		writeDetail(w, http.StatusBadRequest, "Body must be valid JSON")
		return
	}

	rawOrder, err := h.service.Ingest(r.Context(), body, domain.DefaultSourceSystem)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toRawOrderOut(rawOrder))
}

// Get retrieves a single raw order by its unique identifier.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := strconv.ParseInt(chi.URLParam(r, "uid"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Order not found")
		return
	}

	rawOrder, err := h.service.Fetch(r.Context(), uid)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Order not found")
			return
		}
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toRawOrderOut(rawOrder))
}

// ReceiveWebhook ingests a storefront webhook body into the raw layer. The
// HMAC signature has already been verified by the webhook middleware.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if !json.Valid(body) {
		writeDetail(w, http.StatusBadRequest, "Body must be valid JSON")
		return
	}

	rawOrder, err := h.service.Ingest(r.Context(), body, domain.DefaultSourceSystem)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toRawOrderOut(rawOrder))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
