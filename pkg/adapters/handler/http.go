package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/teerapatch/linklytics/pkg/core/domain"
	"github.com/teerapatch/linklytics/pkg/ports"
)

type HTTPHandler struct {
	links     ports.LinkService
	clicks    ports.ClickService
	analytics ports.AnalyticsService
	validate  *validator.Validate
	log       zerolog.Logger
}

func NewHTTPHandler(links ports.LinkService, clicks ports.ClickService, analytics ports.AnalyticsService, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		links:     links,
		clicks:    clicks,
		analytics: analytics,
		validate:  validator.New(),
		log:       log,
	}
}

// CreateLinkRequest payload
type CreateLinkRequest struct {
	OriginalURL string `json:"original_url" validate:"required,max=2048,startswith=http://|startswith=https://"`
	CustomAlias string `json:"custom_alias,omitempty"`
}

// Create Link
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "original_url must be an http(s) URL of at most 2048 characters")
		return
	}

	link, err := h.links.Create(r.Context(), req.OriginalURL, OwnerID(r.Context()), req.CustomAlias)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(link)
}

// Redirect to the original URL. Click recording is detached: the destination
// is resolved first, the recording goroutine is kicked off, and the redirect
// goes out without waiting on it.
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	if code == "" {
		http.NotFound(w, r)
		return
	}

	link, err := h.links.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.log.Error().Err(err).Str("short_code", code).Msg("redirect lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.clicks.RecordDetached(link.ID, r.UserAgent(), r.Header.Get("Referer"))

	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}

// List the caller's links, newest first
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.ListByOwner(r.Context(), OwnerID(r.Context()))
	if err != nil {
		h.log.Error().Err(err).Msg("list links failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if links == nil {
		links = []domain.Link{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  links,
		"total": len(links),
	})
}

// Delete one of the caller's links
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	deleted, err := h.links.Delete(r.Context(), code, OwnerID(r.Context()))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "link not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Analytics summary for one of the caller's links
func (h *HTTPHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	stats, err := h.analytics.GetLinkAnalytics(r.Context(), code, OwnerID(r.Context()))
	if err != nil {
		h.log.Error().Err(err).Str("short_code", code).Msg("analytics query failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	// Unknown code and someone else's link are the same 404.
	if stats == nil {
		writeError(w, http.StatusNotFound, "link not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (h *HTTPHandler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAliasInvalid), errors.Is(err, domain.ErrAliasReserved):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAliasTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg("unclassified failure")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
