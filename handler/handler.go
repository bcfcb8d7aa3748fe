package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shortlink/allocator"
	"shortlink/analytics"
	"shortlink/cache"
	"shortlink/clicks"
	"shortlink/config"
	"shortlink/model"
	"shortlink/resolver"
	"shortlink/store"
	"shortlink/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// LinkHandler exposes the resolution engine over HTTP: link creation,
// redirects, lifecycle management, and analytics.
type LinkHandler struct {
	store      *store.Store
	cache      *cache.Cache
	allocator  *allocator.Allocator
	resolver   *resolver.Resolver
	recorder   *clicks.Recorder
	aggregator *analytics.Aggregator
	config     config.Config
	baseURL    string
}

// NewLinkHandler creates the handler with its collaborators wired in.
func NewLinkHandler(
	s *store.Store,
	c *cache.Cache,
	alloc *allocator.Allocator,
	res *resolver.Resolver,
	rec *clicks.Recorder,
	agg *analytics.Aggregator,
	cfg config.Config,
) *LinkHandler {
	// Use configured base_url if provided, otherwise construct from scheme, IP, and port
	baseURL := cfg.WebServer.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s://%s:%s", cfg.WebServer.Scheme, cfg.WebServer.IP, cfg.WebServer.Port)
	}
	return &LinkHandler{
		store:      s,
		cache:      c,
		allocator:  alloc,
		resolver:   res,
		recorder:   rec,
		aggregator: agg,
		config:     cfg,
		baseURL:    baseURL,
	}
}

func (h *LinkHandler) opCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
}

// CreateLinkResponse is the payload returned after creating a short link.
type CreateLinkResponse struct {
	ID        string    `json:"id"`
	ShortCode string    `json:"shortCode"`
	ShortURL  string    `json:"shortURL"`
	TargetURL string    `json:"targetURL"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	QRCodeURL string    `json:"qrCodeURL"`
}

// CreateLink handles POST /api/links
// @Summary Create a short link
// @Description Binds a target URL to a short code, either caller-supplied or randomly generated. Expiry must be RFC3339.
// @Tags Links
// @Accept json
// @Produce json
// @Success 201 {object} CreateLinkResponse "Short link created"
// @Failure 400 {object} ErrorResponse "Invalid target URL, custom code, or expiry"
// @Failure 409 {object} ErrorResponse "Custom code already taken"
// @Failure 500 {object} ErrorResponse "Allocation exhausted or internal error"
// @Router /api/links [post]
func (h *LinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opCtx(r)
	defer cancel()

	var input struct {
		TargetURL   string `json:"targetURL"`
		CustomCode  string `json:"customCode"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Owner       string `json:"owner"`
		ExpiresAt   string `json:"expiresAt"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := utils.ValidateTargetURL(input.TargetURL); err != nil {
		log.Warn().Err(err).Str("target_url", input.TargetURL).Msg("Invalid target URL")
		SendJSONError(w, http.StatusBadRequest, err, "")
		return
	}

	now := time.Now()
	mapping := model.LinkMapping{
		ID:          uuid.New().String(),
		TargetURL:   input.TargetURL,
		Owner:       input.Owner,
		Title:       input.Title,
		Description: input.Description,
		Status:      model.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// A past expiry is accepted at creation; resolution reports it expired.
	if input.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, input.ExpiresAt)
		if err != nil {
			log.Warn().Err(err).Str("expires_at", input.ExpiresAt).Msg("Invalid expiry format")
			SendJSONError(w, http.StatusBadRequest, err, "Invalid expiry time format (use RFC3339)")
			return
		}
		mapping.ExpiresAt = expiresAt
	}

	code, err := h.allocator.Allocate(ctx, mapping, input.CustomCode)
	if err != nil {
		switch {
		case errors.Is(err, allocator.ErrCodeInvalid):
			SendJSONError(w, http.StatusBadRequest, err, "")
		case errors.Is(err, allocator.ErrDuplicateCode):
			SendJSONError(w, http.StatusConflict, err,
				fmt.Sprintf("The code '%s' is already in use. Choose a different code or leave blank for auto-generation.", input.CustomCode))
		case errors.Is(err, allocator.ErrExhausted):
			log.Error().Err(err).Msg("Short code allocation exhausted")
			SendJSONError(w, http.StatusInternalServerError, err, "Failed to allocate a short code")
		case errors.Is(err, store.ErrUnavailable):
			log.Error().Err(err).Msg("Store unavailable during link creation")
			SendJSONError(w, http.StatusServiceUnavailable, errors.New("service unavailable"), "")
		default:
			log.Error().Err(err).Msg("Failed to create short link")
			SendJSONError(w, http.StatusInternalServerError, err, "Failed to create short link")
		}
		return
	}
	mapping.ShortCode = code

	log.Info().
		Str("short_code", code).
		Str("target_url", mapping.TargetURL).
		Bool("is_custom_code", input.CustomCode != "").
		Msg("Short link created")

	SendJSONSuccess(w, http.StatusCreated, CreateLinkResponse{
		ID:        mapping.ID,
		ShortCode: code,
		ShortURL:  fmt.Sprintf("%s/s/%s", h.baseURL, code),
		TargetURL: mapping.TargetURL,
		Status:    string(mapping.Status),
		ExpiresAt: mapping.ExpiresAt,
		CreatedAt: mapping.CreatedAt,
		QRCodeURL: fmt.Sprintf("%s/api/links/%s/qr", h.baseURL, code),
	})
}

// Redirect handles GET /s/{code}
// @Summary Redirect to the target URL
// @Description Resolves a short code and redirects. All terminal lookup failures answer 404 without distinguishing why.
// @Tags Links
// @Success 302 "Redirect to target URL"
// @Failure 404 {object} ErrorResponse "Link not available"
// @Failure 503 {object} ErrorResponse "Store unavailable"
// @Router /s/{code} [get]
func (h *LinkHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opCtx(r)
	defer cancel()

	vars := mux.Vars(r)
	code := vars["code"]

	visit := model.Visit{
		IP:        clientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
		Referer:   r.Header.Get("Referer"),
		At:        time.Now(),
	}

	target, err := h.resolver.Resolve(ctx, code, visit)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrNotFound),
			errors.Is(err, resolver.ErrExpired),
			errors.Is(err, resolver.ErrInactive):
			// One uniform answer for all terminal outcomes so callers cannot
			// probe lifecycle state through the redirect endpoint.
			log.Info().Err(err).Str("short_code", code).Msg("Link not resolvable")
			SendJSONError(w, http.StatusNotFound, errors.New("link not available"), "")
		case errors.Is(err, store.ErrUnavailable):
			log.Error().Err(err).Str("short_code", code).Msg("Store unavailable during resolution")
			SendJSONError(w, http.StatusServiceUnavailable, errors.New("service unavailable"), "")
		default:
			log.Error().Err(err).Str("short_code", code).Msg("Failed to resolve short code")
			SendJSONError(w, http.StatusInternalServerError, err, "Failed to resolve short link")
		}
		return
	}

	log.Info().
		Str("short_code", code).
		Str("target_url", target).
		Str("remote_addr", visit.IP).
		Msg("Redirecting")

	http.Redirect(w, r, target, http.StatusFound)
}

// HealthCheck handles GET /health
// @Summary Health check
// @Description Returns service health status and store connectivity
// @Tags System
// @Produce json
// @Router /health [get]
func (h *LinkHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("Store health check failed")
		SendJSONError(w, http.StatusServiceUnavailable, errors.New("unhealthy"), "store unavailable")
		return
	}

	SendJSONSuccess(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"store":  "connected",
	})
}

// CacheMetrics handles GET /cache/metrics
// @Summary Cache performance metrics
// @Tags System
// @Produce json
// @Router /cache/metrics [get]
func (h *LinkHandler) CacheMetrics(w http.ResponseWriter, r *http.Request) {
	if !h.config.Cache.Enabled || h.cache == nil {
		SendJSONError(w, http.StatusServiceUnavailable, errors.New("cache is disabled"), "")
		return
	}
	SendJSONSuccess(w, http.StatusOK, h.cache.GetMetricsSnapshot())
}

// clientIP extracts the originating client address, honoring the usual
// proxy headers before falling back to the socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return xr
	}
	return r.RemoteAddr
}
