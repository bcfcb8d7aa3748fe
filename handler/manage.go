package handler

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"shortlink/model"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Administrative lifecycle controls. These mutate status and delete records
// directly; the resolver only ever reads the state they write.

// LinkDetail is a mapping plus its live click counter.
type LinkDetail struct {
	model.LinkMapping
	ClickCount int64 `json:"clickCount"`
}

// ListLinks handles GET /api/links?owner=
// @Summary List links
// @Description Lists all links, or one owner's links, newest first.
// @Tags Management
// @Produce json
// @Router /api/links [get]
func (h *LinkHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opCtx(r)
	defer cancel()

	owner := r.URL.Query().Get("owner")

	var (
		codes []string
		err   error
	)
	if owner == "" {
		codes, err = h.store.Codes(ctx)
	} else {
		codes, err = h.store.OwnerCodes(ctx, owner)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to list links")
		SendJSONError(w, http.StatusServiceUnavailable, err, "Failed to list links")
		return
	}

	links := make([]LinkDetail, 0, len(codes))
	for _, code := range codes {
		m, err := h.store.Get(ctx, code)
		if err != nil || m == nil {
			continue // index may lag behind deletions
		}
		count, err := h.store.Clicks(ctx, code)
		if err != nil {
			count = 0
		}
		links = append(links, LinkDetail{LinkMapping: *m, ClickCount: count})
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})

	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"total": len(links),
		"links": links,
	})
}

// GetLink handles GET /api/links/{code}
// @Summary Link detail
// @Description Returns one mapping with its live click counter and recent click events.
// @Tags Management
// @Produce json
// @Router /api/links/{code} [get]
func (h *LinkHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opCtx(r)
	defer cancel()

	code := mux.Vars(r)["code"]

	m, err := h.store.Get(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to fetch link")
		SendJSONError(w, http.StatusServiceUnavailable, err, "Failed to fetch link")
		return
	}
	if m == nil {
		SendJSONError(w, http.StatusNotFound, errors.New("link not found"), "")
		return
	}

	count, err := h.store.Clicks(ctx, code)
	if err != nil {
		count = 0
	}

	events, err := h.store.Events(ctx, code)
	if err != nil {
		events = nil
	}
	// Most recent first, capped for the detail view.
	const maxRecent = 50
	recent := make([]model.ClickEvent, 0, maxRecent)
	for i := len(events) - 1; i >= 0 && len(recent) < maxRecent; i-- {
		recent = append(recent, events[i])
	}

	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"link":         LinkDetail{LinkMapping: *m, ClickCount: count},
		"totalEvents":  len(events),
		"recentClicks": recent,
	})
}

// ToggleStatus handles PATCH /api/links/{code}/status
// @Summary Toggle link status
// @Description Flips a link between active and inactive. Reactivation does not resurrect an expired link; expiry still wins at resolution time.
// @Tags Management
// @Produce json
// @Router /api/links/{code}/status [patch]
func (h *LinkHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opCtx(r)
	defer cancel()

	code := mux.Vars(r)["code"]

	m, err := h.store.Get(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to fetch link for status toggle")
		SendJSONError(w, http.StatusServiceUnavailable, err, "Failed to fetch link")
		return
	}
	if m == nil {
		SendJSONError(w, http.StatusNotFound, errors.New("link not found"), "")
		return
	}

	newStatus := model.StatusInactive
	if m.Status == model.StatusInactive {
		newStatus = model.StatusActive
	}
	if err := h.store.SetStatus(ctx, code, newStatus); err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to update link status")
		SendJSONError(w, http.StatusServiceUnavailable, err, "Failed to update link status")
		return
	}

	// Drop the cached record so the hot path sees the new status promptly.
	h.cache.Delete(code)

	log.Info().
		Str("short_code", code).
		Str("status", string(newStatus)).
		Msg("Link status updated")

	SendJSONSuccess(w, http.StatusOK, map[string]string{
		"shortCode": code,
		"status":    string(newStatus),
		"updatedAt": time.Now().Format(time.RFC3339),
	})
}

// DeleteLink handles DELETE /api/links/{code}
// @Summary Delete a link
// @Description Removes the mapping and its counter. Historic click events are retained for analytics.
// @Tags Management
// @Router /api/links/{code} [delete]
func (h *LinkHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opCtx(r)
	defer cancel()

	code := mux.Vars(r)["code"]

	m, err := h.store.Get(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to fetch link for deletion")
		SendJSONError(w, http.StatusServiceUnavailable, err, "Failed to fetch link")
		return
	}
	if m == nil {
		SendJSONError(w, http.StatusNotFound, errors.New("link not found"), "")
		return
	}

	if err := h.store.Delete(ctx, code); err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to delete link")
		SendJSONError(w, http.StatusServiceUnavailable, err, "Failed to delete link")
		return
	}

	h.cache.Delete(code)

	log.Info().Str("short_code", code).Msg("Link deleted")
	SendJSONSuccess(w, http.StatusOK, map[string]string{
		"message":   "link deleted",
		"shortCode": code,
	})
}
