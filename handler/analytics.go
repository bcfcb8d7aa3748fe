package handler

import (
	"errors"
	"net/http"
	"strconv"

	"shortlink/analytics"

	"github.com/rs/zerolog/log"
)

var errInvalidDays = errors.New("invalid days parameter")

// GetAggregates handles GET /api/analytics?days=30&owner=
// @Summary Click aggregates
// @Description Groups click events in the lookback window into date, country, device, and browser buckets. Every date in the window appears, zero-count dates included.
// @Tags Analytics
// @Produce json
// @Failure 400 {object} ErrorResponse "Invalid days parameter"
// @Router /api/analytics [get]
func (h *LinkHandler) GetAggregates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opCtx(r)
	defer cancel()

	days := h.config.Analytics.DefaultWindowDays
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			SendJSONError(w, http.StatusBadRequest, errInvalidDays, "days must be a positive integer")
			return
		}
		days = parsed
	}
	if max := h.config.Analytics.MaxWindowDays; max > 0 && days > max {
		days = max
	}

	scope := analytics.Scope{Owner: r.URL.Query().Get("owner")}

	report, err := h.aggregator.Aggregate(ctx, scope, days)
	if err != nil {
		log.Error().Err(err).Int("days", days).Msg("Failed to aggregate click events")
		SendJSONError(w, http.StatusServiceUnavailable, err, "Failed to compute analytics")
		return
	}

	SendJSONSuccess(w, http.StatusOK, report)
}
