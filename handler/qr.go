package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

// GenerateQR handles GET /api/links/{code}/qr - renders a QR code PNG for a short link
// @Summary QR code for a short link
// @Tags Links
// @Produce png
// @Router /api/links/{code}/qr [get]
func (h *LinkHandler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opCtx(r)
	defer cancel()

	code := mux.Vars(r)["code"]

	m, err := h.store.Get(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to check link existence for QR")
		SendJSONError(w, http.StatusServiceUnavailable, err, "Failed to verify link")
		return
	}
	if m == nil {
		SendJSONError(w, http.StatusNotFound, errors.New("link not found"), "")
		return
	}

	// Size parameter (default 256, min 128, max 1024)
	size := 256
	if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
		parsedSize, err := strconv.Atoi(sizeStr)
		if err != nil {
			SendJSONError(w, http.StatusBadRequest, errors.New("invalid size parameter"), "Size must be a number")
			return
		}
		if parsedSize < 128 || parsedSize > 1024 {
			SendJSONError(w, http.StatusBadRequest, errors.New("size out of range"), "Size must be between 128 and 1024")
			return
		}
		size = parsedSize
	}

	shortURL := fmt.Sprintf("%s/s/%s", h.baseURL, code)
	png, err := qrcode.Encode(shortURL, qrcode.Medium, size)
	if err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to generate QR code")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Error().Err(err).Msg("Failed to write QR code response")
	}
}
