package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/brandpulse/brandpulse/internal/services/social"
	"github.com/brandpulse/brandpulse/pkg/httputil"
)

// InstagramHandler proxies publishing and insight requests to Instagram
type InstagramHandler struct {
	service *social.InstagramService
	logger  *zap.Logger
}

// NewInstagramHandler creates a new Instagram handler
func NewInstagramHandler(service *social.InstagramService, logger *zap.Logger) *InstagramHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstagramHandler{
		service: service,
		logger:  logger,
	}
}

// Post handles POST /api/instagram/post
func (h *InstagramHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req social.PostRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	result, err := h.service.Post(r.Context(), req)
	if err != nil {
		h.logger.Warn("instagram publish failed", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, result)
}

// GetInsights handles GET /api/instagram/insights
func (h *InstagramHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	mediaID := r.URL.Query().Get("media_id")

	insights, err := h.service.GetInsights(r.Context(), mediaID)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"media_id": mediaID,
		"insights": insights,
	})
}
