package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/brandpulse/brandpulse/internal/services/market"
	"github.com/brandpulse/brandpulse/pkg/httputil"
)

// MarketHandler handles influencer discovery requests
type MarketHandler struct {
	service *market.Service
	logger  *zap.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(service *market.Service, logger *zap.Logger) *MarketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketHandler{
		service: service,
		logger:  logger,
	}
}

// FindInfluencersRequest is the influencer discovery body
type FindInfluencersRequest struct {
	Domain         string   `json:"domain"`
	TargetAudience string   `json:"target_audience"`
	NumResults     int      `json:"num_results"`
	Platforms      []string `json:"platforms"`
}

// FindInfluencers handles POST /api/market/influencers
func (h *MarketHandler) FindInfluencers(w http.ResponseWriter, r *http.Request) {
	var req FindInfluencersRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	report, err := h.service.FindInfluencers(r.Context(), req.Domain, req.TargetAudience, req.NumResults, req.Platforms)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}
