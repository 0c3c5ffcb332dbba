package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"go.uber.org/zap"

	rediscache "github.com/brandpulse/brandpulse/internal/repository/redis"
	"github.com/brandpulse/brandpulse/internal/services/competitor"
	"github.com/brandpulse/brandpulse/pkg/httputil"
)

// CompetitorHandler handles competitor analysis requests
type CompetitorHandler struct {
	service *competitor.Service
	cache   *rediscache.Cache
	logger  *zap.Logger
}

// NewCompetitorHandler creates a new competitor handler. cache may be nil.
func NewCompetitorHandler(service *competitor.Service, cache *rediscache.Cache, logger *zap.Logger) *CompetitorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompetitorHandler{
		service: service,
		cache:   cache,
		logger:  logger,
	}
}

// Analyze handles POST /api/competitors/analyze
func (h *CompetitorHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req competitor.AnalyzeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	cacheKey := analysisCacheKey(req)
	if h.cache != nil {
		if cached, err := h.cache.GetAnalysis(r.Context(), cacheKey); err == nil && cached != nil {
			httputil.JSON(w, http.StatusOK, cached)
			return
		}
	}

	report, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetAnalysis(r.Context(), cacheKey, report); err != nil {
			h.logger.Warn("analysis cache write failed", zap.Error(err))
		}
	}

	httputil.JSON(w, http.StatusOK, report)
}

// analysisCacheKey builds a stable key over the request inputs
func analysisCacheKey(req competitor.AnalyzeRequest) string {
	auto := "0"
	if req.AutoDiscover {
		auto = "1"
	}
	sum := sha256.Sum256([]byte(strings.Join([]string{
		req.BrandContext,
		req.Industry,
		strings.Join(req.CompetitorURLs, ","),
		auto,
	}, "\x00")))
	return hex.EncodeToString(sum[:16])
}
