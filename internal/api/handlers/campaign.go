package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brandpulse/brandpulse/internal/domain"
	"github.com/brandpulse/brandpulse/internal/repository/postgres"
	rediscache "github.com/brandpulse/brandpulse/internal/repository/redis"
	"github.com/brandpulse/brandpulse/internal/services/strategy"
	"github.com/brandpulse/brandpulse/internal/storage"
	"github.com/brandpulse/brandpulse/pkg/httputil"
)

// maxBriefSize bounds uploaded PDF briefs
const maxBriefSize = 10 << 20

// CampaignHandler handles campaign-related requests
type CampaignHandler struct {
	repo   *postgres.CampaignRepository
	cache  *rediscache.Cache
	parser *strategy.Parser
	briefs *storage.MinIOClient
	logger *zap.Logger
}

// NewCampaignHandler creates a new campaign handler. cache and briefs may be
// nil; the handler then skips caching and brief archival.
func NewCampaignHandler(repo *postgres.CampaignRepository, cache *rediscache.Cache, parser *strategy.Parser, briefs *storage.MinIOClient, logger *zap.Logger) *CampaignHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignHandler{
		repo:   repo,
		cache:  cache,
		parser: parser,
		briefs: briefs,
		logger: logger,
	}
}

// CampaignResponse is the API representation of a campaign
type CampaignResponse struct {
	ID        string                  `json:"id"`
	Strategy  domain.CampaignStrategy `json:"strategy"`
	Metadata  domain.StrategyMetadata `json:"metadata"`
	Status    string                  `json:"status"`
	InputType string                  `json:"input_type"`
	BriefURI  string                  `json:"brief_uri,omitempty"`
	Results   []domain.AgentResult    `json:"results"`
	CreatedAt string                  `json:"created_at"`
	UpdatedAt string                  `json:"updated_at"`
}

func toCampaignResponse(c *domain.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:        c.ID.String(),
		Strategy:  c.Strategy,
		Metadata:  c.Metadata,
		Status:    string(c.Status),
		InputType: c.InputType,
		BriefURI:  c.BriefURI,
		Results:   c.Results,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: c.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// UploadPromptResponse is the intake response consumed by the downstream
// agents. Unlike the rest of the API it is not wrapped in the standard
// envelope: strategy and performance sit at the top level.
type UploadPromptResponse struct {
	Success     bool                    `json:"success"`
	CampaignID  string                  `json:"campaign_id"`
	Strategy    domain.CampaignStrategy `json:"strategy"`
	Input       UploadPromptInput       `json:"input"`
	Performance domain.StrategyMetadata `json:"performance"`
}

// UploadPromptInput echoes what the strategy was extracted from
type UploadPromptInput struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	BriefURI string `json:"brief_uri,omitempty"`
}

// UploadPrompt handles POST /campaign/upload-prompt. The request is multipart
// with either a text prompt field or a PDF brief file; the parsed strategy is
// persisted as a new campaign.
func (h *CampaignHandler) UploadPrompt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBriefSize); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "INVALID_FORM", "Request must be multipart form data", nil)
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		text = strings.TrimSpace(r.FormValue("prompt"))
	}

	inputType := "text"
	var briefData []byte

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()

		if header.Size > maxBriefSize {
			httputil.JSONError(w, http.StatusRequestEntityTooLarge, domain.ErrCodePayloadTooLarge, "Brief exceeds the size limit", nil)
			return
		}

		briefData, err = io.ReadAll(io.LimitReader(file, maxBriefSize))
		if err != nil {
			httputil.JSONError(w, http.StatusBadRequest, "INVALID_FILE", "Could not read uploaded file", nil)
			return
		}

		extracted, err := strategy.ExtractPDFText(bytes.NewReader(briefData), int64(len(briefData)))
		if err != nil {
			httputil.ErrorFromDomain(w, err)
			return
		}
		text = extracted
		inputType = "pdf"
	}

	if text == "" {
		httputil.ErrorFromDomain(w, domain.ValidationError("text", "provide a text prompt or a PDF brief"))
		return
	}

	result, err := h.parser.ParseText(r.Context(), text)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	campaign := domain.NewCampaign(result.Strategy, result.Metadata, inputType, text)

	if inputType == "pdf" && h.briefs != nil {
		uri, err := h.briefs.UploadBrief(r.Context(), campaign.ID.String(), briefData)
		if err != nil {
			// Archival is best effort; the campaign still goes through
			h.logger.Warn("brief archival failed", zap.Error(err))
		} else {
			campaign.BriefURI = uri
		}
	}

	if err := h.repo.Create(r.Context(), campaign); err != nil {
		h.logger.Error("Failed to create campaign", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetCampaign(r.Context(), campaign); err != nil {
			h.logger.Warn("campaign cache write failed", zap.Error(err))
		}
		if err := h.cache.SetCampaignStatus(r.Context(), campaign.ID, campaign.Status); err != nil {
			h.logger.Warn("campaign status cache write failed", zap.Error(err))
		}
	}

	input := UploadPromptInput{Type: inputType, BriefURI: campaign.BriefURI}
	if inputType == "text" {
		input.Text = text
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(UploadPromptResponse{
		Success:     true,
		CampaignID:  campaign.ID.String(),
		Strategy:    campaign.Strategy,
		Input:       input,
		Performance: campaign.Metadata,
	})
}

// GetStatus handles GET /api/campaigns/{id}/status. Status lives in its own
// short-lived cache key so agent polling skips the full campaign row.
func (h *CampaignHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "INVALID_ID", "Invalid campaign ID format", nil)
		return
	}

	if h.cache != nil {
		if status, err := h.cache.GetCampaignStatus(r.Context(), id); err == nil && status != "" {
			httputil.JSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": string(status)})
			return
		}
	}

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetCampaignStatus(r.Context(), id, campaign.Status); err != nil {
			h.logger.Warn("campaign status cache write failed", zap.Error(err))
		}
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": string(campaign.Status)})
}

// Get handles GET /api/campaigns/{id}
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "INVALID_ID", "Invalid campaign ID format", nil)
		return
	}

	if h.cache != nil {
		if cached, err := h.cache.GetCampaign(r.Context(), id); err == nil && cached != nil {
			httputil.JSON(w, http.StatusOK, toCampaignResponse(cached))
			return
		}
	}

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetCampaign(r.Context(), campaign); err != nil {
			h.logger.Warn("campaign cache write failed", zap.Error(err))
		}
	}

	httputil.JSON(w, http.StatusOK, toCampaignResponse(campaign))
}

// List handles GET /api/campaigns
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	pagination := httputil.GetPagination(r, 20, 100)

	status := domain.CampaignStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		httputil.ErrorFromDomain(w, domain.ValidationError("status", "invalid campaign status"))
		return
	}

	campaigns, total, err := h.repo.List(r.Context(), status, pagination.PerPage, pagination.Offset)
	if err != nil {
		h.logger.Error("Failed to list campaigns", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	response := make([]CampaignResponse, len(campaigns))
	for i, c := range campaigns {
		response[i] = toCampaignResponse(c)
	}

	httputil.JSONWithMeta(w, http.StatusOK, response, &httputil.Meta{
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		Total:      total,
		TotalPages: httputil.CalculateTotalPages(total, pagination.PerPage),
	})
}

// AppendResultRequest is the agent-result callback body
type AppendResultRequest struct {
	Agent   string       `json:"agent"`
	Payload domain.JSONB `json:"payload"`
}

// AppendResult handles POST /api/campaigns/{id}/results
func (h *CampaignHandler) AppendResult(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "INVALID_ID", "Invalid campaign ID format", nil)
		return
	}

	var req AppendResultRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if strings.TrimSpace(req.Agent) == "" {
		httputil.ErrorFromDomain(w, domain.ValidationError("agent", "agent name is required"))
		return
	}
	if req.Payload == nil {
		req.Payload = domain.JSONB{}
	}

	campaign, err := h.repo.AppendResult(r.Context(), id, req.Agent, req.Payload)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateCampaign(r.Context(), id); err != nil {
			h.logger.Warn("campaign cache invalidation failed", zap.Error(err))
		}
		if err := h.cache.SetCampaignStatus(r.Context(), id, campaign.Status); err != nil {
			h.logger.Warn("campaign status cache write failed", zap.Error(err))
		}
	}

	httputil.JSON(w, http.StatusOK, toCampaignResponse(campaign))
}

// UpdateStatusRequest is the status transition body
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/campaigns/{id}/status
func (h *CampaignHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "INVALID_ID", "Invalid campaign ID format", nil)
		return
	}

	var req UpdateStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), id, domain.CampaignStatus(req.Status)); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateCampaign(r.Context(), id); err != nil {
			h.logger.Warn("campaign cache invalidation failed", zap.Error(err))
		}
		if err := h.cache.SetCampaignStatus(r.Context(), id, domain.CampaignStatus(req.Status)); err != nil {
			h.logger.Warn("campaign status cache write failed", zap.Error(err))
		}
	}

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toCampaignResponse(campaign))
}

// Delete handles DELETE /api/campaigns/{id}
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "INVALID_ID", "Invalid campaign ID format", nil)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateCampaign(r.Context(), id); err != nil {
			h.logger.Warn("campaign cache invalidation failed", zap.Error(err))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
