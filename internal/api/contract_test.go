package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Contract tests validate API responses match expected schema

// CampaignResponseSchema represents the expected campaign response schema
type CampaignResponseSchema struct {
	ID        string         `json:"id"`
	Strategy  StrategySchema `json:"strategy"`
	Metadata  MetadataSchema `json:"metadata"`
	Status    string         `json:"status"`
	InputType string         `json:"input_type"`
	BriefURI  string         `json:"brief_uri,omitempty"`
	Results   []any          `json:"results"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// StrategySchema represents the normalized strategy shape
type StrategySchema struct {
	Product    string   `json:"product"`
	Audience   string   `json:"audience"`
	Goal       string   `json:"goal"`
	Tone       string   `json:"tone"`
	Platforms  []string `json:"platforms"`
	Domain     string   `json:"domain"`
	Stylistics string   `json:"stylistics"`
}

// MetadataSchema represents the extraction metadata shape
type MetadataSchema struct {
	FieldsExtracted int     `json:"fields_extracted"`
	TotalFields     int     `json:"total_fields"`
	Confidence      string  `json:"confidence"`
	ExtractionRatio float64 `json:"extraction_ratio"`
	Source          string  `json:"source"`
}

// UploadResponseSchema represents the intake response consumed by the agents.
// It is deliberately not wrapped in APIResponseSchema.
type UploadResponseSchema struct {
	Success     bool              `json:"success"`
	CampaignID  string            `json:"campaign_id"`
	Strategy    StrategySchema    `json:"strategy"`
	Input       UploadInputSchema `json:"input"`
	Performance MetadataSchema    `json:"performance"`
}

// UploadInputSchema represents the echoed intake input
type UploadInputSchema struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	BriefURI string `json:"brief_uri,omitempty"`
}

// AnalysisReportSchema represents the competitor analysis payload
type AnalysisReportSchema struct {
	BrandContext    string `json:"brand_context"`
	Industry        string `json:"industry,omitempty"`
	Insights        []any  `json:"insights"`
	Recommendations []any  `json:"recommendations"`
	Note            string `json:"note,omitempty"`
	AnalyzedAt      string `json:"analyzed_at"`
}

// APIResponseSchema represents the standard API response wrapper
type APIResponseSchema struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *APIErrorSchema `json:"error,omitempty"`
	Meta    *APIMetaSchema  `json:"meta,omitempty"`
}

// APIErrorSchema represents the error response schema
type APIErrorSchema struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// APIMetaSchema represents pagination metadata
type APIMetaSchema struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// HealthResponseSchema represents the health endpoint response
type HealthResponseSchema struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ReadyResponseSchema represents the ready endpoint response
type ReadyResponseSchema struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func TestContractHealthEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	router := setupTestRouter(t, testDB)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	// httputil.JSON wraps all responses in APIResponseSchema
	var apiResp APIResponseSchema
	err := json.Unmarshal(rec.Body.Bytes(), &apiResp)
	require.NoError(t, err, "Response should be valid JSON matching APIResponseSchema")
	assert.True(t, apiResp.Success)

	var resp HealthResponseSchema
	err = json.Unmarshal(apiResp.Data, &resp)
	require.NoError(t, err, "Data should match HealthResponseSchema")

	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "brandpulse-api", resp.Service)
}

func TestContractReadyEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	router := setupTestRouter(t, testDB)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var apiResp APIResponseSchema
	err := json.Unmarshal(rec.Body.Bytes(), &apiResp)
	require.NoError(t, err, "Response should be valid JSON matching APIResponseSchema")
	assert.True(t, apiResp.Success)

	var resp ReadyResponseSchema
	err = json.Unmarshal(apiResp.Data, &resp)
	require.NoError(t, err, "Data should match ReadyResponseSchema")

	assert.NotEmpty(t, resp.Status, "status field is required")
	assert.NotNil(t, resp.Checks, "checks field is required")
}

func TestContractCampaignCreate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	testDB.TruncateTables(t)
	router := setupTestRouter(t, testDB)

	body, contentType := multipartPrompt(t, "GlowUp: premium skincare for working professionals")
	req := httptest.NewRequest(http.MethodPost, "/campaign/upload-prompt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var upload UploadResponseSchema
	err := json.Unmarshal(rec.Body.Bytes(), &upload)
	require.NoError(t, err, "Response should match UploadResponseSchema")

	// Required fields
	assert.True(t, upload.Success, "success should be true")
	assert.NotEmpty(t, upload.CampaignID, "campaign_id is required")
	assert.Equal(t, "text", upload.Input.Type)
	assert.Equal(t, "GlowUp: premium skincare for working professionals", upload.Input.Text)
	assert.Empty(t, upload.Input.BriefURI, "text intake carries no brief URI")

	// Normalized strategy never has empty fields
	assert.NotEmpty(t, upload.Strategy.Product)
	assert.NotEmpty(t, upload.Strategy.Audience)
	assert.NotEmpty(t, upload.Strategy.Goal)
	assert.NotEmpty(t, upload.Strategy.Tone)
	assert.NotEmpty(t, upload.Strategy.Platforms)
	assert.NotEmpty(t, upload.Strategy.Domain)
	assert.NotEmpty(t, upload.Strategy.Stylistics)

	// Performance shape
	assert.Greater(t, upload.Performance.FieldsExtracted, 0)
	assert.Equal(t, 6, upload.Performance.TotalFields)
	assert.Contains(t, []string{"high", "medium", "low"}, upload.Performance.Confidence)
	assert.Contains(t, []string{"llm", "fallback"}, upload.Performance.Source)

	// UUID format validation
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, upload.CampaignID)

	// The persisted campaign uses the standard envelope
	req = httptest.NewRequest(http.MethodGet, "/api/campaigns/"+upload.CampaignID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var apiResp APIResponseSchema
	err = json.Unmarshal(rec.Body.Bytes(), &apiResp)
	require.NoError(t, err)
	assert.True(t, apiResp.Success)
	assert.Nil(t, apiResp.Error, "error should be nil on success")

	var campaign CampaignResponseSchema
	err = json.Unmarshal(apiResp.Data, &campaign)
	require.NoError(t, err, "Data should match CampaignResponseSchema")

	assert.Equal(t, upload.CampaignID, campaign.ID)
	assert.Equal(t, "text", campaign.InputType)
	assert.NotNil(t, campaign.Results, "results is required")

	// Timestamp format validation (ISO 8601)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`, campaign.CreatedAt)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`, campaign.UpdatedAt)

	// Status enum validation
	validStatuses := []string{"pending", "processing", "completed", "failed"}
	assert.Contains(t, validStatuses, campaign.Status)
}

func TestContractCampaignList(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	testDB.TruncateTables(t)
	router := setupTestRouter(t, testDB)

	// Create a campaign first
	body, contentType := multipartPrompt(t, "EcoBottle - reusable bottles for students")
	req := httptest.NewRequest(http.MethodPost, "/campaign/upload-prompt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// List campaigns
	req = httptest.NewRequest(http.MethodGet, "/api/campaigns?page=1&per_page=10", nil)
	rec = httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var apiResp APIResponseSchema
	err := json.Unmarshal(rec.Body.Bytes(), &apiResp)
	require.NoError(t, err)
	assert.True(t, apiResp.Success)

	// Validate meta (pagination)
	require.NotNil(t, apiResp.Meta, "meta is required for list endpoints")
	assert.GreaterOrEqual(t, apiResp.Meta.Page, 1)
	assert.GreaterOrEqual(t, apiResp.Meta.PerPage, 1)
	assert.GreaterOrEqual(t, apiResp.Meta.Total, 0)
	assert.GreaterOrEqual(t, apiResp.Meta.TotalPages, 0)

	// Validate data is an array
	var campaigns []CampaignResponseSchema
	err = json.Unmarshal(apiResp.Data, &campaigns)
	require.NoError(t, err, "Data should be an array of CampaignResponseSchema")
	assert.Len(t, campaigns, 1)
}

func TestContractAnalysisReport(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	router := setupTestRouter(t, testDB)

	body := `{"brand_context": "eco bottles", "competitor_urls": ["https://example.com"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/competitors/analyze", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var apiResp APIResponseSchema
	err := json.Unmarshal(rec.Body.Bytes(), &apiResp)
	require.NoError(t, err)
	assert.True(t, apiResp.Success)

	var report AnalysisReportSchema
	err = json.Unmarshal(apiResp.Data, &report)
	require.NoError(t, err, "Data should match AnalysisReportSchema")

	assert.Equal(t, "eco bottles", report.BrandContext)
	require.NotNil(t, report.Insights, "insights is required")
	require.NotNil(t, report.Recommendations, "recommendations is required, even when empty")
	assert.NotEmpty(t, report.AnalyzedAt)
	assert.Len(t, report.Insights, 1)
}

func TestContractErrorResponse(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	router := setupTestRouter(t, testDB)

	// Request with missing required field
	req := httptest.NewRequest(http.MethodPost, "/api/competitors/analyze", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var apiResp APIResponseSchema
	err := json.Unmarshal(rec.Body.Bytes(), &apiResp)
	require.NoError(t, err)

	// Validate error response
	assert.False(t, apiResp.Success, "success should be false on error")
	require.NotNil(t, apiResp.Error, "error is required on error response")
	assert.NotEmpty(t, apiResp.Error.Code, "error.code is required")
	assert.NotEmpty(t, apiResp.Error.Message, "error.message is required")
}

func TestContractNotFoundResponse(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	testDB.TruncateTables(t)
	router := setupTestRouter(t, testDB)

	req := httptest.NewRequest(http.MethodGet, "/api/campaigns/00000000-0000-0000-0000-000000000000", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var apiResp APIResponseSchema
	err := json.Unmarshal(rec.Body.Bytes(), &apiResp)
	require.NoError(t, err)

	assert.False(t, apiResp.Success)
	require.NotNil(t, apiResp.Error)
	assert.Equal(t, "NOT_FOUND", apiResp.Error.Code)
}
