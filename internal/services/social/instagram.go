// Package social proxies campaign content to social platforms. Instagram
// publishing goes through the Graph API two-phase flow: create a media
// container, poll until it is ready, then publish it.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brandpulse/brandpulse/internal/config"
	"github.com/brandpulse/brandpulse/internal/domain"
	"github.com/brandpulse/brandpulse/internal/observability"
)

// PostRequest is the inbound publish payload
type PostRequest struct {
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

// PostResult reports a successful publish
type PostResult struct {
	MediaID     string `json:"media_id"`
	ContainerID string `json:"container_id"`
	Permalink   string `json:"permalink,omitempty"`
}

// InsightValue is a single datapoint for one metric
type InsightValue struct {
	Value int `json:"value"`
}

// Insight is one metric series from the Graph API
type Insight struct {
	Name   string         `json:"name"`
	Period string         `json:"period"`
	Values []InsightValue `json:"values"`
}

// graphError is the error envelope the Graph API wraps failures in
type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// InstagramService publishes media through the Instagram Graph API
type InstagramService struct {
	cfg        config.InstagramConfig
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *observability.Metrics

	baseURL string
}

// NewInstagramService creates the Instagram publishing service
func NewInstagramService(cfg config.InstagramConfig, logger *zap.Logger, metrics *observability.Metrics) *InstagramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return &InstagramService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		metrics:    metrics,
		baseURL:    strings.TrimRight(cfg.GraphBaseURL, "/"),
	}
}

// Enabled reports whether credentials are configured
func (s *InstagramService) Enabled() bool {
	return s.cfg.Enabled()
}

// Post publishes an image with a caption. The container is polled at a fixed
// interval until Instagram finishes processing it; exhausting the poll budget
// fails the publish rather than blocking the caller indefinitely.
func (s *InstagramService) Post(ctx context.Context, req PostRequest) (*PostResult, error) {
	if !s.cfg.Enabled() {
		return nil, domain.ValidationError("instagram", "instagram credentials are not configured")
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		return nil, domain.ValidationError("image_url", "image_url is required")
	}
	if _, err := url.ParseRequestURI(req.ImageURL); err != nil {
		return nil, domain.ValidationError("image_url", "image_url must be a valid URL")
	}

	containerID, err := s.createContainer(ctx, req)
	if err != nil {
		s.metrics.RecordPublish("instagram", "error")
		return nil, domain.ErrPublishFailed("instagram", err)
	}

	if err := s.waitForContainer(ctx, containerID); err != nil {
		s.metrics.RecordPublish("instagram", "error")
		return nil, domain.ErrPublishFailed("instagram", err)
	}

	mediaID, err := s.publishContainer(ctx, containerID)
	if err != nil {
		s.metrics.RecordPublish("instagram", "error")
		return nil, domain.ErrPublishFailed("instagram", err)
	}

	s.metrics.RecordPublish("instagram", "ok")
	s.logger.Info("instagram post published",
		zap.String("media_id", mediaID),
		zap.String("container_id", containerID),
	)

	return &PostResult{MediaID: mediaID, ContainerID: containerID}, nil
}

// GetInsights fetches engagement metrics for a published media object
func (s *InstagramService) GetInsights(ctx context.Context, mediaID string) ([]Insight, error) {
	if !s.cfg.Enabled() {
		return nil, domain.ValidationError("instagram", "instagram credentials are not configured")
	}
	if strings.TrimSpace(mediaID) == "" {
		return nil, domain.ValidationError("media_id", "media_id is required")
	}

	params := url.Values{}
	params.Set("metric", "impressions,reach,likes,comments,saved")
	params.Set("access_token", s.cfg.AccessToken)

	var payload struct {
		Data []Insight `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/%s/insights?%s", s.baseURL, url.PathEscape(mediaID), params.Encode())
	if err := s.doGraph(ctx, http.MethodGet, endpoint, &payload); err != nil {
		return nil, domain.ErrExternalAPI("instagram", err)
	}
	return payload.Data, nil
}

func (s *InstagramService) createContainer(ctx context.Context, req PostRequest) (string, error) {
	params := url.Values{}
	params.Set("image_url", req.ImageURL)
	params.Set("caption", req.Caption)
	params.Set("access_token", s.cfg.AccessToken)

	var payload struct {
		ID string `json:"id"`
	}
	endpoint := fmt.Sprintf("%s/%s/media?%s", s.baseURL, s.cfg.BusinessID, params.Encode())
	if err := s.doGraph(ctx, http.MethodPost, endpoint, &payload); err != nil {
		return "", fmt.Errorf("creating media container: %w", err)
	}
	if payload.ID == "" {
		return "", fmt.Errorf("media container response had no id")
	}
	return payload.ID, nil
}

// waitForContainer polls the container status until FINISHED or the attempt
// budget runs out. ERROR and EXPIRED are terminal.
func (s *InstagramService) waitForContainer(ctx context.Context, containerID string) error {
	params := url.Values{}
	params.Set("fields", "status_code")
	params.Set("access_token", s.cfg.AccessToken)
	endpoint := fmt.Sprintf("%s/%s?%s", s.baseURL, containerID, params.Encode())

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= s.cfg.PollAttempts; attempt++ {
		var payload struct {
			StatusCode string `json:"status_code"`
		}
		if err := s.doGraph(ctx, http.MethodGet, endpoint, &payload); err != nil {
			return fmt.Errorf("polling container status: %w", err)
		}

		switch payload.StatusCode {
		case "FINISHED":
			s.metrics.RecordPollAttempts("instagram", attempt)
			return nil
		case "ERROR", "EXPIRED":
			s.metrics.RecordPollAttempts("instagram", attempt)
			return fmt.Errorf("container %s entered state %s", containerID, payload.StatusCode)
		}

		s.logger.Debug("container not ready",
			zap.String("container_id", containerID),
			zap.String("status", payload.StatusCode),
			zap.Int("attempt", attempt),
		)

		if attempt == s.cfg.PollAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	s.metrics.RecordPollAttempts("instagram", s.cfg.PollAttempts)
	return fmt.Errorf("container %s not ready after %d attempts", containerID, s.cfg.PollAttempts)
}

func (s *InstagramService) publishContainer(ctx context.Context, containerID string) (string, error) {
	params := url.Values{}
	params.Set("creation_id", containerID)
	params.Set("access_token", s.cfg.AccessToken)

	var payload struct {
		ID string `json:"id"`
	}
	endpoint := fmt.Sprintf("%s/%s/media_publish?%s", s.baseURL, s.cfg.BusinessID, params.Encode())
	if err := s.doGraph(ctx, http.MethodPost, endpoint, &payload); err != nil {
		return "", fmt.Errorf("publishing container: %w", err)
	}
	if payload.ID == "" {
		return "", fmt.Errorf("publish response had no media id")
	}
	return payload.ID, nil
}

func (s *InstagramService) doGraph(ctx context.Context, method, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ge graphError
		if json.Unmarshal(body, &ge) == nil && ge.Error.Message != "" {
			return fmt.Errorf("graph api error %d (%s): %s", ge.Error.Code, ge.Error.Type, ge.Error.Message)
		}
		return fmt.Errorf("graph api status %d", resp.StatusCode)
	}

	return json.Unmarshal(body, v)
}
