package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Common types used across domain models

// CampaignStatus represents the current state of a campaign
type CampaignStatus string

const (
	CampaignStatusPending    CampaignStatus = "pending"
	CampaignStatusProcessing CampaignStatus = "processing"
	CampaignStatusCompleted  CampaignStatus = "completed"
	CampaignStatusFailed     CampaignStatus = "failed"
)

func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignStatusCompleted || s == CampaignStatusFailed
}

func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignStatusPending, CampaignStatusProcessing, CampaignStatusCompleted, CampaignStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether a status change is allowed.
// Campaigns only move forward: pending -> processing -> completed|failed.
func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	switch s {
	case CampaignStatusPending:
		return next == CampaignStatusProcessing || next == CampaignStatusCompleted || next == CampaignStatusFailed
	case CampaignStatusProcessing:
		return next == CampaignStatusCompleted || next == CampaignStatusFailed
	}
	return false
}

// Priority for recommendations
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Timestamps provides common time fields
type Timestamps struct {
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// SetTimestamps sets CreatedAt and UpdatedAt to current time
func (t *Timestamps) SetTimestamps() {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
}

// JSONB is a wrapper for JSON data stored in PostgreSQL JSONB columns
type JSONB map[string]any

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, j)
}
