package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brandpulse/brandpulse/internal/domain"
)

// CampaignRepository persists campaigns in PostgreSQL
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// campaignRow represents the database row structure
type campaignRow struct {
	ID        uuid.UUID      `db:"id"`
	Strategy  []byte         `db:"strategy"`
	Metadata  []byte         `db:"metadata"`
	Status    string         `db:"status"`
	InputType string         `db:"input_type"`
	InputText sql.NullString `db:"input_text"`
	BriefURI  sql.NullString `db:"brief_uri"`
	Results   []byte         `db:"results"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	DeletedAt *time.Time     `db:"deleted_at"`
}

func (r *campaignRow) toDomain() (*domain.Campaign, error) {
	var strategy domain.CampaignStrategy
	if err := json.Unmarshal(r.Strategy, &strategy); err != nil {
		return nil, err
	}

	var metadata domain.StrategyMetadata
	if err := json.Unmarshal(r.Metadata, &metadata); err != nil {
		return nil, err
	}

	results := []domain.AgentResult{}
	if len(r.Results) > 0 {
		if err := json.Unmarshal(r.Results, &results); err != nil {
			return nil, err
		}
	}

	return &domain.Campaign{
		ID:        r.ID,
		Strategy:  strategy,
		Metadata:  metadata,
		Status:    domain.CampaignStatus(r.Status),
		InputType: r.InputType,
		InputText: r.InputText.String,
		BriefURI:  r.BriefURI.String,
		Results:   results,
		Timestamps: domain.Timestamps{
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			DeletedAt: r.DeletedAt,
		},
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts a new campaign
func (r *CampaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	strategy, err := json.Marshal(campaign.Strategy)
	if err != nil {
		return err
	}
	metadata, err := json.Marshal(campaign.Metadata)
	if err != nil {
		return err
	}
	results, err := json.Marshal(campaign.Results)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO campaigns (id, strategy, metadata, status, input_type, input_text, brief_uri, results, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(ctx, query,
		campaign.ID,
		strategy,
		metadata,
		string(campaign.Status),
		campaign.InputType,
		nullString(campaign.InputText),
		nullString(campaign.BriefURI),
		results,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.AlreadyExistsError("campaign", "id", campaign.ID.String())
		}
		return err
	}

	return nil
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	query := `
		SELECT id, strategy, metadata, status, input_type, input_text, brief_uri, results, created_at, updated_at, deleted_at
		FROM campaigns
		WHERE id = $1 AND deleted_at IS NULL
	`

	var row campaignRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("campaign", id)
		}
		return nil, err
	}

	return row.toDomain()
}

// List retrieves paginated campaigns, newest first. An empty status matches
// every campaign.
func (r *CampaignRepository) List(ctx context.Context, status domain.CampaignStatus, limit, offset int) ([]*domain.Campaign, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM campaigns WHERE deleted_at IS NULL AND ($1 = '' OR status = $1)`
	if err := r.db.GetContext(ctx, &total, countQuery, string(status)); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, strategy, metadata, status, input_type, input_text, brief_uri, results, created_at, updated_at, deleted_at
		FROM campaigns
		WHERE deleted_at IS NULL AND ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var rows []campaignRow
	if err := r.db.SelectContext(ctx, &rows, query, string(status), limit, offset); err != nil {
		return nil, 0, err
	}

	campaigns := make([]*domain.Campaign, len(rows))
	for i, row := range rows {
		campaign, err := row.toDomain()
		if err != nil {
			return nil, 0, err
		}
		campaigns[i] = campaign
	}

	return campaigns, total, nil
}

// UpdateStatus moves a campaign to a new status, enforcing the forward-only
// transition rules.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.CampaignStatus) error {
	if !next.IsValid() {
		return domain.ValidationError("status", "invalid campaign status")
	}

	query := `
		SELECT status FROM campaigns
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current string
	if err := tx.GetContext(ctx, &current, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError("campaign", id)
		}
		return err
	}

	if !domain.CampaignStatus(current).CanTransitionTo(next) {
		return domain.ErrInvalidTransition(domain.CampaignStatus(current), next)
	}

	update := `UPDATE campaigns SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, id, string(next), time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit()
}

// AppendResult stores an agent result blob against a campaign. The row is
// locked so concurrent agents cannot clobber each other's appends.
func (r *CampaignRepository) AppendResult(ctx context.Context, id uuid.UUID, agent string, payload domain.JSONB) (*domain.Campaign, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT id, strategy, metadata, status, input_type, input_text, brief_uri, results, created_at, updated_at, deleted_at
		FROM campaigns
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`

	var row campaignRow
	if err := tx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("campaign", id)
		}
		return nil, err
	}

	campaign, err := row.toDomain()
	if err != nil {
		return nil, err
	}

	campaign.AppendResult(agent, payload)

	results, err := json.Marshal(campaign.Results)
	if err != nil {
		return nil, err
	}

	update := `UPDATE campaigns SET results = $2, status = $3, updated_at = $4 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, id, results, string(campaign.Status), campaign.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return campaign, nil
}

// Delete soft deletes a campaign
func (r *CampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE campaigns
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.NotFoundError("campaign", id)
	}

	return nil
}
