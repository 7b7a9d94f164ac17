package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/admissions-crm/internal/domain"
)

// LeadActivityRepository persists lead change records.
type LeadActivityRepository interface {
	Create(ctx context.Context, activity *domain.LeadActivity) error
	ListByLead(ctx context.Context, leadID string) ([]domain.LeadActivity, error)
}

type leadActivityRepository struct {
	pool *pgxpool.Pool
}

// NewLeadActivityRepository creates repository.
func NewLeadActivityRepository(pool *pgxpool.Pool) LeadActivityRepository {
	return &leadActivityRepository{pool: pool}
}

func (r *leadActivityRepository) Create(ctx context.Context, activity *domain.LeadActivity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO lead_activity (id, lead_id, changed_by_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		activity.ID,
		activity.LeadID,
		nullableID(activity.ChangedByID),
		activity.ChangeType,
		activity.OldValue,
		activity.NewValue,
	).Scan(&activity.CreatedAt)
}

func (r *leadActivityRepository) ListByLead(ctx context.Context, leadID string) ([]domain.LeadActivity, error) {
	const query = `
        SELECT id, lead_id, changed_by_id, change_type, old_value, new_value, created_at
        FROM lead_activity WHERE lead_id=$1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LeadActivity
	for rows.Next() {
		var (
			activity  domain.LeadActivity
			changedBy *string
		)
		if err := rows.Scan(
			&activity.ID,
			&activity.LeadID,
			&changedBy,
			&activity.ChangeType,
			&activity.OldValue,
			&activity.NewValue,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		if changedBy != nil {
			activity.ChangedByID = *changedBy
		}
		result = append(result, activity)
	}
	return result, rows.Err()
}
