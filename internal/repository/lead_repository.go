package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/admissions-crm/internal/domain"
)

// LeadFilter narrows lead listing at the store. Fine-grained criteria are
// applied in memory by the lead filter pipeline.
type LeadFilter struct {
	// AssignedTo restricts to the given assignees when non-nil. An empty
	// non-nil slice matches nothing.
	AssignedTo     []string
	AdmissionsOnly bool
	WithFollowUp   bool
}

// LeadRepository encapsulates lead persistence.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	CreateBatch(ctx context.Context, leads []domain.Lead) error
	Update(ctx context.Context, lead *domain.Lead) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]domain.Lead, error)
}

type leadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository instantiates repository.
func NewLeadRepository(pool *pgxpool.Pool) LeadRepository {
	return &leadRepository{pool: pool}
}

const leadColumns = `id, full_name, email, phone, country, qualification, source, status, assigned_to,
            course_interest, priority, location, notes, notes_date, whatsapp_number, preferred_language,
            fees, total_fees, fees_collected, fees_type, sales_note, created_at, updated_at`

const insertLead = `
        INSERT INTO leads (id, full_name, email, phone, country, qualification, source, status, assigned_to,
            course_interest, priority, location, notes, notes_date, whatsapp_number, preferred_language,
            fees, total_fees, fees_collected, fees_type, sales_note)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
        RETURNING created_at, updated_at`

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	return r.pool.QueryRow(ctx, insertLead, leadArgs(lead)...).Scan(&lead.CreatedAt, &lead.UpdatedAt)
}

// CreateBatch inserts all leads in one transaction; either all rows land or none.
func (r *leadRepository) CreateBatch(ctx context.Context, leads []domain.Lead) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i := range leads {
		if leads[i].ID == "" {
			leads[i].ID = uuid.NewString()
		}
		lead := &leads[i]
		batch.Queue(insertLead, leadArgs(lead)...).QueryRow(func(row pgx.Row) error {
			return row.Scan(&lead.CreatedAt, &lead.UpdatedAt)
		})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *leadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	const query = `
        UPDATE leads SET full_name=$2, email=$3, phone=$4, country=$5, qualification=$6, source=$7, status=$8,
            assigned_to=$9, course_interest=$10, priority=$11, location=$12, notes=$13, notes_date=$14,
            whatsapp_number=$15, preferred_language=$16, fees=$17, total_fees=$18, fees_collected=$19,
            fees_type=$20, sales_note=$21, updated_at=NOW()
        WHERE id=$1
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, leadArgs(lead)...).Scan(&lead.UpdatedAt)
}

func (r *leadRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *leadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id=$1`
	return scanLead(r.pool.QueryRow(ctx, query, id))
}

func (r *leadRepository) List(ctx context.Context, filter LeadFilter) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	args := []any{}
	clauses := []string{}

	if filter.AssignedTo != nil {
		args = append(args, filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to::text = ANY($%d)", len(args)))
	}
	if filter.AdmissionsOnly {
		args = append(args, domain.NormalizeStatus(domain.StatusAdmissionDone))
		clauses = append(clauses, fmt.Sprintf("LOWER(TRIM(status))=$%d", len(args)))
	}
	if filter.WithFollowUp {
		clauses = append(clauses, "notes_date <> ''")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *lead)
	}
	return result, rows.Err()
}

func leadArgs(lead *domain.Lead) []any {
	var (
		fees, totalFees, collected decimal.NullDecimal
		feesType, salesNote        *string
	)
	if lead.Sales != nil {
		fees = decimal.NewNullDecimal(lead.Sales.Fees)
		totalFees = decimal.NewNullDecimal(lead.Sales.TotalFees)
		collected = decimal.NewNullDecimal(lead.Sales.FeesCollected)
		ft := string(lead.Sales.FeesType)
		feesType = &ft
		salesNote = &lead.Sales.Note
	}
	return []any{
		lead.ID,
		lead.FullName,
		lead.Email,
		lead.Phone,
		lead.Country,
		lead.Qualification,
		lead.Source,
		lead.Status,
		nullableID(lead.AssignedTo),
		lead.CourseInterest,
		lead.Priority,
		lead.Location,
		lead.Notes,
		lead.NotesDate,
		lead.WhatsAppNumber,
		lead.PreferredLanguage,
		fees,
		totalFees,
		collected,
		feesType,
		salesNote,
	}
}

func scanLead(row pgx.Row) (*domain.Lead, error) {
	var (
		lead                       domain.Lead
		assignedTo                 *string
		fees, totalFees, collected decimal.NullDecimal
		feesType, salesNote        *string
	)
	if err := row.Scan(
		&lead.ID,
		&lead.FullName,
		&lead.Email,
		&lead.Phone,
		&lead.Country,
		&lead.Qualification,
		&lead.Source,
		&lead.Status,
		&assignedTo,
		&lead.CourseInterest,
		&lead.Priority,
		&lead.Location,
		&lead.Notes,
		&lead.NotesDate,
		&lead.WhatsAppNumber,
		&lead.PreferredLanguage,
		&fees,
		&totalFees,
		&collected,
		&feesType,
		&salesNote,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if assignedTo != nil {
		lead.AssignedTo = *assignedTo
	}
	if totalFees.Valid || collected.Valid {
		lead.Sales = &domain.SalesInfo{
			Fees:          fees.Decimal,
			TotalFees:     totalFees.Decimal,
			FeesCollected: collected.Decimal,
		}
		if feesType != nil {
			lead.Sales.FeesType = domain.FeesType(*feesType)
		}
		if salesNote != nil {
			lead.Sales.Note = *salesNote
		}
	}
	return &lead, nil
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
