package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/admissions-crm/internal/domain"
)

// CourseRepository persists the course catalog.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	Update(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Course, error)
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository instantiates repository.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

const courseColumns = `id, name, category, price, duration, eligibility, description, is_active, created_at, updated_at`

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO courses (id, name, category, price, duration, eligibility, description, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		course.ID,
		course.Name,
		course.Category,
		course.Price,
		course.Duration,
		course.Eligibility,
		course.Description,
		course.IsActive,
	).Scan(&course.CreatedAt, &course.UpdatedAt)
}

func (r *courseRepository) Update(ctx context.Context, course *domain.Course) error {
	const query = `
        UPDATE courses SET name=$1, category=$2, price=$3, duration=$4, eligibility=$5, description=$6,
            is_active=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		course.Name,
		course.Category,
		course.Price,
		course.Duration,
		course.Eligibility,
		course.Description,
		course.IsActive,
		course.ID,
	).Scan(&course.UpdatedAt)
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id=$1`
	return scanCourse(r.pool.QueryRow(ctx, query, id))
}

func (r *courseRepository) List(ctx context.Context, activeOnly bool) ([]domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses`
	if activeOnly {
		query += " WHERE is_active"
	}
	query += " ORDER BY category, name"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *course)
	}
	return result, rows.Err()
}

func scanCourse(row pgx.Row) (*domain.Course, error) {
	var course domain.Course
	if err := row.Scan(
		&course.ID,
		&course.Name,
		&course.Category,
		&course.Price,
		&course.Duration,
		&course.Eligibility,
		&course.Description,
		&course.IsActive,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &course, nil
}
