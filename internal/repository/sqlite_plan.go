package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/stagehand/internal/db"
	"github.com/alexanderramin/stagehand/internal/domain"
)

// SQLitePlanRepo implements PlanRepo using a SQLite database.
type SQLitePlanRepo struct {
	db db.DBTX
}

// NewSQLitePlanRepo creates a new SQLitePlanRepo.
func NewSQLitePlanRepo(conn db.DBTX) *SQLitePlanRepo {
	return &SQLitePlanRepo{db: conn}
}

func (r *SQLitePlanRepo) Create(ctx context.Context, p *domain.Plan) error {
	query := `INSERT INTO plans (app_acronym, name, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.AppAcronym,
		p.Name,
		nullableTimeToString(p.StartDate, dateLayout),
		nullableTimeToString(p.EndDate, dateLayout),
		p.CreatedAt.Format(time.RFC3339),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: plan %s already exists for application %s", domain.ErrConflict, p.Name, p.AppAcronym)
	}
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}
	return nil
}

func (r *SQLitePlanRepo) Get(ctx context.Context, acronym, name string) (*domain.Plan, error) {
	query := `SELECT app_acronym, name, start_date, end_date, created_at
		FROM plans WHERE app_acronym = ? AND name = ?`
	row := r.db.QueryRowContext(ctx, query, acronym, name)
	return scanPlan(row.Scan)
}

func (r *SQLitePlanRepo) ListByApp(ctx context.Context, acronym string) ([]*domain.Plan, error) {
	query := `SELECT app_acronym, name, start_date, end_date, created_at
		FROM plans WHERE app_acronym = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, acronym)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plans: %w", err)
	}
	return plans, nil
}

func scanPlan(scan func(dest ...any) error) (*domain.Plan, error) {
	var p domain.Plan
	var startStr, endStr sql.NullString
	var createdStr string

	err := scan(&p.AppAcronym, &p.Name, &startStr, &endStr, &createdStr)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: plan", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning plan: %w", err)
	}

	p.StartDate = parseNullableTime(startStr, dateLayout)
	p.EndDate = parseNullableTime(endStr, dateLayout)

	var parseErr error
	p.CreatedAt, parseErr = time.Parse(time.RFC3339, createdStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	return &p, nil
}
