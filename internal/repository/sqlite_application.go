package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/stagehand/internal/db"
	"github.com/alexanderramin/stagehand/internal/domain"
)

// SQLiteApplicationRepo implements ApplicationRepo over a db.DBTX, so the
// same code runs against the pool or a transaction.
type SQLiteApplicationRepo struct {
	db db.DBTX
}

// NewSQLiteApplicationRepo creates a new SQLiteApplicationRepo.
func NewSQLiteApplicationRepo(conn db.DBTX) *SQLiteApplicationRepo {
	return &SQLiteApplicationRepo{db: conn}
}

const appColumns = `acronym, description, rnumber, start_date, end_date,
	permit_create, permit_open, permit_todo, permit_doing, permit_done,
	created_at, updated_at`

func (r *SQLiteApplicationRepo) Create(ctx context.Context, a *domain.Application) error {
	query := `INSERT INTO apps (` + appColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.Acronym,
		a.Description,
		a.RNumber,
		nullableTimeToString(a.StartDate, dateLayout),
		nullableTimeToString(a.EndDate, dateLayout),
		nullableString(a.Permits.Create),
		nullableString(a.Permits.Open),
		nullableString(a.Permits.Todo),
		nullableString(a.Permits.Doing),
		nullableString(a.Permits.Done),
		a.CreatedAt.Format(time.RFC3339),
		a.UpdatedAt.Format(time.RFC3339),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: application %s already exists", domain.ErrConflict, a.Acronym)
	}
	if err != nil {
		return fmt.Errorf("inserting application: %w", err)
	}
	return nil
}

func (r *SQLiteApplicationRepo) GetByAcronym(ctx context.Context, acronym string) (*domain.Application, error) {
	query := `SELECT ` + appColumns + ` FROM apps WHERE acronym = ?`
	row := r.db.QueryRowContext(ctx, query, acronym)

	var a domain.Application
	var startStr, endStr sql.NullString
	var pc, po, pt, pd, pn sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(
		&a.Acronym, &a.Description, &a.RNumber,
		&startStr, &endStr,
		&pc, &po, &pt, &pd, &pn,
		&createdStr, &updatedStr,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: application %s", domain.ErrNotFound, acronym)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning application: %w", err)
	}

	a.StartDate = parseNullableTime(startStr, dateLayout)
	a.EndDate = parseNullableTime(endStr, dateLayout)
	a.Permits = domain.PermitGroups{
		Create: stringOrEmpty(pc),
		Open:   stringOrEmpty(po),
		Todo:   stringOrEmpty(pt),
		Doing:  stringOrEmpty(pd),
		Done:   stringOrEmpty(pn),
	}

	var parseErr error
	a.CreatedAt, parseErr = time.Parse(time.RFC3339, createdStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	a.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &a, nil
}

func (r *SQLiteApplicationRepo) List(ctx context.Context) ([]*domain.Application, error) {
	query := `SELECT acronym FROM apps ORDER BY acronym`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	var acronyms []string
	for rows.Next() {
		var acronym string
		if err := rows.Scan(&acronym); err != nil {
			return nil, fmt.Errorf("scanning application row: %w", err)
		}
		acronyms = append(acronyms, acronym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating applications: %w", err)
	}

	apps := make([]*domain.Application, 0, len(acronyms))
	for _, acronym := range acronyms {
		a, err := r.GetByAcronym(ctx, acronym)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, nil
}

// Update writes the mutable fields only: dates and permit groups. Acronym,
// description and the running number are immutable through this path.
func (r *SQLiteApplicationRepo) Update(ctx context.Context, a *domain.Application) error {
	query := `UPDATE apps SET start_date = ?, end_date = ?,
		permit_create = ?, permit_open = ?, permit_todo = ?, permit_doing = ?, permit_done = ?,
		updated_at = ?
		WHERE acronym = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableTimeToString(a.StartDate, dateLayout),
		nullableTimeToString(a.EndDate, dateLayout),
		nullableString(a.Permits.Create),
		nullableString(a.Permits.Open),
		nullableString(a.Permits.Todo),
		nullableString(a.Permits.Doing),
		nullableString(a.Permits.Done),
		a.UpdatedAt.Format(time.RFC3339),
		a.Acronym,
	)
	if err != nil {
		return fmt.Errorf("updating application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating application: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: application %s", domain.ErrNotFound, a.Acronym)
	}
	return nil
}

// NextTaskNumber allocates the next running number with a single atomic
// statement. Never read-modify-write: concurrent creations each get a
// distinct, gapless number.
func (r *SQLiteApplicationRepo) NextTaskNumber(ctx context.Context, acronym string) (int, error) {
	query := `UPDATE apps SET rnumber = rnumber + 1 WHERE acronym = ? RETURNING rnumber`
	var next int
	err := r.db.QueryRowContext(ctx, query, acronym).Scan(&next)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: application %s", domain.ErrNotFound, acronym)
	}
	if err != nil {
		return 0, fmt.Errorf("allocating task number for %s: %w", acronym, err)
	}
	return next, nil
}
