package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/stagehand/internal/db"
	"github.com/alexanderramin/stagehand/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

const taskColumns = `id, app_acronym, name, description, notes, creator,
	create_date, plan_name, state, owner, updated_at`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.AppAcronym,
		t.Name,
		t.Description,
		t.Notes,
		t.Creator,
		t.CreateDate.Format(dateLayout),
		nullableString(t.Plan),
		string(t.State),
		t.Owner,
		t.UpdatedAt.Format(time.RFC3339),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: task %s already exists", domain.ErrConflict, t.ID)
	}
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	t, err := scanTask(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return t, nil
}

func (r *SQLiteTaskRepo) ListByApp(ctx context.Context, acronym string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE app_acronym = ?`
	rows, err := r.db.QueryContext(ctx, query, acronym)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// ApplyTransition performs the conditional state write. The WHERE clause
// re-checks the from-state so the update is a compare-and-swap: zero affected
// rows means another transaction moved the task first, and the caller must
// treat the operation as a conflict, not retry it.
func (r *SQLiteTaskRepo) ApplyTransition(ctx context.Context, u TransitionUpdate) error {
	var res sql.Result
	var err error
	if u.SetPlan {
		query := `UPDATE tasks SET state = ?, notes = ?, owner = ?, plan_name = ?, updated_at = ?
			WHERE id = ? AND state = ?`
		res, err = r.db.ExecContext(ctx, query,
			string(u.ToState), u.Notes, u.Owner, nullableString(u.Plan),
			u.UpdatedAt.Format(time.RFC3339),
			u.ID, string(u.FromState),
		)
	} else {
		query := `UPDATE tasks SET state = ?, notes = ?, owner = ?, updated_at = ?
			WHERE id = ? AND state = ?`
		res, err = r.db.ExecContext(ctx, query,
			string(u.ToState), u.Notes, u.Owner,
			u.UpdatedAt.Format(time.RFC3339),
			u.ID, string(u.FromState),
		)
	}
	if err != nil {
		return fmt.Errorf("updating task %s: %w", u.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task %s: %w", u.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: task %s is no longer in the %s state", domain.ErrConflict, u.ID, u.FromState)
	}
	return nil
}

func scanTask(scan func(dest ...any) error) (*domain.Task, error) {
	var t domain.Task
	var planStr sql.NullString
	var createDateStr, stateStr, updatedStr string

	err := scan(
		&t.ID, &t.AppAcronym, &t.Name, &t.Description, &t.Notes, &t.Creator,
		&createDateStr, &planStr, &stateStr, &t.Owner, &updatedStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.Plan = stringOrEmpty(planStr)
	t.State = domain.TaskState(stateStr)

	var parseErr error
	t.CreateDate, parseErr = time.Parse(dateLayout, createDateStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing create_date: %w", parseErr)
	}
	t.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &t, nil
}
