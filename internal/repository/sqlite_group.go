package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/stagehand/internal/db"
	"github.com/alexanderramin/stagehand/internal/domain"
)

// SQLiteGroupRepo implements GroupRepo: the group catalog plus the
// user↔group membership relation.
type SQLiteGroupRepo struct {
	db db.DBTX
}

// NewSQLiteGroupRepo creates a new SQLiteGroupRepo.
func NewSQLiteGroupRepo(conn db.DBTX) *SQLiteGroupRepo {
	return &SQLiteGroupRepo{db: conn}
}

func (r *SQLiteGroupRepo) Create(ctx context.Context, name string, createdAt time.Time) error {
	query := `INSERT INTO groups (name, created_at) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, query, name, createdAt.UTC().Format(time.RFC3339))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: group %s already exists", domain.ErrConflict, name)
	}
	if err != nil {
		return fmt.Errorf("inserting group: %w", err)
	}
	return nil
}

func (r *SQLiteGroupRepo) Exists(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking group %s: %w", name, err)
	}
	return n == 1, nil
}

// AllExist validates a set of group names in one query. An empty set is
// trivially valid.
func (r *SQLiteGroupRepo) AllExist(ctx context.Context, names []string) (bool, error) {
	distinct := make(map[string]bool, len(names))
	args := make([]any, 0, len(names))
	for _, name := range names {
		if !distinct[name] {
			distinct[name] = true
			args = append(args, name)
		}
	}
	if len(args) == 0 {
		return true, nil
	}

	query := `SELECT COUNT(*) FROM groups WHERE name IN (` + placeholders(len(args)) + `)`
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("checking groups: %w", err)
	}
	return n == len(args), nil
}

func (r *SQLiteGroupRepo) List(ctx context.Context) ([]string, error) {
	return r.scanNames(ctx, `SELECT name FROM groups ORDER BY name`)
}

func (r *SQLiteGroupRepo) AddMember(ctx context.Context, username, group string) error {
	query := `INSERT INTO memberships (username, group_name) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, query, username, group)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s is already in group %s", domain.ErrConflict, username, group)
	}
	if err != nil {
		return fmt.Errorf("adding %s to group %s: %w", username, group, err)
	}
	return nil
}

func (r *SQLiteGroupRepo) RemoveMembers(ctx context.Context, username string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM memberships WHERE username = ?`, username); err != nil {
		return fmt.Errorf("clearing memberships of %s: %w", username, err)
	}
	return nil
}

func (r *SQLiteGroupRepo) HasMember(ctx context.Context, username, group string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE username = ? AND group_name = ?`,
		username, group,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteGroupRepo) GroupsOf(ctx context.Context, username string) ([]string, error) {
	return r.scanNames(ctx, `SELECT group_name FROM memberships WHERE username = ? ORDER BY group_name`, username)
}

func (r *SQLiteGroupRepo) MembersOf(ctx context.Context, group string) ([]string, error) {
	return r.scanNames(ctx, `SELECT username FROM memberships WHERE group_name = ? ORDER BY username`, group)
}

func (r *SQLiteGroupRepo) scanNames(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating names: %w", err)
	}
	return names, nil
}
