package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/stagehand/internal/domain"
)

// TransitionUpdate is a conditional task write: it applies only when the row
// still holds FromState, so two racing transitions can never both commit.
// The affected-row count is the authority, not the earlier read.
type TransitionUpdate struct {
	ID        string
	FromState domain.TaskState
	ToState   domain.TaskState
	Owner     string
	Notes     string
	SetPlan   bool   // when false, the plan column is left untouched
	Plan      string // "" clears the plan
	UpdatedAt time.Time
}

type ApplicationRepo interface {
	Create(ctx context.Context, a *domain.Application) error
	GetByAcronym(ctx context.Context, acronym string) (*domain.Application, error)
	List(ctx context.Context) ([]*domain.Application, error)
	Update(ctx context.Context, a *domain.Application) error
	// NextTaskNumber atomically increments and returns the application's
	// running number. Only ever called inside the task-create transaction.
	NextTaskNumber(ctx context.Context, acronym string) (int, error)
}

type PlanRepo interface {
	Create(ctx context.Context, p *domain.Plan) error
	Get(ctx context.Context, acronym, name string) (*domain.Plan, error)
	ListByApp(ctx context.Context, acronym string) ([]*domain.Plan, error)
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByApp(ctx context.Context, acronym string) ([]*domain.Task, error)
	ApplyTransition(ctx context.Context, u TransitionUpdate) error
}

type GroupRepo interface {
	Create(ctx context.Context, name string, createdAt time.Time) error
	Exists(ctx context.Context, name string) (bool, error)
	// AllExist validates the whole set before any write touches it.
	AllExist(ctx context.Context, names []string) (bool, error)
	List(ctx context.Context) ([]string, error)
	AddMember(ctx context.Context, username, group string) error
	RemoveMembers(ctx context.Context, username string) error
	HasMember(ctx context.Context, username, group string) (bool, error)
	GroupsOf(ctx context.Context, username string) ([]string, error)
	MembersOf(ctx context.Context, group string) ([]string, error)
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	SetEnabled(ctx context.Context, username string, enabled bool) error
	SetEmail(ctx context.Context, username, email string) error
	// EmailsForGroup returns the non-empty emails of enabled group members,
	// the recipient set for done-stage notifications.
	EmailsForGroup(ctx context.Context, group string) ([]string, error)
}
