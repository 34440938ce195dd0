package service

import (
	"context"

	"github.com/alexanderramin/stagehand/internal/domain"
)

type ApplicationService interface {
	Create(ctx context.Context, actor string, app *domain.Application) error
	Get(ctx context.Context, acronym string) (*domain.Application, error)
	List(ctx context.Context) ([]*domain.Application, error)
	Update(ctx context.Context, actor string, app *domain.Application) error
}

type PlanService interface {
	Create(ctx context.Context, actor string, plan *domain.Plan) error
	List(ctx context.Context, acronym string) ([]*domain.Plan, error)
}

// TaskDraft carries the caller-supplied fields of a new task. The id,
// state, owner and note log are minted by the service.
type TaskDraft struct {
	AppAcronym  string
	Name        string
	Description string
	Plan        string
}

type TaskService interface {
	Create(ctx context.Context, actor string, draft TaskDraft) (*domain.Task, error)
	Release(ctx context.Context, actor, taskID string) error
	ChangePlan(ctx context.Context, actor, taskID, plan string) error
	Acknowledge(ctx context.Context, actor, taskID string) error
	Complete(ctx context.Context, actor, taskID string) error
	Halt(ctx context.Context, actor, taskID string) error
	Approve(ctx context.Context, actor, taskID string) error
	Reject(ctx context.Context, actor, taskID, plan string) error
	AddNote(ctx context.Context, actor, taskID, text string) error
	Get(ctx context.Context, taskID string) (*domain.Task, error)
	ListByApp(ctx context.Context, acronym string) ([]*domain.Task, error)
	Roles(ctx context.Context, acronym, username string) (map[domain.Stage]bool, error)
}

// DirectoryService administers groups and accounts. Every method is
// gated on the actor's membership in the configured admin group. The
// configured super admin is protected: it can never be disabled and it
// always keeps the admin group.
type DirectoryService interface {
	CreateGroup(ctx context.Context, actor, name string) error
	ListGroups(ctx context.Context, actor string) ([]string, error)
	MembersOf(ctx context.Context, actor, group string) ([]string, error)
	CreateUser(ctx context.Context, actor string, user *domain.User, groups []string) error
	SetUserEnabled(ctx context.Context, actor, username string, enabled bool) error
	SetUserEmail(ctx context.Context, actor, username, email string) error
	SetUserGroups(ctx context.Context, actor, username string, groups []string) error
	GetUser(ctx context.Context, actor, username string) (*domain.User, error)
	ListUsers(ctx context.Context, actor string) ([]*domain.User, error)
	GroupsOf(ctx context.Context, actor, username string) ([]string, error)
}
