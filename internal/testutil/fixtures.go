package testutil

import (
	"time"

	"github.com/alexanderramin/stagehand/internal/domain"
)

// FixedNow is a stable timestamp for deterministic note-log assertions.
var FixedNow = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

// Application options
type AppOption func(*domain.Application)

func WithRNumber(n int) AppOption {
	return func(a *domain.Application) {
		a.RNumber = n
	}
}

func WithPermits(p domain.PermitGroups) AppOption {
	return func(a *domain.Application) {
		a.Permits = p
	}
}

// NewTestApplication builds an application with sane defaults.
func NewTestApplication(acronym string, opts ...AppOption) *domain.Application {
	now := time.Now().UTC()
	start := now.AddDate(0, -1, 0)
	end := now.AddDate(0, 6, 0)
	a := &domain.Application{
		Acronym:     acronym,
		Description: "test application",
		StartDate:   &start,
		EndDate:     &end,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Task options
type TaskOption func(*domain.Task)

func WithState(s domain.TaskState) TaskOption {
	return func(t *domain.Task) {
		t.State = s
	}
}

func WithPlan(plan string) TaskOption {
	return func(t *domain.Task) {
		t.Plan = plan
	}
}

// NewTestTask builds a task in the open state owned by its creator.
func NewTestTask(id, acronym, creator string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:         id,
		AppAcronym: acronym,
		Name:       "test task",
		Notes:      domain.PrependNote("", now, creator, "Created task."),
		Creator:    creator,
		CreateDate: now,
		State:      domain.TaskOpen,
		Owner:      creator,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTestUser builds an enabled user.
func NewTestUser(username, email string) *domain.User {
	return &domain.User{
		Username:  username,
		Email:     email,
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}
}
