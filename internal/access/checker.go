package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/alexanderramin/stagehand/internal/repository"
)

// Checker answers authorization questions about users and permit groups.
// Every answer fails closed: an unknown user, a disabled account or an
// unset permit group all deny access rather than grant it.
type Checker struct {
	groups repository.GroupRepo
	users  repository.UserRepo
}

func NewChecker(groups repository.GroupRepo, users repository.UserRepo) *Checker {
	return &Checker{groups: groups, users: users}
}

// IsEnabled reports whether the account exists and is active. Unknown
// usernames are treated as disabled, not as errors.
func (c *Checker) IsEnabled(ctx context.Context, username string) (bool, error) {
	u, err := c.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Enabled, nil
}

// HasGroup reports whether the user belongs to the named group. An empty
// group name never matches: a permit slot left unset locks its stage.
func (c *Checker) HasGroup(ctx context.Context, username, group string) (bool, error) {
	if group == "" {
		return false, nil
	}
	return c.groups.HasMember(ctx, username, group)
}

// Authorize checks that the user is enabled and belongs to the group,
// returning ErrUnauthorized otherwise.
func (c *Checker) Authorize(ctx context.Context, username, group string) error {
	enabled, err := c.IsEnabled(ctx, username)
	if err != nil {
		return err
	}
	if !enabled {
		return fmt.Errorf("%w: user %s is not active", domain.ErrUnauthorized, username)
	}
	ok, err := c.HasGroup(ctx, username, group)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %s lacks the required group", domain.ErrUnauthorized, username)
	}
	return nil
}

// AuthorizeStage checks the user against the permit group the application
// assigns to the given workflow stage.
func (c *Checker) AuthorizeStage(ctx context.Context, app *domain.Application, username string, stage domain.Stage) error {
	return c.Authorize(ctx, username, app.Permits.ForStage(stage))
}

// Roles resolves, in a single membership query, which workflow stages of
// the application the user may act in. A disabled or unknown user may not
// resolve roles at all.
func (c *Checker) Roles(ctx context.Context, app *domain.Application, username string) (map[domain.Stage]bool, error) {
	enabled, err := c.IsEnabled(ctx, username)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, fmt.Errorf("%w: user %s is not active", domain.ErrUnauthorized, username)
	}

	memberships, err := c.groups.GroupsOf(ctx, username)
	if err != nil {
		return nil, err
	}
	member := make(map[string]bool, len(memberships))
	for _, g := range memberships {
		member[g] = true
	}

	roles := make(map[domain.Stage]bool, len(domain.Stages))
	for _, stage := range domain.Stages {
		permit := app.Permits.ForStage(stage)
		roles[stage] = permit != "" && member[permit]
	}
	return roles, nil
}
