package domain

import (
	"context"
	"fmt"

	"task-manager/internal/entities"
	"task-manager/internal/policy"
)

// ListUsers returns a page of accounts, optionally filtered by role.
func (u *Usecase) ListUsers(ctx context.Context, actor entities.Actor, filter entities.UserFilter) (entities.UserList, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageUsers(actor), actor, policy.OpManageUsers, ""); err != nil {
		return entities.UserList{}, err
	}
	if filter.Role != nil && !filter.Role.Valid() {
		return entities.UserList{}, fmt.Errorf("%w: role must be admin or member", entities.ErrInvalidArgument)
	}
	filter.Page = filter.Page.WithDefault(entities.DefaultPageLimit)
	return u.repo.ListUsers(ctx, filter)
}

// UserDetails returns an account with its teams and assigned tasks.
func (u *Usecase) UserDetails(ctx context.Context, actor entities.Actor, userID string) (*entities.UserDetails, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageUsers(actor), actor, policy.OpManageUsers, userID); err != nil {
		return nil, err
	}
	return u.userDetails(ctx, userID)
}

// CreateUser provisions an account of any role.
func (u *Usecase) CreateUser(ctx context.Context, actor entities.Actor, user entities.NewUser) (*entities.User, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageUsers(actor), actor, policy.OpManageUsers, ""); err != nil {
		return nil, err
	}
	user.Normalize()
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := policy.CanGrantRole(&actor, user.Role); err != nil {
		return nil, err
	}

	created, err := u.createUser(ctx, user)
	if err != nil {
		return nil, err
	}
	u.log.Infow("user created by admin", "user_id", created.ID, "admin_id", actor.ID)
	return created, nil
}

// UpdateUser edits any field of an account, role included.
func (u *Usecase) UpdateUser(ctx context.Context, actor entities.Actor, userID string, patch entities.UserPatch) (*entities.User, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageUsers(actor), actor, policy.OpManageUsers, userID); err != nil {
		return nil, err
	}
	if patch.Role != nil {
		if err := policy.CanGrantRole(&actor, *patch.Role); err != nil {
			return nil, err
		}
	}
	return u.updateUser(ctx, userID, patch)
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (u *Usecase) DeleteUser(ctx context.Context, actor entities.Actor, userID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageUsers(actor), actor, policy.OpManageUsers, userID); err != nil {
		return err
	}
	if err := policy.CanDeleteUser(actor, userID); err != nil {
		return err
	}
	if err := u.repo.DeleteUser(ctx, userID); err != nil {
		return err
	}

	u.log.Infow("user deleted", "user_id", userID, "admin_id", actor.ID)
	return nil
}

// UserTasks lists tasks assigned to a user.
func (u *Usecase) UserTasks(ctx context.Context, actor entities.Actor, userID string, filter entities.TaskFilter) (entities.TaskList, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageUsers(actor), actor, policy.OpManageUsers, userID); err != nil {
		return entities.TaskList{}, err
	}
	if _, err := u.repo.GetUser(ctx, userID); err != nil {
		return entities.TaskList{}, err
	}
	filter.AssignedTo = &userID
	filter.Page = filter.Page.WithDefault(entities.DefaultPageLimit)
	return u.repo.ListTasks(ctx, filter)
}

// UserTeams lists the teams a user belongs to.
func (u *Usecase) UserTeams(ctx context.Context, actor entities.Actor, userID string) ([]entities.Team, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageUsers(actor), actor, policy.OpManageUsers, userID); err != nil {
		return nil, err
	}
	if _, err := u.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return u.repo.ListUserTeams(ctx, userID)
}

// UserHistory lists ledger entries written by a user.
func (u *Usecase) UserHistory(ctx context.Context, actor entities.Actor, userID string, page entities.Page) ([]entities.HistoryEntry, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageUsers(actor), actor, policy.OpManageUsers, userID); err != nil {
		return nil, err
	}
	return u.repo.ListHistory(ctx, entities.HistoryFilter{
		ChangedBy: &userID,
		Page:      page.WithDefault(entities.DefaultHistoryLimit),
	})
}

// UserActivity aggregates a user's changes per day and field.
func (u *Usecase) UserActivity(ctx context.Context, actor entities.Actor, userID string, filter entities.ActivityFilter) ([]entities.ActivityStat, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageUsers(actor), actor, policy.OpManageUsers, userID); err != nil {
		return nil, err
	}
	if err := validateActivity(filter); err != nil {
		return nil, err
	}
	return u.repo.ActivityStatsByUser(ctx, userID, filter)
}

func validateActivity(filter entities.ActivityFilter) error {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return fmt.Errorf("%w: from must not be after to", entities.ErrInvalidArgument)
	}
	return nil
}
