// Package entities contains core business entities and errors.
package entities

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error below wraps exactly one of them so callers
// can classify with errors.Is.
var (
	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument signals failed input validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict signals a uniqueness or state conflict.
	ErrConflict = errors.New("conflict")
	// ErrForbidden signals a failed policy check.
	ErrForbidden = errors.New("access denied")
	// ErrUnauthorized signals missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrTeamNotFound signals missing team.
	ErrTeamNotFound = fmt.Errorf("team %w", ErrNotFound)
	// ErrTaskNotFound signals missing task.
	ErrTaskNotFound = fmt.Errorf("task %w", ErrNotFound)
	// ErrNotMember signals that the user is not a member of the team.
	ErrNotMember = fmt.Errorf("team member %w", ErrNotFound)

	// ErrAssigneeNotMember is returned when a non-admin assigns a task outside the team.
	ErrAssigneeNotMember = fmt.Errorf("%w: assigned user must be a team member", ErrInvalidArgument)
	// ErrSelfDeletion is returned when a user tries to delete their own account.
	ErrSelfDeletion = fmt.Errorf("%w: cannot delete your own account", ErrInvalidArgument)

	// ErrAlreadyMember signals a duplicate membership row.
	ErrAlreadyMember = fmt.Errorf("%w: user is already a team member", ErrConflict)
	// ErrEmailTaken signals a duplicate user email.
	ErrEmailTaken = fmt.Errorf("%w: email already in use", ErrConflict)
	// ErrTeamHasActiveTasks blocks deletion of a team with unfinished tasks.
	ErrTeamHasActiveTasks = fmt.Errorf("%w: team has active tasks", ErrConflict)
	// ErrMemberHasActiveTasks blocks removal of a member holding unfinished tasks.
	ErrMemberHasActiveTasks = fmt.Errorf("%w: member has active tasks in this team", ErrConflict)
	// ErrUserHasRecords blocks deletion of a user still referenced as task or team creator.
	ErrUserHasRecords = fmt.Errorf("%w: user still owns tasks or teams", ErrConflict)

	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	// ErrInvalidToken is returned for malformed, expired or revoked tokens.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrUnauthorized)
)
