package domain

import (
	"context"
	"errors"
	"fmt"

	"task-manager/internal/entities"
	"task-manager/internal/policy"
)

const recentTasksLimit = 5

// Register creates an account and signs the caller in. Only an authenticated
// admin may register another admin.
func (u *Usecase) Register(ctx context.Context, actor *entities.Actor, user entities.NewUser) (*entities.Session, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	user.Normalize()
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := policy.CanGrantRole(actor, user.Role); err != nil {
		u.metrics.Denied(string(policy.OpGrantRole))
		u.log.Warnw("admin registration refused", "email", user.Email)
		return nil, err
	}

	created, err := u.createUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return u.issueSession(*created)
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords fail the same way.
func (u *Usecase) Login(ctx context.Context, email, password string) (*entities.Session, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	email = entities.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", entities.ErrInvalidArgument)
	}

	user, err := u.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, entities.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := u.hasher.Compare(user.PasswordHash, password); err != nil {
		u.log.Infow("login failed", "user_id", user.ID)
		return nil, err
	}

	u.log.Infow("user logged in", "user_id", user.ID, "role", user.Role)
	return u.issueSession(*user)
}

// Authenticate verifies a bearer token and resolves the current account. The
// role comes from storage, so role changes apply to tokens already issued.
func (u *Usecase) Authenticate(ctx context.Context, token string) (entities.TokenClaims, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	claims, err := u.tokens.Verify(token)
	if err != nil {
		return entities.TokenClaims{}, err
	}

	revoked, err := u.revoker.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return entities.TokenClaims{}, err
	}
	if revoked {
		return entities.TokenClaims{}, fmt.Errorf("%w: token revoked", entities.ErrInvalidToken)
	}

	user, err := u.repo.GetUser(ctx, claims.Actor.ID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return entities.TokenClaims{}, fmt.Errorf("%w: account no longer exists", entities.ErrInvalidToken)
		}
		return entities.TokenClaims{}, err
	}

	claims.Actor = user.Actor()
	return claims, nil
}

// Logout revokes the token until it would expire.
func (u *Usecase) Logout(ctx context.Context, claims entities.TokenClaims) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.revoker.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return err
	}
	u.log.Infow("user logged out", "user_id", claims.Actor.ID)
	return nil
}

// Profile returns the caller's account with teams and assigned tasks.
func (u *Usecase) Profile(ctx context.Context, actor entities.Actor) (*entities.UserDetails, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	return u.userDetails(ctx, actor.ID)
}

// UpdateProfile edits the caller's name, email or password. The role cannot
// be changed here.
func (u *Usecase) UpdateProfile(ctx context.Context, actor entities.Actor, patch entities.UserPatch) (*entities.User, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	patch.Role = nil
	return u.updateUser(ctx, actor.ID, patch)
}

// EnsureAdmin creates the bootstrap admin when no account exists yet.
func (u *Usecase) EnsureAdmin(ctx context.Context, admin entities.NewUser) (bool, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	n, err := u.repo.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	admin.Role = entities.RoleAdmin
	admin.Normalize()
	if err := admin.Validate(); err != nil {
		return false, err
	}
	created, err := u.createUser(ctx, admin)
	if err != nil {
		return false, err
	}

	u.log.Infow("bootstrap admin created", "user_id", created.ID, "email", created.Email)
	return true, nil
}

func (u *Usecase) createUser(ctx context.Context, user entities.NewUser) (*entities.User, error) {
	hash, err := u.hasher.Hash(user.Password)
	if err != nil {
		return nil, err
	}
	return u.repo.CreateUser(ctx, entities.User{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: hash,
		Role:         user.Role,
	})
}

func (u *Usecase) updateUser(ctx context.Context, userID string, patch entities.UserPatch) (*entities.User, error) {
	patch.PasswordHash = nil
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, errEmptyUpdate
	}

	if patch.Password != nil {
		hash, err := u.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
		patch.Password = nil
	}
	return u.repo.UpdateUser(ctx, userID, patch)
}

func (u *Usecase) userDetails(ctx context.Context, userID string) (*entities.UserDetails, error) {
	user, err := u.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	teams, err := u.repo.ListUserTeams(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := u.repo.ListTasks(ctx, entities.TaskFilter{
		AssignedTo: &userID,
		Page:       entities.Page{Limit: recentTasksLimit},
	})
	if err != nil {
		return nil, err
	}

	return &entities.UserDetails{
		User:        *user,
		Teams:       teams,
		TasksCount:  tasks.Total,
		RecentTasks: tasks.Tasks,
	}, nil
}

func (u *Usecase) issueSession(user entities.User) (*entities.Session, error) {
	token, expiresAt, err := u.tokens.Issue(user)
	if err != nil {
		u.log.Errorw("failed to issue token", "error", err, "user_id", user.ID)
		return nil, err
	}
	return &entities.Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
