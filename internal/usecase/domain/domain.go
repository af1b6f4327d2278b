// Package domain contains application usecases orchestrating storage, access
// policy and credentials.
package domain

import (
	"context"
	"fmt"
	"time"

	"task-manager/internal/entities"
	"task-manager/internal/policy"
	"task-manager/internal/repository"

	"go.uber.org/zap"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenManager issues and verifies bearer tokens.
type TokenManager interface {
	Issue(user entities.User) (string, time.Time, error)
	Verify(token string) (entities.TokenClaims, error)
}

// TokenRevoker records logged out tokens.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Recorder receives domain counters.
type Recorder interface {
	Denied(operation string)
	HistoryWritten(field string, n int)
	HistoryPurged(n int64)
}

// Options carries the collaborators besides storage.
type Options struct {
	Hasher        PasswordHasher
	Tokens        TokenManager
	Revoker       TokenRevoker
	Metrics       Recorder
	RetentionDays int
}

// Usecase struct implements all usecase interfaces.
type Usecase struct {
	ctx     context.Context
	log     *zap.SugaredLogger
	repo    repository.Repository
	timeout time.Duration

	hasher        PasswordHasher
	tokens        TokenManager
	revoker       TokenRevoker
	metrics       Recorder
	retentionDays int
	now           func() time.Time
}

// New constructs a new usecase layer with its dependencies.
func New(
	log *zap.SugaredLogger,
	ctx context.Context,
	repo repository.Repository,
	timeout time.Duration,
	opts Options,
) *Usecase {
	u := &Usecase{
		ctx:           ctx,
		log:           log.Named("usecase"),
		repo:          repo,
		timeout:       timeout,
		hasher:        opts.Hasher,
		tokens:        opts.Tokens,
		revoker:       opts.Revoker,
		metrics:       opts.Metrics,
		retentionDays: opts.RetentionDays,
		now:           time.Now,
	}
	if u.metrics == nil {
		u.metrics = nopRecorder{}
	}
	if u.retentionDays <= 0 {
		u.retentionDays = 365
	}
	return u
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// deny logs and counts a policy refusal and returns the forbidden error.
func (u *Usecase) deny(actor entities.Actor, op policy.Operation, resourceID string) error {
	u.metrics.Denied(string(op))
	u.log.Warnw("access denied", "operation", op, "user_id", actor.ID, "role", actor.Role, "resource_id", resourceID)
	return policy.Deny(op)
}

// check turns a policy decision into nil or a counted denial.
func (u *Usecase) check(allowed bool, actor entities.Actor, op policy.Operation, resourceID string) error {
	if allowed {
		return nil
	}
	return u.deny(actor, op, resourceID)
}

var errEmptyUpdate = fmt.Errorf("%w: provide at least one field to update", entities.ErrInvalidArgument)

func errMissing(field string) error {
	return fmt.Errorf("%w: %s is required", entities.ErrInvalidArgument, field)
}

type nopRecorder struct{}

func (nopRecorder) Denied(string)              {}
func (nopRecorder) HistoryWritten(string, int) {}
func (nopRecorder) HistoryPurged(int64)        {}
