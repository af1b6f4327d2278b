package usecase

import (
	"context"
	"time"

	"task-manager/internal/repository"
	"task-manager/internal/usecase/domain"

	"go.uber.org/zap"
)

// InterfaceUsecase aggregates all usecase interfaces.
type InterfaceUsecase interface {
	AuthUsecaseInterface
	UserUsecaseInterface
	TeamUsecaseInterface
	TaskUsecaseInterface
	HistoryUsecaseInterface
}

// Options carries the collaborators the usecase layer needs besides storage.
type Options = domain.Options

// Collaborator contracts accepted through Options.
type (
	PasswordHasher = domain.PasswordHasher
	TokenManager   = domain.TokenManager
	TokenRevoker   = domain.TokenRevoker
	Recorder       = domain.Recorder
)

// New constructs a new usecase layer with its dependencies.
func New(log *zap.SugaredLogger, ctx context.Context, repo repository.Repository, timeout time.Duration, opts Options) InterfaceUsecase {
	return domain.New(log, ctx, repo, timeout, opts)
}
