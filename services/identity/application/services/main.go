package services

import (
	"github.com/ghuser/emssupply/pkg/app"
	"github.com/ghuser/emssupply/services/identity/domain/repositories"
	"github.com/ghuser/emssupply/services/identity/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the identity context.
type Services struct {
	Auth  *AuthService
	Users *UserService
	// Repo doubles as the active-user check behind bearer authentication.
	Repo repositories.UserRepository
}

// New wires the identity services with the Postgres user repository.
func New(a *app.Application) *Services {
	return NewWithRepository(a, postgres.NewUserRepository(a.Db))
}

// NewWithRepository wires the identity services around repo.
func NewWithRepository(a *app.Application, repo repositories.UserRepository) *Services {
	return &Services{
		Auth:  NewAuthService(repo, a.Tokens, a.TokenStore, a.Config.PasswordResetTTL, a.Logger),
		Users: NewUserService(repo, a.Logger),
		Repo:  repo,
	}
}
