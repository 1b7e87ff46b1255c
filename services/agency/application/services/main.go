package services

import (
	"github.com/ghuser/emssupply/pkg/app"
	"github.com/ghuser/emssupply/services/agency/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the agency context.
type Services struct {
	Agency *AgencyService
}

func New(a *app.Application) *Services {
	return &Services{Agency: NewAgencyService(postgres.NewAgencyRepository(a.Db), a.Logger)}
}
