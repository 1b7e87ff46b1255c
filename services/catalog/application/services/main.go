package services

import (
	"github.com/ghuser/emssupply/pkg/app"
	"github.com/ghuser/emssupply/services/catalog/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the catalog context.
type Services struct {
	Catalog *CatalogService
}

func New(a *app.Application) *Services {
	return &Services{Catalog: NewCatalogService(postgres.NewCatalogRepository(a.Db), a.Logger)}
}
