package services

import (
	"github.com/ghuser/emssupply/pkg/app"
	"github.com/ghuser/emssupply/pkg/cache"
	"github.com/ghuser/emssupply/services/ledger/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the ledger context.
type Services struct {
	Ledger *LedgerService
}

// New wires the ledger service with the Postgres repository and, when Redis
// is configured, the inventory summary cache.
func New(a *app.Application) *Services {
	repo := postgres.NewLedgerRepository(a.Db, a.EventBus)

	var summary SummaryCache
	if a.Redis != nil {
		summary = cache.NewInventoryCache(a.Redis)
	}
	return &Services{
		Ledger: NewLedgerService(repo, repo, summary, a.Logger),
	}
}
