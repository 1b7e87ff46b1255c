// Package app carries the infrastructure shared by every bounded context.
package app

import (
	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/cache"
	"github.com/ghuser/emssupply/pkg/config"
	"github.com/ghuser/emssupply/pkg/database"
	"github.com/ghuser/emssupply/pkg/events"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/pkg/workflows"
)

// Application is handed to each context's services.New and routes. Built by
// Bootstrap; the API adds the token fields afterwards.
type Application struct {
	Config   *config.Config
	Db       *database.Database
	Logger   logger.Logger
	EventBus *events.EventBus
	Redis    *cache.RedisClient
	// TemporalClient is nil unless the worker runs with ALERT_SCHEDULER=temporal.
	TemporalClient *workflows.TemporalClient
	Tokens         *auth.TokenManager
	TokenStore     auth.TokenStore
}
