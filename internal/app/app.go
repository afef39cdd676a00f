// Package app assembles the stores and their infrastructure.
package app

import (
	"github.com/msomdec/proconnect/internal/config"
	"github.com/msomdec/proconnect/internal/event"
	"github.com/msomdec/proconnect/internal/repository/sqlite"
	"github.com/msomdec/proconnect/internal/service"
)

// App holds every long-lived dependency. Release it with the cleanup
// function returned by Initialize.
type App struct {
	Config   *config.Config
	DB       *sqlite.DB
	Bus      *event.Bus
	Metrics  *service.Metrics
	Storage  *service.Storage
	Sessions *service.SessionService
	Social   *service.SocialService
}
