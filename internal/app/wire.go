//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"github.com/msomdec/proconnect/internal/config"
)

// Initialize creates a fully wired App.
func Initialize(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
