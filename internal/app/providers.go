package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/wire"
	"github.com/msomdec/proconnect/internal/config"
	"github.com/msomdec/proconnect/internal/domain"
	"github.com/msomdec/proconnect/internal/event"
	"github.com/msomdec/proconnect/internal/repository/sqlite"
	"github.com/msomdec/proconnect/internal/service"
)

// anonymousRecipient addresses demo notifications when nobody is signed in.
const anonymousRecipient = "current-user"

var InfrastructureSet = wire.NewSet(
	ProvideDatabase,
	ProvideKeyValueStore,
	ProvideMetrics,
	ProvideStorage,
	event.NewBus,
)

var ServiceSet = wire.NewSet(
	ProvideSessionOptions,
	ProvideSessionService,
	ProvideSeed,
	ProvideSocialOptions,
	ProvideSocialService,
)

var SuperSet = wire.NewSet(
	InfrastructureSet,
	ServiceSet,
	wire.Struct(new(App), "Config", "DB", "Bus", "Metrics", "Storage", "Sessions", "Social"),
)

// ProvideDatabase opens and migrates the SQLite file named by cfg.
func ProvideDatabase(ctx context.Context, cfg *config.Config) (*sqlite.DB, func(), error) {
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("database ready", "path", cfg.DatabasePath)
	return db, func() {
		if err := db.Close(); err != nil {
			slog.Error("close database", "error", err)
		}
	}, nil
}

func ProvideKeyValueStore(db *sqlite.DB) domain.KeyValueStore {
	return db.KV()
}

func ProvideMetrics(cfg *config.Config) *service.Metrics {
	return service.NewMetrics(cfg.MetricsNamespace)
}

func ProvideStorage(kv domain.KeyValueStore, cfg *config.Config, metrics *service.Metrics) *service.Storage {
	return service.NewStorage(kv, cfg.StorageFailureThreshold, metrics)
}

func ProvideSessionOptions(cfg *config.Config) service.SessionOptions {
	return service.SessionOptions{
		Secret:     cfg.SessionSecret,
		TTL:        cfg.SessionTTL,
		BcryptCost: cfg.BcryptCost,
		LoginRate:  cfg.LoginRate,
		LoginBurst: cfg.LoginBurst,
	}
}

func ProvideSessionService(ctx context.Context, storage *service.Storage, opts service.SessionOptions, bus *event.Bus, metrics *service.Metrics) (*service.SessionService, func()) {
	s := service.NewSessionService(ctx, storage, opts, bus, metrics)
	return s, s.Close
}

// ProvideSeed returns the demo content used for collections that have never
// been persisted, addressed to the restored user if there is one.
func ProvideSeed(sessions *service.SessionService) service.Seed {
	return service.DemoSeed(recipient(sessions), time.Now())
}

func ProvideSocialOptions() service.SocialOptions {
	return service.SocialOptions{Now: time.Now}
}

// ProvideSocialService builds the social store. With demo seeding enabled
// it re-seeds on every identity change.
func ProvideSocialService(ctx context.Context, cfg *config.Config, storage *service.Storage, sessions *service.SessionService, seed service.Seed, bus *event.Bus, metrics *service.Metrics, opts service.SocialOptions) *service.SocialService {
	social := service.NewSocialService(ctx, storage, sessions, seed, bus, metrics, opts)
	if cfg.DemoSeed {
		bus.Subscribe(event.SessionChanged, func(event.Event) {
			social.Reseed(context.WithoutCancel(ctx), service.DemoSeed(recipient(sessions), opts.Now()))
		})
	}
	return social
}

func recipient(sessions *service.SessionService) string {
	if u, err := sessions.Current(); err == nil {
		return u.ID
	}
	return anonymousRecipient
}
