package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/neko-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/neko-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/neko-engine/internal/adapters/notify"
	"github.com/comitanigiacomo/neko-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/neko-engine/internal/adapters/repository/sqlite"
	"github.com/comitanigiacomo/neko-engine/internal/config"
	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/core/services"
	"github.com/comitanigiacomo/neko-engine/internal/core/workers"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
)

// stores is the persistence set selected by database.driver.
type stores struct {
	progress     domain.ProgressRepository
	streaks      domain.StreakRepository
	achievements domain.AchievementRepository
	tradelines   domain.TradelineRepository
	layouts      domain.LayoutRepository
	profiles     domain.ProfileRepository

	pinger adapterHTTP.Pinger
	close  func() error
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, rdb *redis.Client, log *logger.Logger) (*stores, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := repository.NewPostgresDB(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := repository.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		var progress domain.ProgressRepository = repository.NewPostgresProgressRepository(db)
		if rdb != nil {
			progress = repository.NewCachedProgressRepository(progress, rdb, log)
		}
		return &stores{
			progress:     progress,
			streaks:      repository.NewPostgresStreakRepository(db),
			achievements: repository.NewPostgresAchievementRepository(db),
			tradelines:   repository.NewPostgresTradelineRepository(db),
			layouts:      repository.NewPostgresLayoutRepository(db),
			profiles:     repository.NewPostgresProfileRepository(db),
			pinger:       db,
			close:        db.Close,
		}, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &stores{
			progress:     s.Progress(),
			streaks:      s.Streaks(),
			achievements: s.Achievements(),
			tradelines:   s.Tradelines(),
			layouts:      s.Layouts(),
			profiles:     s.Profiles(),
			pinger:       s,
			close:        s.Close,
		}, nil

	case config.DriverMemory:
		m := repository.NewInMemoryStore()
		return &stores{
			progress:     m.Progress(),
			streaks:      m.Streaks(),
			achievements: m.Achievements(),
			tradelines:   m.Tradelines(),
			layouts:      m.Layouts(),
			profiles:     m.Profiles(),
			close:        func() error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// authBackend is the hosted backend as seen by the engine.
type authBackend interface {
	services.AuthProvider
	services.BillingProvider
}

type app struct {
	router   *gin.Engine
	worker   *workers.AchievementWorker
	sessions *services.SessionService
}

func newApp(cfg *config.Config, st *stores, rdb *redis.Client, backend authBackend, log *logger.Logger, startTime time.Time) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var notifier domain.Notifier = notify.NewLogNotifier(log)
	if rdb != nil {
		notifier = notify.Multi{notifier, notify.NewRedisPublisher(rdb, log)}
	}

	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	streakService := services.NewStreakService(st.streaks, notifier, log, loc)
	achievementService := services.NewAchievementService(
		domain.DefaultCatalog(),
		domain.NewEvaluator(domain.DefaultSpecials(domain.EarlyAdopterCutoff)),
		services.AchievementDeps{
			Earned:     st.achievements,
			Progress:   st.progress,
			Tradelines: st.tradelines,
			Streaks:    st.streaks,
			Profiles:   st.profiles,
			Notifier:   notifier,
		},
		log,
	)
	worker := workers.NewAchievementWorker(achievementService, log, 256)

	progressService := services.NewProgressService(st.progress, streakService, worker, notifier, log)
	tradelineService := services.NewTradelineService(st.tradelines, worker)
	layoutService := services.NewLayoutService(st.layouts, notifier, log)

	var persistent services.TokenStore = cache.NewMemoryTokenStore()
	if rdb != nil {
		persistent = cache.NewRedisTokenStore(rdb)
	}
	sessionService := services.NewSessionService(
		backend,
		persistent,
		cache.NewMemoryTokenStore(),
		st.profiles,
		streakService,
		services.SessionConfig{
			RememberMeTTL:           cfg.Session.RememberMeTTL,
			SubscriptionTTL:         cfg.Session.SubscriptionCacheTTL,
			SubscriptionMinInterval: cfg.Session.SubscriptionMinInterval,
			Location:                loc,
		},
		log,
	)
	billingService := services.NewBillingService(backend, sessionService.Subscriptions())

	serviceName := ""
	if cfg.Tracing.Enabled {
		serviceName = cfg.Tracing.ServiceName
	}

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		SessionHandler:     adapterHTTP.NewSessionHandler(sessionService),
		ProgressHandler:    adapterHTTP.NewProgressHandler(progressService),
		StreakHandler:      adapterHTTP.NewStreakHandler(streakService),
		AchievementHandler: adapterHTTP.NewAchievementHandler(achievementService),
		TradelineHandler:   adapterHTTP.NewTradelineHandler(tradelineService),
		LayoutHandler:      adapterHTTP.NewLayoutHandler(layoutService),
		BillingHandler:     adapterHTTP.NewBillingHandler(billingService),
		TokenService:       tokenService,
		Logger:             log,
		DB:                 st.pinger,
		Redis:              rdb,
		RateLimit: adapterHTTP.RateLimit{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		},
		CORSOrigins: cfg.App.CORSOrigins,
		ServiceName: serviceName,
		StartTime:   startTime,
	})

	return &app{router: router, worker: worker, sessions: sessionService}, nil
}
