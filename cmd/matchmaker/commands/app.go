package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pet-matchmaker/internal/api"
	"pet-matchmaker/internal/catalog"
	"pet-matchmaker/internal/common/config"
	apperrors "pet-matchmaker/internal/common/errors"
	"pet-matchmaker/internal/common/database"
	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/common/metrics"
	"pet-matchmaker/internal/llm"
	"pet-matchmaker/internal/matchmaking/conversation"
	"pet-matchmaker/internal/matchmaking/intent"
	"pet-matchmaker/internal/matchmaking/matcher"
	"pet-matchmaker/internal/matchmaking/preferences"
	"pet-matchmaker/internal/matchmaking/session"
	"pet-matchmaker/internal/store"
)

// app holds the wired service and the connections it owns.
type app struct {
	cfg     *config.Config
	pg      *database.PostgresClient
	redis   *database.RedisClient
	es      *database.ElasticsearchClient
	engine  *conversation.Engine
	matcher *matcher.Handler
	store   *store.Postgres
}

const (
	connectAttempts = 10
	connectDelay    = 2 * time.Second
)

func connectPostgres(ctx context.Context, cfg config.PostgresConfig, zapLog *zap.Logger) (*database.PostgresClient, error) {
	var pg *database.PostgresClient
	err := retryWithBackoff(ctx, func() error {
		c, err := database.NewPostgres(cfg)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := c.Ping(ctx); err != nil {
			c.Close()
			return apperrors.NewDatabaseConnectionFailedError(err)
		}
		pg = c
		return nil
	}, connectAttempts, connectDelay, zapLog, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	zapLog.Info("PostgreSQL connected successfully")
	return pg, nil
}

func connectElasticsearch(ctx context.Context, cfg config.ElasticsearchConfig, zapLog *zap.Logger) (*database.ElasticsearchClient, error) {
	var es *database.ElasticsearchClient
	err := retryWithBackoff(ctx, func() error {
		c, err := database.NewElasticsearch(cfg)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := c.Ping(ctx); err != nil {
			c.Close()
			return apperrors.NewDatabaseConnectionFailedError(err)
		}
		es = c
		return nil
	}, connectAttempts, connectDelay, zapLog, "Elasticsearch connection")
	if err != nil {
		return nil, err
	}
	zapLog.Info("Elasticsearch connected successfully")
	return es, nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, zapLog *zap.Logger) (*database.RedisClient, error) {
	rc := database.NewRedis(cfg)
	err := retryWithBackoff(ctx, func() error {
		if err := rc.Ping(ctx); err != nil {
			return apperrors.NewDatabaseConnectionFailedError(err)
		}
		return nil
	}, connectAttempts, connectDelay, zapLog, "Redis connection")
	if err != nil {
		rc.Close()
		return nil, err
	}
	zapLog.Info("Redis connected successfully")
	return rc, nil
}

func buildApp(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (*app, error) {
	log := logger.NewZapAdapter(zapLog)
	a := &app{cfg: cfg}

	var err error
	if a.pg, err = connectPostgres(ctx, cfg.Database.Postgres, zapLog); err != nil {
		return nil, err
	}

	if cfg.Database.Redis.Address != "" {
		if a.redis, err = connectRedis(ctx, cfg.Database.Redis, zapLog); err != nil {
			a.Close()
			return nil, err
		}
	}

	if cfg.Catalog.Backend == config.CatalogBackendElasticsearch {
		if a.es, err = connectElasticsearch(ctx, cfg.Database.Elasticsearch, zapLog); err != nil {
			a.Close()
			return nil, err
		}
	}

	script := preferences.DefaultScript()
	if cfg.Interview.ScriptPath != "" {
		if script, err = preferences.LoadScript(cfg.Interview.ScriptPath); err != nil {
			a.Close()
			return nil, fmt.Errorf("load interview script: %w", err)
		}
	}

	provider, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		a.Close()
		return nil, err
	}

	var cache *redis.Client
	if a.redis != nil {
		cache = a.redis.Client
	}
	a.matcher = matcher.NewHandler(matcher.LoadConfig(cfg.LLM, cfg.Matching), provider, cache, log)

	pets, err := catalog.New(cfg.Catalog, a.pg, a.es, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.store = store.NewPostgres(a.pg.DB, log)

	var sessions interface {
		session.Store
		session.Counter
	}
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		if a.redis == nil {
			a.Close()
			return nil, fmt.Errorf("redis session backend needs database.redis.address")
		}
		sessions = session.NewRedisStore(a.redis.Client, cfg.Session.KeyPrefix, config.GetDuration(cfg.Session.TTL))
	default:
		sessions = session.NewMemoryStore(config.GetDuration(cfg.Session.TTL))
	}
	registerInterviewGauge(sessions, zapLog)

	a.engine = conversation.NewEngine(&conversation.Config{MaxDisplay: cfg.Matching.MaxDisplay}, conversation.Dependencies{
		Script:      script,
		MatchIntent: intent.NewMatchIntent(cfg.Interview.MatchTriggers...),
		StopIntent:  intent.NewStopIntent(cfg.Interview.StopTriggers...),
		Sessions:    sessions,
		Matcher:     a.matcher,
		Catalog:     pets,
		Repository:  a.store,
	}, log)

	zapLog.Info("matchmaker wired",
		zap.String("provider", provider.Name()),
		zap.String("catalog", cfg.Catalog.Backend),
		zap.String("sessions", cfg.Session.Backend),
		zap.Int("questions", script.Len()),
	)
	return a, nil
}

var interviewGauge sync.Once

// registerInterviewGauge exposes the store's live session count. The gauge is
// process-wide, so only the first store built is reported.
func registerInterviewGauge(c session.Counter, zapLog *zap.Logger) {
	interviewGauge.Do(func() {
		metrics.RegisterActiveInterviews(func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			n, err := c.Count(ctx)
			if err != nil {
				zapLog.Warn("failed to count active interviews", zap.Error(err))
				return 0
			}
			return float64(n)
		})
	})
}

// readinessChecks lists the connections /ready pings.
func (a *app) readinessChecks() map[string]api.Pinger {
	checks := map[string]api.Pinger{"postgres": a.pg}
	if a.redis != nil {
		checks["redis"] = a.redis
	}
	if a.es != nil {
		checks["elasticsearch"] = a.es
	}
	return checks
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.es != nil {
		a.es.Close()
	}
	if a.pg != nil {
		a.pg.Close()
	}
}
