package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"docbase-backend/internal/documents"
	"docbase-backend/internal/qa"
	"docbase-backend/internal/shared/cache"
	"docbase-backend/internal/shared/config"
	"docbase-backend/internal/shared/server"
	"docbase-backend/internal/shared/storage/db"
	"docbase-backend/internal/shared/storage/object"
	"docbase-backend/internal/shared/storage/object/local"
	"docbase-backend/internal/shared/storage/object/s3"
	"docbase-backend/internal/shared/telemetry"
	"docbase-backend/internal/tags"
	"docbase-backend/internal/tasks"
	"docbase-backend/internal/users"
)

// App holds the wired application.
type App struct {
	Cfg    config.Config
	Router *gin.Engine
	DB     *sql.DB
	Pool   *tasks.Pool
	Cache  *cache.Cache[documents.Document]

	Documents *documents.Service
	Users     *users.Service
	QA        *qa.Service
}

// Build wires repositories, services and handlers from configuration. Without
// a DATABASE_URL outside production everything runs on in-memory repositories,
// which is the dev loop.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	var (
		conn     *sql.DB
		docRepo  documents.Repo
		userRepo users.Repo
		tagRepo  tags.Repo
	)

	if cfg.DatabaseURL != "" {
		var err error
		conn, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		docRepo = &documents.PGRepo{DB: conn}
		userRepo = &users.PGRepo{DB: conn}
		tagRepo = &tags.PGRepo{DB: conn}
	} else {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		telemetry.Warn("bootstrap.memory_repos", map[string]any{"env": cfg.Env})
		docRepo = documents.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		tagRepo = tags.NewMemoryRepo()
	}

	store, err := buildObjectStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pool, err := tasks.NewPool(cfg.ExtractWorkers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	docCache, err := cache.New[documents.Document](cfg.CacheMaxEntries)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	userSvc := &users.Service{Repo: userRepo}
	docSvc := &documents.Service{
		Repo:     docRepo,
		Store:    store,
		Users:    userRepo,
		Tags:     tags.NewResolver(tagRepo),
		Cache:    docCache,
		Dispatch: pool,
	}
	qaSvc := &qa.Service{Docs: docSvc, Users: userRepo}

	router := server.NewRouter(server.Options{
		Env:             cfg.Env,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		RateRules:       server.DefaultRateRules(),
		Registrars: []server.RouteRegistrar{
			users.NewHandler(userSvc),
			documents.NewHandler(docSvc),
			qa.NewHandler(qaSvc),
		},
	})

	return &App{
		Cfg:       cfg,
		Router:    router,
		DB:        conn,
		Pool:      pool,
		Cache:     docCache,
		Documents: docSvc,
		Users:     userSvc,
		QA:        qaSvc,
	}, nil
}

// Addr returns the listen address for the HTTP server.
func (a *App) Addr() string {
	return ":" + a.Cfg.Port
}

// Close releases pooled resources. Safe to call once at shutdown.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Release()
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func buildObjectStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, fmt.Errorf("create s3 store: %w", err)
		}
		return store, nil
	default:
		return local.New(cfg.LocalStoreDir), nil
	}
}
