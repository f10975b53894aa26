package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/campusmedia/gallery/internal/catalog"
	"github.com/campusmedia/gallery/internal/config"
	"github.com/campusmedia/gallery/internal/db"
	"github.com/campusmedia/gallery/internal/kv"
	"github.com/campusmedia/gallery/internal/markdown"
	"github.com/campusmedia/gallery/internal/model"
	"github.com/campusmedia/gallery/internal/query"
	"github.com/campusmedia/gallery/internal/repository"
	"github.com/campusmedia/gallery/internal/service"
	"github.com/campusmedia/gallery/internal/storage"
	"github.com/jmoiron/sqlx"
	"golang.org/x/text/language"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Store           kv.Store
	Parser          *markdown.Parser
	Engine          *query.Engine
	Views           *service.ViewAttributor
	ResourceService *service.ResourceService
	DownloadService *service.DownloadService
	BookmarkService *service.BookmarkService
	AuthService     *service.AdminAuthService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	fileStorage, err := storage.New(ctx, cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	authService, err := service.NewAdminAuthService(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize admin auth: %w", err)
	}

	// Repositories
	resourceRepository := repository.NewResourceRepository(database)
	store := kv.NewSQLStore(database)

	// Services
	parser := markdown.NewParser()
	engine := query.NewEngine(EngineOptions(cfg))
	views := service.NewViewAttributor(store, cfg.ViewCooldown)
	resourceService := service.NewResourceService(
		resourceRepository,
		engine,
		views,
		fileStorage,
		parser,
		service.NewRenderCache(cfg.RenderCacheSize, cfg.RenderCacheTTL),
	)
	downloadService := service.NewDownloadService(resourceRepository, resourceService, store, cfg.HistoryLimit)
	bookmarkService := service.NewBookmarkService(resourceService, store)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Store:           store,
		Parser:          parser,
		Engine:          engine,
		Views:           views,
		ResourceService: resourceService,
		DownloadService: downloadService,
		BookmarkService: bookmarkService,
		AuthService:     authService,
	}, nil
}

// EngineOptions translates config into query engine options. Invalid
// values fall back to the engine defaults with a warning.
func EngineOptions(cfg *config.Config) query.Options {
	opts := query.Options{
		PageSize:   cfg.PageSize,
		YearOffset: cfg.YearOffset,
		Popularity: query.PopularByDownloads,
	}

	if strings.EqualFold(cfg.PopularBy, "views") {
		opts.Popularity = query.PopularByViews
	}

	if cfg.CollationLocale != "" {
		tag, err := language.Parse(cfg.CollationLocale)
		if err != nil {
			slog.Warn("invalid COLLATION_LOCALE, using default", "value", cfg.CollationLocale, "error", err)
		} else {
			opts.Locale = tag
		}
	}

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			slog.Warn("invalid TIMEZONE, using UTC", "value", cfg.Timezone, "error", err)
		} else {
			opts.Location = loc
		}
	}

	return opts
}

// LoadCatalog reads the configured seed catalog: a markdown directory, a
// JSON fixture, or the embedded demo set, in that order of preference.
func LoadCatalog(cfg *config.Config, parser *markdown.Parser) ([]*model.Resource, error) {
	switch {
	case cfg.CatalogMarkdownDir != "":
		return catalog.LoadMarkdownDir(cfg.CatalogMarkdownDir, parser)
	case cfg.CatalogFixture != "":
		f, err := os.Open(cfg.CatalogFixture)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog fixture: %w", err)
		}
		defer func() { _ = f.Close() }()
		return catalog.LoadJSON(f)
	default:
		return catalog.DefaultFixture()
	}
}

// Seed fills an empty catalog from the configured source.
func (a *App) Seed(ctx context.Context) error {
	records, err := LoadCatalog(a.Cfg, a.Parser)
	if err != nil {
		return err
	}
	_, err = a.ResourceService.Seed(ctx, records)
	return err
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
