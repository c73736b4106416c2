package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/dropdown_export/internal/config"
	"github.com/locvowork/dropdown_export/internal/database"
	"github.com/locvowork/dropdown_export/internal/domain"
	"github.com/locvowork/dropdown_export/internal/handler"
	"github.com/locvowork/dropdown_export/internal/logger"
	"github.com/locvowork/dropdown_export/internal/repository"
	"github.com/locvowork/dropdown_export/internal/service"
	"github.com/locvowork/dropdown_export/pkg/dropdown"
	"github.com/rs/zerolog"
)

type App struct {
	Echo *echo.Echo
	// closers release the dictionary source on shutdown.
	mu      sync.Mutex
	closers []func() error
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_DEBUG)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	dict, closeDict, err := OpenDictionaryStore(ctx, cfg.DICTIONARY_SOURCE)
	if err != nil {
		return fmt.Errorf("failed to open dictionary source: %w", err)
	}
	a.addCloser(closeDict)
	logger.InfoLog(ctx, "Dictionary source %q ready", cfg.DICTIONARY_SOURCE)

	// Initialize dependencies
	templateSvc := service.NewTemplateService(dict, cfg.TEMPLATE_DIR, cfg.DICTIONARY_WORKERS, DropdownOptions()...)
	templateHandler := handler.NewTemplateHandler(templateSvc)

	a.RegisterMiddlewares()
	a.RegisterRoutes(templateHandler)
	return nil
}

// DropdownOptions returns the dropdown placement settings from the environment.
func DropdownOptions() []dropdown.Option {
	cfg := config.DefaultEnvConfig
	return []dropdown.Option{
		dropdown.WithInlineLimit(cfg.DROPDOWN_INLINE_LIMIT),
		dropdown.WithMaxRows(cfg.DROPDOWN_MAX_ROWS),
		dropdown.WithMaxCascadeRows(cfg.DROPDOWN_MAX_CASCADE_ROWS),
	}
}

// OpenDictionaryStore connects to the dictionary source named by source. The
// returned func releases it.
func OpenDictionaryStore(ctx context.Context, source string) (domain.DictionaryStore, func() error, error) {
	cfg := config.DefaultEnvConfig
	noop := func() error { return nil }

	switch source {
	case config.DictionarySourcePostgres:
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:            cfg.DB_HOST,
			Port:            cfg.DB_PORT,
			User:            cfg.DB_USER,
			Password:        cfg.DB_PASSWORD,
			DBName:          cfg.DB_NAME,
			SSLMode:         cfg.DB_SSL_MODE,
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		})
		if err != nil {
			return nil, nil, err
		}
		return repository.NewDictionaryRepository(db), db.Close, nil

	case config.DictionarySourceDatastore:
		client, err := database.NewDatastoreClient(ctx, cfg.DATASTORE_PROJECT_ID)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil

	case config.DictionarySourceElastic:
		client, err := database.NewElasticSearchClient(cfg.ELASTIC_URL, cfg.ELASTIC_INDEX)
		if err != nil {
			return nil, nil, err
		}
		return client, noop, nil

	case config.DictionarySourceStatic:
		dict, err := repository.LoadStaticDictionary(cfg.DICTIONARY_FILE)
		if err != nil {
			return nil, nil, err
		}
		return dict, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown dictionary source %q", source)
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l := logger.Get(c.Request().Context())
			var event *zerolog.Event
			if v.Error != nil {
				event = l.Error().Err(v.Error)
			} else {
				event = l.Info()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(templateHandler *handler.TemplateHandler) {
	a.Echo.GET("/healthz", templateHandler.HealthHandler)

	templateGroup := a.Echo.Group("/templates")
	templateGroup.GET("", templateHandler.ListHandler)
	templateGroup.POST("/preview", templateHandler.PreviewHandler)
	templateGroup.GET("/:name", templateHandler.DownloadHandler)
}

// Run serves HTTP until the server is shut down. Resources stay open
// until Close is called.
func (a *App) Run() error {
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}

// Shutdown stops the server, waiting up to timeout for open requests.
func (a *App) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return a.Echo.Shutdown(ctx)
}

func (a *App) addCloser(c func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, c)
}

// Close releases the resources opened by Initialize. Later calls are no-ops.
func (a *App) Close() {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	for _, c := range closers {
		if err := c(); err != nil {
			logger.WarnLog(context.Background(), "failed to close resource: %v", err)
		}
	}
}
