package application

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/quality-control/internal/api"
	"github.com/eugenenazirov/quality-control/internal/config"
	"github.com/eugenenazirov/quality-control/internal/console"
	"github.com/eugenenazirov/quality-control/internal/inspection"
	"github.com/eugenenazirov/quality-control/internal/logging"
	"github.com/eugenenazirov/quality-control/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// NewStorage builds the ledger storage configured from cfg. Box events are
// logged through logger; extra handlers are subscribed after it.
func NewStorage(cfg config.Config, logger *zap.Logger, handlers ...inspection.EventHandler) *storage.MemoryStorage {
	opts := []inspection.Option{
		inspection.WithReasonPolicy(cfg.ReasonPolicy),
		inspection.WithEventHandler(logging.LedgerEvents(logger)),
	}
	for _, h := range handlers {
		opts = append(opts, inspection.WithEventHandler(h))
	}
	return storage.NewMemoryStorage(opts...)
}

// New initializes the HTTP application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := NewStorage(cfg, logger)

	handler := api.NewHandler(store)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage: store,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// NewConsole wires the interactive console over a fresh ledger.
func NewConsole(cfg config.Config, logger *zap.Logger) *console.Model {
	notices := console.NewNotices()
	store := NewStorage(cfg, logger, notices.Handle)
	return console.New(store, notices,
		console.WithLogger(logger),
		console.WithExport(cfg.ExportDir, cfg.ExportFormat),
	)
}

// BuildRootHandler mounts the API under /api/ and a JSON index at /.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(indexDocument))
	}))
	return mux
}

const indexDocument = `{"service":"quality-control","endpoints":[` +
	`"GET /api/health",` +
	`"POST /api/pieces",` +
	`"GET /api/pieces",` +
	`"GET /api/pieces/{id}",` +
	`"DELETE /api/pieces/{id}",` +
	`"GET /api/boxes",` +
	`"GET /api/report",` +
	`"GET /api/export"]}` + "\n"

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
