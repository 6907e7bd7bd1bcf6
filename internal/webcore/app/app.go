package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/altostack/webcore/internal/webcore/http"
	"github.com/altostack/webcore/internal/webcore/service"
	"github.com/altostack/webcore/internal/webcore/store"
	"github.com/altostack/webcore/internal/webcore/store/drivers/sqlite"
	"github.com/altostack/webcore/pkg/jwtx"
	"github.com/altostack/webcore/pkg/passwordx"
	"github.com/altostack/webcore/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the web backend together: store, services, HTTP server
// and the two background workers (housekeeping and the ingest scheduler).
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	tokenService        *service.TokenService
	accountService      *service.AccountService
	userService         *service.UserService
	logService          *service.LogService
	housekeepingService *service.HousekeepingService
	scheduler           *service.Scheduler

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: cfg.AppName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()
	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	app.logger.Info("webcore starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down webcore...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.scheduler.Stop()
	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("webcore stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	app.tokenService = &service.TokenService{
		Store:     app.db,
		Codec:     jwtx.NewCodec([]byte(app.cfg.SecretKey), app.cfg.AppName),
		OTPSecret: []byte(app.cfg.OTPSecretKey),
		OTPTTL:    app.cfg.OTPTTL,
		AccessTTL: app.cfg.AccessTokenTTL,
	}

	mailer, err := app.initMailer()
	if err != nil {
		return err
	}

	policy := passwordx.Default()
	policy.MinLength = app.cfg.PasswordMinLength
	policy.MaxLength = app.cfg.PasswordMaxLength

	app.accountService = &service.AccountService{
		Store:  app.db,
		Tokens: app.tokenService,
		Mailer: mailer,
		Policy: policy,
		Logger: app.logger,
	}

	app.userService = &service.UserService{Store: app.db}
	app.logService = &service.LogService{Store: app.db, Logger: app.logger}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.OTPTTL,
	)

	app.scheduler = &service.Scheduler{
		Logs:     app.logService,
		Logger:   app.logger,
		Schedule: app.cfg.ParseSchedule,
		Dir:      app.cfg.FilesDir,
		Ext:      app.cfg.FileExtension,
	}

	return nil
}

func (app *Application) initMailer() (service.Mailer, error) {
	if app.cfg.UseLocalMail {
		app.logger.Info("mail delivery disabled, otp codes will be logged")
		return &service.LogMailer{Logger: app.logger}, nil
	}

	mailer, err := service.NewSMTPMailer(
		app.cfg.SMTPHost,
		app.cfg.SMTPPort,
		app.cfg.SMTPUsername,
		app.cfg.SMTPPassword,
		app.cfg.MailFrom,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}
	return mailer, nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.cfg.AppName, app.db, app.logger, app.cfg.AllowedOrigins)
	router.TokenService = app.tokenService
	router.AccountService = app.accountService
	router.UserService = app.userService
	router.LogService = app.logService
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}
