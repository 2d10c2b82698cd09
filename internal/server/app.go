// Package server initializes and runs the authentication server.
// It configures storage, wires the gateway services, handles graceful
// shutdown, and starts the HTTP endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/taskkeeper/internal/server/mail"
	"github.com/dmitrijs2005/taskkeeper/internal/server/oauth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/users"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       repomanager.RepositoryManager
	userService *users.Service
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	repos, err := newRepositoryManager(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	mailer := newMailer(ctx, c, logger)
	google := newGoogleVerifier(c)

	us := users.NewService(repos.Users(), repos.Sessions(), mailer, google, c, logger)

	return &App{config: c, logger: logger, repos: repos, userService: us}, nil
}

func newRepositoryManager(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "inmemory" {
		return repomanager.NewInMemoryRepositoryManager(), nil
	}
	return repomanager.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
}

func newMailer(ctx context.Context, c *config.Config, logger logging.Logger) mail.Mailer {
	smtpConfig := &mail.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUser,
		Password: c.SMTPPassword,
		From:     c.SMTPFrom,
	}
	sender, err := mail.NewSMTPSender(smtpConfig)
	if err != nil {
		logger.Warn(ctx, "mail delivery disabled", "reason", err.Error())
		return nil
	}
	return sender
}

func newGoogleVerifier(c *config.Config) oauth.GoogleVerifier {
	if c.GoogleClientID == "" {
		return nil
	}
	return oauth.NewGoogleClient(c.GoogleClientID, c.GoogleClientSecret, c.GoogleRedirectURL)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.userService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "error closing storage", "error", err)
	}
}
