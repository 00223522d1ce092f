// Package server wires configuration, storage, token handling and the
// HTTP and gRPC transports into one runnable application.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/s-fanou/feed/internal/logging"
	"github.com/s-fanou/feed/internal/server/auth"
	"github.com/s-fanou/feed/internal/server/config"
	gs "github.com/s-fanou/feed/internal/server/grpc"
	"github.com/s-fanou/feed/internal/server/httpapi"
	"github.com/s-fanou/feed/internal/server/repositories/repomanager"
	"github.com/s-fanou/feed/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	users    *services.UserService
	verifier *auth.Verifier
	closers  []func() error
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.Release())
	gin.SetMode(c.GinMode)

	repos, err := repomanager.New(c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	denylist, closer, err := newDenylist(c)
	if err != nil {
		return nil, fmt.Errorf("denylist init error: %w", err)
	}

	codec := auth.NewCodec(auth.NewKeyring(c.SigningKeyID, c.SecretKey, c.PreviousSigningKeys), c.TokenTTL)
	hasher := auth.NewBcryptHasher(c.BcryptCost)

	app := &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		users:    services.NewUserService(repos.Users(), hasher, codec, denylist, logger),
		verifier: auth.NewVerifier(codec, denylist),
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

// newDenylist returns a nil Denylist when revocation is off.
func newDenylist(c *config.Config) (auth.Denylist, func() error, error) {
	switch c.Revocation {
	case config.RevocationMemory:
		return auth.NewMemoryDenylist(), nil, nil
	case config.RevocationRedis:
		d, client, err := auth.NewRedisDenylistFromURL(c.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return d, client.Close, nil
	default:
		return nil, nil, nil
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) router() *gin.Engine {
	return httpapi.NewRouter(httpapi.Options{
		Users:          app.users,
		Verifier:       app.verifier,
		Logger:         app.logger,
		AllowedOrigins: app.config.CORSAllowedOrigins,
	})
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	listen, err := net.Listen("tcp", app.config.EndpointAddrHTTP)
	if err != nil {
		app.logger.Error(ctx, "http listen failed", "error", err)
		cancelFunc()
		return
	}

	srv := &http.Server{Handler: app.router(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewServer(app.config.EndpointAddrGRPC, app.verifier, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates the store, then serves HTTP and gRPC until ctx is cancelled,
// a signal arrives, or either server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreKind, "revocation", app.config.Revocation)

	app.initSignalHandler(cancelFunc)

	if err := app.repos.RunMigrations(ctx); err != nil {
		app.close()
		return fmt.Errorf("migrations: %w", err)
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.close()
	app.logger.Info(context.Background(), "App stopped")
	return nil
}

func (app *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.repos.Close(ctx); err != nil {
		app.logger.Error(ctx, "store close failed", "error", err)
	}
	for _, c := range app.closers {
		if err := c(); err != nil {
			app.logger.Error(ctx, "close failed", "error", err)
		}
	}
}
