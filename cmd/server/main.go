package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/flixandchill/backend/internal/auth"
	"github.com/flixandchill/backend/internal/config"
	"github.com/flixandchill/backend/internal/server"
	"github.com/flixandchill/backend/internal/store"
)

type App struct {
	config *config.Config
	bunDB  *bun.DB
	repo   store.RepositoryManager
	auth   auth.Authenticator
	srv    *server.Server
	logger *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)

	cfg, err := config.Load()
	if err != nil {
		lgr.Error("configuration error", "error", err)
		os.Exit(1)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if cfg.Debug {
		fmt.Println("============")
		fmt.Println(print.MaybeHighlightJSON(cfg))
		fmt.Println("============")
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		lgr.Error("persistence error", "error", err)
		os.Exit(1)
	}

	WithHTTPAuth(app)

	go func() {
		if err := app.srv.Listen(); err != nil {
			lgr.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	lgr.Info("listening", "addr", cfg.GetHTTPAddr())

	WaitExitSignal()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := app.srv.Shutdown(shutdownCtx); err != nil {
		lgr.Error("shutdown error", "error", err)
	}

	if err := app.bunDB.Close(); err != nil {
		lgr.Error("db close error", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, app.config.GetDSN())
	if err != nil {
		return err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	if err := store.CreateSchema(ctx, db); err != nil {
		return err
	}

	repo := store.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		return err
	}

	app.bunDB = db
	app.repo = repo

	return nil
}

func WithHTTPAuth(app *App) {
	provider := auth.NewUserProvider(app.repo.Users()).
		WithLogger(app.GetLogger("auth.user_provider"))

	app.auth = auth.NewAuthenticator(provider, app.config).
		WithLogger(app.GetLogger("auth"))

	app.srv = server.New(app.config, app.repo, app.auth, provider, app.GetLogger("http"))
}

func WaitExitSignal() os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return <-sigCh
}
