package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/viant/afs"

	"github.com/andiamooltre/oltreweb/internal/appstate"
	"github.com/andiamooltre/oltreweb/internal/asset"
	"github.com/andiamooltre/oltreweb/internal/auth"
	"github.com/andiamooltre/oltreweb/internal/config"
	"github.com/andiamooltre/oltreweb/internal/contact"
	"github.com/andiamooltre/oltreweb/internal/content"
	"github.com/andiamooltre/oltreweb/internal/database"
	"github.com/andiamooltre/oltreweb/internal/httphelper"
	"github.com/andiamooltre/oltreweb/internal/member"
	"github.com/andiamooltre/oltreweb/internal/news"
	"github.com/andiamooltre/oltreweb/internal/notification"
	"github.com/andiamooltre/oltreweb/pkg/broadcaster"
	"github.com/andiamooltre/oltreweb/pkg/log"
)

const shutdownTimeout = 10 * time.Second

// App owns the wired application: database, usecases, router and the snapshot state
// writer.
type App struct {
	conf      config.Config
	db        database.Database
	engine    *gin.Engine
	state     *appstate.AppState
	logCloser func()
}

func NewApp(conf config.Config) *App {
	return &App{conf: conf, db: database.New(conf.DB.DSN, conf.DB.AutoMigrate, conf.DB.LogQueries)}
}

// Init connects the database and wires every feature. The returned app is ready to
// serve.
func (app *App) Init(ctx context.Context) error {
	if errValidate := app.conf.Validate(); errValidate != nil {
		return errValidate
	}

	app.logCloser = log.MustCreateLogger(ctx, app.conf.Log.File, app.conf.Log.Level,
		app.conf.Log.SentryDSN != "", BuildVersion)

	if app.conf.Log.SentryDSN != "" {
		if errSentry := sentry.Init(sentry.ClientOptions{
			Dsn:              app.conf.Log.SentryDSN,
			Release:          BuildVersion,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
		}); errSentry != nil {
			slog.Error("Sentry init failed", log.ErrAttr(errSentry))
		}
	}

	if errConnect := app.db.Connect(ctx); errConnect != nil {
		return errConnect
	}

	fileSystem := afs.New()
	changes := broadcaster.New[string]()

	assets := asset.NewAssets(
		asset.NewFileRepository(app.db, fileSystem, app.conf.Media.RootPath),
		asset.Limits{
			MaxImageSize: app.conf.Media.MaxImageSize,
			MaxVideoSize: app.conf.Media.MaxVideoSize,
			MaxRawSize:   app.conf.Media.MaxRawSize,
		},
		app.conf.ExtURL)

	authUC := auth.NewAuth(auth.NewRepository(app.db), app.conf.Auth.SigningKey,
		app.conf.Auth.TokenDuration)
	members := member.NewMembers(member.NewRepository(app.db),
		app.conf.Site.MemberPlaceholder, changes)
	newsUC := news.NewNews(news.NewRepository(app.db), app.conf.Site.NewsPlaceholder, changes)
	contents := content.NewContents(content.NewRepository(app.db), fileSystem,
		app.conf.Site.CacheDir, changes)

	var sender notification.Sender = notification.NewDiscardSender()
	if app.conf.Email.Enabled {
		sender = notification.NewResendSender(app.conf.Email.APIKey,
			app.conf.Email.From, app.conf.Email.To)
	}

	contacts := contact.NewContacts(contact.NewRepository(app.db), assets, sender,
		authUC, changes, app.conf.Site.ContactImageLimit, app.conf.Site.SupportAddress)

	app.state = appstate.New(members, newsUC, contacts, contents, authUC, changes,
		app.conf.General.SiteName)

	if errInit := app.state.Initialize(ctx); errInit != nil {
		slog.Warn("Some snapshot slices failed to load", log.ErrAttr(errInit))
	}

	go app.state.Start(ctx)

	app.engine = httphelper.CreateRouter(httphelper.RouterOpts{
		Mode:              app.conf.General.Mode.String(),
		Version:           BuildVersion,
		LogLevel:          app.conf.Log.Level,
		HTTPLogEnabled:    app.conf.HTTP.LogHTTPEnabled,
		SentryDSN:         app.conf.Log.SentryDSN,
		PProfEnabled:      app.conf.HTTP.PProfEnabled,
		PrometheusEnabled: app.conf.HTTP.PrometheusEnabled,
		FrontendEnabled:   app.conf.HTTP.FrontendEnabled,
		StaticPath:        app.conf.HTTP.StaticPath,
		CORSEnabled:       app.conf.HTTP.CORSEnabled,
		CORSOrigins:       app.conf.HTTP.CORSOrigins,
		CSPOrigin:         app.conf.HTTP.ExternalURL,
	})

	app.engine.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	appstate.NewAppStateHandler(app.engine, app.state)
	auth.NewAuthHandler(app.engine, authUC)
	asset.NewAssetHandler(app.engine, assets, authUC)
	member.NewMemberHandler(app.engine, members, assets, authUC)
	news.NewNewsHandler(app.engine, newsUC, assets, authUC, app.conf.Site.CarouselIntervalMS)
	contact.NewContactHandler(app.engine, contacts, authUC)
	content.NewContentHandler(app.engine, contents, authUC)

	return nil
}

// Serve blocks until ctx is cancelled or the listener fails.
func (app *App) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:           app.conf.HTTP.Addr(),
		Handler:        app.engine,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errChan := make(chan error, 1)

	go func() {
		slog.Info("Starting HTTP service",
			slog.String("addr", app.conf.HTTP.Addr()), slog.String("version", BuildVersion))

		if errServe := httpServer.ListenAndServe(); errServe != nil &&
			!errors.Is(errServe, http.ErrServerClosed) {
			errChan <- errServe
		}
	}()

	select {
	case errServe := <-errChan:
		return fmt.Errorf("http listener failed: %w", errServe)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if errShutdown := httpServer.Shutdown(shutdownCtx); errShutdown != nil {
			return fmt.Errorf("error shutting down http service: %w", errShutdown)
		}

		return nil
	}
}

func (app *App) Close() {
	if errClose := app.db.Close(); errClose != nil {
		slog.Error("Failed to close database", log.ErrAttr(errClose))
	}

	if app.logCloser != nil {
		app.logCloser()
	}
}
