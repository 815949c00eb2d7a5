package httphelper

import (
	"log/slog"

	"github.com/Depado/ginprom"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/andiamooltre/oltreweb/pkg/log"
)

type RouterOpts struct {
	Mode              string
	Version           string
	LogLevel          log.Level
	HTTPLogEnabled    bool
	SentryDSN         string
	PProfEnabled      bool
	PrometheusEnabled bool
	FrontendEnabled   bool
	StaticPath        string
	CORSEnabled       bool
	CORSOrigins       []string
	CSPOrigin         string
}

// CreateRouter constructs a new gin.Engine with the provided RouterOpts.
func CreateRouter(opts RouterOpts) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.MaxMultipartMemory = 8 << 24
	engine.Use(recoveryHandler())
	engine.Use(errorHandler())
	engine.Use(useSecure(opts.Mode != gin.ReleaseMode, opts.CSPOrigin))

	if opts.HTTPLogEnabled {
		engine.Use(sloggin.NewWithConfig(slog.Default(), sloggin.Config{
			DefaultLevel:  log.ToSlogLevel(opts.LogLevel),
			WithRequestID: true,
			Filters:       []sloggin.Filter{sloggin.IgnorePath("/metrics", "/healthz")},
		}))
	}

	if opts.SentryDSN != "" {
		useSentry(engine, opts.Version)
	}

	if opts.PProfEnabled {
		pprof.Register(engine)
	}

	if opts.CORSEnabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = opts.CORSOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AddAllowHeaders("Authorization")
		engine.Use(cors.New(corsConfig))
	}

	if opts.PrometheusEnabled {
		prom := ginprom.New(ginprom.Engine(engine), ginprom.Path("/metrics"))
		engine.Use(prom.Instrument())
	}

	if opts.FrontendEnabled && opts.StaticPath != "" {
		engine.Use(static.Serve("/", static.LocalFile(opts.StaticPath, false)))
	}

	return engine
}
