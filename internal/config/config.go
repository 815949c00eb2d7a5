// Package config loads and validates the static service configuration.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/andiamooltre/oltreweb/pkg/log"
)

var (
	ErrReadConfig      = errors.New("failed to read config file")
	ErrFormatConfig    = errors.New("config file format invalid")
	ErrMissingDSN      = errors.New("database dsn is not set")
	ErrMissingAuthKey  = errors.New("auth signing_key is not set")
	ErrEmailConfig     = errors.New("email enabled but api_key/from/to are not all set")
	ErrMissingSentinel = errors.New("site support_address is not set")
)

type RunMode string

const (
	// Release is production mode, minimal logging.
	Release RunMode = "release"
	// Debug has much more logging and uses non-embedded assets.
	Debug RunMode = "debug"
	// Test is for unit tests.
	Test RunMode = "test"
)

func (rm RunMode) String() string {
	return string(rm)
}

type GeneralConfig struct {
	SiteName string  `mapstructure:"site_name"`
	Mode     RunMode `mapstructure:"mode"`
}

type HTTPConfig struct {
	Host              string   `mapstructure:"host"`
	Port              int      `mapstructure:"port"`
	ExternalURL       string   `mapstructure:"external_url"`
	StaticPath        string   `mapstructure:"static_path"`
	FrontendEnabled   bool     `mapstructure:"frontend_enabled"`
	CORSEnabled       bool     `mapstructure:"cors_enabled"`
	CORSOrigins       []string `mapstructure:"cors_origins"`
	PProfEnabled      bool     `mapstructure:"pprof_enabled"`
	PrometheusEnabled bool     `mapstructure:"prometheus_enabled"`
	LogHTTPEnabled    bool     `mapstructure:"log_http_enabled"`
}

// Addr returns the listen address in host:port format.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	LogQueries  bool   `mapstructure:"log_queries"`
}

type LogConfig struct {
	Level     log.Level `mapstructure:"level"`
	File      string    `mapstructure:"file"`
	SentryDSN string    `mapstructure:"sentry_dsn"`
}

type MediaConfig struct {
	RootPath     string `mapstructure:"root_path"`
	MaxImageSize int64  `mapstructure:"max_image_size"`
	MaxVideoSize int64  `mapstructure:"max_video_size"`
	MaxRawSize   int64  `mapstructure:"max_raw_size"`
}

type EmailConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	From    string `mapstructure:"from"`
	To      string `mapstructure:"to"`
}

type AuthConfig struct {
	SigningKey    string        `mapstructure:"signing_key"`
	TokenDuration time.Duration `mapstructure:"token_duration"`
}

type SiteConfig struct {
	// SupportAddress doubles as the hidden admin elevation sentinel on the public
	// contact form.
	SupportAddress     string `mapstructure:"support_address"`
	CacheDir           string `mapstructure:"cache_dir"`
	ContactImageLimit  int    `mapstructure:"contact_image_limit"`
	MemberPlaceholder  string `mapstructure:"member_placeholder"`
	NewsPlaceholder    string `mapstructure:"news_placeholder"`
	CarouselIntervalMS int    `mapstructure:"carousel_interval_ms"`
}

type Config struct {
	General GeneralConfig `mapstructure:"general"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"database"`
	Log     LogConfig     `mapstructure:"logging"`
	Media   MediaConfig   `mapstructure:"media"`
	Email   EmailConfig   `mapstructure:"email"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Site    SiteConfig    `mapstructure:"site"`
}

// ExtURL builds an absolute URL for the given site relative path.
func (c Config) ExtURL(path string) string {
	return strings.TrimSuffix(c.HTTP.ExternalURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func setDefaultConfigValues() {
	defaults := map[string]any{
		"general.site_name":         "Andiamo Oltre",
		"general.mode":              "release",
		"http.host":                 "127.0.0.1",
		"http.port":                 6006,
		"http.external_url":         "http://localhost:6006",
		"http.static_path":          "frontend/dist",
		"http.frontend_enabled":     true,
		"http.cors_enabled":         false,
		"http.pprof_enabled":        false,
		"http.prometheus_enabled":   false,
		"http.log_http_enabled":     true,
		"database.auto_migrate":     true,
		"database.log_queries":      false,
		"logging.level":             "info",
		"media.root_path":           ".media",
		"media.max_image_size":      10 * 1024 * 1024,
		"media.max_video_size":      100 * 1024 * 1024,
		"media.max_raw_size":        10 * 1024 * 1024,
		"email.enabled":             false,
		"auth.token_duration":       (time.Hour * 24 * 31).String(),
		"site.cache_dir":            ".cache",
		"site.contact_image_limit":  5,
		"site.member_placeholder":   "https://via.placeholder.com/150",
		"site.news_placeholder":     "https://via.placeholder.com/400",
		"site.carousel_interval_ms": 3000,
	}

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

func decodeDuration() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) || from.Kind() != reflect.String {
			return data, nil
		}

		raw, ok := data.(string)
		if !ok {
			return data, nil
		}

		duration, errDuration := time.ParseDuration(raw)
		if errDuration != nil {
			return nil, errors.Join(errDuration, ErrFormatConfig)
		}

		return duration, nil
	}
}

// Read loads the config file, if set, applying env overrides with the OLTREWEB prefix.
func Read(configFile string) (Config, error) {
	setDefaultConfigValues()

	viper.SetEnvPrefix("oltreweb")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, errHome := homedir.Dir()
		if errHome == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "oltreweb"))
		}

		viper.AddConfigPath(".")
		viper.SetConfigName("oltreweb")
		viper.SetConfigType("yaml")
	}

	var config Config

	if errReadConfig := viper.ReadInConfig(); errReadConfig != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(errReadConfig, &notFound) {
			return config, errors.Join(errReadConfig, ErrReadConfig)
		}
	}

	if errUnmarshal := viper.Unmarshal(&config, viper.DecodeHook(decodeDuration())); errUnmarshal != nil {
		return config, errors.Join(errUnmarshal, ErrFormatConfig)
	}

	if strings.HasPrefix(config.DB.DSN, "pgx://") {
		config.DB.DSN = strings.Replace(config.DB.DSN, "pgx://", "postgres://", 1)
	}

	return config, nil
}

// Validate checks service credentials up front so a missing credential surfaces once at
// startup instead of on first use.
func (c Config) Validate() error {
	if c.DB.DSN == "" {
		return ErrMissingDSN
	}

	if c.Auth.SigningKey == "" {
		return ErrMissingAuthKey
	}

	if c.Site.SupportAddress == "" {
		return ErrMissingSentinel
	}

	if c.Email.Enabled && (c.Email.APIKey == "" || c.Email.From == "" || c.Email.To == "") {
		return ErrEmailConfig
	}

	return nil
}
