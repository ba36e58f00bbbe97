package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/mailcraft/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// EnvPrefix prefixes every environment variable that overrides the config
// file, e.g. MAILCRAFT_APP_HTTP_PORT.
const EnvPrefix = "MAILCRAFT_"

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app" envPrefix:"APP_"`
	Storage  StorageConfig     `yaml:"storage" envPrefix:"STORAGE_"`
	SQLite   SQLiteConfig      `yaml:"sqlite" envPrefix:"SQLITE_"`
	Assets   AssetsConfig      `yaml:"assets" envPrefix:"ASSETS_"`
	Auth     AuthConfig        `yaml:"auth" envPrefix:"AUTH_"`
	Canvas   CanvasConfig      `yaml:"canvas" envPrefix:"CANVAS_"`
	Proposal ProposalConfig    `yaml:"proposal" envPrefix:"PROPOSAL_"`
	SMTP     SMTPConfig        `yaml:"smtp" envPrefix:"SMTP_"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Storage, &c.SQLite, &c.Assets, &c.Auth, &c.Canvas, &c.Proposal, &c.SMTP,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" env:"LOG_LEVEL"`
	HTTP     HTTPConfig `yaml:"http" envPrefix:"HTTP_"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" env:"PORT"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects the blob backend holding saved emails and the
// proposal session.
type StorageConfig struct {
	Driver   string `yaml:"driver" env:"DRIVER"`
	Path     string `yaml:"path" env:"PATH"`
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
	Prefix   string `yaml:"prefix" env:"PREFIX"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = storage.DriverFS
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(
			storage.DriverFS, storage.DriverSQLite, storage.DriverRedis, storage.DriverMemory)),
		validation.Field(&c.Path, validation.When(
			c.Driver == storage.DriverFS || c.Driver == storage.DriverSQLite, validation.Required)),
		validation.Field(&c.RedisURL, validation.When(c.Driver == storage.DriverRedis, validation.Required)),
	)
}

// Options converts the config into storage.Open options.
func (c *StorageConfig) Options() storage.Options {
	return storage.Options{Driver: c.Driver, Path: c.Path, RedisURL: c.RedisURL, Prefix: c.Prefix}
}

// SQLiteConfig holds the saved-email catalog database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AssetsConfig holds the directory uploaded images are written to.
type AssetsConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// Validate validates the assets configuration.
func (c *AssetsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" env:"MODE"`
	Token string `yaml:"token" env:"TOKEN"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// CanvasConfig tunes the drag-and-drop controller.
type CanvasConfig struct {
	// ActivationDistance is how far, in pixels, the pointer must travel
	// before a press becomes a drag.
	ActivationDistance float64 `yaml:"activation_distance" env:"ACTIVATION_DISTANCE"`
}

// Validate validates the canvas configuration.
func (c *CanvasConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ActivationDistance, validation.Min(0.0)),
	)
}

// ProposalConfig holds proposal chat settings.
type ProposalConfig struct {
	ReplyDelay     time.Duration `yaml:"reply_delay" env:"REPLY_DELAY"`
	WebhookURL     string        `yaml:"webhook_url" env:"WEBHOOK_URL"`
	WebhookTimeout time.Duration `yaml:"webhook_timeout" env:"WEBHOOK_TIMEOUT"`
}

// Validate validates the proposal configuration.
func (c *ProposalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ReplyDelay, validation.Min(time.Duration(0))),
		validation.Field(&c.WebhookURL, is.URL),
		validation.Field(&c.WebhookTimeout, validation.Min(time.Duration(0))),
	)
}

// SMTPConfig describes the relay used for test sends. An empty Address
// disables sending.
type SMTPConfig struct {
	Address  string `yaml:"address" env:"ADDRESS"`
	From     string `yaml:"from" env:"FROM"`
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
}

// Validate validates the SMTP configuration.
func (c *SMTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Password, validation.When(c.Username != "", validation.Required)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Driver: storage.DriverFS,
			Path:   "./data",
		},
		SQLite: SQLiteConfig{
			Path: "./mailcraft.db",
		},
		Assets: AssetsConfig{
			Path: "./assets",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Canvas: CanvasConfig{
			ActivationDistance: 8,
		},
		Proposal: ProposalConfig{
			ReplyDelay:     1500 * time.Millisecond,
			WebhookTimeout: 10 * time.Second,
		},
	}
}
