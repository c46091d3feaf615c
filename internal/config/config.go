package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Session backends.
const (
	SessionBackendPostgres = "postgres"
	SessionBackendRedis    = "redis"
	SessionBackendMemory   = "memory"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel  int       `env:"LOG_LEVEL" envDefault:"0"`
	LogFormat string    `env:"LOG_FORMAT" envDefault:"text"`
	HTTP      HTTP      `envPrefix:"HTTP_"`
	Database  Database  `envPrefix:"DB_"`
	Session   Session   `envPrefix:"SESSION_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	Password  Password  `envPrefix:"BCRYPT_"`
	CSRF      CSRF      `envPrefix:"CSRF_"`
	Login     Login     `envPrefix:"LOGIN_"`
	Telemetry Telemetry `envPrefix:"OTEL_EXPORTER_OTLP_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port               string `env:"PORT" envDefault:"8080"`
	EnableHTTPS        bool   `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
}

// Database contains credential store connection parameters.
type Database struct {
	Host         string        `env:"HOST" envDefault:"localhost"`
	Port         string        `env:"PORT" envDefault:"5432"`
	User         string        `env:"USER" envDefault:"root"`
	Password     string        `env:"PASSWORD" envDefault:"password"`
	Name         string        `env:"NAME" envDefault:"shareride"`
	SSLMode      string        `env:"SSL_MODE" envDefault:"disable"`
	QueryTimeout time.Duration `env:"QUERY_TIMEOUT" envDefault:"5s"`
}

// DSN builds a PostgreSQL connection URL.
func (d Database) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

// Session contains session store and cookie parameters.
type Session struct {
	Backend      string        `env:"BACKEND" envDefault:"postgres"`
	TTL          time.Duration `env:"TTL" envDefault:"12h"`
	CookieName   string        `env:"COOKIE_NAME" envDefault:"sr_session"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

// Redis contains parameters of the redis session backend.
type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Password contains password hashing parameters.
type Password struct {
	Cost int `env:"COST" envDefault:"10"`
}

// CSRF contains form token parameters.
type CSRF struct {
	Secret string        `env:"SECRET" envDefault:"devsecret"`
	TTL    time.Duration `env:"TTL" envDefault:"2h"`
}

// Login contains failed login throttling parameters.
type Login struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"5"`
	Window      time.Duration `env:"WINDOW" envDefault:"15m"`
	Lockout     time.Duration `env:"LOCKOUT" envDefault:"10m"`
}

// Telemetry contains OTLP exporter parameters. Tracing is off when Endpoint is empty.
type Telemetry struct {
	Endpoint string `env:"ENDPOINT"`
	Insecure bool   `env:"INSECURE" envDefault:"false"`
}

// NewConfig loads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks enumerations and ranges that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.Session.Backend {
	case SessionBackendPostgres, SessionBackendRedis, SessionBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown session backend %q", c.Session.Backend))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("session cookie name is required"))
	}
	if c.Password.Cost < 4 || c.Password.Cost > 31 {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range 4..31", c.Password.Cost))
	}
	if c.CSRF.Secret == "" {
		errs = append(errs, errors.New("csrf secret is required"))
	}
	if c.CSRF.TTL <= 0 {
		errs = append(errs, errors.New("csrf ttl must be positive"))
	}
	if c.Database.QueryTimeout <= 0 {
		errs = append(errs, errors.New("database query timeout must be positive"))
	}
	if c.Login.MaxAttempts <= 0 {
		errs = append(errs, errors.New("login max attempts must be positive"))
	}

	return errors.Join(errs...)
}
