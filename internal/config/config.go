package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MinSigningKeyBytes es el largo mínimo de la clave HMAC-SHA256.
const MinSigningKeyBytes = 32

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"app_env"`
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage struct {
		// memory | postgres
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
		// AutoMigrate aplica las migraciones embebidas al arrancar.
		AutoMigrate bool `yaml:"auto_migrate"`
		Postgres    struct {
			MaxOpenConns    int           `yaml:"max_open_conns"`
			MaxIdleConns    int           `yaml:"max_idle_conns"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind string `yaml:"kind"`
		// OpTimeout acota cada llamada al TTL store.
		OpTimeout time.Duration `yaml:"op_timeout"`
		Redis     struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			CleanupInterval time.Duration `yaml:"cleanup_interval"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		// SigningKey: raw o "base64:<...>", mínimo 32 bytes.
		SigningKey      string        `yaml:"signing_key"`
		AccessTTL       time.Duration `yaml:"access_ttl"`
		RefreshTTL      time.Duration `yaml:"refresh_ttl"`
		VerificationTTL time.Duration `yaml:"verification_ttl"`
	} `yaml:"jwt"`

	Lockout struct {
		MaxFailedAttempts   int `yaml:"max_failed_attempts"`
		LockDurationSeconds int `yaml:"lock_duration_seconds"`
	} `yaml:"lockout"`

	Gateway struct {
		PublicPaths       []string `yaml:"public_paths"`
		LogoutPaths       []string `yaml:"logout_paths"`
		RefreshPaths      []string `yaml:"refresh_paths"`
		VerificationPaths []string `yaml:"verification_paths"`
		// EnforceWhitelist exige que el refresh presentado siga en el whitelist.
		EnforceWhitelist bool `yaml:"enforce_whitelist"`
	} `yaml:"gateway"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	Notify struct {
		// log | kafka | none
		Kind  string `yaml:"kind"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
			Topic   string   `yaml:"topic"`
		} `yaml:"kafka"`
	} `yaml:"notify"`

	Sentry struct {
		DSN        string  `yaml:"dsn"`
		SampleRate float64 `yaml:"sample_rate"`
	} `yaml:"sentry"`

	// Bootstrap crea la cuenta admin inicial si no existe.
	Bootstrap struct {
		AdminUsername string `yaml:"admin_username"`
		AdminPassword string `yaml:"admin_password"`
	} `yaml:"bootstrap"`
}

// Load lee el YAML (si path no está vacío), aplica defaults, overrides de
// entorno y valida. Un path inexistente es error; path vacío usa solo env.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyDefaults()
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default retorna la configuración por defecto sin leer entorno ni archivo.
// No valida: la signing key queda vacía.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "authgate"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.OpTimeout == 0 {
		c.Cache.OpTimeout = 500 * time.Millisecond
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "authgate"
	}
	if c.Cache.Memory.CleanupInterval == 0 {
		c.Cache.Memory.CleanupInterval = time.Minute
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 15 * time.Minute
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 720 * time.Hour // 30d
	}
	if c.JWT.VerificationTTL == 0 {
		c.JWT.VerificationTTL = 24 * time.Hour
	}
	if c.Lockout.MaxFailedAttempts == 0 {
		c.Lockout.MaxFailedAttempts = 3
	}
	if c.Lockout.LockDurationSeconds == 0 {
		c.Lockout.LockDurationSeconds = 900
	}
	if c.Gateway.PublicPaths == nil {
		c.Gateway.PublicPaths = []string{
			"/v1/auth/login",
			"/v1/auth/register",
			"/v1/auth/password/forgot",
			"/healthz",
			"/readyz",
			"/metrics",
		}
	}
	if c.Gateway.LogoutPaths == nil {
		c.Gateway.LogoutPaths = []string{"/v1/auth/logout"}
	}
	if c.Gateway.RefreshPaths == nil {
		c.Gateway.RefreshPaths = []string{"/v1/auth/refresh"}
	}
	if c.Gateway.VerificationPaths == nil {
		c.Gateway.VerificationPaths = []string{
			"/v1/auth/register/confirm",
			"/v1/auth/password/reset",
		}
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == 0 {
		c.Rate.Login.Window = time.Minute
	}
	if c.Notify.Kind == "" {
		c.Notify.Kind = "log"
	}
	if c.Notify.Kafka.Topic == "" {
		c.Notify.Kafka.Topic = "authgate.account-events"
	}
	if c.Sentry.SampleRate == 0 {
		c.Sentry.SampleRate = 1.0
	}
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvBool("STORAGE_AUTO_MIGRATE"); ok {
		c.Storage.AutoMigrate = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvDur("CACHE_OP_TIMEOUT"); ok {
		c.Cache.OpTimeout = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_SIGNING_KEY"); ok {
		c.JWT.SigningKey = v
	}
	if v, ok := getEnvDur("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvDur("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}
	if v, ok := getEnvDur("JWT_VERIFICATION_TTL"); ok {
		c.JWT.VerificationTTL = v
	}

	// LOCKOUT
	if v, ok := getEnvInt("LOCKOUT_MAX_FAILED_ATTEMPTS"); ok {
		c.Lockout.MaxFailedAttempts = v
	}
	if v, ok := getEnvInt("LOCKOUT_DURATION_SECONDS"); ok {
		c.Lockout.LockDurationSeconds = v
	}

	// GATEWAY
	if v, ok := getEnvCSV("GATEWAY_PUBLIC_PATHS"); ok {
		c.Gateway.PublicPaths = v
	}
	if v, ok := getEnvBool("GATEWAY_ENFORCE_WHITELIST"); ok {
		c.Gateway.EnforceWhitelist = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvDur("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}

	// NOTIFY
	if v, ok := getEnvStr("NOTIFY_KIND"); ok {
		c.Notify.Kind = v
	}
	if v, ok := getEnvCSV("KAFKA_BROKERS"); ok {
		c.Notify.Kafka.Brokers = v
	}
	if v, ok := getEnvStr("KAFKA_TOPIC"); ok {
		c.Notify.Kafka.Topic = v
	}

	// SENTRY
	if v, ok := getEnvStr("SENTRY_DSN"); ok {
		c.Sentry.DSN = v
	}

	// BOOTSTRAP
	if v, ok := getEnvStr("ADMIN_USERNAME"); ok {
		c.Bootstrap.AdminUsername = v
	}
	if v, ok := getEnvStr("ADMIN_PASSWORD"); ok {
		c.Bootstrap.AdminPassword = v
	}
}

// SigningKeyBytes decodifica la signing key ("base64:" opcional).
func (c *Config) SigningKeyBytes() ([]byte, error) {
	raw := strings.TrimSpace(c.JWT.SigningKey)
	if rest, ok := strings.CutPrefix(raw, "base64:"); ok {
		b, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return nil, fmt.Errorf("config: jwt.signing_key: invalid base64: %w", err)
		}
		return b, nil
	}
	return []byte(raw), nil
}

// LockDuration es la ventana del contador de fallos.
func (c *Config) LockDuration() time.Duration {
	return time.Duration(c.Lockout.LockDurationSeconds) * time.Second
}

func (c *Config) Validate() error {
	var errs []error

	key, err := c.SigningKeyBytes()
	if err != nil {
		errs = append(errs, err)
	} else if len(key) < MinSigningKeyBytes {
		errs = append(errs, fmt.Errorf("config: jwt.signing_key must be at least %d bytes", MinSigningKeyBytes))
	}

	for name, d := range map[string]time.Duration{
		"jwt.access_ttl":       c.JWT.AccessTTL,
		"jwt.refresh_ttl":      c.JWT.RefreshTTL,
		"jwt.verification_ttl": c.JWT.VerificationTTL,
		"cache.op_timeout":     c.Cache.OpTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("config: %s must be positive", name))
		}
	}
	if c.Lockout.MaxFailedAttempts < 1 {
		errs = append(errs, errors.New("config: lockout.max_failed_attempts must be >= 1"))
	}
	if c.Lockout.LockDurationSeconds < 1 {
		errs = append(errs, errors.New("config: lockout.lock_duration_seconds must be >= 1"))
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("config: storage.dsn required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver))
	}

	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("config: cache.redis.addr required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown cache.kind %q", c.Cache.Kind))
	}

	switch c.Notify.Kind {
	case "log", "none":
	case "kafka":
		if len(c.Notify.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("config: notify.kafka.brokers required for kafka"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown notify.kind %q", c.Notify.Kind))
	}

	return errors.Join(errs...)
}
