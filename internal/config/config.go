package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Generator GeneratorConfig `yaml:"generator"`
	Supply    SupplyConfig    `yaml:"supply"`
	Puzzle    PuzzleConfig    `yaml:"puzzle"`
	Session   SessionConfig   `yaml:"session"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"   env:"DATABASE_MIGRATE_ON_START"   env-default:"true"`
}

// AuthConfig holds access token validation settings. Tokens are issued by
// the account service; this service only verifies them.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"myenglish"`
}

// GeneratorConfig holds the sentence generator settings. An empty APIKey
// disables generation; sessions then use stored or fallback content only.
type GeneratorConfig struct {
	APIKey     string        `yaml:"api_key"     env:"GENERATOR_API_KEY"`
	Model      string        `yaml:"model"       env:"GENERATOR_MODEL"       env-default:"claude-haiku-4-5"`
	MaxTokens  int64         `yaml:"max_tokens"  env:"GENERATOR_MAX_TOKENS"  env-default:"512"`
	Timeout    time.Duration `yaml:"timeout"     env:"GENERATOR_TIMEOUT"     env-default:"20s"`
	MaxRetries int           `yaml:"max_retries" env:"GENERATOR_MAX_RETRIES" env-default:"2"`
	BaseURL    string        `yaml:"base_url"    env:"GENERATOR_BASE_URL"`
}

// Enabled reports whether a generator is configured.
func (c GeneratorConfig) Enabled() bool { return c.APIKey != "" }

// SupplyConfig tunes the sentence supply pipeline. A negative PrefetchDepth
// disables prefetching.
type SupplyConfig struct {
	PrefetchDepth       int           `yaml:"prefetch_depth"       env:"SUPPLY_PREFETCH_DEPTH"       env-default:"3"`
	PrefetchConcurrency int           `yaml:"prefetch_concurrency" env:"SUPPLY_PREFETCH_CONCURRENCY" env-default:"4"`
	SharedCacheSize     int           `yaml:"shared_cache_size"    env:"SUPPLY_SHARED_CACHE_SIZE"    env-default:"1024"`
	ResolveTimeout      time.Duration `yaml:"resolve_timeout"      env:"SUPPLY_RESOLVE_TIMEOUT"      env-default:"30s"`
	BatchWait           time.Duration `yaml:"batch_wait"           env:"SUPPLY_BATCH_WAIT"           env-default:"2ms"`
	BatchCapacity       int           `yaml:"batch_capacity"       env:"SUPPLY_BATCH_CAPACITY"       env-default:"100"`
}

// PuzzleConfig holds puzzle construction parameters.
type PuzzleConfig struct {
	HintCap          int     `yaml:"hint_cap"          env:"PUZZLE_HINT_CAP"          env-default:"3"`
	PrefillThreshold int     `yaml:"prefill_threshold" env:"PUZZLE_PREFILL_THRESHOLD" env-default:"10"`
	PrefillRatio     float64 `yaml:"prefill_ratio"     env:"PUZZLE_PREFILL_RATIO"     env-default:"0.35"`
}

// SessionConfig holds exercise session limits.
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"            env:"SESSION_TTL"            env-default:"30m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL" env-default:"1m"`
	MaxItems      int           `yaml:"max_items"      env:"SESSION_MAX_ITEMS"      env-default:"50"`
}

// RateLimitConfig limits session starts per client, since each start can
// trigger several generator calls.
type RateLimitConfig struct {
	StartsPerMinute int `yaml:"starts_per_minute" env:"RATE_LIMIT_STARTS_PER_MINUTE" env-default:"20"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
