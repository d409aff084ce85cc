package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/quickly-estimate/models"
)

const (
	BackendMemory = "memory"
	BackendSQL    = "sql"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

type Config struct {
	Port           int           `yaml:"port" env:"PORT"`
	StoreBackend   string        `yaml:"store_backend" env:"STORE_BACKEND"`
	DatabaseURL    string        `yaml:"database_url" env:"DATABASE_URL"`
	DatabaseType   string        `yaml:"database_type" env:"DATABASE_TYPE"`
	RedisURL       string        `yaml:"redis_url" env:"REDIS_URL"`
	NotifyBackend  string        `yaml:"notify_backend" env:"NOTIFY_BACKEND"`
	SessionTTL     time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
	SweepInterval  time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`
	EnforceCreator bool          `yaml:"enforce_creator" env:"ENFORCE_CREATOR"`
	RejectBots     bool          `yaml:"reject_bots" env:"REJECT_BOTS"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Port:          3318,
		StoreBackend:  BackendMemory,
		DatabaseType:  "sqlite",
		NotifyBackend: BackendMemory,
		SessionTTL:    models.DefaultSessionTTL,
		SweepInterval: 30 * time.Minute,
		RejectBots:    true,
	}
}

// ParseFlags builds the configuration from, lowest precedence first:
// defaults, the YAML file named by -config or CONFIG_FILE, the .env file,
// environment variables, and command-line flags.
func ParseFlags(args []string) (Config, error) {
	var (
		flags      Config
		configFile string
		envFile    string
	)
	def := Defaults()

	fs := flag.NewFlagSet("quickly-estimate", flag.ContinueOnError)

	// Network and storage (can be CLI args or env)
	fs.IntVar(&flags.Port, "p", def.Port, "Server port")
	fs.StringVar(&flags.StoreBackend, "s", def.StoreBackend, "Session store (memory, sql or redis)")
	fs.StringVar(&flags.DatabaseURL, "d", "", "Database URL (sql store)")
	fs.StringVar(&flags.DatabaseType, "t", def.DatabaseType, "Database type (sqlite or postgres)")
	fs.StringVar(&flags.RedisURL, "r", "", "Redis URL (redis store or notifications)")
	fs.StringVar(&flags.NotifyBackend, "n", def.NotifyBackend, "Change notifications (memory, redis or none)")

	// Session behavior
	fs.DurationVar(&flags.SessionTTL, "ttl", def.SessionTTL, "Session lifetime from creation")
	fs.DurationVar(&flags.SweepInterval, "sweep", def.SweepInterval, "Expired row sweep interval for the sql store (0 disables)")
	fs.BoolVar(&flags.EnforceCreator, "enforce-creator", def.EnforceCreator, "Only the creator may reveal and reset")
	fs.BoolVar(&flags.RejectBots, "reject-bots", def.RejectBots, "Reject automated clients on mutating routes")

	// Files
	fs.StringVar(&configFile, "config", "", "YAML config file")
	fs.StringVar(&envFile, "env-file", ".env", "dotenv file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := def
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		if err := loadFile(configFile, &cfg); err != nil {
			return Config{}, err
		}
	}

	// Fields without a variable set keep their value
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	// CLI flags win, but only those actually given
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Port = flags.Port
		case "s":
			cfg.StoreBackend = flags.StoreBackend
		case "d":
			cfg.DatabaseURL = flags.DatabaseURL
		case "t":
			cfg.DatabaseType = flags.DatabaseType
		case "r":
			cfg.RedisURL = flags.RedisURL
		case "n":
			cfg.NotifyBackend = flags.NotifyBackend
		case "ttl":
			cfg.SessionTTL = flags.SessionTTL
		case "sweep":
			cfg.SweepInterval = flags.SweepInterval
		case "enforce-creator":
			cfg.EnforceCreator = flags.EnforceCreator
		case "reject-bots":
			cfg.RejectBots = flags.RejectBots
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate checks that the selected backends have what they need.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	switch c.StoreBackend {
	case BackendMemory, BackendRedis:
	case BackendSQL:
		if c.DatabaseURL == "" {
			return errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		if c.DatabaseType != "sqlite" && c.DatabaseType != "postgres" {
			return fmt.Errorf("invalid database type %q (sqlite or postgres)", c.DatabaseType)
		}
	default:
		return fmt.Errorf("invalid store backend %q (memory, sql or redis)", c.StoreBackend)
	}

	switch c.NotifyBackend {
	case BackendMemory, BackendRedis, BackendNone:
	default:
		return fmt.Errorf("invalid notify backend %q (memory, redis or none)", c.NotifyBackend)
	}

	if (c.StoreBackend == BackendRedis || c.NotifyBackend == BackendRedis) && c.RedisURL == "" {
		return errors.New("redis URL required (use -r or REDIS_URL env)")
	}

	if c.SessionTTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if c.SweepInterval < 0 {
		return errors.New("sweep interval must not be negative")
	}

	return nil
}
