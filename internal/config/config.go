package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "CLEARTASK"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       int           `mapstructure:"rate_limit"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Repository types.
const (
	RepoInMemory = "inmemory"
	RepoFile     = "file"
	RepoSQLite   = "sqlite"
	RepoPostgres = "postgres"
)

type RepositoryConfig struct {
	Type       string         `mapstructure:"type"`
	Dir        string         `mapstructure:"dir"`
	SQLitePath string         `mapstructure:"sqlite_path"`
	MaxBytes   int            `mapstructure:"max_bytes"`
	Postgres   PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int32         `mapstructure:"max_connections"`
	MinConnections int32         `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	Migrate        bool          `mapstructure:"migrate"`
}

type AuthConfig struct {
	UsersFile string `mapstructure:"users_file"`
}

type WorkerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("logging.development", true)

	v.SetDefault("repository.type", RepoFile)
	v.SetDefault("repository.dir", ".cleartask")
	v.SetDefault("repository.sqlite_path", ".cleartask/cleartask.db")
	v.SetDefault("repository.max_bytes", 0)
	v.SetDefault("repository.postgres.url", "")
	v.SetDefault("repository.postgres.max_connections", 10)
	v.SetDefault("repository.postgres.min_connections", 2)
	v.SetDefault("repository.postgres.idle_timeout", 5*time.Minute)
	v.SetDefault("repository.postgres.migrate", true)

	v.SetDefault("auth.users_file", "")

	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.interval", time.Minute)
}

// Load reads path (YAML) on top of the defaults. A missing file is not an
// error; CLEARTASK_* environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isNotExist(err) {
				return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepoInMemory, RepoFile, RepoSQLite:
	case RepoPostgres:
		if c.Repository.Postgres.URL == "" {
			return fmt.Errorf("repository.postgres.url обязателен для типа %q", RepoPostgres)
		}
	default:
		return fmt.Errorf("неизвестный тип репозитория %q", c.Repository.Type)
	}
	if c.Worker.Enabled && c.Worker.Interval <= 0 {
		return fmt.Errorf("worker.interval должен быть положительным")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
