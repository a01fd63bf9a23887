package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Debug      bool          `yaml:"debug" env:"DEBUG"`
	Limiter    Limiter       `yaml:"limiter"`
	AppID      int32         `yaml:"app_id" env:"APP_ID"`
	AppSecret  string        `yaml:"app_secret" env:"APP_SECRET" env-required:"true"`
	Server     Server        `yaml:"server"`
	DB         DB            `yaml:"db"`
	Clients    ClientsConfig `yaml:"clients"`
	SMTPServer SMTPServer    `yaml:"smtp_server"`
	Catalog    Catalog       `yaml:"catalog"`
	Sessions   Sessions      `yaml:"sessions"`
	Tasks      Tasks         `yaml:"tasks"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled"`
	Rps     float64 `yaml:"rps" env-default:"20"`
	Burst   int     `yaml:"burst" env-default:"5"`
}

type Client struct {
	Addr         string        `yaml:"addr" env:"SSO_ADDR" env-required:"true"`
	RetryTimeout time.Duration `yaml:"retry_timeout" env-default:"1s"`
	RetriesCount int           `yaml:"retries_count" env-default:"1"`
}

type ClientsConfig struct {
	SSO Client `yaml:"sso"`
}

type Server struct {
	Port string `yaml:"port" env:"PORT" env-default:"8000"`
	Host string `yaml:"host" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"2s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"2s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type DB struct {
	// Driver selects the title/watchlist/purchase store: "postgres" or "memory".
	Driver          string        `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Dsn             string        `yaml:"dsn" env:"DATABASE_URL"`
	MaxConns        int           `yaml:"max_conns" env-default:"25"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"10m"`
	Migrate         bool          `yaml:"migrate" env-default:"true"`
}

type SMTPServer struct {
	Host         string        `yaml:"host" env:"SMTP_HOST"`
	Port         int           `yaml:"port" env-default:"25"`
	Username     string        `yaml:"username" env:"SMTP_USERNAME"`
	Password     string        `yaml:"password" env:"SMTP_PASSWORD"`
	Sender       string        `yaml:"sender" env-default:"Cinehub <no-reply@cinehub.local>"`
	Timeout      time.Duration `yaml:"timeout" env-default:"5s"`
	RetriesCount int           `yaml:"retries_count" env-default:"3"`
}

// Catalog configures the store query descriptors used by the listing pages.
type Catalog struct {
	TopLimit     int           `yaml:"top_limit" env-default:"100"`
	SeriesGenres []string      `yaml:"series_genres" env-default:"drama,thriller,mystery,comedy"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env-default:"3s"`
}

type Sessions struct {
	PruneInterval time.Duration `yaml:"prune_interval" env-default:"5m"`
}

type Tasks struct {
	Workers   int `yaml:"workers" env-default:"3"`
	QueueSize int `yaml:"queue_size" env-default:"100"`
}

func MustLoad(configPath string) *Config {
	var cfg Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic(fmt.Errorf("config file %s not found", configPath))
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic(err)
	}
	if err := cfg.validate(); err != nil {
		panic(err)
	}

	return &cfg
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.Dsn == "" {
			return fmt.Errorf("db.dsn is required for the %s driver", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown db driver %q", c.DB.Driver)
	}
	if c.Sessions.PruneInterval <= 0 {
		return fmt.Errorf("sessions.prune_interval must be positive, got %s", c.Sessions.PruneInterval)
	}
	return nil
}
