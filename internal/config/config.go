package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Placeholder creators used when a request carries no creator token.
const (
	DefaultCreatorID  = "5c24de4b-f27a-4732-9644-016d522116f1"
	DefaultReassignID = "30257770-b139-4268-ba00-dcbae8628d24"
)

type Config struct {
	IsDev        bool
	DotEnvLoaded bool
	LogLevel     string
	Server       ServerConfig
	Database     DatabaseConfig
	Auth         AuthConfig
	Creators     CreatorConfig
	Markdown     MarkdownConfig
}

type ServerConfig struct {
	Addr         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxConns     int // 0 means unlimited
}

// ListenAddr joins Addr and Port into a host:port pair.
func (s ServerConfig) ListenAddr() string {
	return net.JoinHostPort(s.Addr, s.Port)
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	SignKey []byte
}

// Enabled reports whether creator tokens can be verified.
func (a AuthConfig) Enabled() bool {
	return len(a.SignKey) > 0
}

// CreatorConfig holds the user ids posts and jokes are attached to on
// create and reassigned to on update.
type CreatorConfig struct {
	CreatorID  string
	ReassignID string
}

// MarkdownConfig controls how post content is rendered to HTML.
type MarkdownConfig struct {
	HardWraps   bool
	Typographer bool
}

// Load reads .env (if present) and the process environment.
func Load(files ...string) (*Config, error) {
	loaded := godotenv.Load(files...) == nil

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		IsDev:        v.GetString("go_env") == "development",
		DotEnvLoaded: loaded,
		LogLevel:     strings.ToLower(v.GetString("log_level")),
		Server: ServerConfig{
			Addr:         v.GetString("server_addr"),
			Port:         v.GetString("server_port"),
			ReadTimeout:  v.GetDuration("server_read_timeout"),
			WriteTimeout: v.GetDuration("server_write_timeout"),
			MaxConns:     v.GetInt("server_max_conns"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("db_driver")),
			DSN:             v.GetString("db_dsn"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
		},
		Auth: AuthConfig{
			SignKey: []byte(v.GetString("sign_key")),
		},
		Creators: CreatorConfig{
			CreatorID:  v.GetString("creator_id"),
			ReassignID: v.GetString("reassign_creator_id"),
		},
		Markdown: MarkdownConfig{
			HardWraps:   v.GetBool("markdown_hard_wraps"),
			Typographer: v.GetBool("markdown_typographer"),
		},
	}

	switch cfg.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == DriverPostgres && cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is required for the postgres driver")
	}
	if cfg.Server.MaxConns < 0 {
		return nil, fmt.Errorf("invalid SERVER_MAX_CONNS %d", cfg.Server.MaxConns)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("go_env", "production")
	v.SetDefault("log_level", "info")
	v.SetDefault("server_addr", "")
	v.SetDefault("server_port", "3000")
	v.SetDefault("server_read_timeout", 5*time.Second)
	v.SetDefault("server_write_timeout", 10*time.Second)
	v.SetDefault("server_max_conns", 0)
	v.SetDefault("db_driver", DriverSQLite)
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", time.Hour)
	v.SetDefault("sign_key", "")
	v.SetDefault("creator_id", DefaultCreatorID)
	v.SetDefault("reassign_creator_id", DefaultReassignID)
	v.SetDefault("markdown_hard_wraps", true)
	v.SetDefault("markdown_typographer", true)
}

// String masks the signing key.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Listen: %s, DB: %s, Auth: %t, Dev: %t}",
		c.Server.ListenAddr(), c.Database.Driver, c.Auth.Enabled(), c.IsDev)
}
