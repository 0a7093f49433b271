// Package config loads the daemon configuration from YAML and
// environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig is the root configuration.
type AppConfig struct {
	App      AppSettings      `mapstructure:"app"`
	HTTP     HTTPSettings     `mapstructure:"http"`
	Session  SessionSettings  `mapstructure:"session"`
	Postgres PostgresSettings `mapstructure:"postgres"`
	Redis    RedisSettings    `mapstructure:"redis"`
	Wallet   WalletSettings   `mapstructure:"wallet"`
	Market   MarketSettings   `mapstructure:"market"`
}

type AppSettings struct {
	Name   string `mapstructure:"name"`
	Env    string `mapstructure:"env"`
	Domain string `mapstructure:"domain"`
	URI    string `mapstructure:"uri"`
}

type HTTPSettings struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// SessionSettings controls session and error-display lifetimes and the
// local session slot location.
type SessionSettings struct {
	Duration     time.Duration `mapstructure:"duration"`
	ErrorDisplay time.Duration `mapstructure:"error_display"`
	FilePath     string        `mapstructure:"file_path"`
}

type PostgresSettings struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	// Enabled false runs the in-memory registrar (dev mode).
	Enabled bool `mapstructure:"enabled"`
}

// DSN renders the pgx connection string.
func (p PostgresSettings) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

type RedisSettings struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// WalletSettings configures the dev signer. PrivateKey empty generates
// a throwaway key at startup.
type WalletSettings struct {
	PrivateKey string `mapstructure:"private_key"`
}

type MarketSettings struct {
	RPCURL          string `mapstructure:"rpc_url"`
	ContractAddress string `mapstructure:"contract_address"`
	CatalogPath     string `mapstructure:"catalog_path"`
	Enabled         bool   `mapstructure:"enabled"`
}

// Load reads configuration from the given file (optional) with
// WALLETAUTH_-prefixed environment overrides.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("app.name", "goalguru-walletauth")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.domain", "localhost")
	v.SetDefault("app.uri", "http://localhost:3000")
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 9000)
	v.SetDefault("session.duration", 24*time.Hour)
	v.SetDefault("session.error_display", 5*time.Second)
	v.SetDefault("session.file_path", ".goalguru/session.json")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("redis.url", "redis://localhost:6379/0")

	v.SetEnvPrefix("WALLETAUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
