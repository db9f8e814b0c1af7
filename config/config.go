package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

type Config struct {
	MetadataDB  MySQL         `json:"metadata_db"`
	RateLimitDB Redis         `json:"rate_limit_db"`
	AuditIndex  Elasticsearch `json:"audit_index"`
	Ingest      Ingest        `json:"ingest"`
}

type MySQL struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
}

func (mysql *MySQL) ToDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", mysql.Username, mysql.Password, mysql.Host, mysql.Port, mysql.Database)
}

type Redis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// Elasticsearch mirror of the audit log. Disabled when no addrs are set.
type Elasticsearch struct {
	Addrs    []string `json:"addrs"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Index    string   `json:"index"`
}

func (es *Elasticsearch) Enabled() bool {
	return len(es.Addrs) > 0
}

type Ingest struct {
	MaxBodyBytes           int64   `json:"max_body_bytes"`
	RateLimit              int     `json:"rate_limit"`
	RateLimitWindowSeconds int     `json:"rate_limit_window_seconds"`
	RequestTimeoutSeconds  int     `json:"request_timeout_seconds"`
	MaxRetries             uint64  `json:"max_retries"`
	RetryInitialDelayMs    int64   `json:"retry_initial_delay_ms"`
	RetryMaxDelayMs        int64   `json:"retry_max_delay_ms"`
	RetryBackoffMultiplier float64 `json:"retry_backoff_multiplier"`
}

func NewConfig() *Config {
	return &Config{
		MetadataDB: MySQL{
			Username: "",
			Password: "",
			Host:     "127.0.0.1",
			Port:     3306,
			Database: "outreach_db",
		},
		RateLimitDB: Redis{
			Addr:     "127.0.0.1:6379",
			Password: "",
			DB:       0,
		},
		AuditIndex: Elasticsearch{
			Addrs: []string{},
			Index: "ingestion_logs",
		},
		Ingest: Ingest{
			MaxBodyBytes:           5 << 20, // 5 MiB
			RateLimit:              100,
			RateLimitWindowSeconds: 60,
			RequestTimeoutSeconds:  10,
			MaxRetries:             3,
			RetryInitialDelayMs:    1000,
			RetryMaxDelayMs:        10000,
			RetryBackoffMultiplier: 2,
		},
	}
}

func (c *Config) Load(ctx context.Context, path string) error {
	if path == "" {
		log.Ctx(ctx).Warn().Msgf("empty config file")
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Ctx(ctx).Warn().Msgf("config file does not exist, file path: %s", path)
			return nil
		}
		return err
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			log.Ctx(ctx).Error().Msgf("config file close failed, file path: %s", path)
		}
	}(f)

	p := json.NewDecoder(f)
	if err := p.Decode(&c); err != nil {
		return err
	}

	return nil
}
