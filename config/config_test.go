package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()

	assert.Equal(t, int64(5<<20), c.Ingest.MaxBodyBytes)
	assert.Equal(t, 100, c.Ingest.RateLimit)
	assert.Equal(t, 60, c.Ingest.RateLimitWindowSeconds)
	assert.Equal(t, 10, c.Ingest.RequestTimeoutSeconds)
	assert.Equal(t, uint64(3), c.Ingest.MaxRetries)

	assert.Equal(t, "127.0.0.1:6379", c.RateLimitDB.Addr)
	assert.False(t, c.AuditIndex.Enabled())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"metadata_db": {
			"host": "db.internal",
			"port": 3307,
			"database": "outreach_prod"
		},
		"audit_index": {
			"addrs": ["http://es.internal:9200"],
			"index": "ingestion_logs_prod"
		},
		"ingest": {
			"rate_limit": 50
		}
	}`), 0o644))

	c := NewConfig()
	require.NoError(t, c.Load(context.Background(), path))

	assert.Equal(t, "db.internal", c.MetadataDB.Host)
	assert.Equal(t, 3307, c.MetadataDB.Port)
	assert.Equal(t, 50, c.Ingest.RateLimit)
	assert.True(t, c.AuditIndex.Enabled())

	// untouched keys keep their defaults
	assert.Equal(t, int64(5<<20), c.Ingest.MaxBodyBytes)
	assert.Equal(t, "127.0.0.1:6379", c.RateLimitDB.Addr)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	c := NewConfig()
	require.NoError(t, c.Load(context.Background(), "/does/not/exist.json"))
	assert.Equal(t, 100, c.Ingest.RateLimit)
}

func TestMySQLToDSN(t *testing.T) {
	m := MySQL{
		Username: "svc",
		Password: "secret",
		Host:     "127.0.0.1",
		Port:     3306,
		Database: "outreach_db",
	}
	assert.Equal(t, "svc:secret@tcp(127.0.0.1:3306)/outreach_db", m.ToDSN())
}
