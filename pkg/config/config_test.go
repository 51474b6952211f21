package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{FileEnv, "PORT", "STORE_API_URL", "DATABASE_URL", "KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_GROUP_ID", "REQUEST_TIMEOUT_MS", "PAGE_SIZE"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), c)
	assert.Equal(t, 12, c.PageSize)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
api_base_url: https://shop.example/api
request_timeout: 4s
page_size: 24
kafka:
  brokers: kafka:9092
  topic: orders.events
`), 0o600))

	clearEnv(t)
	t.Setenv(FileEnv, path)
	t.Setenv("PAGE_SIZE", "6")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "https://shop.example/api", c.APIBaseURL)
	assert.Equal(t, 4*time.Second, c.RequestTimeout)
	assert.Equal(t, 6, c.PageSize, "env overrides file")
	assert.Equal(t, "kafka:9092", c.Kafka.Brokers)
	assert.Equal(t, "orders.events", c.Kafka.Topic)
	assert.Equal(t, "notification-service", c.Kafka.GroupID, "unset keys keep defaults")
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)

	t.Setenv(FileEnv, "")
	t.Setenv("REQUEST_TIMEOUT_MS", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT_MS")

	t.Setenv("REQUEST_TIMEOUT_MS", "")
	t.Setenv("PAGE_SIZE", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "page_size")
}
