package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, cfg.MySQLDSN)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		EnvHTTPAddr:     ":9090",
		EnvMySQLDSN:     "root:123456@tcp(127.0.0.1:3307)/bsquote",
		EnvKafkaBrokers: "k1:9092, k2:9092,,",
		EnvNodeID:       "7",
		EnvCacheTTL:     "30s",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, int64(7), cfg.NodeID)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "option.quotes", cfg.KafkaTopic)
}

func TestFromEnv_Invalid(t *testing.T) {
	_, err := FromEnv(lookupFrom(map[string]string{EnvNodeID: "abc"}))
	assert.Error(t, err)

	_, err = FromEnv(lookupFrom(map[string]string{EnvNodeID: "2048"}))
	assert.Error(t, err)

	_, err = FromEnv(lookupFrom(map[string]string{EnvCacheTTL: "soon"}))
	assert.Error(t, err)

	_, err = FromEnv(lookupFrom(map[string]string{EnvKafkaBrokers: "k1:9092", EnvKafkaTopic: ""}))
	assert.Error(t, err)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("BSQ_REDIS_ADDR=localhost:6379\n"), 0o644))

	t.Setenv(EnvRedisAddr, "")
	os.Unsetenv(EnvRedisAddr)

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
}
