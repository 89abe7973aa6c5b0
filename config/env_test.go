package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFilesMergesInOrder(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	yamlPath := filepath.Join(dir, "app.yaml")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port":"4000","mongo_database":"from_json"}`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("mongo_database: from_yaml\ncache_ttl: 30s\nrate_limit: 50\n"), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("# comment\nJWT_SECRET=\"s3cret\"\n"), 0o644))

	require.NoError(t, loadFromFiles(jsonPath, yamlPath, envPath))

	assert.Equal(t, "4000", get("APP_PORT", ""))
	assert.Equal(t, "from_yaml", get("MONGO_DATABASE", ""))
	assert.Equal(t, "s3cret", get("JWT_SECRET", ""))
	assert.Equal(t, 30*time.Second, Duration("CACHE_TTL", time.Minute))
	assert.Equal(t, "50", get("RATE_LIMIT", ""))
}

func TestLoadFromFilesToleratesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	err := loadFromFiles(filepath.Join(dir, "a.json"), filepath.Join(dir, "a.yaml"), filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, defaultMongoURI, get("MONGO_URI", ""))
}

func TestEnvironmentOverridesFiles(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("APP_ENV=staging\n"), 0o644))
	t.Setenv("APP_ENV", "production")

	require.NoError(t, loadFromFiles(filepath.Join(dir, "x.json"), filepath.Join(dir, "x.yaml"), envPath))
	assert.Equal(t, "production", get("APP_ENV", ""))
}

func TestBoolAndDuration(t *testing.T) {
	Set("ORDER_STRICT_TRANSITIONS", "yes")
	assert.True(t, OrderStrictTransitions())

	Set("ORDER_STRICT_TRANSITIONS", "false")
	assert.False(t, OrderStrictTransitions())

	Set("JWT_TTL", "not-a-duration")
	assert.Equal(t, 2*time.Hour, JWTTTL())
}

func TestDatabaseDriverFallsBack(t *testing.T) {
	Set("DB_DRIVER", "Memory")
	assert.Equal(t, "memory", DatabaseDriver())

	Set("DB_DRIVER", "sqlite")
	assert.Equal(t, "mongo", DatabaseDriver())
}
