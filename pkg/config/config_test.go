package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"DB_HOST", "DB_PORT", "HTTP_PORT", "JWT_TOKEN_HOURS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, 72, cfg.JWT.TokenHours)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	for _, key := range []string{"DB_HOST", "HTTP_PORT", "JWT_SECRET"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := `# pool service
DB_HOST=db.internal
HTTP_PORT=8080
JWT_SECRET="super secret"

not-a-pair
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "super secret", cfg.JWT.Secret)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestNonNumericPortFallsBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.HTTP.Port)
}
