package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: memory
jwt:
  secret: `+secret+`
storage:
  upload_dir: /tmp/routines
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9091, cfg.Server.HTTPPort)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "http://localhost:9091", cfg.Storage.BaseURL)
	assert.Equal(t, secret, cfg.Storage.SigningSecret)
	assert.Equal(t, "0 15 * * * *", cfg.Scheduler.AwardMonthWinners)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: postgres
  host: db
  user: crew
  database: gymcrew
jwt:
  secret: `+secret+`
storage:
  upload_dir: /tmp/routines
`)
	t.Setenv("DB_HOST", "override")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "override", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres://crew:@override:5432/gymcrew?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestValidate_Errors(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{Port: 9090},
			Database: DatabaseConfig{Driver: DriverMemory},
			JWT:      JWTConfig{Secret: secret},
			Storage:  StorageConfig{UploadDir: "/tmp"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.JWT.Secret = "short"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Database.Driver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Database.Driver = DriverPostgres
	assert.Error(t, cfg.Validate(), "postgres needs a host")

	cfg = base()
	cfg.Server.HTTPPort = 9090
	assert.Error(t, cfg.Validate())
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel(ServicePrefix+"Health"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel(ServicePrefix+"RequestManualCheckIn"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/unknown/Method"))
}
