package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"northflake/pkg/models"
)

func testConfig() *models.Config {
	return &models.Config{
		Source: models.Postgres{
			Host:     "localhost",
			Port:     5432,
			Database: "northwind",
			Username: "reader",
			Password: "secret",
			SSLMode:  "disable",
		},
		Target: models.Snowflake{
			Account:   "xy12345.us-east-1",
			Username:  "loader",
			Password:  "secret",
			Role:      "SYSADMIN",
			Warehouse: "COMPUTE_WH",
			Database:  "NORTHWIND",
			Schema:    "PUBLIC",
		},
		Dashboard: models.Dashboard{ListenAddr: ":8080"},
	}
}

func useTempConfig(t *testing.T) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("NORTHFLAKE_CONFIG", file)
	return file
}

func TestGetConfigFileFromEnv(t *testing.T) {
	file := useTempConfig(t)
	assert.Equal(t, file, GetConfigFile())
	assert.Equal(t, filepath.Dir(file), GetConfigPath())
}

func TestSaveAndLoad(t *testing.T) {
	useTempConfig(t)
	original := testConfig()

	require.NoError(t, Save(original))
	assert.True(t, Exists())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestSaveFilePermissions(t *testing.T) {
	file := useTempConfig(t)
	require.NoError(t, Save(testConfig()))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadMissingFile(t *testing.T) {
	useTempConfig(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &models.Config{}, cfg)
	assert.False(t, Exists())
}

func TestLoadAppliesDefaults(t *testing.T) {
	useTempConfig(t)
	cfg := testConfig()
	cfg.Source.Port = 0
	cfg.Source.SSLMode = ""
	cfg.Target.Schema = ""
	cfg.Dashboard.ListenAddr = ""
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5432, loaded.Source.Port)
	assert.Equal(t, "disable", loaded.Source.SSLMode)
	assert.Equal(t, "PUBLIC", loaded.Target.Schema)
	assert.Equal(t, ":8080", loaded.Dashboard.ListenAddr)
}

func TestLoadInvalidYAML(t *testing.T) {
	file := useTempConfig(t)
	require.NoError(t, os.WriteFile(file, []byte("source: [not a mapping"), 0600))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.Config)
		wantError string
	}{
		{
			name:   "valid",
			mutate: func(c *models.Config) {},
		},
		{
			name:   "private key instead of password",
			mutate: func(c *models.Config) { c.Target.Password = ""; c.Target.PrivateKeyPath = "/keys/rsa.pem" },
		},
		{
			name:      "missing source host",
			mutate:    func(c *models.Config) { c.Source.Host = "" },
			wantError: "source host is required",
		},
		{
			name:      "missing source database",
			mutate:    func(c *models.Config) { c.Source.Database = "" },
			wantError: "source database is required",
		},
		{
			name:      "missing target account",
			mutate:    func(c *models.Config) { c.Target.Account = "" },
			wantError: "target account is required",
		},
		{
			name:      "missing target credentials",
			mutate:    func(c *models.Config) { c.Target.Password = "" },
			wantError: "target password or private_key_path is required",
		},
		{
			name:      "missing target warehouse",
			mutate:    func(c *models.Config) { c.Target.Warehouse = "" },
			wantError: "target warehouse is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}
