package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"northflake/pkg/models"
)

// keyringService is the service name used for credentials stored in the OS
// keychain. Passwords left empty in the config file are resolved from here.
const keyringService = "northflake"

func GetConfigPath() string {
	// Check for environment variable first
	if configPath := os.Getenv("NORTHFLAKE_CONFIG"); configPath != "" {
		return filepath.Dir(configPath)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".northflake")
}

func GetConfigFile() string {
	if configFile := os.Getenv("NORTHFLAKE_CONFIG"); configFile != "" {
		return filepath.Clean(configFile)
	}
	return filepath.Join(GetConfigPath(), "config.yaml")
}

func Load() (*models.Config, error) {
	configFile := GetConfigFile()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return &models.Config{}, nil
	}

	data, err := os.ReadFile(configFile) // #nosec G304 - path is derived from the user's home dir
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config models.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	resolveCredentials(&config)
	applyDefaults(&config)
	return &config, nil
}

func Save(config *models.Config) error {
	configPath := GetConfigPath()
	if err := os.MkdirAll(configPath, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(GetConfigFile(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func Exists() bool {
	_, err := os.Stat(GetConfigFile())
	return err == nil
}

// StorePassword saves a credential in the OS keychain so it can be omitted
// from the config file.
func StorePassword(account, password string) error {
	return keyring.Set(keyringService, account, password)
}

// resolveCredentials fills empty passwords from the OS keychain. A missing
// keychain entry is not an error; the connection attempt will report it.
func resolveCredentials(config *models.Config) {
	if config.Source.Password == "" && config.Source.Username != "" {
		if secret, err := keyring.Get(keyringService, "source:"+config.Source.Username); err == nil {
			config.Source.Password = secret
		}
	}
	if config.Target.Password == "" && config.Target.PrivateKeyPath == "" && config.Target.Username != "" {
		if secret, err := keyring.Get(keyringService, "target:"+config.Target.Username); err == nil {
			config.Target.Password = secret
		}
	}
}

func applyDefaults(config *models.Config) {
	if config.Source.Port == 0 {
		config.Source.Port = 5432
	}
	if config.Source.SSLMode == "" {
		config.Source.SSLMode = "disable"
	}
	if config.Target.Schema == "" {
		config.Target.Schema = "PUBLIC"
	}
	if config.Dashboard.ListenAddr == "" {
		config.Dashboard.ListenAddr = ":8080"
	}
}

// Validate checks that the settings required for migration are present.
func Validate(config *models.Config) error {
	if config.Source.Host == "" {
		return fmt.Errorf("source host is required")
	}
	if config.Source.Database == "" {
		return fmt.Errorf("source database is required")
	}
	if config.Source.Username == "" {
		return fmt.Errorf("source username is required")
	}
	if config.Target.Account == "" {
		return fmt.Errorf("target account is required")
	}
	if config.Target.Username == "" {
		return fmt.Errorf("target username is required")
	}
	if config.Target.Password == "" && config.Target.PrivateKeyPath == "" {
		return fmt.Errorf("target password or private_key_path is required")
	}
	if config.Target.Warehouse == "" {
		return fmt.Errorf("target warehouse is required")
	}
	if config.Target.Database == "" {
		return fmt.Errorf("target database is required")
	}
	return nil
}
