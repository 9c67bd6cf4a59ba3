package models

// Config is the full northflake configuration, stored as YAML under
// ~/.northflake/config.yaml.
type Config struct {
	Source    Postgres  `yaml:"source"`
	Target    Snowflake `yaml:"target"`
	Dashboard Dashboard `yaml:"dashboard"`
}

// Postgres holds the connection settings for the source Northwind database.
type Postgres struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// Snowflake holds the connection settings for the target warehouse.
// Password auth is used unless PrivateKeyPath is set, in which case the
// connection authenticates with the key pair (JWT).
type Snowflake struct {
	Account        string `yaml:"account"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	PrivateKeyPath string `yaml:"private_key_path"`
	Role           string `yaml:"role"`
	Warehouse      string `yaml:"warehouse"`
	Database       string `yaml:"database"`
	Schema         string `yaml:"schema"`
}

// Dashboard holds settings for the dashboard HTTP server.
type Dashboard struct {
	ListenAddr string `yaml:"listen_addr"`
}
