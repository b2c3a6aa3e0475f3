package config

import (
	"fmt"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

type DBConfig struct {
	Driver           string `mapstructure:"driver"`
	ConnectionString string `mapstructure:"connection_string"`
}

func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}
	if config.Driver != DriverPostgres && config.Driver != DriverSqlite {
		return fmt.Errorf("unsupported db driver %q", config.Driver)
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"db.driver":            "DB_DRIVER",
		"db.connection_string": "DB_CONNECTION_STRING",
	})
}
