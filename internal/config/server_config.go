package config

import (
	"fmt"
	"strings"
	"time"
)

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	AuthRateLimit   float64       `mapstructure:"auth_rate_limit"`
	AuthRateBurst   int           `mapstructure:"auth_rate_burst"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
}

func (config ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", config.Port)
}

func (config ServerConfig) validate() error {

	var missingFields []string

	if config.JWTSecret == "" {
		missingFields = append(missingFields, "jwt_secret")
	}

	if config.Port <= 0 {
		missingFields = append(missingFields, "port")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	if config.AccessTokenTTL <= 0 || config.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}

	return nil
}

func (config ServerConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"server.port":       "PORT",
		"server.jwt_secret": "JWT_SECRET",
	})
}
