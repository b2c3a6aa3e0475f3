package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Media     MediaConfig     `mapstructure:"media"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

const defaultConfigFile = "./configs/config.yaml"

type section interface {
	validate() error
	bindEnvironmentVariables() error
}

func Get() *Config {

	_ = godotenv.Load()

	configFile := defaultConfigFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		configFile = value
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	viper.Reset()
	viper.SetConfigFile(file)

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.access_token_ttl", "15m")
	viper.SetDefault("server.refresh_token_ttl", "720h")
	viper.SetDefault("server.auth_rate_limit", 5)
	viper.SetDefault("server.auth_rate_burst", 10)
	viper.SetDefault("db.driver", DriverPostgres)
	viper.SetDefault("logger.log_level", LevelInfo)
	viper.SetDefault("logger.output_file", "./logs/app.log")
	viper.SetDefault("media.max_requests_per_second", 5)
	viper.SetDefault("scheduler.job_expiry_cron", "0 * * * *")
	viper.SetDefault("scheduler.interview_sweep_cron", "*/15 * * * *")
	viper.SetDefault("scheduler.interview_grace", "2h")

	if err := bindEnvironmentVariables(); err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (config Config) sections() map[string]section {
	return map[string]section{
		"ServerConfig":    config.Server,
		"DBConfig":        config.DB,
		"LoggerConfig":    config.Logger,
		"MediaConfig":     config.Media,
		"NotifierConfig":  config.Notifier,
		"SchedulerConfig": config.Scheduler,
	}
}

func bindEnvironmentVariables() error {
	var errs []error

	for name, s := range (Config{}).sections() {
		if err := s.bindEnvironmentVariables(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	for name, s := range config.sections() {
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func bindAll(bindings map[string]string) error {
	var errs []error
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
