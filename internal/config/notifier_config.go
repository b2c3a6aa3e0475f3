package config

type NotifierConfig struct {
	TelegramToken string `mapstructure:"telegram_token"`
}

func (config NotifierConfig) Enabled() bool {
	return config.TelegramToken != ""
}

func (config NotifierConfig) validate() error {
	return nil
}

func (config NotifierConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{"notifier.telegram_token": "TG_TOKEN"})
}
