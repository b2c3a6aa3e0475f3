package config

import "fmt"

// MediaConfig points at an unsigned image upload endpoint. Uploads are disabled when CloudName is empty.
type MediaConfig struct {
	CloudName            string  `mapstructure:"cloud_name"`
	UploadPreset         string  `mapstructure:"upload_preset"`
	MaxRequestsPerSecond float32 `mapstructure:"max_requests_per_second"`
}

func (config MediaConfig) Enabled() bool {
	return config.CloudName != ""
}

func (config MediaConfig) validate() error {
	if config.Enabled() && config.UploadPreset == "" {
		return fmt.Errorf("missing variable: upload_preset")
	}
	return nil
}

func (config MediaConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"media.cloud_name":    "CLOUDINARY_CLOUD_NAME",
		"media.upload_preset": "CLOUDINARY_UPLOAD_PRESET",
	})
}
