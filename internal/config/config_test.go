package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigFile = "../../configs/config.yaml"

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {

	t.Setenv("CONFIG_PATH", testConfigFile)
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "overrideSecret")
	t.Setenv("DB_DRIVER", DriverSqlite)
	t.Setenv("DB_CONNECTION_STRING", "newConnectionString")
	t.Setenv("LOG_LEVEL", string(LevelDebug))
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_UPLOAD_PRESET", "unsigned")
	t.Setenv("TG_TOKEN", "tgToken")
	t.Setenv("INTERVIEW_GRACE", "30m")

	cfg := Get()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, "overrideSecret", cfg.Server.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.Server.AccessTokenTTL)
	assert.Equal(t, DriverSqlite, cfg.DB.Driver)
	assert.Equal(t, "newConnectionString", cfg.DB.ConnectionString)
	assert.Equal(t, LevelDebug, cfg.Logger.LogLevel)
	assert.True(t, cfg.Media.Enabled())
	assert.Equal(t, "unsigned", cfg.Media.UploadPreset)
	assert.True(t, cfg.Notifier.Enabled())
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.InterviewGrace)
	assert.Equal(t, "0 * * * *", cfg.Scheduler.JobExpiryCron)
}

func Test_Config_WhenSecretMissing_ShouldFail(t *testing.T) {

	t.Setenv("JWT_SECRET", "")

	_, err := loadConfig(testConfigFile)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func Test_Config_WhenMediaPresetMissing_ShouldFail(t *testing.T) {

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_UPLOAD_PRESET", "")

	_, err := loadConfig(testConfigFile)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload_preset")
}

func Test_SchedulerConfig_RejectsInvalidCron(t *testing.T) {
	cfg := SchedulerConfig{JobExpiryCron: "every hour", InterviewSweepCron: "*/15 * * * *"}
	assert.Error(t, cfg.validate())
}
