package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, ":5000", cfg.Server.Addr())
	assert.Equal(t, DriverMongo, cfg.Storage.Driver)
	assert.Equal(t, "makemydestiny", cfg.Storage.Database)
	assert.Equal(t, 720*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30, cfg.Chatbot.RateLimit)
	assert.Equal(t, time.Minute, cfg.Chatbot.RateWindow)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.MQTT.Broker)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "8081")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://makemydestiny.example")
	t.Setenv("MQTT_TOPIC_PREFIX", "travel/bookings/")
	t.Setenv("CACHE_TTL", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"http://localhost:3000", "https://makemydestiny.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "travel/bookings", cfg.MQTT.TopicPrefix)
	assert.Equal(t, 5*time.Second, cfg.Redis.TTL)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{Driver: "postgres"},
		JWT:     JWTConfig{Secret: "s", Expiry: time.Hour},
		Chatbot: ChatbotConfig{RateLimit: 1, RateWindow: time.Minute},
	}
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = DriverMemory
	assert.NoError(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)

	logger = NewLogger(LogConfig{Level: "nonsense", Format: "text"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
