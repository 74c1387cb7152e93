package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32ch"

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("GABINETE_TEST_STR", "custom")
	t.Setenv("GABINETE_TEST_INT", "8080")
	t.Setenv("GABINETE_TEST_BAD_INT", "3.14")
	t.Setenv("GABINETE_TEST_FLOAT", "2.5")
	t.Setenv("GABINETE_TEST_BOOL", "false")
	t.Setenv("GABINETE_TEST_DUR", "90s")
	t.Setenv("GABINETE_TEST_LIST", " a, ,b ,c")

	assert.Equal(t, "custom", getEnv("GABINETE_TEST_STR", "x"))
	assert.Equal(t, "x", getEnv("GABINETE_TEST_UNSET", "x"))

	n, err := getEnvInt("GABINETE_TEST_INT", 1)
	require.NoError(t, err)
	assert.Equal(t, 8080, n)

	_, err = getEnvInt("GABINETE_TEST_BAD_INT", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GABINETE_TEST_BAD_INT")

	f, err := getEnvFloat("GABINETE_TEST_FLOAT", 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, f, 0.0001)

	f, err = getEnvFloat("GABINETE_TEST_UNSET", 7)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, f, 0.0001)

	b, err := getEnvBool("GABINETE_TEST_BOOL", true)
	require.NoError(t, err)
	assert.False(t, b)

	d, err := getEnvDuration("GABINETE_TEST_DUR", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	assert.Equal(t, []string{"a", "b", "c"}, getEnvList("GABINETE_TEST_LIST", nil))
	assert.Nil(t, getEnvList("GABINETE_TEST_UNSET", nil))
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "GABINETE_JWT_SECRET")
}

func TestLoad_InvalidEnvVars(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
	}{
		{name: "db port not a number", envKey: "GABINETE_DB_PORT", envVal: "abc"},
		{name: "db port too high", envKey: "GABINETE_DB_PORT", envVal: "65536"},
		{name: "max conns zero", envKey: "GABINETE_DB_MAX_CONNS", envVal: "0"},
		{name: "access ttl invalid", envKey: "GABINETE_JWT_ACCESS_TTL", envVal: "soon"},
		{name: "refresh ttl negative", envKey: "GABINETE_JWT_REFRESH_TTL", envVal: "-1h"},
		{name: "read timeout zero", envKey: "GABINETE_SERVER_READ_TIMEOUT", envVal: "0s"},
		{name: "cep timeout invalid", envKey: "GABINETE_CEP_TIMEOUT", envVal: "fast"},
		{name: "cep timeout zero", envKey: "GABINETE_CEP_TIMEOUT", envVal: "0s"},
		{name: "path style not a bool", envKey: "GABINETE_S3_PATH_STYLE", envVal: "yes"},
		{name: "rate rps zero", envKey: "GABINETE_RATE_LIMIT_RPS", envVal: "0"},
		{name: "rate rps not a number", envKey: "GABINETE_RATE_LIMIT_RPS", envVal: "lots"},
		{name: "rate burst zero", envKey: "GABINETE_RATE_LIMIT_BURST", envVal: "0"},
		{name: "redis db not a number", envKey: "GABINETE_REDIS_DB", envVal: "abc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("GABINETE_JWT_SECRET", testSecret)
			t.Setenv(tc.envKey, tc.envVal)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.envKey)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GABINETE_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "gabinete", cfg.Database.User)
	assert.Equal(t, "gabinete_dev", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxConns)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)

	assert.Empty(t, cfg.Slack.BotToken)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "gabinete.tickets", cfg.Kafka.Topic)

	assert.Equal(t, "gabinete", cfg.Storage.Bucket)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.True(t, cfg.Storage.PathStyle)

	assert.Equal(t, "https://viacep.com.br", cfg.Postal.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Postal.Timeout)

	assert.InDelta(t, 10.0, cfg.RateLimit.RPS, 0.0001)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.False(t, cfg.SelfHosted)
}

func TestLoad_CustomValues(t *testing.T) {
	envs := map[string]string{
		"GABINETE_JWT_SECRET":       testSecret,
		"GABINETE_DB_HOST":          "db.internal",
		"GABINETE_DB_SSLMODE":       "require",
		"GABINETE_SLACK_BOT_TOKEN":  "xoxb-test",
		"GABINETE_SLACK_CHANNEL":    "C0123",
		"GABINETE_S3_ENDPOINT":      "http://minio:9000",
		"GABINETE_S3_BUCKET":        "uploads",
		"GABINETE_S3_PUBLIC_URL":    "https://cdn.example.com",
		"GABINETE_S3_PATH_STYLE":    "false",
		"GABINETE_KAFKA_BROKERS":    "k1:9092, k2:9092",
		"GABINETE_KAFKA_TOPIC":      "tickets",
		"GABINETE_CEP_BASE_URL":     "http://cep.local",
		"GABINETE_CEP_TIMEOUT":      "2s",
		"GABINETE_RATE_LIMIT_RPS":   "0.5",
		"GABINETE_RATE_LIMIT_BURST": "3",
		"GABINETE_SELF_HOSTED":      "true",
	}
	for k, v := range envs {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, "xoxb-test", cfg.Slack.BotToken)
	assert.Equal(t, "C0123", cfg.Slack.Channel)
	assert.Equal(t, "http://minio:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "uploads", cfg.Storage.Bucket)
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.PublicURL)
	assert.False(t, cfg.Storage.PathStyle)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "tickets", cfg.Kafka.Topic)
	assert.Equal(t, "http://cep.local", cfg.Postal.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Postal.Timeout)
	assert.InDelta(t, 0.5, cfg.RateLimit.RPS, 0.0001)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
	assert.True(t, cfg.SelfHosted)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	c := DatabaseConfig{Host: "myhost", Port: 5433, User: "u", Password: "p", DBName: "db", SSLMode: "verify-full"}
	assert.Equal(t, "host=myhost port=5433 user=u password=p dbname=db sslmode=verify-full", c.DSN())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	validBase := func() *Config {
		return &Config{
			Database: DatabaseConfig{Port: 5432, MaxConns: 25},
			JWT: JWTConfig{
				Secret:     testSecret,
				AccessTTL:  15 * time.Minute,
				RefreshTTL: 7 * 24 * time.Hour,
			},
			Server: ServerConfig{
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
			},
			Postal:    PostalConfig{Timeout: 5 * time.Second},
			RateLimit: RateLimitConfig{RPS: 10, Burst: 20},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "secret 31 chars", mutate: func(c *Config) { c.JWT.Secret = "only-31-characters-long-secret!" }, wantErr: "GABINETE_JWT_SECRET"},
		{name: "secret 32 chars", mutate: func(c *Config) { c.JWT.Secret = "exactly-32-characters-long-sec!!" }},
		{name: "port zero", mutate: func(c *Config) { c.Database.Port = 0 }, wantErr: "GABINETE_DB_PORT"},
		{name: "write timeout negative", mutate: func(c *Config) { c.Server.WriteTimeout = -time.Second }, wantErr: "GABINETE_SERVER_WRITE_TIMEOUT"},
		{name: "postal timeout zero", mutate: func(c *Config) { c.Postal.Timeout = 0 }, wantErr: "GABINETE_CEP_TIMEOUT"},
		{name: "burst zero", mutate: func(c *Config) { c.RateLimit.Burst = 0 }, wantErr: "GABINETE_RATE_LIMIT_BURST"},
		{
			name:    "brokers without topic",
			mutate:  func(c *Config) { c.Kafka = KafkaConfig{Brokers: []string{"k:9092"}} },
			wantErr: "GABINETE_KAFKA_TOPIC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := validBase()
			tt.mutate(c)
			err := c.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
