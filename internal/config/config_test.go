package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "renderer-1", cfg.WorkerID)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, "render.requests", cfg.StreamKey)
		assert.Equal(t, "render-workers", cfg.ConsumerGroup)
		assert.Equal(t, "render.results", cfg.ResultStream)
		assert.Equal(t, "render.results.errors", cfg.ErrorStream())
		assert.Equal(t, time.Second, cfg.BlockTime)
		assert.Equal(t, "", cfg.PartialsDir)
		assert.Equal(t, "hbs:partials", cfg.PartialsKey)
		assert.False(t, cfg.PartialsSync)
		assert.True(t, cfg.CELEnabled)
		assert.Equal(t, 256, cfg.MaxDepth)
		assert.False(t, cfg.NoHTMLEscape)
		assert.Equal(t, 8082, cfg.HealthPort)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("should read the environment", func(t *testing.T) {
		t.Setenv("WORKER_ID", "w-7")
		t.Setenv("REDIS_DB", "3")
		t.Setenv("BLOCK_TIME", "250ms")
		t.Setenv("PARTIALS_DIR", "/srv/partials")
		t.Setenv("CEL_ENABLED", "false")
		t.Setenv("MAX_DEPTH", "32")
		t.Setenv("NO_HTML_ESCAPE", "true")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "w-7", cfg.WorkerID)
		assert.Equal(t, 3, cfg.RedisDB)
		assert.Equal(t, 250*time.Millisecond, cfg.BlockTime)
		assert.Equal(t, "/srv/partials", cfg.PartialsDir)
		assert.False(t, cfg.CELEnabled)
		assert.Equal(t, 32, cfg.MaxDepth)
		assert.True(t, cfg.NoHTMLEscape)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("should fail on unparsable values", func(t *testing.T) {
		t.Setenv("HEALTH_PORT", "eighty")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config")
	})

	t.Run("should fail on invalid values", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "verbose")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
	})
}

func Test_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			WorkerID:      "w",
			RedisAddr:     "localhost:6379",
			StreamKey:     "in",
			ConsumerGroup: "g",
			ResultStream:  "out",
			BlockTime:     time.Second,
			MaxDepth:      10,
			HealthPort:    8082,
			LogLevel:      "warn",
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing worker id", mutate: func(c *Config) { c.WorkerID = "" }, errMsg: "WORKER_ID"},
		{name: "missing redis addr", mutate: func(c *Config) { c.RedisAddr = "" }, errMsg: "REDIS_ADDR"},
		{name: "missing stream", mutate: func(c *Config) { c.StreamKey = "" }, errMsg: "STREAM_KEY"},
		{name: "missing group", mutate: func(c *Config) { c.ConsumerGroup = "" }, errMsg: "CONSUMER_GROUP"},
		{name: "missing result stream", mutate: func(c *Config) { c.ResultStream = "" }, errMsg: "RESULT_STREAM is required"},
		{name: "result stream equal to input", mutate: func(c *Config) { c.ResultStream = "in" }, errMsg: "must differ"},
		{name: "sync without a directory", mutate: func(c *Config) { c.PartialsSync = true; c.PartialsKey = "k" }, errMsg: "PARTIALS_SYNC"},
		{name: "sync with a directory", mutate: func(c *Config) { c.PartialsSync = true; c.PartialsDir = "/p"; c.PartialsKey = "k" }},
		{name: "zero block time", mutate: func(c *Config) { c.BlockTime = 0 }, errMsg: "BLOCK_TIME"},
		{name: "zero depth", mutate: func(c *Config) { c.MaxDepth = 0 }, errMsg: "MAX_DEPTH"},
		{name: "port out of range", mutate: func(c *Config) { c.HealthPort = 70000 }, errMsg: "HEALTH_PORT"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, errMsg: "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run("should check "+tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func Test_String(t *testing.T) {
	t.Run("should redact the redis password", func(t *testing.T) {
		cfg := &Config{WorkerID: "w", RedisPassword: "hunter2"}
		s := cfg.String()
		assert.NotContains(t, s, "hunter2")
		assert.Contains(t, s, "RedisPassword=***")
		assert.Contains(t, s, "WorkerID=w")
	})

	t.Run("should leave an empty password empty", func(t *testing.T) {
		assert.Contains(t, (&Config{}).String(), "RedisPassword=,")
	})
}
