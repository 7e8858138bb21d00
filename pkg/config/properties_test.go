package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/downfa11-org/relay/pkg/config"
	"github.com/downfa11-org/relay/util"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &config.Config{}
	cfg.Normalize()

	assert.Equal(t, 9000, cfg.BrokerPort)
	assert.Equal(t, 9100, cfg.ExporterPort)
	assert.Equal(t, 64*1024, cfg.ReadBufferSize)
	assert.Equal(t, 1000, cfg.MaxWorkers)
	assert.Equal(t, 5*time.Minute, cfg.ReadTimeout)
	assert.Equal(t, "none", cfg.CompressionType)
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	cfg := &config.Config{
		BrokerPort:      7000,
		ExporterPort:    7100,
		ReadBufferSize:  1024,
		MaxWorkers:      4,
		ReadTimeout:     time.Second,
		CompressionType: "snappy",
	}
	cfg.Normalize()

	assert.Equal(t, 7000, cfg.BrokerPort)
	assert.Equal(t, 7100, cfg.ExporterPort)
	assert.Equal(t, 1024, cfg.ReadBufferSize)
	assert.Equal(t, 4, cfg.MaxWorkers)
	assert.Equal(t, time.Second, cfg.ReadTimeout)
	assert.Equal(t, "snappy", cfg.CompressionType)
}

func TestNormalizeCompressionType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "none"},
		{"none", "none"},
		{"GZIP", "gzip"},
		{" lz4 ", "lz4"},
		{"Snappy", "snappy"},
		{"zstd", "none"},
		{"garbage", "none"},
	}

	for _, tt := range tests {
		cfg := &config.Config{CompressionType: tt.in}
		cfg.Normalize()
		assert.Equal(t, tt.want, cfg.CompressionType, "input %q", tt.in)
	}
}

func TestConfigYAMLUnmarshal(t *testing.T) {
	raw := `
broker_port: 7171
enable_exporter: false
log_level: debug
read_buffer_size: 8192
max_workers: 16
compression_type: LZ4
`
	cfg := &config.Config{}
	require.NoError(t, yaml.Unmarshal([]byte(raw), cfg))
	cfg.Normalize()

	assert.Equal(t, 7171, cfg.BrokerPort)
	assert.False(t, cfg.EnableExporter)
	assert.Equal(t, util.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, 8192, cfg.ReadBufferSize)
	assert.Equal(t, 16, cfg.MaxWorkers)
	assert.Equal(t, "lz4", cfg.CompressionType)
}

func TestLogLevelYAMLForms(t *testing.T) {
	tests := []struct {
		raw  string
		want util.LogLevel
	}{
		{"log_level: debug", util.LogLevelDebug},
		{"log_level: WARN", util.LogLevelWarn},
		{"log_level: 3", util.LogLevelError},
		{"log_level: chatty", util.LogLevelInfo},
	}

	for _, tt := range tests {
		cfg := &config.Config{}
		require.NoError(t, yaml.Unmarshal([]byte(tt.raw), cfg), tt.raw)
		assert.Equal(t, tt.want, cfg.LogLevel, tt.raw)
	}
}
