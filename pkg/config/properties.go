package config

import (
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/downfa11-org/relay/util"
	"gopkg.in/yaml.v3"
)

// Config represents the broker configuration.
type Config struct {
	// Server settings
	BrokerPort     int           `yaml:"broker_port" json:"broker.port"`
	EnableExporter bool          `yaml:"enable_exporter" json:"enable.exporter"`
	ExporterPort   int           `yaml:"exporter_port" json:"exporter.port"`
	LogLevel       util.LogLevel `yaml:"log_level" json:"log_level"`

	// Connection handling
	ReadBufferSize int           `yaml:"read_buffer_size" json:"read.buffer.size"`
	MaxWorkers     int           `yaml:"max_workers" json:"max.workers"`
	ReadTimeout    time.Duration `yaml:"read_timeout" json:"read.timeout"`

	// Security & compression (server-side)
	UseTLS          bool   `yaml:"use_tls" json:"tls.enable"`
	TLSCertPath     string `yaml:"tls_cert_path" json:"tls.cert_path"`
	TLSKeyPath      string `yaml:"tls_key_path" json:"tls.key_path"`
	CompressionType string `yaml:"compression_type" json:"compression.type"`
	TLSCert         tls.Certificate
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	configPath := flag.String("config", "", "Path to YAML/JSON config file")
	portStr := flag.String("port", "9000", "Broker port")
	exporterStr := flag.String("exporter", "true", "Enable Prometheus exporter")
	exporterPortStr := flag.String("exporter-port", "9100", "Exporter port")
	logLevelStr := flag.String("log-level", "info", "Log Level (debug, info, warn, error)")

	readBufferStr := flag.String("read-buffer", "65536", "Receive buffer capacity per connection in bytes")
	maxWorkersStr := flag.String("max-workers", "1000", "Connection worker pool size")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", 5*time.Minute, "Per-request read deadline")

	tlsStr := flag.String("tls", "false", "Enable TLS")
	tlsCertStr := flag.String("tls-cert", "", "TLS certificate path")
	tlsKeyStr := flag.String("tls-key", "", "TLS key path")
	compressionStr := flag.String("compression", "none", "Frame compression (none, gzip, snappy, lz4)")

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" && *configPath == "" {
		*configPath = envPath
	}

	flag.Parse()

	applyDefaults(cfg, portStr, exporterStr, exporterPortStr, logLevelStr,
		readBufferStr, maxWorkersStr, tlsStr, tlsCertStr, tlsKeyStr, compressionStr)

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, err
		}

		if strings.HasSuffix(*configPath, ".json") {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	applyExplicitFlags(cfg, portStr, exporterStr, exporterPortStr, logLevelStr,
		readBufferStr, maxWorkersStr, tlsStr, tlsCertStr, tlsKeyStr, compressionStr)

	cfg.Normalize()
	util.SetLevel(cfg.LogLevel)

	if cfg.UseTLS {
		if cfg.TLSCertPath == "" || cfg.TLSKeyPath == "" {
			cfg.UseTLS = false
			return nil, fmt.Errorf("TLS enabled but certificate or key path is empty")
		}
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertPath, cfg.TLSKeyPath)
		if err != nil {
			cfg.UseTLS = false
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		cfg.TLSCert = cert
	}

	return cfg, nil
}
