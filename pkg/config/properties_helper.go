package config

import (
	"flag"
	"strings"
	"time"

	"github.com/downfa11-org/relay/util"
)

func (cfg *Config) Normalize() {
	if cfg.BrokerPort <= 0 {
		cfg.BrokerPort = 9000
	}
	if cfg.ExporterPort <= 0 {
		cfg.ExporterPort = 9100
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = 64 * 1024
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1000
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Minute
	}

	cfg.CompressionType = strings.ToLower(strings.TrimSpace(cfg.CompressionType))
	switch cfg.CompressionType {
	case "", "none":
		cfg.CompressionType = "none"
	case "gzip", "snappy", "lz4":
	default:
		util.Warn("Invalid compression_type '%s', defaulting to 'none'", cfg.CompressionType)
		cfg.CompressionType = "none"
	}
}

func applyDefaults(cfg *Config, portStr, exporterStr, exporterPortStr, logLevelStr,
	readBufferStr, maxWorkersStr, tlsStr, tlsCertStr, tlsKeyStr, compressionStr *string) {

	cfg.BrokerPort = util.ParseInt(*portStr, 9000)
	cfg.EnableExporter = util.ParseBool(*exporterStr, true)
	cfg.ExporterPort = util.ParseInt(*exporterPortStr, 9100)
	cfg.LogLevel = parseLogLevel(*logLevelStr)

	cfg.ReadBufferSize = util.ParseInt(*readBufferStr, 64*1024)
	cfg.MaxWorkers = util.ParseInt(*maxWorkersStr, 1000)

	cfg.UseTLS = util.ParseBool(*tlsStr, false)
	cfg.TLSCertPath = *tlsCertStr
	cfg.TLSKeyPath = *tlsKeyStr
	cfg.CompressionType = *compressionStr
}

// applyExplicitFlags re-applies values the user passed on the command
// line, so flags win over the config file.
func applyExplicitFlags(cfg *Config, portStr, exporterStr, exporterPortStr, logLevelStr,
	readBufferStr, maxWorkersStr, tlsStr, tlsCertStr, tlsKeyStr, compressionStr *string) {

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.BrokerPort = util.ParseInt(*portStr, cfg.BrokerPort)
		case "exporter":
			cfg.EnableExporter = util.ParseBool(*exporterStr, cfg.EnableExporter)
		case "exporter-port":
			cfg.ExporterPort = util.ParseInt(*exporterPortStr, cfg.ExporterPort)
		case "log-level":
			cfg.LogLevel = parseLogLevel(*logLevelStr)
		case "read-buffer":
			cfg.ReadBufferSize = util.ParseInt(*readBufferStr, cfg.ReadBufferSize)
		case "max-workers":
			cfg.MaxWorkers = util.ParseInt(*maxWorkersStr, cfg.MaxWorkers)
		case "tls":
			cfg.UseTLS = util.ParseBool(*tlsStr, cfg.UseTLS)
		case "tls-cert":
			cfg.TLSCertPath = *tlsCertStr
		case "tls-key":
			cfg.TLSKeyPath = *tlsKeyStr
		case "compression":
			cfg.CompressionType = *compressionStr
		}
	})
}

func parseLogLevel(s string) util.LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return util.LogLevelDebug
	case "info":
		return util.LogLevelInfo
	case "warn", "warning":
		return util.LogLevelWarn
	case "error":
		return util.LogLevelError
	default:
		return util.LogLevelInfo
	}
}
