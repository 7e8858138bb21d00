package main

import (
	"fmt"
	"log"

	"github.com/downfa11-org/relay/pkg/config"
	"github.com/downfa11-org/relay/pkg/server"
	"github.com/downfa11-org/relay/pkg/topic"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Starting broker on port %d (exporter: %v)\n", cfg.BrokerPort, cfg.EnableExporter)

	tm := topic.NewTopicManager()

	if err := server.RunServer(cfg, tm); err != nil {
		log.Fatalf("Broker failed: %v", err)
	}
}
