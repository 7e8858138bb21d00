package main

import (
	"flag"
	"log"

	"github.com/downfa11-org/relay/pkg/bench"
)

func main() {
	addr := flag.String("addr", "localhost:9000", "broker address")
	topicName := flag.String("topic", "bench-topic", "topic name for benchmark")
	partitions := flag.Int("partitions", 12, "number of partitions")
	producers := flag.Int("producers", 12, "number of producers")
	consumers := flag.Int("consumers", 12, "number of consumers")
	messages := flag.Int("messages", 1000, "messages per producer")
	batchSize := flag.Int("batch", 100, "messages per produce request")
	compression := flag.String("compression", "none", "frame compression (must match broker)")
	flag.Parse()

	runner := bench.NewBenchmarkRunner(*addr, *topicName, *partitions, *producers, *consumers, *messages, *batchSize, *compression)
	if err := runner.Run(); err != nil {
		log.Fatalf("benchmark failed: %v", err)
	}
}
