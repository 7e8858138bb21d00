package bench

import (
	"fmt"
	"sync"
	"time"

	"github.com/downfa11-org/relay/pkg/client"
)

type BenchmarkRunner struct {
	Addr                string
	Topic               string
	Partitions          int
	NumProducers        int
	NumConsumers        int
	MessagesPerProducer int
	BatchSize           int
	Compression         string
}

func NewBenchmarkRunner(addr, topicName string, partitions, producers, consumers, messages, batchSize int, compression string) *BenchmarkRunner {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &BenchmarkRunner{
		Addr:                addr,
		Topic:               topicName,
		Partitions:          partitions,
		NumProducers:        producers,
		NumConsumers:        consumers,
		MessagesPerProducer: messages,
		BatchSize:           batchSize,
		Compression:         compression,
	}
}

func (b *BenchmarkRunner) Run() error {
	setup := client.NewBrokerClient([]string{b.Addr}, "bench-setup")
	setup.SetCompression(b.Compression)
	if err := setup.CreateTopic(b.Topic, uint32(b.Partitions)); err != nil {
		return fmt.Errorf("create bench topic: %w", err)
	}
	setup.Close()

	totalMessages := b.NumProducers * b.MessagesPerProducer
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < b.NumProducers; i++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			if err := b.runProducer(pid); err != nil {
				fmt.Printf("Producer %d error: %v\n", pid, err)
			}
		}(i)
	}
	wg.Wait()
	produceDuration := time.Since(start)

	consumeStart := time.Now()
	consumed := 0
	for i := 0; i < b.NumConsumers; i++ {
		n, err := b.runConsumer(i)
		if err != nil {
			fmt.Printf("Consumer %d error: %v\n", i, err)
			continue
		}
		consumed += n
	}
	consumeDuration := time.Since(consumeStart)

	fmt.Printf("\nBENCHMARK RESULT\n")
	fmt.Printf("-------------------------------------\n")
	fmt.Printf(" Producers        : %d\n", b.NumProducers)
	fmt.Printf(" Consumers        : %d\n", b.NumConsumers)
	fmt.Printf(" Partitions       : %d\n", b.Partitions)
	fmt.Printf(" Total Messages   : %d\n", totalMessages)
	fmt.Printf(" Produce Duration : %v\n", produceDuration)
	fmt.Printf(" Produce Rate     : %.2f msg/sec\n", float64(totalMessages)/produceDuration.Seconds())
	fmt.Printf(" Consumed         : %d\n", consumed)
	fmt.Printf(" Consume Duration : %v\n", consumeDuration)
	fmt.Printf(" Consume Rate     : %.2f msg/sec\n", float64(consumed)/consumeDuration.Seconds())
	fmt.Printf("-------------------------------------\n")
	return nil
}

func (b *BenchmarkRunner) runProducer(pid int) error {
	bc := client.NewBrokerClient([]string{b.Addr}, fmt.Sprintf("bench-producer-%d", pid))
	bc.SetCompression(b.Compression)
	defer bc.Close()

	partition := uint32(pid % b.Partitions)
	sent := 0
	for sent < b.MessagesPerProducer {
		n := b.BatchSize
		if remaining := b.MessagesPerProducer - sent; remaining < n {
			n = remaining
		}
		batch := make([]string, n)
		for i := range batch {
			batch[i] = fmt.Sprintf("bench-%d-%d", pid, sent+i)
		}
		if _, err := bc.Produce(b.Topic, partition, batch); err != nil {
			return err
		}
		sent += n
	}
	return nil
}

// runConsumer drains one partition from offset 0 and returns the count.
func (b *BenchmarkRunner) runConsumer(cid int) (int, error) {
	bc := client.NewBrokerClient([]string{b.Addr}, fmt.Sprintf("bench-consumer-%d", cid))
	bc.SetCompression(b.Compression)
	defer bc.Close()

	partition := uint32(cid % b.Partitions)
	offset := uint32(0)
	total := 0
	for {
		records, err := bc.Consume(b.Topic, partition, offset, uint32(b.BatchSize))
		if err != nil {
			return total, err
		}
		if len(records) == 0 {
			return total, nil
		}
		total += len(records)
		offset = records[len(records)-1].Offset + 1
	}
}
