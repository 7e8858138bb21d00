package topic

import (
	"errors"
	"fmt"
	"sync"

	"github.com/downfa11-org/relay/pkg/metrics"
	"github.com/downfa11-org/relay/util"
)

var (
	ErrTopicNotFound       = errors.New("topic not found")
	ErrPartitionOutOfRange = errors.New("partition out of range")
)

// TopicManager owns the topic registry for the lifetime of the process.
// The map lock is held only to look up or insert a topic; it is always
// released before any partition lock is taken, so no code path ever
// holds both.
type TopicManager struct {
	topics map[string]*Topic
	mu     sync.RWMutex
}

func NewTopicManager() *TopicManager {
	return &TopicManager{
		topics: make(map[string]*Topic),
	}
}

// CreateTopic allocates partitionCount empty partitions under the given
// name. Creating a topic that already exists is a no-op success: the
// existing topic is returned untouched, whatever partition count was
// requested, so no data is lost or reset.
func (tm *TopicManager) CreateTopic(name string, partitionCount int) *Topic {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if existing, ok := tm.topics[name]; ok {
		if partitionCount != len(existing.Partitions) {
			util.Warn("topic '%s' already exists with %d partitions, ignoring requested %d",
				name, len(existing.Partitions), partitionCount)
		}
		return existing
	}

	t := NewTopic(name, partitionCount)
	tm.topics[name] = t
	metrics.TopicsCreated.Inc()
	util.Info("topic '%s' created with %d partitions", name, partitionCount)
	return t
}

// GetTopic returns the topic or nil.
func (tm *TopicManager) GetTopic(name string) *Topic {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.topics[name]
}

// Lookup resolves a (topic, partition) address to its partition handle.
// The handle stays valid after the registry lock is released; callers
// append/read on it without touching the topic map again.
func (tm *TopicManager) Lookup(name string, partition uint32) (*Partition, error) {
	tm.mu.RLock()
	t, ok := tm.topics[name]
	tm.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("lookup %s[%d]: %w", name, partition, ErrTopicNotFound)
	}
	if partition >= uint32(len(t.Partitions)) {
		return nil, fmt.Errorf("lookup %s[%d]: %w (topic has %d partitions)",
			name, partition, ErrPartitionOutOfRange, len(t.Partitions))
	}
	return t.Partitions[partition], nil
}

// ListTopics returns the registered topic names.
func (tm *TopicManager) ListTopics() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	names := make([]string, 0, len(tm.topics))
	for name := range tm.topics {
		names = append(names, name)
	}
	return names
}
