package topic_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/downfa11-org/relay/pkg/topic"
)

func TestAppendAssignsSequentialOffsets(t *testing.T) {
	p := topic.NewPartition(0, "orders")

	offsets := p.Append([]string{"a", "b", "c"})
	assert.Equal(t, []uint32{0, 1, 2}, offsets)

	offsets = p.Append([]string{"d", "e"})
	assert.Equal(t, []uint32{3, 4}, offsets)

	assert.Equal(t, uint32(5), p.NextOffset())
}

func TestAppendEmptyBatch(t *testing.T) {
	p := topic.NewPartition(0, "orders")

	offsets := p.Append(nil)
	assert.Empty(t, offsets)
	assert.Equal(t, uint32(0), p.NextOffset())
}

func TestReadCorrectness(t *testing.T) {
	p := topic.NewPartition(0, "orders")
	const n = 10
	for i := 0; i < n; i++ {
		p.Append([]string{fmt.Sprintf("msg-%d", i)})
	}

	tests := []struct {
		name   string
		offset uint32
		limit  uint32
		want   int
	}{
		{name: "FromStart", offset: 0, limit: 3, want: 3},
		{name: "Middle", offset: 4, limit: 4, want: 4},
		{name: "LimitPastEnd", offset: 8, limit: 100, want: 2},
		{name: "WholeLog", offset: 0, limit: n, want: n},
		{name: "AtEnd", offset: n, limit: 5, want: 0},
		{name: "PastEnd", offset: n + 100, limit: 5, want: 0},
		{name: "ZeroLimit", offset: 0, limit: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := p.Read(tt.offset, tt.limit)
			require.Len(t, entries, tt.want)
			for i, entry := range entries {
				assert.Equal(t, tt.offset+uint32(i), entry.Offset)
				assert.Equal(t, fmt.Sprintf("msg-%d", entry.Offset), entry.Payload)
			}
		})
	}
}

func TestReadPastEndIsNotAnError(t *testing.T) {
	p := topic.NewPartition(0, "orders")
	assert.Empty(t, p.Read(0, 10))
	assert.Empty(t, p.Read(42, 1))
}

func TestBatchOffsetsAreContiguousUnderConcurrency(t *testing.T) {
	p := topic.NewPartition(0, "orders")

	const workers = 8
	const batches = 50
	const batchSize = 5

	var wg sync.WaitGroup
	results := make(chan []uint32, workers*batches)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := 0; b < batches; b++ {
				batch := make([]string, batchSize)
				for i := range batch {
					batch[i] = "x"
				}
				results <- p.Append(batch)
			}
		}()
	}
	wg.Wait()
	close(results)

	for offsets := range results {
		for i := 1; i < len(offsets); i++ {
			require.Equal(t, offsets[i-1]+1, offsets[i], "batch offsets must be a contiguous run")
		}
	}
}

func TestConcurrentAppendNoGapsNoDuplicates(t *testing.T) {
	p := topic.NewPartition(0, "orders")

	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	seen := make(chan uint32, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				offsets := p.Append([]string{fmt.Sprintf("w%d-%d", id, i)})
				seen <- offsets[0]
			}
		}(w)
	}
	wg.Wait()
	close(seen)

	total := workers * perWorker
	counts := make(map[uint32]int, total)
	for offset := range seen {
		counts[offset]++
	}

	require.Len(t, counts, total)
	for i := uint32(0); i < uint32(total); i++ {
		require.Equal(t, 1, counts[i], "offset %d assigned %d times", i, counts[i])
	}
	assert.Equal(t, uint32(total), p.NextOffset())
}

func TestOffsetContentMappingIsStable(t *testing.T) {
	p := topic.NewPartition(0, "orders")
	p.Append([]string{"first", "second"})

	before := p.Read(0, 2)
	p.Append([]string{"third"})
	after := p.Read(0, 2)

	assert.Equal(t, before, after, "appends must not disturb existing entries")
}
