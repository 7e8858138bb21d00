package topic

import "sync"

// Entry is one stored payload paired with its assigned offset.
type Entry struct {
	Offset  uint32
	Payload string
}

// Partition holds one shard of a topic as an append-only in-memory log.
// The offset of an entry is its position in the log; once assigned it
// never changes and the log never shrinks or reorders.
//
// A single per-partition mutex guards both appends and reads, so
// operations on distinct partitions never contend with each other.
type Partition struct {
	id      int
	topic   string
	mu      sync.Mutex
	entries []string
}

// NewPartition creates an empty partition.
func NewPartition(id int, topic string) *Partition {
	return &Partition{
		id:    id,
		topic: topic,
	}
}

func (p *Partition) ID() int {
	return p.id
}

// Append stores the whole batch in order under one critical section, so
// the assigned offsets are a contiguous run. It returns one offset per
// item, in input order.
func (p *Partition) Append(batch []string) []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	offsets := make([]uint32, len(batch))
	for i, payload := range batch {
		offsets[i] = uint32(len(p.entries))
		p.entries = append(p.entries, payload)
	}
	return offsets
}

// Read returns up to limit entries starting at offset, in ascending
// offset order. Reading at or past the end of the log returns an empty
// result, not an error; that is the steady state for a polling consumer.
func (p *Partition) Read(offset uint32, limit uint32) []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()

	if offset >= uint32(len(p.entries)) {
		return nil
	}

	end := uint64(offset) + uint64(limit)
	if end > uint64(len(p.entries)) {
		end = uint64(len(p.entries))
	}

	entries := make([]Entry, 0, end-uint64(offset))
	for i := offset; uint64(i) < end; i++ {
		entries = append(entries, Entry{Offset: i, Payload: p.entries[i]})
	}
	return entries
}

// NextOffset returns the offset the next appended entry will receive.
func (p *Partition) NextOffset() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return uint32(len(p.entries))
}
