package topic

// Topic represents a named message stream divided into partitions.
// The partition count is fixed at creation; indices are dense,
// 0..len(Partitions)-1.
type Topic struct {
	Name       string
	Partitions []*Partition
}

// NewTopic creates a topic with partitionCount empty partitions.
func NewTopic(name string, partitionCount int) *Topic {
	partitions := make([]*Partition, partitionCount)
	for i := 0; i < partitionCount; i++ {
		partitions[i] = NewPartition(i, name)
	}
	return &Topic{
		Name:       name,
		Partitions: partitions,
	}
}
