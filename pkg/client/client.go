package client

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/downfa11-org/relay/pkg/protocol"
	"github.com/downfa11-org/relay/util"
)

// ErrBroker is returned when the broker answers a request with an Error
// response.
var ErrBroker = errors.New("broker returned error")

// Record is one consumed entry.
type Record struct {
	Offset  uint32
	Payload string
}

// BrokerClient wraps low-level broker communication.
type BrokerClient struct {
	addrs       []string
	conn        net.Conn
	mu          sync.Mutex
	closed      bool
	consumerID  string
	compression string
	timeout     time.Duration
}

func NewBrokerClient(addrs []string, consumerID string) *BrokerClient {
	if consumerID == "" {
		consumerID = "consumer-" + uuid.NewString()
	}
	return &BrokerClient{
		addrs:       addrs,
		consumerID:  consumerID,
		compression: "none",
		timeout:     5 * time.Second,
	}
}

// SetCompression must match the broker's compression_type.
func (bc *BrokerClient) SetCompression(compressionType string) {
	bc.compression = compressionType
}

func (bc *BrokerClient) ConsumerID() string {
	return bc.consumerID
}

func (bc *BrokerClient) connect() error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.conn != nil && !bc.closed {
		return nil
	}

	var lastErr error
	for _, addr := range bc.addrs {
		conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
		if err == nil {
			if bc.conn != nil {
				bc.conn.Close()
			}
			bc.conn = conn
			bc.closed = false
			return nil
		}
		lastErr = err
	}

	return fmt.Errorf("failed to connect to any broker in %v: %w", bc.addrs, lastErr)
}

func (bc *BrokerClient) Close() {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.conn != nil {
		bc.conn.Close()
		bc.conn = nil
	}
	bc.closed = true
}

// roundTrip sends one action and reads back the reply frame.
func (bc *BrokerClient) roundTrip(action protocol.Action) ([]protocol.Response, error) {
	if err := bc.connect(); err != nil {
		return nil, err
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.conn == nil || bc.closed {
		return nil, fmt.Errorf("connection is closed")
	}

	action.ConsumerID = bc.consumerID
	data, err := util.CompressMessage(protocol.EncodeAction(action), bc.compression)
	if err != nil {
		return nil, fmt.Errorf("compress request: %w", err)
	}
	if err := util.WriteWithLength(bc.conn, data); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if err := bc.conn.SetReadDeadline(time.Now().Add(bc.timeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	replyBuf, err := util.ReadWithLength(bc.conn)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	reply, err := util.DecompressMessage(replyBuf, bc.compression)
	if err != nil {
		return nil, fmt.Errorf("decompress reply: %w", err)
	}

	return protocol.DecodeResponses(reply)
}

// CreateTopic registers a topic with the given partition count.
// Creating an existing topic succeeds and leaves it untouched.
func (bc *BrokerClient) CreateTopic(topicName string, partitions uint32) error {
	resps, err := bc.roundTrip(protocol.Action{
		Kind:       protocol.ActionCreateTopic,
		Topic:      topicName,
		Partitions: partitions,
	})
	if err != nil {
		return err
	}
	if len(resps) != 1 || resps[0].Kind != protocol.ResponseEmpty {
		return fmt.Errorf("create topic '%s': %w", topicName, ErrBroker)
	}
	return nil
}

// Produce appends the batch to one partition and returns the assigned
// offsets, in input order.
func (bc *BrokerClient) Produce(topicName string, partition uint32, contents []string) ([]uint32, error) {
	resps, err := bc.roundTrip(protocol.Action{
		Kind:      protocol.ActionProduce,
		Topic:     topicName,
		Partition: partition,
		Contents:  contents,
	})
	if err != nil {
		return nil, err
	}

	offsets := make([]uint32, 0, len(resps))
	for _, resp := range resps {
		if resp.Kind != protocol.ResponseOffset {
			return nil, fmt.Errorf("produce to %s[%d]: %w", topicName, partition, ErrBroker)
		}
		offsets = append(offsets, resp.Offset)
	}
	return offsets, nil
}

// Consume reads up to limit entries starting at offset. A caught-up
// partition yields an empty result, not an error.
func (bc *BrokerClient) Consume(topicName string, partition, offset, limit uint32) ([]Record, error) {
	resps, err := bc.roundTrip(protocol.Action{
		Kind:      protocol.ActionConsume,
		Topic:     topicName,
		Partition: partition,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, resp := range resps {
		switch resp.Kind {
		case protocol.ResponseContent:
			records = append(records, Record{Offset: resp.Offset, Payload: resp.Payload})
		case protocol.ResponseEmpty:
			// caught up
		default:
			return nil, fmt.Errorf("consume %s[%d]: %w", topicName, partition, ErrBroker)
		}
	}
	return records, nil
}

// Quit tells the broker to close this connection. No reply is read.
func (bc *BrokerClient) Quit() error {
	if err := bc.connect(); err != nil {
		return err
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.conn == nil || bc.closed {
		return nil
	}

	action := protocol.Action{Kind: protocol.ActionQuit, ConsumerID: bc.consumerID}
	data, err := util.CompressMessage(protocol.EncodeAction(action), bc.compression)
	if err != nil {
		return fmt.Errorf("compress request: %w", err)
	}
	if err := util.WriteWithLength(bc.conn, data); err != nil {
		return fmt.Errorf("send quit: %w", err)
	}

	bc.conn.Close()
	bc.conn = nil
	bc.closed = true
	return nil
}
