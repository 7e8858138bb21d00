package server_test

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/downfa11-org/relay/pkg/config"
	"github.com/downfa11-org/relay/pkg/protocol"
	"github.com/downfa11-org/relay/pkg/server"
	"github.com/downfa11-org/relay/pkg/topic"
	"github.com/downfa11-org/relay/util"
)

func testConfig() *config.Config {
	cfg := &config.Config{ReadTimeout: 2 * time.Second}
	cfg.Normalize()
	return cfg
}

// startPipeBroker wires HandleConnection to one end of a pipe and hands
// back the client end.
func startPipeBroker(t *testing.T, cfg *config.Config, tm *topic.TopicManager) net.Conn {
	t.Helper()

	clientConn, serverConn := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		server.HandleConnection(serverConn, tm, cfg)
	}()
	t.Cleanup(func() {
		clientConn.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("HandleConnection did not return")
		}
	})
	return clientConn
}

func sendAction(t *testing.T, conn net.Conn, cfg *config.Config, action protocol.Action) []protocol.Response {
	t.Helper()

	data, err := util.CompressMessage(protocol.EncodeAction(action), cfg.CompressionType)
	require.NoError(t, err)
	require.NoError(t, util.WriteWithLength(conn, data))

	replyBuf, err := util.ReadWithLength(conn)
	require.NoError(t, err)
	reply, err := util.DecompressMessage(replyBuf, cfg.CompressionType)
	require.NoError(t, err)

	resps, err := protocol.DecodeResponses(reply)
	require.NoError(t, err)
	return resps
}

func TestHandleConnectionProduceConsume(t *testing.T) {
	cfg := testConfig()
	tm := topic.NewTopicManager()
	conn := startPipeBroker(t, cfg, tm)

	resps := sendAction(t, conn, cfg, protocol.Action{
		Kind: protocol.ActionCreateTopic, Topic: "orders", Partitions: 2, ConsumerID: "c1",
	})
	require.Equal(t, []protocol.Response{{Kind: protocol.ResponseEmpty}}, resps)

	resps = sendAction(t, conn, cfg, protocol.Action{
		Kind: protocol.ActionProduce, Topic: "orders", Partition: 0,
		Contents: []string{"x", "y"}, ConsumerID: "c1",
	})
	require.Equal(t, []protocol.Response{
		{Kind: protocol.ResponseOffset, Offset: 0},
		{Kind: protocol.ResponseOffset, Offset: 1},
	}, resps)

	resps = sendAction(t, conn, cfg, protocol.Action{
		Kind: protocol.ActionConsume, Topic: "orders", Partition: 0,
		Offset: 0, Limit: 10, ConsumerID: "c1",
	})
	require.Equal(t, []protocol.Response{
		{Kind: protocol.ResponseContent, Offset: 0, Payload: "x"},
		{Kind: protocol.ResponseContent, Offset: 1, Payload: "y"},
	}, resps)
}

func TestHandleConnectionQuitClosesConnection(t *testing.T) {
	cfg := testConfig()
	conn := startPipeBroker(t, cfg, topic.NewTopicManager())

	data, err := util.CompressMessage(protocol.EncodeAction(protocol.Action{
		Kind: protocol.ActionQuit, ConsumerID: "c1",
	}), cfg.CompressionType)
	require.NoError(t, err)
	require.NoError(t, util.WriteWithLength(conn, data))

	// No reply is written for Quit; the broker closes its end.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestHandleConnectionMalformedFrameKeepsConnection(t *testing.T) {
	cfg := testConfig()
	tm := topic.NewTopicManager()
	tm.CreateTopic("orders", 1)
	conn := startPipeBroker(t, cfg, tm)

	// Garbage bytes inside a well-formed frame yield a single Error.
	require.NoError(t, util.WriteWithLength(conn, []byte{250, 1, 2, 3}))
	replyBuf, err := util.ReadWithLength(conn)
	require.NoError(t, err)
	resps, err := protocol.DecodeResponses(replyBuf)
	require.NoError(t, err)
	require.Equal(t, []protocol.Response{{Kind: protocol.ResponseError}}, resps)

	// The connection still serves the next request.
	resps = sendAction(t, conn, cfg, protocol.Action{
		Kind: protocol.ActionProduce, Topic: "orders", Contents: []string{"ok"}, ConsumerID: "c1",
	})
	require.Equal(t, []protocol.Response{{Kind: protocol.ResponseOffset, Offset: 0}}, resps)
}

func TestHandleConnectionOversizedFrame(t *testing.T) {
	cfg := testConfig()
	cfg.ReadBufferSize = 16
	conn := startPipeBroker(t, cfg, topic.NewTopicManager())

	// Declare a frame larger than the receive buffer. The broker drops
	// the connection without reading the body.
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, 17)
	_, err := conn.Write(header)
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestHandleConnectionSnappyCompression(t *testing.T) {
	cfg := testConfig()
	cfg.CompressionType = "snappy"
	tm := topic.NewTopicManager()
	tm.CreateTopic("orders", 1)
	conn := startPipeBroker(t, cfg, tm)

	resps := sendAction(t, conn, cfg, protocol.Action{
		Kind: protocol.ActionProduce, Topic: "orders",
		Contents: []string{"compressed payload"}, ConsumerID: "c1",
	})
	require.Equal(t, []protocol.Response{{Kind: protocol.ResponseOffset, Offset: 0}}, resps)

	resps = sendAction(t, conn, cfg, protocol.Action{
		Kind: protocol.ActionConsume, Topic: "orders", Limit: 1, ConsumerID: "c1",
	})
	require.Equal(t, []protocol.Response{
		{Kind: protocol.ResponseContent, Offset: 0, Payload: "compressed payload"},
	}, resps)
}
