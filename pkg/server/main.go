package server

import (
	"crypto/tls"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/downfa11-org/relay/pkg/config"
	"github.com/downfa11-org/relay/pkg/controller"
	"github.com/downfa11-org/relay/pkg/metrics"
	"github.com/downfa11-org/relay/pkg/topic"
	"github.com/downfa11-org/relay/util"
)

// RunServer starts the broker listener with optional TLS and frame
// compression. Each accepted connection is served by the worker pool,
// request/reply cycles until Quit or a read error.
func RunServer(cfg *config.Config, tm *topic.TopicManager) error {
	if cfg.EnableExporter {
		metrics.StartMetricsServer(cfg.ExporterPort)
		util.Info("Prometheus exporter started on port %d", cfg.ExporterPort)
	} else {
		util.Info("Exporter disabled")
	}

	addr := fmt.Sprintf(":%d", cfg.BrokerPort)
	var ln net.Listener
	var err error
	if cfg.UseTLS {
		tlsConfig := &tls.Config{Certificates: []tls.Certificate{cfg.TLSCert}}
		ln, err = tls.Listen("tcp", addr, tlsConfig)
	} else {
		ln, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return err
	}

	util.Info("Broker listening on %s (TLS=%v, compression=%s)", addr, cfg.UseTLS, cfg.CompressionType)

	workerCh := make(chan net.Conn, cfg.MaxWorkers)
	for i := 0; i < cfg.MaxWorkers; i++ {
		go func() {
			for conn := range workerCh {
				HandleConnection(conn, tm, cfg)
			}
		}()
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			util.Warn("Accept error: %v", err)
			continue
		}
		workerCh <- conn
	}
}

// HandleConnection serves one client until it quits or the socket fails.
// Request frames are read into a receive buffer of fixed capacity; a
// frame whose declared length exceeds it is a framing violation and
// tears the connection down.
func HandleConnection(conn net.Conn, tm *topic.TopicManager, cfg *config.Config) {
	defer conn.Close()

	metrics.ActiveConnections.Inc()
	defer metrics.ActiveConnections.Dec()

	handler := controller.NewCommandHandler(tm)
	ctx := controller.NewClientContext(uuid.NewString())

	lenBuf := make([]byte, 4)
	recvBuf := make([]byte, cfg.ReadBufferSize)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout)); err != nil {
			util.Warn("client %s: set read deadline: %v", ctx.ClientID, err)
			return
		}

		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			if err != io.EOF {
				util.Debug("client %s: read length: %v", ctx.ClientID, err)
			}
			return
		}

		msgLen := binary.BigEndian.Uint32(lenBuf)
		if msgLen > uint32(len(recvBuf)) {
			util.Warn("client %s: frame of %d bytes exceeds receive buffer %d, closing",
				ctx.ClientID, msgLen, len(recvBuf))
			return
		}

		msgBuf := recvBuf[:msgLen]
		if _, err := io.ReadFull(conn, msgBuf); err != nil {
			util.Warn("client %s: read body: %v", ctx.ClientID, err)
			return
		}

		data, err := util.DecompressMessage(msgBuf, cfg.CompressionType)
		if err != nil {
			util.Warn("client %s: decompress: %v", ctx.ClientID, err)
			return
		}

		reply, quit := handler.HandleRequest(data, ctx)
		if quit {
			return
		}

		out, err := util.CompressMessage(reply, cfg.CompressionType)
		if err != nil {
			util.Error("client %s: compress reply: %v", ctx.ClientID, err)
			return
		}
		if err := util.WriteWithLength(conn, out); err != nil {
			util.Warn("client %s: write reply: %v", ctx.ClientID, err)
			return
		}
	}
}
