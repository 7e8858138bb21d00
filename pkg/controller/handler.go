package controller

import (
	"time"

	"github.com/downfa11-org/relay/pkg/metrics"
	"github.com/downfa11-org/relay/pkg/protocol"
	"github.com/downfa11-org/relay/pkg/topic"
	"github.com/downfa11-org/relay/util"
)

// CommandHandler is the seam between the decoded protocol and storage.
// It holds no per-request state; every dispatch is pure routing into the
// topic registry.
type CommandHandler struct {
	TopicManager *topic.TopicManager
}

func NewCommandHandler(tm *topic.TopicManager) *CommandHandler {
	return &CommandHandler{TopicManager: tm}
}

// HandleRequest decodes one request frame and returns the serialized
// reply. Every request that is not a Quit produces at least one byte of
// reply: if dispatch yields nothing, a single Empty response is
// substituted. quit reports that the connection should close without
// writing a reply.
func (ch *CommandHandler) HandleRequest(buf []byte, ctx *ClientContext) (reply []byte, quit bool) {
	action, err := protocol.DecodeAction(buf)
	if err != nil {
		util.Debug("client %s sent undecodable request: %v", ctx.ClientID, err)
	}
	if action.ConsumerID != "" {
		ctx.ConsumerID = action.ConsumerID
	}

	resps, quit := ch.Dispatch(action, ctx)
	if quit {
		return nil, true
	}

	reply = protocol.EncodeResponses(resps)
	if len(reply) == 0 {
		reply = protocol.EncodeResponse(protocol.Response{Kind: protocol.ResponseEmpty})
	}
	return reply, false
}

// Dispatch routes one action to the registry and produces its responses.
// Storage failures (unknown topic, out-of-range partition) are recovered
// here and turned into a typed Error response; they never cross the wire
// as crashes.
func (ch *CommandHandler) Dispatch(action protocol.Action, ctx *ClientContext) ([]protocol.Response, bool) {
	switch action.Kind {
	case protocol.ActionProduce:
		return ch.handleProduce(action, ctx), false

	case protocol.ActionConsume:
		return ch.handleConsume(action, ctx), false

	case protocol.ActionCreateTopic:
		ch.TopicManager.CreateTopic(action.Topic, int(action.Partitions))
		return []protocol.Response{{Kind: protocol.ResponseEmpty}}, false

	case protocol.ActionQuit:
		util.Debug("client %s (consumer '%s') quit", ctx.ClientID, ctx.ConsumerID)
		return nil, true

	default:
		metrics.InvalidRequests.Inc()
		return []protocol.Response{{Kind: protocol.ResponseError}}, false
	}
}

func (ch *CommandHandler) handleProduce(action protocol.Action, ctx *ClientContext) []protocol.Response {
	start := time.Now()

	p, err := ch.TopicManager.Lookup(action.Topic, action.Partition)
	if err != nil {
		util.Debug("produce from client %s failed: %v", ctx.ClientID, err)
		return []protocol.Response{{Kind: protocol.ResponseError}}
	}

	offsets := p.Append(action.Contents)

	resps := make([]protocol.Response, len(offsets))
	for i, offset := range offsets {
		resps[i] = protocol.Response{Kind: protocol.ResponseOffset, Offset: offset}
	}

	metrics.PushProduceMetric(len(offsets), time.Since(start).Seconds())
	return resps
}

func (ch *CommandHandler) handleConsume(action protocol.Action, ctx *ClientContext) []protocol.Response {
	p, err := ch.TopicManager.Lookup(action.Topic, action.Partition)
	if err != nil {
		util.Debug("consume from client %s failed: %v", ctx.ClientID, err)
		return []protocol.Response{{Kind: protocol.ResponseError}}
	}

	entries := p.Read(action.Offset, action.Limit)
	if len(entries) == 0 {
		return []protocol.Response{{Kind: protocol.ResponseEmpty}}
	}

	resps := make([]protocol.Response, len(entries))
	for i, entry := range entries {
		resps[i] = protocol.Response{
			Kind:    protocol.ResponseContent,
			Offset:  entry.Offset,
			Payload: entry.Payload,
		}
	}

	metrics.MessagesConsumed.Add(float64(len(entries)))
	return resps
}
