package controller

// ClientContext carries per-connection state across requests.
type ClientContext struct {
	ClientID   string // connection-scoped id, assigned at accept time
	ConsumerID string // last consumer id seen on the wire
}

func NewClientContext(clientID string) *ClientContext {
	return &ClientContext{ClientID: clientID}
}
