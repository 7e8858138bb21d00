package protocol

// ActionKind is the request tag carried as the first byte of every frame.
type ActionKind uint8

const (
	ActionInvalid     ActionKind = 0
	ActionProduce     ActionKind = 1
	ActionConsume     ActionKind = 2
	ActionCreateTopic ActionKind = 3
	ActionQuit        ActionKind = 4
)

func (k ActionKind) String() string {
	switch k {
	case ActionProduce:
		return "PRODUCE"
	case ActionConsume:
		return "CONSUME"
	case ActionCreateTopic:
		return "CREATE_TOPIC"
	case ActionQuit:
		return "QUIT"
	default:
		return "INVALID"
	}
}

// Action is one decoded request. Kind selects which fields are meaningful;
// ConsumerID is carried by every request regardless of kind.
type Action struct {
	Kind       ActionKind
	Topic      string
	Partition  uint32
	Contents   []string // Produce: payloads to append, in order
	Offset     uint32   // Consume: first offset to read
	Limit      uint32   // Consume: maximum entries to return
	Partitions uint32   // CreateTopic: partition count
	ConsumerID string
}

// ResponseKind is the reply tag. A single request may elicit several
// responses concatenated into one frame.
type ResponseKind uint8

const (
	ResponseEmpty   ResponseKind = 1
	ResponseOffset  ResponseKind = 2
	ResponseContent ResponseKind = 3
	ResponseError   ResponseKind = 4
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseEmpty:
		return "EMPTY"
	case ResponseOffset:
		return "OFFSET"
	case ResponseContent:
		return "CONTENT"
	case ResponseError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Response is one reply value. Offset is set for Offset and Content kinds,
// Payload only for Content.
type Response struct {
	Kind    ResponseKind
	Offset  uint32
	Payload string
}
