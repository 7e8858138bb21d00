// Package protocol implements the binary wire format of the broker.
//
// All multi-byte integers are big endian. Strings are length-prefixed
// UTF-8: [u32 length][length bytes]. A request frame is
// [u8 tag][tag-specific fields][consumer id string]; the consumer id is
// read after the tag-specific fields regardless of the action kind.
// A reply frame is one or more serialized responses concatenated.
package protocol

import "fmt"

// DecodeAction parses one request frame. A malformed frame (unknown tag,
// or a field whose declared length passes the end of the buffer) yields
// an Invalid action together with a non-nil error; the decoder never
// reads past the declared buffer length. For an unrecognized tag no
// tag-specific bytes are consumed, but the trailing consumer id is still
// read to keep the cursor discipline uniform.
func DecodeAction(buf []byte) (Action, error) {
	r := NewReader(buf)
	action := Action{Kind: ActionInvalid}

	tag, err := r.ReadUint8()
	if err != nil {
		return action, fmt.Errorf("read action tag: %w", err)
	}

	var decodeErr error
	switch ActionKind(tag) {
	case ActionProduce:
		action.Kind = ActionProduce
		decodeErr = decodeProduce(r, &action)
	case ActionConsume:
		action.Kind = ActionConsume
		decodeErr = decodeConsume(r, &action)
	case ActionCreateTopic:
		action.Kind = ActionCreateTopic
		decodeErr = decodeCreateTopic(r, &action)
	case ActionQuit:
		action.Kind = ActionQuit
	default:
		decodeErr = fmt.Errorf("%w: %d", ErrUnknownTag, tag)
	}
	if decodeErr != nil {
		action.Kind = ActionInvalid
	}

	consumerID, err := r.ReadString()
	if err != nil {
		if decodeErr == nil {
			decodeErr = fmt.Errorf("read consumer id: %w", err)
		}
		return Action{Kind: ActionInvalid}, decodeErr
	}
	action.ConsumerID = consumerID

	if decodeErr != nil {
		return Action{Kind: ActionInvalid, ConsumerID: consumerID}, decodeErr
	}
	return action, nil
}

func decodeProduce(r *Reader, action *Action) error {
	var err error
	if action.Topic, err = r.ReadString(); err != nil {
		return fmt.Errorf("read topic: %w", err)
	}
	if action.Partition, err = r.ReadUint32(); err != nil {
		return fmt.Errorf("read partition: %w", err)
	}
	count, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("read content count: %w", err)
	}
	for i := uint32(0); i < count; i++ {
		content, err := r.ReadString()
		if err != nil {
			return fmt.Errorf("read content %d: %w", i, err)
		}
		action.Contents = append(action.Contents, content)
	}
	return nil
}

func decodeConsume(r *Reader, action *Action) error {
	var err error
	if action.Topic, err = r.ReadString(); err != nil {
		return fmt.Errorf("read topic: %w", err)
	}
	if action.Partition, err = r.ReadUint32(); err != nil {
		return fmt.Errorf("read partition: %w", err)
	}
	if action.Offset, err = r.ReadUint32(); err != nil {
		return fmt.Errorf("read offset: %w", err)
	}
	if action.Limit, err = r.ReadUint32(); err != nil {
		return fmt.Errorf("read limit: %w", err)
	}
	return nil
}

func decodeCreateTopic(r *Reader, action *Action) error {
	var err error
	if action.Topic, err = r.ReadString(); err != nil {
		return fmt.Errorf("read topic: %w", err)
	}
	if action.Partitions, err = r.ReadUint32(); err != nil {
		return fmt.Errorf("read partition count: %w", err)
	}
	return nil
}

// EncodeAction is the structural inverse of DecodeAction:
// DecodeAction(EncodeAction(a)) returns a for every constructible action.
func EncodeAction(action Action) []byte {
	w := NewWriter()
	w.PutUint8(uint8(action.Kind))

	switch action.Kind {
	case ActionProduce:
		w.PutString(action.Topic)
		w.PutUint32(action.Partition)
		w.PutUint32(uint32(len(action.Contents)))
		for _, content := range action.Contents {
			w.PutString(content)
		}
	case ActionConsume:
		w.PutString(action.Topic)
		w.PutUint32(action.Partition)
		w.PutUint32(action.Offset)
		w.PutUint32(action.Limit)
	case ActionCreateTopic:
		w.PutString(action.Topic)
		w.PutUint32(action.Partitions)
	case ActionQuit, ActionInvalid:
		// tag only
	}

	w.PutString(action.ConsumerID)
	return w.Bytes()
}

// EncodeResponse serializes a single response value.
func EncodeResponse(resp Response) []byte {
	w := NewWriter()
	w.PutUint8(uint8(resp.Kind))

	switch resp.Kind {
	case ResponseOffset:
		w.PutUint32(resp.Offset)
	case ResponseContent:
		w.PutUint32(resp.Offset)
		w.PutString(resp.Payload)
	case ResponseEmpty, ResponseError:
		// tag only
	}
	return w.Bytes()
}

// EncodeResponses concatenates the serialized form of every response
// into one reply frame.
func EncodeResponses(resps []Response) []byte {
	w := NewWriter()
	for _, resp := range resps {
		w.b = append(w.b, EncodeResponse(resp)...)
	}
	return w.Bytes()
}

// DecodeResponses parses a reply frame back into its response values.
func DecodeResponses(buf []byte) ([]Response, error) {
	r := NewReader(buf)
	var resps []Response

	for r.Remaining() > 0 {
		tag, err := r.ReadUint8()
		if err != nil {
			return nil, fmt.Errorf("read response tag: %w", err)
		}
		resp := Response{Kind: ResponseKind(tag)}

		switch resp.Kind {
		case ResponseEmpty, ResponseError:
		case ResponseOffset:
			if resp.Offset, err = r.ReadUint32(); err != nil {
				return nil, fmt.Errorf("read offset: %w", err)
			}
		case ResponseContent:
			if resp.Offset, err = r.ReadUint32(); err != nil {
				return nil, fmt.Errorf("read offset: %w", err)
			}
			if resp.Payload, err = r.ReadString(); err != nil {
				return nil, fmt.Errorf("read payload: %w", err)
			}
		default:
			return nil, fmt.Errorf("%w: response tag %d", ErrUnknownTag, tag)
		}
		resps = append(resps, resp)
	}
	return resps, nil
}
