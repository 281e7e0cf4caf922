package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is a batch that is already shaped as the wire payload.
type Payload map[string]any

// Serializable is implemented by records that produce their own JSON encoding.
type Serializable interface {
	JSON() ([]byte, error)
}

// RawItem is a record that arrives already encoded as JSON.
type RawItem json.RawMessage

// JSON returns the encoded record.
func (r RawItem) JSON() ([]byte, error) {
	if len(r) == 0 {
		return nil, fmt.Errorf("empty record")
	}
	return []byte(r), nil
}

// BuildPayload normalizes a batch into the value sent as the request body.
//
// Payloads and plain maps are used as-is. Supported sequences produce an
// ordered slice in which every Serializable record is replaced by its decoded
// JSON value and every other record is kept unchanged. Any other input yields
// ErrUnsupportedInput. The batch itself is never modified.
func BuildPayload(batch any) (any, error) {
	switch b := batch.(type) {
	case Payload:
		if b == nil {
			return Payload{}, nil
		}
		return b, nil
	case map[string]any:
		if b == nil {
			return Payload{}, nil
		}
		return Payload(b), nil
	case []any:
		return serializeItems(len(b), func(i int) any { return b[i] })
	case []map[string]any:
		return serializeItems(len(b), func(i int) any { return b[i] })
	case []Payload:
		return serializeItems(len(b), func(i int) any { return b[i] })
	case []Serializable:
		return serializeItems(len(b), func(i int) any { return b[i] })
	case []ProcessedAgentData:
		return serializeItems(len(b), func(i int) any { return b[i] })
	case []*ProcessedAgentData:
		return serializeItems(len(b), func(i int) any { return b[i] })
	case []RawItem:
		return serializeItems(len(b), func(i int) any { return b[i] })
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedInput, batch)
	}
}

func serializeItems(n int, at func(int) any) ([]any, error) {
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := serializeItem(at(i))
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrSerialization, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func serializeItem(item any) (v any, err error) {
	s, ok := item.(Serializable)
	if !ok {
		return item, nil
	}

	// A nil pointer with a value-receiver JSON method panics when called.
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("encode record: %v", r)
		}
	}()

	raw, err := s.JSON()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode record: trailing data")
	}
	return v, nil
}

// DecodeBatch parses an encoded batch. A JSON object becomes a Payload and a
// JSON array becomes a sequence of RawItem records.
func DecodeBatch(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedInput)
	}

	switch trimmed[0] {
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var p Payload
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return p, nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		items := make([]any, len(raw))
		for i, r := range raw {
			items[i] = RawItem(r)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%w: top-level JSON must be an object or an array", ErrUnsupportedInput)
	}
}
