// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package wire

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"

	"github.com/hashicorp/go-msgpack/codec"
)

// Wire tags for the single-entry Protocol map and the name frame of the
// four-frame envelope.
const (
	TagNamedBinary = "namedBinary"
	TagJSON        = "json"
	TagPing        = "ping"
	TagPong        = "pong"
)

// ErrReadyNotEncodable is returned when something tries to put a Ready
// frame on the wire. Ready is a local-only signal — see the design notes on
// keeping it out of the transport codec.
var ErrReadyNotEncodable = errors.New("wire: Ready is a local signal and cannot be encoded")

var mh codec.MsgpackHandle

func init() {
	// Decode nested maps as map[string]interface{} so fromTagged can read
	// the fields of a ping, pong or namedBinary payload by name.
	mh.MapType = reflect.TypeOf(map[string]interface{}(nil))
}

type namedBinaryWire struct {
	Name []byte `codec:"name"`
	Data []byte `codec:"data"`
}

type pingWire struct {
	Sent float64 `codec:"sent"`
}

type pongWire struct {
	Orig float64 `codec:"orig"`
	Recv float64 `codec:"recv"`
}

func marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, &mh)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func unmarshal(data []byte, v interface{}) error {
	dec := codec.NewDecoder(bytes.NewReader(data), &mh)
	return dec.Decode(v)
}

// split returns the wire tag and the inner MessagePack-encodable value for
// f, or an error if f cannot go on the wire (Ready, or an unknown type).
func split(f Frame) (string, interface{}, error) {
	switch v := f.(type) {
	case NamedBinary:
		return TagNamedBinary, namedBinaryWire{Name: v.Name, Data: v.Data}, nil
	case JSON:
		return TagJSON, []byte(v), nil
	case Ping:
		return TagPing, pingWire{Sent: v.Sent}, nil
	case Pong:
		return TagPong, pongWire{Orig: v.Orig, Recv: v.Recv}, nil
	case Ready:
		return "", nil, ErrReadyNotEncodable
	default:
		return "", nil, fmt.Errorf("wire: unknown frame type %T", f)
	}
}

// Encode serializes a Frame as MessagePack of a single-entry map
// {tag: payload}, per the Protocol wire representation.
func Encode(f Frame) ([]byte, error) {
	tag, payload, err := split(f)
	if err != nil {
		return nil, err
	}
	return marshal(map[string]interface{}{tag: payload})
}

// Decode parses bytes produced by Encode back into a Frame.
func Decode(data []byte) (Frame, error) {
	var raw map[string]interface{}
	if err := unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("wire: decode: %w", err)
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("wire: expected single-entry map, got %d entries", len(raw))
	}
	for tag, value := range raw {
		return fromTagged(tag, value)
	}
	panic("wire: unreachable")
}

func fromTagged(tag string, value interface{}) (Frame, error) {
	switch tag {
	case TagNamedBinary:
		m, ok := value.(map[string]interface{})
		if !ok {
			return nil, errors.New("wire: namedBinary payload is not a map")
		}
		name, ok := asBytes(m["name"])
		if !ok {
			return nil, errors.New("wire: namedBinary.name is not bytes")
		}
		data, ok := asBytes(m["data"])
		if !ok {
			return nil, errors.New("wire: namedBinary.data is not bytes")
		}
		return NamedBinary{Name: name, Data: data}, nil
	case TagJSON:
		b, ok := asBytes(value)
		if !ok {
			return nil, errors.New("wire: json payload is not bytes")
		}
		return JSON(b), nil
	case TagPing:
		m, ok := value.(map[string]interface{})
		if !ok {
			return nil, errors.New("wire: ping payload is not a map")
		}
		sent, ok := asFloat(m["sent"])
		if !ok {
			return nil, errors.New("wire: ping.sent is not numeric")
		}
		return Ping{Sent: sent}, nil
	case TagPong:
		m, ok := value.(map[string]interface{})
		if !ok {
			return nil, errors.New("wire: pong payload is not a map")
		}
		orig, ok := asFloat(m["orig"])
		if !ok {
			return nil, errors.New("wire: pong.orig is not numeric")
		}
		recv, ok := asFloat(m["recv"])
		if !ok {
			return nil, errors.New("wire: pong.recv is not numeric")
		}
		return Pong{Orig: orig, Recv: recv}, nil
	default:
		return nil, fmt.Errorf("wire: unknown tag %q", tag)
	}
}

func asBytes(v interface{}) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case string:
		return []byte(b), true
	default:
		return nil, false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// FrameName returns the ASCII tag used as the name frame of the four-frame
// wire envelope. Ready has no wire representation.
func FrameName(f Frame) (string, error) {
	tag, _, err := split(f)
	if err != nil {
		return "", err
	}
	return tag, nil
}

// FramePayload returns the payload frame bytes for the four-frame wire
// envelope: MessagePack for NamedBinary/Ping/Pong, raw UTF-8 bytes for JSON.
func FramePayload(f Frame) ([]byte, error) {
	switch v := f.(type) {
	case NamedBinary:
		return marshal(namedBinaryWire{Name: v.Name, Data: v.Data})
	case JSON:
		return []byte(v), nil
	case Ping:
		return marshal(pingWire{Sent: v.Sent})
	case Pong:
		return marshal(pongWire{Orig: v.Orig, Recv: v.Recv})
	case Ready:
		return nil, ErrReadyNotEncodable
	default:
		return nil, fmt.Errorf("wire: unknown frame type %T", f)
	}
}

// DecodeFrame reconstructs a Frame from the name and payload parts of a
// four-frame wire message.
func DecodeFrame(name string, payload []byte) (Frame, error) {
	switch name {
	case TagNamedBinary:
		var w namedBinaryWire
		if err := unmarshal(payload, &w); err != nil {
			return nil, fmt.Errorf("wire: decode namedBinary: %w", err)
		}
		return NamedBinary{Name: w.Name, Data: w.Data}, nil
	case TagJSON:
		return JSON(payload), nil
	case TagPing:
		var w pingWire
		if err := unmarshal(payload, &w); err != nil {
			return nil, fmt.Errorf("wire: decode ping: %w", err)
		}
		return Ping{Sent: w.Sent}, nil
	case TagPong:
		var w pongWire
		if err := unmarshal(payload, &w); err != nil {
			return nil, fmt.Errorf("wire: decode pong: %w", err)
		}
		return Pong{Orig: w.Orig, Recv: w.Recv}, nil
	default:
		return nil, fmt.Errorf("wire: unknown frame name %q", name)
	}
}
