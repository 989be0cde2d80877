// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package wire implements the Protocol tagged sum exchanged between a
// nucleus node and its local peer-to-peer daemon, and its MessagePack
// framing.
package wire

// Frame is the closed set of values that can travel over the IPC socket,
// plus the synthetic Ready signal injected locally by ipcnet. Exactly one
// concrete type is active at a time.
type Frame interface {
	isFrame()
}

// NamedBinary carries an opaque binary envelope identified by name.
type NamedBinary struct {
	Name []byte
	Data []byte
}

func (NamedBinary) isFrame() {}

// JSON carries an opaque UTF-8 JSON control or user payload.
type JSON []byte

func (JSON) isFrame() {}

// Ping is a liveness probe carrying the sender's send time.
type Ping struct {
	Sent float64
}

func (Ping) isFrame() {}

// Pong echoes a Ping plus the receiver's local receive time.
type Pong struct {
	Orig float64
	Recv float64
}

func (Pong) isFrame() {}

// Ready is a synthetic local signal meaning the handshake has completed.
// It is never transmitted on the wire; ipcnet injects it directly into the
// application handler.
type Ready struct{}

func (Ready) isFrame() {}

// FromString builds a JSON frame from a string's UTF-8 bytes.
func FromString(s string) JSON {
	return JSON([]byte(s))
}

// IsJSON reports whether f is a JSON frame.
func IsJSON(f Frame) bool {
	_, ok := f.(JSON)
	return ok
}

// AsJSONString returns the JSON frame's payload as a string. It panics if f
// is not a JSON frame — this is a programming error, not a recoverable
// condition, matching the other simple_access-style accessors below.
func AsJSONString(f Frame) string {
	j, ok := f.(JSON)
	if !ok {
		panic("wire: AsJSONString called with non-JSON frame")
	}
	return string(j)
}

// IsPing reports whether f is a Ping frame.
func IsPing(f Frame) bool {
	_, ok := f.(Ping)
	return ok
}

// AsPing returns f as a Ping. It panics if f is not a Ping frame.
func AsPing(f Frame) Ping {
	p, ok := f.(Ping)
	if !ok {
		panic("wire: AsPing called with non-Ping frame")
	}
	return p
}

// IsPong reports whether f is a Pong frame.
func IsPong(f Frame) bool {
	_, ok := f.(Pong)
	return ok
}

// AsPong returns f as a Pong. It panics if f is not a Pong frame.
func AsPong(f Frame) Pong {
	p, ok := f.(Pong)
	if !ok {
		panic("wire: AsPong called with non-Pong frame")
	}
	return p
}

// IsNamedBinary reports whether f is a NamedBinary frame.
func IsNamedBinary(f Frame) bool {
	_, ok := f.(NamedBinary)
	return ok
}

// AsNamedBinary returns f as a NamedBinary. It panics if f is not one.
func AsNamedBinary(f Frame) NamedBinary {
	nb, ok := f.(NamedBinary)
	if !ok {
		panic("wire: AsNamedBinary called with non-NamedBinary frame")
	}
	return nb
}

// IsReady reports whether f is the synthetic Ready signal.
func IsReady(f Frame) bool {
	_, ok := f.(Ready)
	return ok
}
