// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package socket provides the minimal message-oriented datagram socket
// abstraction the IPC client worker is built on, plus a real local-transport
// implementation and an in-memory mock for tests.
package socket

import "errors"

// Socket is a minimal message-oriented datagram socket: connect, send a
// multipart message, receive a multipart message, poll for readiness, and
// close. send is all-or-nothing per call; recv must only be called after
// poll reports readiness; frame ordering within a message is preserved.
type Socket interface {
	// Connect establishes the underlying transport to uri.
	Connect(uri string) error
	// Send transmits frames as a single multipart message.
	Send(frames [][]byte) error
	// Recv returns the next multipart message. Callers must only call Recv
	// after Poll has reported a message is available.
	Recv() ([][]byte, error)
	// Poll reports whether a message is available within timeoutMS
	// milliseconds. A timeout of 0 means "check without blocking".
	Poll(timeoutMS int) (bool, error)
	// Close releases the underlying transport.
	Close() error
}

// ErrNotConnected is returned by Send before Connect succeeds; DealerSocket's
// Poll returns it too.
var ErrNotConnected = errors.New("socket: not connected")

// ErrClosed is returned by any operation performed after Close.
var ErrClosed = errors.New("socket: closed")
