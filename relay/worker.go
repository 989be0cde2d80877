// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package relay defines the generic worker/relay/threaded-connection
// concurrency primitives the rest of the IPC stack is built on: a pluggable
// Worker contract, a synchronous Relay that owns one directly, and a
// ThreadedConnection that hosts one on a private background goroutine.
package relay

import "github.com/holo-host/ipcnet/wire"

// Handler receives decoded inbound frames (or a decode/connection error).
// It is invoked from the background thread and must be safe to call from
// another goroutine; it must not block for long.
type Handler func(frame wire.Frame, err error) error

// Worker is the capability set a Relay or ThreadedConnection drives.
type Worker interface {
	// Receive accepts an outbound frame from the owning relay.
	Receive(frame wire.Frame) error
	// Tick gives the worker a chance to do periodic work (poll its
	// transport, send heartbeats, enforce timeouts). It reports whether it
	// made any progress.
	Tick() (bool, error)
	// Destroy releases anything the worker owns (e.g. a socket).
	Destroy() error
}

// Factory builds a Worker given the handler it should deliver decoded
// frames to. A ThreadedConnection runs the factory on its own background
// goroutine so the worker's resources (sockets in particular) never cross
// threads after construction.
type Factory func(handler Handler) (Worker, error)
