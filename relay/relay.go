// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package relay

import "github.com/holo-host/ipcnet/wire"

// Relay synchronously owns a single Worker; Send, Tick, and Destroy all run
// on the caller's own goroutine.
type Relay struct {
	worker Worker
}

// NewRelay constructs the worker via factory and returns a Relay owning it.
func NewRelay(handler Handler, factory Factory) (*Relay, error) {
	w, err := factory(handler)
	if err != nil {
		return nil, err
	}
	return &Relay{worker: w}, nil
}

// Send forwards frame to the worker's Receive.
func (r *Relay) Send(frame wire.Frame) error {
	return r.worker.Receive(frame)
}

// Tick drives the worker's periodic work.
func (r *Relay) Tick() (bool, error) {
	return r.worker.Tick()
}

// Destroy releases the worker.
func (r *Relay) Destroy() error {
	return r.worker.Destroy()
}
