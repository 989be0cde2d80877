// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package ipcnet composes the ThreadedConnection, the IPC client, and the
// protocol wrapper: it drives the handshake, tracks readiness, surfaces a
// synthetic Ready signal to the application, and forwards all other frames.
package ipcnet

import (
	"time"

	"github.com/holo-host/ipcnet/control"
	"github.com/holo-host/ipcnet/internal/metrics"
	"github.com/holo-host/ipcnet/relay"
	"github.com/holo-host/ipcnet/wire"
)

const stateRequestIntervalMillis = 500

// clock abstracts time so handshake-timing tests don't need real sleeps.
type clock interface {
	nowMillis() float64
}

type realClock struct{}

func (realClock) nowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}

// Worker composes a single ThreadedConnection-hosted client, driving the
// fixed handshake grammar: RequestState -> State(need_config) ->
// RequestDefaultConfig -> DefaultConfig(c) -> SetConfig(c) -> State(ready)
// -> Ready. It implements relay.Worker so it can itself be hosted by a
// relay.ThreadedConnection.
type Worker struct {
	inner relay.Worker
	inbox chan wire.Frame
	clk   clock

	handler relay.Handler

	state                  string
	isReady                bool
	lastStateRequestMillis float64
}

// New builds an ipcnet Worker whose inner relay.Worker is produced by
// innerFactory; handler receives every forwarded and synthetic frame.
func New(handler relay.Handler, innerFactory relay.Factory) (*Worker, error) {
	return newWithClock(handler, innerFactory, realClock{})
}

func newWithClock(handler relay.Handler, innerFactory relay.Factory, clk clock) (*Worker, error) {
	w := &Worker{
		inbox:   make(chan wire.Frame, 256),
		clk:     clk,
		handler: handler,
		state:   "undefined",
	}
	inner, err := innerFactory(func(frame wire.Frame, err error) error {
		if err != nil {
			return handler(nil, err)
		}
		select {
		case w.inbox <- frame:
		default:
			// Inbox overflow would indicate the owning tick loop has
			// stalled; surface as a handler error rather than dropping.
			return handler(nil, errFullInbox)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.inner = inner
	return w, nil
}

// Receive forwards an outbound frame to the inner worker.
func (w *Worker) Receive(frame wire.Frame) error {
	return w.inner.Receive(frame)
}

// Tick drives the handshake: it issues a RequestState at the fixed
// interval until ready, advances the inner relay, classifies at most one
// inbound frame via the protocol wrapper, forwards it to the handler, and
// emits the synthetic Ready frame the first time state reaches "ready".
func (w *Worker) Tick() (bool, error) {
	didWork := false

	now := w.clk.nowMillis()
	if w.state != "ready" && now-w.lastStateRequestMillis > stateRequestIntervalMillis {
		frame, err := control.Into(control.ProtocolWrapper{Command: control.CommandRequestState})
		if err != nil {
			return false, err
		}
		if err := w.inner.Receive(frame); err != nil {
			return false, err
		}
		w.lastStateRequestMillis = now
		didWork = true
	}

	progressed, err := w.inner.Tick()
	if err != nil {
		return false, err
	}
	if progressed {
		didWork = true
	}

	select {
	case frame := <-w.inbox:
		didWork = true
		wrapper := control.From(frame)
		switch wrapper.Command {
		case control.CommandState:
			w.state = wrapper.State.State
			if w.state == "need_config" {
				reqFrame, err := control.Into(control.ProtocolWrapper{Command: control.CommandRequestDefaultConfig})
				if err != nil {
					return false, err
				}
				if err := w.inner.Receive(reqFrame); err != nil {
					return false, err
				}
			}
		case control.CommandDefaultConfig:
			if w.state == "need_config" {
				setFrame, err := control.Into(control.ProtocolWrapper{
					Command:   control.CommandSetConfig,
					SetConfig: control.ConfigData{Config: wrapper.DefaultConfig.Config},
				})
				if err != nil {
					return false, err
				}
				if err := w.inner.Receive(setFrame); err != nil {
					return false, err
				}
			}
		}

		if err := w.handler(frame, nil); err != nil {
			return false, err
		}

		if !w.isReady && w.state == "ready" {
			w.isReady = true
			metrics.HandshakeTotal.Inc()
			if err := w.handler(wire.Ready{}, nil); err != nil {
				return false, err
			}
		}
	default:
	}

	return didWork, nil
}

// Destroy releases the inner worker.
func (w *Worker) Destroy() error {
	return w.inner.Destroy()
}
