// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ipcnet

import (
	"testing"

	"github.com/holo-host/ipcnet/control"
	"github.com/holo-host/ipcnet/relay"
	"github.com/holo-host/ipcnet/wire"
)

// fakeInner is a relay.Worker whose Tick delivers one queued frame per call
// via the handler ipcnet.Worker installed, and records every frame it was
// asked to Receive (the outbound sequence ipcnet drives).
type fakeInner struct {
	handler relay.Handler
	toServe []wire.Frame
	sent    []wire.Frame
}

func (f *fakeInner) Receive(frame wire.Frame) error {
	f.sent = append(f.sent, frame)
	return nil
}

func (f *fakeInner) Tick() (bool, error) {
	if len(f.toServe) == 0 {
		return false, nil
	}
	frame := f.toServe[0]
	f.toServe = f.toServe[1:]
	if err := f.handler(frame, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (f *fakeInner) Destroy() error { return nil }

func newTestWorker(t *testing.T, handler relay.Handler) (*Worker, *fakeInner) {
	t.Helper()
	inner := &fakeInner{}
	w, err := New(handler, func(h relay.Handler) (relay.Worker, error) {
		inner.handler = h
		return inner, nil
	})
	if err != nil {
		t.Fatalf("new worker: %s", err)
	}
	return w, inner
}

func methodOf(t *testing.T, f wire.Frame) string {
	t.Helper()
	if !wire.IsJSON(f) {
		t.Fatalf("expected a JSON frame, got %T", f)
	}
	w := control.From(f)
	return string(w.Command)
}

func TestHandshakeDrivesFixedOutboundSequence(t *testing.T) {
	var delivered []wire.Frame
	w, inner := newTestWorker(t, func(f wire.Frame, err error) error {
		if err != nil {
			return err
		}
		delivered = append(delivered, f)
		return nil
	})

	stateNeedConfig, err := control.Into(control.ProtocolWrapper{Command: control.CommandState, State: control.StateData{State: "need_config"}})
	if err != nil {
		t.Fatalf("into: %s", err)
	}
	defaultConfig, err := control.Into(control.ProtocolWrapper{Command: control.CommandDefaultConfig, DefaultConfig: control.ConfigData{Config: "X"}})
	if err != nil {
		t.Fatalf("into: %s", err)
	}
	stateReady, err := control.Into(control.ProtocolWrapper{Command: control.CommandState, State: control.StateData{State: "ready"}})
	if err != nil {
		t.Fatalf("into: %s", err)
	}
	inner.toServe = []wire.Frame{stateNeedConfig, defaultConfig, stateReady}

	// tick 1: RequestState goes out (state-request interval elapsed
	// immediately since lastStateRequestMillis starts at 0); inner.Tick
	// delivers State(need_config), which triggers RequestDefaultConfig.
	if _, err := w.Tick(); err != nil {
		t.Fatalf("tick 1: %s", err)
	}
	// tick 2: inner.Tick delivers DefaultConfig(X), which triggers
	// SetConfig("X").
	if _, err := w.Tick(); err != nil {
		t.Fatalf("tick 2: %s", err)
	}
	// tick 3: inner.Tick delivers State(ready); Ready is latched and
	// delivered to the handler.
	if _, err := w.Tick(); err != nil {
		t.Fatalf("tick 3: %s", err)
	}

	if len(inner.sent) != 3 {
		t.Fatalf("expected 3 outbound frames, got %d: %+v", len(inner.sent), inner.sent)
	}
	wantSeq := []control.Command{control.CommandRequestState, control.CommandRequestDefaultConfig, control.CommandSetConfig}
	for i, want := range wantSeq {
		if got := methodOf(t, inner.sent[i]); got != string(want) {
			t.Fatalf("outbound[%d]: got %q, want %q", i, got, want)
		}
	}

	readyCount := 0
	for _, f := range delivered {
		if wire.IsReady(f) {
			readyCount++
		}
	}
	if readyCount != 1 {
		t.Fatalf("expected exactly one Ready delivered, got %d", readyCount)
	}
}

func TestReadyIsDeliveredAtMostOnce(t *testing.T) {
	var readyCount int
	w, inner := newTestWorker(t, func(f wire.Frame, err error) error {
		if err != nil {
			return err
		}
		if wire.IsReady(f) {
			readyCount++
		}
		return nil
	})

	stateReady, _ := control.Into(control.ProtocolWrapper{Command: control.CommandState, State: control.StateData{State: "ready"}})
	inner.toServe = []wire.Frame{stateReady, stateReady, stateReady}

	for i := 0; i < 3; i++ {
		if _, err := w.Tick(); err != nil {
			t.Fatalf("tick %d: %s", i, err)
		}
	}
	if readyCount != 1 {
		t.Fatalf("expected Ready exactly once across repeated State(ready) frames, got %d", readyCount)
	}
}

func TestNonHandshakeFramesAreForwardedUnclassified(t *testing.T) {
	var delivered []wire.Frame
	w, inner := newTestWorker(t, func(f wire.Frame, err error) error {
		if err != nil {
			return err
		}
		delivered = append(delivered, f)
		return nil
	})
	userFrame := wire.FromString(`{"method":"peerConnected","id":"peer-1"}`)
	inner.toServe = []wire.Frame{userFrame}

	if _, err := w.Tick(); err != nil {
		t.Fatalf("tick: %s", err)
	}
	if len(delivered) != 1 || wire.AsJSONString(delivered[0]) != wire.AsJSONString(userFrame) {
		t.Fatalf("expected the peerConnected frame to be forwarded as-is, got %+v", delivered)
	}
}
