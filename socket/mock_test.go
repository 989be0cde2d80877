// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package socket

import (
	"testing"

	"github.com/holo-host/ipcnet/wire"
)

func TestMockSocketInjectPong(t *testing.T) {
	s := NewMockSocket()
	if err := s.Connect("ipc://test"); err != nil {
		t.Fatalf("connect: %s", err)
	}
	s.InjectPong()

	ready, err := s.Poll(0)
	if err != nil {
		t.Fatalf("poll: %s", err)
	}
	if !ready {
		t.Fatal("expected poll to report ready after InjectPong")
	}

	frames, err := s.Recv()
	if err != nil {
		t.Fatalf("recv: %s", err)
	}
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}
	if string(frames[2]) != wire.TagPong {
		t.Fatalf("expected name frame %q, got %q", wire.TagPong, frames[2])
	}
	frame, err := wire.DecodeFrame(string(frames[2]), frames[3])
	if err != nil {
		t.Fatalf("decode payload: %s", err)
	}
	if !wire.IsPong(frame) {
		t.Fatalf("expected Pong, got %T", frame)
	}

	ready, err = s.Poll(0)
	if err != nil {
		t.Fatalf("poll: %s", err)
	}
	if ready {
		t.Fatal("expected poll to report not-ready after draining the injected pong")
	}
}

func TestMockSocketSendRecordsFIFO(t *testing.T) {
	s := NewMockSocket()
	if err := s.Connect("ipc://test"); err != nil {
		t.Fatalf("connect: %s", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Send([][]byte{[]byte{byte(i)}}); err != nil {
			t.Fatalf("send %d: %s", i, err)
		}
	}
	sent := s.SentFrames()
	if len(sent) != 3 {
		t.Fatalf("expected 3 sent messages, got %d", len(sent))
	}
	for i, msg := range sent {
		if msg[0][0] != byte(i) {
			t.Fatalf("expected message %d to start with %d, got %d", i, i, msg[0][0])
		}
	}
}

func TestMockSocketSendBeforeConnect(t *testing.T) {
	s := NewMockSocket()
	if err := s.Send([][]byte{[]byte("x")}); err == nil {
		t.Fatal("expected error sending before connect")
	}
}

func TestMockSocketCloseIsTerminal(t *testing.T) {
	s := NewMockSocket()
	if err := s.Connect("ipc://test"); err != nil {
		t.Fatalf("connect: %s", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %s", err)
	}
	if _, err := s.Poll(0); err == nil {
		t.Fatal("expected error polling a closed socket")
	}
	if err := s.Send([][]byte{[]byte("x")}); err == nil {
		t.Fatal("expected error sending on a closed socket")
	}
}
