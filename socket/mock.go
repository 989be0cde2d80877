// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package socket

import (
	"errors"
	"sync"

	"github.com/holo-host/ipcnet/wire"
)

// MockSocket is an in-memory Socket used by tests. Sent frames are recorded
// for inspection and InjectPong queues a canned four-frame pong so a client
// can observe a successful bring-up without a real daemon.
type MockSocket struct {
	mu        sync.Mutex
	connected bool
	closed    bool
	uri       string
	sent      [][][]byte
	pending   [][][]byte
}

// NewMockSocket returns a disconnected mock socket.
func NewMockSocket() *MockSocket {
	return &MockSocket{}
}

func (m *MockSocket) Connect(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.uri = uri
	m.connected = true
	return nil
}

func (m *MockSocket) Send(frames [][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if !m.connected {
		return ErrNotConnected
	}
	cp := make([][]byte, len(frames))
	for i, f := range frames {
		b := make([]byte, len(f))
		copy(b, f)
		cp[i] = b
	}
	m.sent = append(m.sent, cp)
	return nil
}

func (m *MockSocket) Recv() ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if len(m.pending) == 0 {
		return nil, errors.New("socket: recv called with nothing pending")
	}
	msg := m.pending[0]
	m.pending = m.pending[1:]
	return msg, nil
}

func (m *MockSocket) Poll(_ int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	return len(m.pending) > 0, nil
}

func (m *MockSocket) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	return nil
}

// InjectPong queues a canned four-frame pong message: the next Poll reports
// ready and the next Recv yields it.
func (m *MockSocket) InjectPong() {
	payload, err := wire.FramePayload(wire.Pong{Orig: 0, Recv: 0})
	if err != nil {
		// Pong always encodes; this would only fail on a programming error.
		panic(err)
	}
	m.InjectFrame(wire.TagPong, payload)
}

// InjectFrame queues an arbitrary four-frame message with the given name
// tag and payload, for tests exercising frame kinds other than pong.
func (m *MockSocket) InjectFrame(name string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, [][]byte{
		{0x24, 0x24, 0x24, 0x24},
		{},
		[]byte(name),
		payload,
	})
}

// SentFrames returns a copy of every multipart message sent so far, in
// submission order, for use by tests asserting FIFO delivery.
func (m *MockSocket) SentFrames() [][][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][][]byte, len(m.sent))
	copy(out, m.sent)
	return out
}
