// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package socket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/holo-host/ipcnet/internal/logging"
)

// DealerSocket is the real local-transport Socket: a ZeroMQ DEALER socket
// dialed to the daemon's ROUTER endpoint. zmq4.Socket.Recv blocks, so a
// background goroutine drains it into a buffered channel; Poll/Recv here
// implement the non-blocking poll-then-recv contract on top of that.
type DealerSocket struct {
	mu     sync.Mutex
	sock   zmq4.Socket
	cancel context.CancelFunc
	recvCh chan recvResult
	peeked *recvResult
	closed bool
}

type recvResult struct {
	frames [][]byte
	err    error
}

// NewDealerSocket returns an unconnected DealerSocket.
func NewDealerSocket() *DealerSocket {
	return &DealerSocket{}
}

func (d *DealerSocket) Connect(uri string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.sock != nil {
		return errors.New("socket: already connected")
	}
	ctx, cancel := context.WithCancel(context.Background())
	sock := zmq4.NewDealer(ctx)
	if err := sock.Dial(uri); err != nil {
		cancel()
		return fmt.Errorf("socket: dial %s: %w", uri, err)
	}
	d.sock = sock
	d.cancel = cancel
	d.recvCh = make(chan recvResult, 16)
	go d.readLoop(sock, d.recvCh)
	if l := logging.GetLogger(); l != nil {
		l.Debugw("dealer socket connected", "uri", uri)
	}
	return nil
}

func (d *DealerSocket) readLoop(sock zmq4.Socket, out chan<- recvResult) {
	for {
		msg, err := sock.Recv()
		if err != nil {
			out <- recvResult{err: err}
			return
		}
		out <- recvResult{frames: msg.Frames}
	}
}

func (d *DealerSocket) Send(frames [][]byte) error {
	d.mu.Lock()
	sock := d.sock
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if sock == nil {
		return ErrNotConnected
	}
	return sock.Send(zmq4.NewMsgFrom(frames...))
}

func (d *DealerSocket) Recv() ([][]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.peeked == nil {
		return nil, errors.New("socket: recv called with nothing pending")
	}
	res := d.peeked
	d.peeked = nil
	return res.frames, res.err
}

func (d *DealerSocket) Poll(timeoutMS int) (bool, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false, ErrClosed
	}
	if d.sock == nil {
		d.mu.Unlock()
		return false, ErrNotConnected
	}
	if d.peeked != nil {
		d.mu.Unlock()
		return true, nil
	}
	ch := d.recvCh
	d.mu.Unlock()

	if timeoutMS <= 0 {
		select {
		case res := <-ch:
			d.mu.Lock()
			d.peeked = &res
			d.mu.Unlock()
			return true, nil
		default:
			return false, nil
		}
	}

	timer := time.NewTimer(time.Duration(timeoutMS) * time.Millisecond)
	defer timer.Stop()
	select {
	case res := <-ch:
		d.mu.Lock()
		d.peeked = &res
		d.mu.Unlock()
		return true, nil
	case <-timer.C:
		return false, nil
	}
}

func (d *DealerSocket) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	if d.cancel != nil {
		d.cancel()
	}
	if l := logging.GetLogger(); l != nil {
		l.Debug("dealer socket closed")
	}
	if d.sock != nil {
		return d.sock.Close()
	}
	return nil
}
