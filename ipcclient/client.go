// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package ipcclient implements the worker contract on top of a socket:
// connection bring-up, heartbeat ping/pong, receive-timeout watchdog, and
// decoding inbound frames for delivery to the handler.
package ipcclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/holo-host/ipcnet/internal/logging"
	"github.com/holo-host/ipcnet/internal/metrics"
	"github.com/holo-host/ipcnet/relay"
	"github.com/holo-host/ipcnet/socket"
	"github.com/holo-host/ipcnet/wire"
)

const (
	connectTimeoutMillis = 3000
	connectBackoffStart  = 1 * time.Millisecond
	connectBackoffCap    = 500 * time.Millisecond
	heartbeatIntervalMS  = 500
	receiveTimeoutMillis = 2000
)

var routePrefix = []byte{0x24, 0x24, 0x24, 0x24}

// ErrConnectTimeout is returned when a server has not responded to the
// probe pings within the fixed bring-up budget.
var ErrConnectTimeout = errors.New("ipcclient: connection init timeout")

// ErrReceiveTimeout is returned by Tick when no inbound frame has arrived
// within the idle budget; this is fatal to the owning background loop.
var ErrReceiveTimeout = errors.New("ipcclient: ipc connection timeout")

// Client implements relay.Worker on top of a socket.Socket: it brings the
// connection up synchronously in New, then on each Tick polls for one
// inbound frame, answers pings, enforces the idle receive timeout, and
// emits heartbeat pings of its own.
type Client struct {
	sock    socket.Socket
	handler relay.Handler
	clk     clock

	lastRecvMillis float64
	lastSendMillis float64
}

// New constructs a Client over sock, connecting to uri and running the
// bring-up probe loop before returning. It fails with ErrConnectTimeout if
// no response arrives within 3 seconds.
func New(sock socket.Socket, uri string, handler relay.Handler) (*Client, error) {
	return newWithClock(sock, uri, handler, realClock{})
}

func newWithClock(sock socket.Socket, uri string, handler relay.Handler, clk clock) (*Client, error) {
	log := logging.GetComponentLogger("ipcclient").Sugar()
	c := &Client{sock: sock, handler: handler, clk: clk}
	if err := sock.Connect(uri); err != nil {
		return nil, fmt.Errorf("ipcclient: connect: %w", err)
	}
	if err := c.bringUp(); err != nil {
		log.Errorw("bring-up failed", "uri", uri, "error", err)
		return nil, err
	}
	log.Infow("bring-up succeeded", "uri", uri)
	now := c.clk.nowMillis()
	c.lastRecvMillis = now
	c.lastSendMillis = 0
	return c, nil
}

func (c *Client) bringUp() error {
	start := c.clk.nowMillis()
	backoff := connectBackoffStart
	for {
		ready, err := c.sock.Poll(0)
		if err != nil {
			return fmt.Errorf("ipcclient: poll during bring-up: %w", err)
		}
		if ready {
			return nil
		}
		if c.clk.nowMillis()-start > connectTimeoutMillis {
			return ErrConnectTimeout
		}
		if err := c.sendFrame(wire.Ping{Sent: c.clk.nowMillis()}); err != nil {
			return fmt.Errorf("ipcclient: probe ping: %w", err)
		}
		c.clk.sleep(backoff)
		backoff *= 2
		if backoff > connectBackoffCap {
			backoff = connectBackoffCap
		}
	}
}

// Receive forwards an outbound frame from the owning relay down the socket
// using the four-frame envelope.
func (c *Client) Receive(frame wire.Frame) error {
	if err := c.sendFrame(frame); err != nil {
		return fmt.Errorf("ipcclient: send: %w", err)
	}
	c.lastSendMillis = c.clk.nowMillis()
	return nil
}

func (c *Client) sendFrame(frame wire.Frame) error {
	name, err := wire.FrameName(frame)
	if err != nil {
		return err
	}
	payload, err := wire.FramePayload(frame)
	if err != nil {
		return err
	}
	return c.sock.Send([][]byte{routePrefix, {}, []byte(name), payload})
}

// Tick polls the socket once, answers a Ping with a Pong, delivers decoded
// inbound frames to the handler, enforces the 2000ms idle receive timeout,
// and sends a heartbeat Ping if 500ms have elapsed since the last send. It
// reports whether any progress was made.
func (c *Client) Tick() (bool, error) {
	didWork := false

	ready, err := c.sock.Poll(0)
	if err != nil {
		return false, fmt.Errorf("ipcclient: poll: %w", err)
	}
	if ready {
		frame, err := c.recvOne()
		if err != nil {
			if handlerErr := c.handler(nil, err); handlerErr != nil {
				return false, handlerErr
			}
		} else {
			c.lastRecvMillis = c.clk.nowMillis()
			metrics.InboundFramesTotal.WithLabelValues(frameKind(frame)).Inc()
			if wire.IsPing(frame) {
				p := wire.AsPing(frame)
				if err := c.sendFrame(wire.Pong{Orig: p.Sent, Recv: c.clk.nowMillis()}); err != nil {
					return false, fmt.Errorf("ipcclient: pong reply: %w", err)
				}
				c.lastSendMillis = c.clk.nowMillis()
			}
			if err := c.handler(frame, nil); err != nil {
				return false, err
			}
		}
		didWork = true
	}

	now := c.clk.nowMillis()
	if now-c.lastRecvMillis > receiveTimeoutMillis {
		return false, ErrReceiveTimeout
	}
	if now-c.lastSendMillis > heartbeatIntervalMS {
		if err := c.sendFrame(wire.Ping{Sent: now}); err != nil {
			return false, fmt.Errorf("ipcclient: heartbeat ping: %w", err)
		}
		c.lastSendMillis = now
		didWork = true
	}

	return didWork, nil
}

func frameKind(f wire.Frame) string {
	switch {
	case wire.IsJSON(f):
		return wire.TagJSON
	case wire.IsPing(f):
		return wire.TagPing
	case wire.IsPong(f):
		return wire.TagPong
	case wire.IsNamedBinary(f):
		return wire.TagNamedBinary
	default:
		return "unknown"
	}
}

func (c *Client) recvOne() (wire.Frame, error) {
	frames, err := c.sock.Recv()
	if err != nil {
		return nil, fmt.Errorf("ipcclient: recv: %w", err)
	}
	if len(frames) != 4 {
		return nil, fmt.Errorf("ipcclient: expected 4 frames, got %d", len(frames))
	}
	return wire.DecodeFrame(string(frames[2]), frames[3])
}

// Destroy closes the socket.
func (c *Client) Destroy() error {
	return c.sock.Close()
}
