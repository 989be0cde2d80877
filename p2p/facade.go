// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package p2p is the application-facing entry point: it selects a backend
// from a configuration value and exposes a single send/destroy surface.
package p2p

import (
	"encoding/json"
	"fmt"

	"github.com/holo-host/ipcnet/ipcclient"
	"github.com/holo-host/ipcnet/ipcnet"
	"github.com/holo-host/ipcnet/relay"
	"github.com/holo-host/ipcnet/socket"
	"github.com/holo-host/ipcnet/wire"
)

// Handler receives every frame forwarded by the connection, including the
// synthetic Ready signal.
type Handler func(frame wire.Frame, err error) error

// backendConfig is the on-the-wire shape: {"backend":"ipc","config":{...}}.
type backendConfig struct {
	Backend string    `json:"backend"`
	Config  ipcConfig `json:"config"`
}

type ipcConfig struct {
	SocketType string `json:"socketType"`
	IpcUri     string `json:"ipcUri"`
}

// Facade is the application-facing connection: send queues a frame, destroy
// tears the whole connection down.
type Facade struct {
	conn *relay.ThreadedConnection
}

// New parses config (a JSON object with at least backend:"ipc" and
// config:{socketType, ipcUri}) and constructs the corresponding backend.
// Unknown backends and socket types fail with a configuration error naming
// the offending value.
func New(handler Handler, config []byte) (*Facade, error) {
	var cfg backendConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, fmt.Errorf("p2p: configuration error: malformed config: %w", err)
	}
	if cfg.Backend != "ipc" {
		return nil, fmt.Errorf("p2p: configuration error: unknown backend %q", cfg.Backend)
	}

	var sockFn func() socket.Socket
	switch cfg.Config.SocketType {
	case "mock":
		sockFn = func() socket.Socket { return socket.NewMockSocket() }
	case "local":
		sockFn = func() socket.Socket { return socket.NewDealerSocket() }
	default:
		return nil, fmt.Errorf("p2p: configuration error: unexpected socketType %q", cfg.Config.SocketType)
	}

	relayHandler := relay.Handler(handler)
	clientFactory := ipcclient.NewFactory(sockFn, cfg.Config.IpcUri)

	conn, err := relay.NewThreadedConnection(relayHandler, func(h relay.Handler) (relay.Worker, error) {
		return ipcnet.New(h, clientFactory)
	})
	if err != nil {
		return nil, fmt.Errorf("p2p: %w", err)
	}
	return &Facade{conn: conn}, nil
}

// Send queues frame for delivery to the remote daemon.
func (f *Facade) Send(frame wire.Frame) error {
	return f.conn.Send(frame)
}

// Destroy tears down the connection.
func (f *Facade) Destroy() error {
	return f.conn.Destroy()
}
