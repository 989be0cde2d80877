// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ipcclient

import (
	"github.com/holo-host/ipcnet/relay"
	"github.com/holo-host/ipcnet/socket"
)

// NewFactory returns a relay.Factory that builds a Client over a fresh
// socket produced by sockFn, connecting to uri. Running sockFn on the
// background thread (inside ThreadedConnection's factory call) keeps the
// socket from ever crossing threads after construction.
func NewFactory(sockFn func() socket.Socket, uri string) relay.Factory {
	return func(handler relay.Handler) (relay.Worker, error) {
		return New(sockFn(), uri, handler)
	}
}
