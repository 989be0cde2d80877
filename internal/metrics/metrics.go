// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package metrics exposes Prometheus counters/gauges for the IPC
// connection lifecycle: handshake completions, reconnect attempts, and
// inbound frame counts by kind. This is ambient observability for the
// ipcprobe binary, not part of the p2p library's public surface.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// HandshakeTotal counts completed handshakes (a Ready signal emitted).
	HandshakeTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipcnet_handshake_total",
		Help: "Total number of completed IPC handshakes.",
	})

	// ReconnectsTotal counts bring-up attempts after the initial one.
	ReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipcnet_reconnects_total",
		Help: "Total number of IPC connection bring-up attempts after the first.",
	})

	// InboundFramesTotal counts decoded inbound frames by wire tag.
	InboundFramesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipcnet_inbound_frames_total",
		Help: "Total number of inbound frames decoded from the IPC socket, by kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(HandshakeTotal, ReconnectsTotal, InboundFramesTotal)
}
