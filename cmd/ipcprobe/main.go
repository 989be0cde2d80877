// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Command ipcprobe is a CLI smoke-test binary exercising the p2p facade
// against a real daemon URI: it brings the connection up, logs every frame
// the handler receives, and retries bring-up on failure.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"

	"github.com/holo-host/ipcnet/internal/config"
	"github.com/holo-host/ipcnet/internal/logging"
	"github.com/holo-host/ipcnet/internal/metrics"
	"github.com/holo-host/ipcnet/internal/version"
	"github.com/holo-host/ipcnet/p2p"
	"github.com/holo-host/ipcnet/wire"
)

var cmdlineFlags struct {
	configFile string
}

func main() {
	flag.StringVar(
		&cmdlineFlags.configFile,
		"config",
		"",
		"path to config file to load",
	)
	flag.Parse()

	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}

	logging.Setup()
	logger := logging.GetLogger()
	logger.Infof("ipcprobe %s started", version.GetVersionString())

	if cfg.Metrics.ListenPort > 0 {
		metricsListenAddr := fmt.Sprintf(
			"%s:%d",
			cfg.Metrics.ListenAddress,
			cfg.Metrics.ListenPort,
		)
		logger.Infof("starting listener for prometheus metrics connections on %s", metricsListenAddr)
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv := &http.Server{
			Addr:         metricsListenAddr,
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  10 * time.Second,
			Handler:      metricsMux,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil {
				logger.Errorf("failed to start metrics listener: %s", err)
				os.Exit(1)
			}
		}()
	}

	backendConfig, err := json.Marshal(map[string]interface{}{
		"backend": "ipc",
		"config": map[string]string{
			"socketType": cfg.Ipc.SocketType,
			"ipcUri":     cfg.Ipc.Uri,
		},
	})
	if err != nil {
		logger.Fatalf("failed to build backend config: %s", err)
	}

	handler := func(frame wire.Frame, err error) error {
		if err != nil {
			logger.Errorf("connection error: %s", err)
			return nil
		}
		if wire.IsReady(frame) {
			logger.Info("handshake complete")
			return nil
		}
		logger.Debugf("received frame: %T", frame)
		return nil
	}

	facade, err := connectWithRetry(logger, handler, backendConfig)
	if err != nil {
		logger.Fatalf("failed to connect: %s", err)
	}
	defer facade.Destroy()

	// Wait forever; the background connection thread drives itself.
	select {}
}

// connectWithRetry brings the facade up, retrying once a second on failure
// (e.g. no daemon listening yet) for at most 10 attempts, and counting every
// failed attempt in metrics.ReconnectsTotal.
func connectWithRetry(logger *logging.Logger, handler p2p.Handler, backendConfig []byte) (*p2p.Facade, error) {
	attempt := 0
	for {
		facade, err := p2p.New(handler, backendConfig)
		if err == nil {
			return facade, nil
		}
		attempt++
		metrics.ReconnectsTotal.Inc()
		logger.Errorf("connect attempt %d failed: %s", attempt, err)
		if attempt >= 10 {
			return nil, err
		}
		time.Sleep(time.Second)
	}
}
