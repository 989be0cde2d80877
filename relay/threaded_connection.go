// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package relay

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/holo-host/ipcnet/internal/logging"
	"github.com/holo-host/ipcnet/wire"
)

const (
	idleSleepFloor = 100 * time.Microsecond
	idleSleepCap   = 10 * time.Millisecond
)

// ErrShutDown is returned by Send once the connection has been torn down.
var ErrShutDown = errors.New("relay: connection is shut down")

// ThreadedConnection owns a Worker on a private background goroutine. Sends
// are queued through a channel and delivered to the worker in FIFO order;
// between ticks the goroutine sleeps for an adaptively growing interval,
// resetting to the floor whenever a tick makes progress.
type ThreadedConnection struct {
	keepRunning atomic.Bool
	sendCh      chan wire.Frame
	done        chan struct{}
	worker      Worker
	tickErr     error
}

// NewThreadedConnection starts the background goroutine, runs factory on it
// to build the worker, and returns once that has either succeeded or
// failed.
func NewThreadedConnection(handler Handler, factory Factory) (*ThreadedConnection, error) {
	tc := &ThreadedConnection{
		sendCh: make(chan wire.Frame, 256),
		done:   make(chan struct{}),
	}
	tc.keepRunning.Store(true)

	ready := make(chan error, 1)
	go tc.run(handler, factory, ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return tc, nil
}

func (tc *ThreadedConnection) run(handler Handler, factory Factory, ready chan<- error) {
	defer close(tc.done)

	worker, err := factory(handler)
	if err != nil {
		ready <- err
		return
	}
	tc.worker = worker
	ready <- nil
	log := logging.GetComponentLogger("relay").Sugar()
	log.Debug("background thread started")
	defer log.Debug("background thread stopped")

	sleep := idleSleepFloor
	for tc.keepRunning.Load() {
		didWork := false

		select {
		case frame := <-tc.sendCh:
			if err := worker.Receive(frame); err != nil {
				tc.tickErr = fmt.Errorf("relay: worker receive failed: %w", err)
				log.Errorw("worker receive failed, terminating thread", "error", err)
				return
			}
			didWork = true
		default:
		}

		progressed, err := worker.Tick()
		if err != nil {
			tc.tickErr = fmt.Errorf("relay: worker tick failed: %w", err)
			log.Errorw("worker tick failed, terminating thread", "error", err)
			return
		}
		if progressed {
			didWork = true
		}

		if didWork {
			sleep = idleSleepFloor
		} else {
			sleep *= 2
			if sleep > idleSleepCap {
				sleep = idleSleepCap
			}
		}
		time.Sleep(sleep)
	}
}

// Send enqueues frame for delivery to the worker, preserving submission
// order.
func (tc *ThreadedConnection) Send(frame wire.Frame) error {
	select {
	case tc.sendCh <- frame:
		return nil
	case <-tc.done:
		return ErrShutDown
	}
}

// Destroy signals the background goroutine to stop, joins it, and then
// releases the worker. It returns whatever fatal error terminated the
// background loop, if any, otherwise the worker's own Destroy error.
func (tc *ThreadedConnection) Destroy() error {
	tc.keepRunning.Store(false)
	<-tc.done

	var destroyErr error
	if tc.worker != nil {
		destroyErr = tc.worker.Destroy()
	}
	if tc.tickErr != nil {
		return tc.tickErr
	}
	return destroyErr
}
