// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ipcclient

import "time"

// clock is the time source the bring-up loop and steady-state tick read
// from. Production code uses realClock; tests substitute a fakeClock so the
// 3s bring-up timeout and the 500ms/2000ms tick budgets can be exercised
// without real sleeps.
type clock interface {
	nowMillis() float64
	sleep(d time.Duration)
}

type realClock struct{}

func (realClock) nowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}

func (realClock) sleep(d time.Duration) {
	time.Sleep(d)
}

// fakeClock advances only when told to; sleep advances the fake clock by
// the requested duration instead of actually waiting.
type fakeClock struct {
	millis float64
}

func (c *fakeClock) nowMillis() float64 {
	return c.millis
}

func (c *fakeClock) sleep(d time.Duration) {
	c.millis += float64(d) / float64(time.Millisecond)
}

func (c *fakeClock) advance(millis float64) {
	c.millis += millis
}
