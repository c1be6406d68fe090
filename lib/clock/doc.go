// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock is an injectable time source for deadline handling.
//
// Response timeouts are the only timers in the client runtime. Code that
// arms one takes a Clock instead of calling time.AfterFunc, so tests can
// fire the deadline deterministically:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	// ... start the goroutine that arms a timeout ...
//	fake.WaitForTimers(1)
//	fake.Advance(5 * time.Second)
package clock
