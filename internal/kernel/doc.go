// Package kernel is the discrete-event substrate every simulated component
// runs on. It provides virtual time, signals with zero-delay (delta) and
// timed notification, barriers that wait for a set of signals, and
// perpetual routines ("processes") that suspend on those barriers.
//
// # Scheduling Model
//
// Each process is a goroutine, but the kernel resumes exactly one of them at
// a time and waits until it suspends again. Code inside processes therefore
// never needs locks for state owned by the simulation.
//
// A simulation step follows the classic evaluate/update cycle:
//
//  1. Evaluate: run every runnable process until it suspends.
//  2. Update: deliver pending zero-delay notifications. If that made any
//     process runnable, start a new delta cycle at the same virtual time.
//  3. Otherwise advance virtual time to the earliest timed notification.
//
// Zero-delay notifications are therefore observed by all waiters before time
// advances, and timed notifications are always ordered after them.
//
// # Barriers
//
// A Barrier remembers which of its member signals fired since the barrier
// was last consumed. Waiting on a complete barrier consumes it and returns
// immediately; otherwise the process suspends until the last missing member
// fires. Barriers are assembled before Run and never rebuilt.
package kernel
