// Package scheduler arbitrates a single shared resource between routines of
// the simulation.
//
// # Why Arbiter Exists
//
// A process unit has exactly one execution core, and each interconnect link
// carries one transaction at a time. Both are modeled by the same Arbiter:
// a busy flag plus a FIFO of grant signals.
//
// # How It Works
//
//  1. A routine calls Request with its grant signal.
//  2. A free arbiter marks itself busy and fires the signal in the next delta
//     cycle; a busy one queues the signal behind earlier requests.
//  3. The routine waits on a barrier holding its grant signal.
//  4. When done it gives the resource back with Release (core mode) or
//     Handoff (link mode).
//
// # Release vs Handoff
//
// Release(cost) charges cost exactly once: the next waiter is granted after
// cost, or, when nobody waits, the releasing routine itself blocks for cost.
// Handoff grants the next waiter immediately and never blocks; links pay
// their latency while holding the grant.
package scheduler
