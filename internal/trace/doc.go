// Package trace exports memory snapshots while a simulation runs. Snapshots
// can be written to the log, streamed to a Socket.IO server, or both.
package trace
