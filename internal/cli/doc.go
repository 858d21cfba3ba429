// Package cli parses the dfsim command line: the grid path, logging flags,
// the virtual time limit and the trace stream settings. Invalid input is
// reported as an ExitError carrying the process exit code.
package cli
