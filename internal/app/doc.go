// Package app wires a simulation together: it loads the grid description,
// assembles it with the builder, runs the kernel and reports the statistics
// of the run. It is decoupled from any specific entrypoint like a CLI.
package app
