// Package config defines the format-agnostic description of a simulation
// along with the Loader interface used to read it from a concrete format.
//
// The `config.Model` is the single source of truth for the `builder`
// package. Concrete loaders, such as the HCL one, live in separate packages.
package config
