// Package cli assembles the autoland command-line application: configuration
// loading, logger construction, and the Cobra command hierarchy.
package cli
