// Package cli constructs the codeaudit command-line interface. It wires the
// Cobra command hierarchy to the Viper-backed configuration loader and the zap
// logger factory, and registers the audit command.
package cli
