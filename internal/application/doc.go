// Package application wires the inspection ledger into its two front ends.
// It builds the ledger storage from configuration, then either the HTTP API
// server or the interactive console, leaving the main package to CLI parsing
// and lifecycle.
package application
