// Package app contains the core application logic: it loads a configuration
// file against a schema, resolves and validates it for the current world
// size, and prints the result. It is decoupled from any specific entrypoint
// like a CLI.
package app
