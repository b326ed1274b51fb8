// Package app contains the core application logic. It loads a graph file,
// compiles the requested stream and runs it, decoupled from any specific
// entrypoint like a CLI.
package app
