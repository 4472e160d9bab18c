// Package app contains the core application logic. It turns a loaded plan
// into registered scheduler tasks, owns the logger and the metrics registry,
// and runs the scheduler loop next to the optional health check server,
// decoupled from any specific entrypoint like a CLI.
package app
