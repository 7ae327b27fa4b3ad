// Package driving provides interfaces for the application's use cases
// (primary/inbound ports), consumed by the CLI, TUI, and MCP adapters.
package driving
