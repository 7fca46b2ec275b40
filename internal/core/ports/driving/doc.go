// Package driving defines what the CLI and the MCP server may ask of the
// core: process a document, remember it, answer questions over memory and
// inspect providers and settings.
//
// Implementations live in internal/core/services.
package driving
