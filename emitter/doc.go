// Package emitter serializes JSON-RPC replies onto the output stream, one line per reply.
package emitter
