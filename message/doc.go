// Package message decodes single framed lines into inbound JSON-RPC messages.
//
// Decoding never fails: malformed input produces an Outcome carrying a parse
// error, so the caller can still emit a reply with a null id.
package message
