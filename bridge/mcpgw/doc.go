// Command mcpgw bridges an MCP client speaking JSON-RPC over stdio to an HTTP tool gateway.
//
// Usage:
//
//	mcpgw -u http://127.0.0.1:4444 -t $MCP_JWT_TOKEN
//
// Replies are written to stdout, logs to stderr or --log-file.
package main
