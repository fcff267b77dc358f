// Package gateway implements a bearer authenticated client for the HTTP tool gateway.
//
// The gateway exposes two endpoints:
//
//	GET  <base>/tools                 tool catalog
//	POST <base>/tools/<name>/execute  tool execution, body carries the arguments
//
// Each call runs under its own deadline; failures surface as *Error.
package gateway
