// Package bridge connects a newline delimited JSON-RPC stream to the HTTP tool gateway.
//
// A reader goroutine frames and decodes input; notifications are handled as
// soon as they are read, so a cancellation overtakes queued requests. Requests
// are dispatched through an errgroup bounded by Options.Concurrency. With the
// default of 1 every request completes before the next one starts and replies
// keep input order.
package bridge
