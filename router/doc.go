// Package router dispatches decoded JSON-RPC messages by method.
//
// The dispatch table maps each supported method to one of three handler
// variants: FixedReply and EmptyReply answer locally, Forward relays the call
// to the tool gateway. Requests always get exactly one response; notifications
// never do.
//
// A failed tools/list surfaces as an internal error unless the router is
// created WithLenientList, in which case an empty catalog is returned.
package router
