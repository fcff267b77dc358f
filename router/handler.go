package router

import (
	"context"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcpgw/message"
)

// Handler handles a single request method; the set of implementations is closed
type Handler interface {
	Handle(ctx context.Context, msg *message.Message) (interface{}, *jsonrpc.Error)
	variant() string
}

// FixedReply answers locally with a fixed descriptor
type FixedReply struct {
	Result interface{}
}

func (h *FixedReply) Handle(ctx context.Context, msg *message.Message) (interface{}, *jsonrpc.Error) {
	return h.Result, nil
}

func (h *FixedReply) variant() string { return "fixed" }

// EmptyReply answers locally with an empty collection
type EmptyReply struct {
	Result interface{}
}

func (h *EmptyReply) Handle(ctx context.Context, msg *message.Message) (interface{}, *jsonrpc.Error) {
	return h.Result, nil
}

func (h *EmptyReply) variant() string { return "empty" }

// Forward relays request to the gateway
type Forward struct {
	Call func(ctx context.Context, msg *message.Message) (interface{}, *jsonrpc.Error)
}

func (h *Forward) Handle(ctx context.Context, msg *message.Message) (interface{}, *jsonrpc.Error) {
	return h.Call(ctx, msg)
}

func (h *Forward) variant() string { return "forward" }

func emptyCollection(key string) *EmptyReply {
	return &EmptyReply{Result: map[string]interface{}{key: []interface{}{}}}
}
