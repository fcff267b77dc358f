package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/mcpgw/internal/collection"
	"github.com/viant/mcpgw/message"
)

const (
	DefaultServerName    = "mcpgw"
	DefaultServerVersion = "0.1"
)

// serverCapabilities advertised by initialize
const serverCapabilities = `{"tools":{"listChanged":true},"resources":{"subscribe":true,"listChanged":true},"prompts":{"listChanged":true}}`

var errRequestCancelled = errors.New("request cancelled")

// Gateway represents the upstream tool gateway
type Gateway interface {
	ListTools(ctx context.Context) ([]json.RawMessage, error)
	ExecuteTool(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
}

// Router dispatches decoded messages by method
type Router struct {
	gateway     Gateway
	table       map[string]Handler
	info        schema.Implementation
	lenient     bool
	inflight    *collection.SyncMap[string, context.CancelCauseFunc]
	initialized atomic.Bool
	logger      *logrus.Entry
}

// Route handles a request and returns exactly one response
func (r *Router) Route(ctx context.Context, msg *message.Message) *jsonrpc.Response {
	response := &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: msg.RequestId()}
	handler, ok := r.table[msg.Method]
	if !ok {
		r.logger.WithField("method", msg.Method).Debug("method not found")
		response.Error = jsonrpc.NewMethodNotFound("Method not found", nil)
		return response
	}
	if _, ok := handler.(*Forward); ok {
		var cancel context.CancelCauseFunc
		ctx, cancel = context.WithCancelCause(ctx)
		defer cancel(nil)
		key := msg.Key()
		if r.inflight.PutIfAbsent(key, cancel) {
			defer r.inflight.Delete(key)
		}
	}
	result, rpcErr := handler.Handle(ctx, msg)
	if errors.Is(context.Cause(ctx), errRequestCancelled) {
		response.Error = jsonrpc.NewInternalError(errRequestCancelled.Error(), nil)
		return response
	}
	if rpcErr != nil {
		response.Error = rpcErr
		return response
	}
	data, err := json.Marshal(result)
	if err != nil {
		response.Error = jsonrpc.NewInternalError("Internal error: "+err.Error(), nil)
		return response
	}
	response.Result = data
	return response
}

// Notify handles a notification, it never produces a reply
func (r *Router) Notify(ctx context.Context, msg *message.Message) {
	switch msg.Method {
	case schema.MethodNotificationInitialized:
		r.initialized.Store(true)
		r.logger.Debug("client initialized")
	case schema.MethodNotificationCanceled:
		r.cancel(msg)
	default:
		r.logger.WithField("method", msg.Method).Debug("notification ignored")
	}
}

func (r *Router) cancel(msg *message.Message) {
	params := struct {
		RequestId json.RawMessage `json:"requestId"`
		Reason    string          `json:"reason"`
	}{}
	if err := json.Unmarshal(msg.Params, &params); err != nil || len(params.RequestId) == 0 {
		r.logger.Debug("malformed cancellation ignored")
		return
	}
	key := message.IdKey(params.RequestId)
	cancel, ok := r.inflight.Get(key)
	if !ok {
		r.logger.WithField("requestId", key).Debug("cancellation for unknown request")
		return
	}
	r.logger.WithFields(logrus.Fields{"requestId": key, "reason": params.Reason}).Info("request cancelled")
	cancel(errRequestCancelled)
}

// Initialized returns true once the client confirmed the handshake
func (r *Router) Initialized() bool {
	return r.initialized.Load()
}

// InFlight returns number of forwarded requests awaiting the gateway
func (r *Router) InFlight() int {
	return r.inflight.Len()
}

// Table returns a copy of the dispatch table
func (r *Router) Table() map[string]Handler {
	var ret = make(map[string]Handler, len(r.table))
	for method, handler := range r.table {
		ret[method] = handler
	}
	return ret
}

func (r *Router) listTools(ctx context.Context, msg *message.Message) (interface{}, *jsonrpc.Error) {
	descriptors, err := r.gateway.ListTools(ctx)
	if err != nil {
		if r.lenient {
			r.logger.WithError(err).Warn("tools/list failed, returning empty catalog")
			return &ListToolsResult{Tools: []*Tool{}}, nil
		}
		return nil, jsonrpc.NewInternalError("Internal error: "+err.Error(), nil)
	}
	return &ListToolsResult{Tools: NormalizeTools(descriptors)}, nil
}

func (r *Router) callTool(ctx context.Context, msg *message.Message) (interface{}, *jsonrpc.Error) {
	params := struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}{}
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return nil, jsonrpc.NewInternalError("Tool execution error: invalid params: "+err.Error(), nil)
		}
	}
	if params.Name == "" {
		return nil, jsonrpc.NewInternalError("Tool execution error: missing tool name", nil)
	}
	args := params.Arguments
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}
	result, err := r.gateway.ExecuteTool(ctx, params.Name, args)
	if err != nil {
		return nil, jsonrpc.NewInternalError("Tool execution error: "+err.Error(), nil)
	}
	return &schema.CallToolResult{
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Type: "text", Text: resultText(result)},
		},
	}, nil
}

func (r *Router) initializeResult() *schema.InitializeResult {
	ret := &schema.InitializeResult{
		ProtocolVersion: schema.LatestProtocolVersion,
		ServerInfo:      r.info,
	}
	if err := json.Unmarshal([]byte(serverCapabilities), &ret.Capabilities); err != nil {
		r.logger.WithError(err).Warn("failed to set server capabilities")
	}
	return ret
}

// New creates a router forwarding tool methods to gateway
func New(gateway Gateway, options ...Option) *Router {
	ret := &Router{
		gateway:  gateway,
		info:     schema.Implementation{Name: DefaultServerName, Version: DefaultServerVersion},
		inflight: collection.NewSyncMap[string, context.CancelCauseFunc](),
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		ret.logger = logrus.NewEntry(logger)
	}
	ret.table = map[string]Handler{
		schema.MethodInitialize:    &FixedReply{Result: ret.initializeResult()},
		schema.MethodPing:          &EmptyReply{Result: struct{}{}},
		schema.MethodPromptsList:   emptyCollection("prompts"),
		schema.MethodResourcesList: emptyCollection("resources"),
		schema.MethodToolsList:     &Forward{Call: ret.listTools},
		schema.MethodToolsCall:     &Forward{Call: ret.callTool},
	}
	return ret
}
