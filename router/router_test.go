package router

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/mcpgw/message"
)

type fakeGateway struct {
	tools    []json.RawMessage
	listErr  error
	result   json.RawMessage
	callErr  error
	block    bool
	started  chan struct{}
	calls    int32
	mux      sync.Mutex
	lastName string
	lastArgs string
}

func (f *fakeGateway) ListTools(ctx context.Context) ([]json.RawMessage, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block {
		close(f.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.tools, f.listErr
}

func (f *fakeGateway) ExecuteTool(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mux.Lock()
	f.lastName = name
	f.lastArgs = string(args)
	f.mux.Unlock()
	if f.block {
		close(f.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.result, f.callErr
}

func request(t *testing.T, line string) *message.Message {
	outcome := message.Decode(line)
	require.NotNil(t, outcome.Message, line)
	return outcome.Message
}

func idOf(t *testing.T, response *jsonrpc.Response) string {
	data, err := json.Marshal(response.Id)
	require.NoError(t, err)
	return string(data)
}

func TestRouter_Table(t *testing.T) {
	table := New(&fakeGateway{}).Table()
	var testCases = []struct {
		method  string
		variant string
	}{
		{method: schema.MethodInitialize, variant: "fixed"},
		{method: schema.MethodPing, variant: "empty"},
		{method: schema.MethodPromptsList, variant: "empty"},
		{method: schema.MethodResourcesList, variant: "empty"},
		{method: schema.MethodToolsList, variant: "forward"},
		{method: schema.MethodToolsCall, variant: "forward"},
	}
	assert.Len(t, table, len(testCases))
	for _, testCase := range testCases {
		handler, ok := table[testCase.method]
		require.True(t, ok, testCase.method)
		assert.Equal(t, testCase.variant, handler.variant(), testCase.method)
	}
	delete(table, schema.MethodInitialize)
	assert.Len(t, New(&fakeGateway{}).Table(), len(testCases))
}

func TestRouter_Local(t *testing.T) {
	var testCases = []struct {
		description string
		line        string
		expectId    string
		expect      string
		errorCode   int
	}{
		{
			description: "prompts list",
			line:        `{"jsonrpc":"2.0","id":2,"method":"prompts/list"}`,
			expectId:    "2",
			expect:      `{"prompts":[]}`,
		},
		{
			description: "resources list",
			line:        `{"jsonrpc":"2.0","id":"r","method":"resources/list"}`,
			expectId:    `"r"`,
			expect:      `{"resources":[]}`,
		},
		{
			description: "ping",
			line:        `{"jsonrpc":"2.0","id":3,"method":"ping"}`,
			expectId:    "3",
			expect:      `{}`,
		},
		{
			description: "unknown method",
			line:        `{"jsonrpc":"2.0","id":7,"method":"foo/bar"}`,
			expectId:    "7",
			errorCode:   -32601,
		},
		{
			description: "missing method",
			line:        `{"jsonrpc":"2.0","id":8}`,
			expectId:    "8",
			errorCode:   -32601,
		},
	}

	for _, testCase := range testCases {
		gateway := &fakeGateway{}
		response := New(gateway).Route(context.Background(), request(t, testCase.line))
		require.NotNil(t, response, testCase.description)
		assert.Equal(t, testCase.expectId, idOf(t, response), testCase.description)
		assert.EqualValues(t, 0, atomic.LoadInt32(&gateway.calls), testCase.description)
		if testCase.errorCode != 0 {
			require.NotNil(t, response.Error, testCase.description)
			assert.EqualValues(t, testCase.errorCode, response.Error.Code, testCase.description)
			continue
		}
		require.Nil(t, response.Error, testCase.description)
		assert.JSONEq(t, testCase.expect, string(response.Result), testCase.description)
	}
}

func TestRouter_Initialize(t *testing.T) {
	for _, id := range []string{"1", `"init"`, "0", "99999999999999999999"} {
		gateway := &fakeGateway{}
		aRouter := New(gateway, WithServerInfo("test-gw", "1.2"))
		response := aRouter.Route(context.Background(), request(t, `{"jsonrpc":"2.0","id":`+id+`,"method":"initialize","params":{}}`))
		require.Nil(t, response.Error)
		assert.Equal(t, id, idOf(t, response))
		assert.EqualValues(t, 0, atomic.LoadInt32(&gateway.calls))

		result := struct {
			ProtocolVersion string                     `json:"protocolVersion"`
			Capabilities    map[string]json.RawMessage `json:"capabilities"`
			ServerInfo      struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"serverInfo"`
		}{}
		require.NoError(t, json.Unmarshal(response.Result, &result))
		assert.Equal(t, schema.LatestProtocolVersion, result.ProtocolVersion)
		assert.Equal(t, "test-gw", result.ServerInfo.Name)
		assert.Equal(t, "1.2", result.ServerInfo.Version)
		assert.JSONEq(t, `{"listChanged":true}`, string(result.Capabilities["tools"]))
		assert.JSONEq(t, `{"listChanged":true}`, string(result.Capabilities["prompts"]))
		assert.JSONEq(t, `{"subscribe":true,"listChanged":true}`, string(result.Capabilities["resources"]))
	}
	response := New(&fakeGateway{}).Route(context.Background(), request(t, `{"id":1,"method":"initialize"}`))
	assert.Contains(t, string(response.Result), `"name":"mcpgw"`)
}

func TestRouter_ListTools(t *testing.T) {
	gateway := &fakeGateway{tools: []json.RawMessage{
		json.RawMessage(`{"name":"echo"}`),
		json.RawMessage(`{"name":"sum","description":"adds","inputSchema":{"properties":{"a":{"type":"number"}},"required":["a"]}}`),
		json.RawMessage(`{"description":"nameless"}`),
	}}
	aRouter := New(gateway)
	line := `{"jsonrpc":"2.0","id":4,"method":"tools/list"}`
	response := aRouter.Route(context.Background(), request(t, line))
	require.Nil(t, response.Error)
	assert.Equal(t, "4", idOf(t, response))
	assert.JSONEq(t, `{"tools":[
		{"name":"echo","description":"","inputSchema":{"type":"object","properties":{},"required":[]}},
		{"name":"sum","description":"adds","inputSchema":{"type":"object","properties":{"a":{"type":"number"}},"required":["a"]}}
	]}`, string(response.Result))

	again := aRouter.Route(context.Background(), request(t, line))
	assert.Equal(t, string(response.Result), string(again.Result))
	assert.Equal(t, 0, aRouter.InFlight())
}

func TestRouter_ListTools_Failure(t *testing.T) {
	var testCases = []struct {
		description string
		lenient     bool
	}{
		{description: "strict"},
		{description: "lenient", lenient: true},
	}
	for _, testCase := range testCases {
		gateway := &fakeGateway{listErr: errors.New("list tools: gateway responded with 500")}
		response := New(gateway, WithLenientList(testCase.lenient)).Route(context.Background(), request(t, `{"id":5,"method":"tools/list"}`))
		assert.Equal(t, "5", idOf(t, response), testCase.description)
		if testCase.lenient {
			require.Nil(t, response.Error, testCase.description)
			assert.JSONEq(t, `{"tools":[]}`, string(response.Result), testCase.description)
			continue
		}
		require.NotNil(t, response.Error, testCase.description)
		assert.EqualValues(t, -32603, response.Error.Code, testCase.description)
		assert.Contains(t, response.Error.Message, "500", testCase.description)
	}
}

func TestRouter_CallTool(t *testing.T) {
	type content struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	var testCases = []struct {
		description string
		line        string
		result      json.RawMessage
		callErr     error
		expectName  string
		expectArgs  string
		expectText  string
		errorCode   int
		errorText   string
	}{
		{
			description: "object result indented",
			line:        `{"id":6,"method":"tools/call","params":{"name":"echo","arguments":{"x":1}}}`,
			result:      json.RawMessage(`{"x":1}`),
			expectName:  "echo",
			expectArgs:  `{"x":1}`,
			expectText:  "{\n  \"x\": 1\n}",
		},
		{
			description: "string result verbatim",
			line:        `{"id":6,"method":"tools/call","params":{"name":"say","arguments":{}}}`,
			result:      json.RawMessage(`"hello <world>"`),
			expectName:  "say",
			expectArgs:  `{}`,
			expectText:  "hello <world>",
		},
		{
			description: "absent arguments default",
			line:        `{"id":6,"method":"tools/call","params":{"name":"now"}}`,
			result:      json.RawMessage(`42`),
			expectName:  "now",
			expectArgs:  `{}`,
			expectText:  "42",
		},
		{
			description: "null arguments default",
			line:        `{"id":6,"method":"tools/call","params":{"name":"now","arguments":null}}`,
			result:      json.RawMessage(`null`),
			expectName:  "now",
			expectArgs:  `{}`,
			expectText:  "null",
		},
		{
			description: "missing name",
			line:        `{"id":6,"method":"tools/call","params":{"arguments":{}}}`,
			errorCode:   -32603,
			errorText:   "Tool execution error",
		},
		{
			description: "invalid params",
			line:        `{"id":6,"method":"tools/call","params":"echo"}`,
			errorCode:   -32603,
			errorText:   "Tool execution error",
		},
		{
			description: "gateway failure",
			line:        `{"id":6,"method":"tools/call","params":{"name":"echo"}}`,
			callErr:     errors.New("execute tool: gateway responded with 404"),
			expectName:  "echo",
			expectArgs:  `{}`,
			errorCode:   -32603,
			errorText:   "404",
		},
	}

	for _, testCase := range testCases {
		gateway := &fakeGateway{result: testCase.result, callErr: testCase.callErr}
		response := New(gateway).Route(context.Background(), request(t, testCase.line))
		assert.Equal(t, "6", idOf(t, response), testCase.description)
		assert.Equal(t, testCase.expectName, gateway.lastName, testCase.description)
		assert.Equal(t, testCase.expectArgs, gateway.lastArgs, testCase.description)
		if testCase.errorCode != 0 {
			require.NotNil(t, response.Error, testCase.description)
			assert.EqualValues(t, testCase.errorCode, response.Error.Code, testCase.description)
			assert.Contains(t, response.Error.Message, testCase.errorText, testCase.description)
			continue
		}
		require.Nil(t, response.Error, testCase.description)
		actual := content{}
		require.NoError(t, json.Unmarshal(response.Result, &actual), testCase.description)
		require.Len(t, actual.Content, 1, testCase.description)
		assert.Equal(t, "text", actual.Content[0].Type, testCase.description)
		assert.Equal(t, testCase.expectText, actual.Content[0].Text, testCase.description)
	}
}

func TestRouter_Cancel(t *testing.T) {
	var testCases = []struct {
		description string
		method      string
		id          string
	}{
		{description: "list with numeric id", method: "tools/list", id: "1"},
		{description: "call with string id", method: "tools/call", id: `"call-1"`},
	}
	for _, testCase := range testCases {
		gateway := &fakeGateway{block: true, started: make(chan struct{})}
		aRouter := New(gateway, WithLenientList(true))
		msg := request(t, `{"id":`+testCase.id+`,"method":"`+testCase.method+`","params":{"name":"slow"}}`)
		done := make(chan *jsonrpc.Response, 1)
		go func() {
			done <- aRouter.Route(context.Background(), msg)
		}()
		<-gateway.started
		assert.Equal(t, 1, aRouter.InFlight(), testCase.description)
		aRouter.Notify(context.Background(), request(t, `{"method":"notifications/cancelled","params":{"requestId":"other"}}`))
		assert.Equal(t, 1, aRouter.InFlight(), testCase.description)
		aRouter.Notify(context.Background(), request(t, `{"jsonrpc":"2.0","method":"notifications/cancelled","params":{"requestId": `+testCase.id+`,"reason":"user"}}`))
		select {
		case response := <-done:
			require.NotNil(t, response.Error, testCase.description)
			assert.EqualValues(t, -32603, response.Error.Code, testCase.description)
			assert.Equal(t, "request cancelled", response.Error.Message, testCase.description)
			assert.Equal(t, testCase.id, idOf(t, response), testCase.description)
		case <-time.After(2 * time.Second):
			t.Fatalf("%v: request was not cancelled", testCase.description)
		}
		assert.Equal(t, 0, aRouter.InFlight(), testCase.description)
	}
}

func TestRouter_Notify(t *testing.T) {
	aRouter := New(&fakeGateway{})
	assert.False(t, aRouter.Initialized())
	aRouter.Notify(context.Background(), request(t, `{"method":"notifications/initialized"}`))
	assert.True(t, aRouter.Initialized())
	aRouter.Notify(context.Background(), request(t, `{"method":"notifications/cancelled","params":"bad"}`))
	aRouter.Notify(context.Background(), request(t, `{"method":"unknown/notification"}`))
}

func TestNormalizeTools(t *testing.T) {
	tools := NormalizeTools([]json.RawMessage{
		json.RawMessage(`{"name":"a","description":null,"inputSchema":null}`),
		json.RawMessage(`{"name":"b","inputSchema":{"type":"string"}}`),
		json.RawMessage(`{"name":"c","inputSchema":{"type":"object","properties":{"n":{"maximum":12345678901234567890}}}}`),
		json.RawMessage(`[1]`),
		json.RawMessage(`{"name":7}`),
	})
	require.Len(t, tools, 3)
	assert.Equal(t, "", tools[0].Description)
	assert.Equal(t, defaultInputSchema(), tools[0].InputSchema)
	assert.Equal(t, map[string]interface{}{"type": "string"}, tools[1].InputSchema)
	data, err := json.Marshal(tools[2])
	require.NoError(t, err)
	assert.Contains(t, string(data), "12345678901234567890")
}
