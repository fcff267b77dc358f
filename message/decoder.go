package message

import (
	"encoding/json"
	"fmt"

	"github.com/viant/jsonrpc"
)

const (
	fieldId     = "id"
	fieldMethod = "method"
	fieldParams = "params"

	parseErrorMessage = "Parse error"
)

// Decode decodes a single line; it never fails, a malformed line yields an Outcome carrying a parse error.
func Decode(line string) *Outcome {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return parseError(describe(err))
	}
	if fields == nil { // literal null
		return parseError(fmt.Errorf("expected object, got null"))
	}
	msg := &Message{Params: fields[fieldParams]}
	if id, ok := fields[fieldId]; ok {
		msg.Id = id
	}
	if method, ok := fields[fieldMethod]; ok {
		// a non string method leaves Method empty, which the router reports as not found
		_ = json.Unmarshal(method, &msg.Method)
	}
	if isNull(msg.Params) {
		msg.Params = nil
	}
	return &Outcome{Message: msg}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 4 && string(raw) == "null"
}

func parseError(cause error) *Outcome {
	return &Outcome{Error: jsonrpc.NewParsingError(parseErrorMessage, nil), Cause: cause}
}

func describe(err error) error {
	switch actual := err.(type) {
	case *json.SyntaxError:
		return fmt.Errorf("%w at offset %d", actual, actual.Offset)
	case *json.UnmarshalTypeError:
		return fmt.Errorf("expected object, got %v", actual.Value)
	}
	return err
}
