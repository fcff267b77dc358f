package router

import (
	"bytes"
	"encoding/json"
)

// resultText renders a gateway result as tool text content: JSON strings verbatim, anything else indented
func resultText(result json.RawMessage) string {
	result = bytes.TrimSpace(result)
	if len(result) > 0 && result[0] == '"' {
		var text string
		if err := json.Unmarshal(result, &text); err == nil {
			return text
		}
	}
	buffer := bytes.Buffer{}
	if err := json.Indent(&buffer, result, "", "  "); err != nil {
		return string(result)
	}
	return buffer.String()
}
