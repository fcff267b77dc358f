package router

import (
	"bytes"
	"encoding/json"
)

// Tool represents a normalized tool descriptor
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ListToolsResult represents tools/list result
type ListToolsResult struct {
	Tools []*Tool `json:"tools"`
}

func defaultInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
		"required":   []interface{}{},
	}
}

// NormalizeTools converts gateway descriptors into tools with a description and a well formed input schema;
// descriptors without a name are skipped.
func NormalizeTools(descriptors []json.RawMessage) []*Tool {
	var tools = make([]*Tool, 0, len(descriptors))
	for _, descriptor := range descriptors {
		if tool := normalizeTool(descriptor); tool != nil {
			tools = append(tools, tool)
		}
	}
	return tools
}

func normalizeTool(descriptor json.RawMessage) *Tool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(descriptor, &fields); err != nil || fields == nil {
		return nil
	}
	tool := &Tool{}
	if err := json.Unmarshal(fields["name"], &tool.Name); err != nil || tool.Name == "" {
		return nil
	}
	if raw, ok := fields["description"]; ok {
		_ = json.Unmarshal(raw, &tool.Description)
	}
	tool.InputSchema = normalizeSchema(fields["inputSchema"])
	return tool
}

func normalizeSchema(raw json.RawMessage) map[string]interface{} {
	if len(raw) == 0 {
		return defaultInputSchema()
	}
	var schema map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&schema); err != nil || schema == nil {
		return defaultInputSchema()
	}
	if _, ok := schema["type"]; !ok {
		schema["type"] = "object"
	}
	if schema["type"] == "object" {
		if _, ok := schema["properties"]; !ok {
			schema["properties"] = map[string]interface{}{}
		}
	}
	return schema
}
