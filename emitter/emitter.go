package emitter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/viant/jsonrpc"
)

var nullId = json.RawMessage("null")

// Emitter writes one reply line per call
type Emitter struct {
	writer io.Writer
	mux    sync.Mutex
	err    error
}

type wireError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wireError      `json:"error,omitempty"`
}

// Emit serializes response as a single compact line and writes it with one Write call.
func (e *Emitter) Emit(response *jsonrpc.Response) error {
	if response == nil {
		return nil
	}
	response.Jsonrpc = jsonrpc.Version
	data, err := encode(response)
	if err != nil {
		return err
	}
	e.mux.Lock()
	defer e.mux.Unlock()
	if e.err != nil {
		return e.err
	}
	if _, err = e.writer.Write(data); err != nil {
		e.err = fmt.Errorf("failed to write reply: %w", err)
		return e.err
	}
	return nil
}

// Err returns the first write error, if any
func (e *Emitter) Err() error {
	e.mux.Lock()
	defer e.mux.Unlock()
	return e.err
}

func encode(response *jsonrpc.Response) ([]byte, error) {
	msg := &envelope{Jsonrpc: response.Jsonrpc, Id: nullId}
	if response.Id != nil {
		id, err := json.Marshal(response.Id)
		if err != nil {
			return nil, fmt.Errorf("failed to encode reply id: %w", err)
		}
		msg.Id = id
	}
	if response.Error != nil {
		msg.Error = &wireError{Code: int(response.Error.Code), Message: response.Error.Message}
	} else {
		msg.Result = response.Result
		if len(bytes.TrimSpace(msg.Result)) == 0 {
			msg.Result = json.RawMessage("{}")
		}
	}
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(msg); err != nil { // Encode appends the newline
		return nil, fmt.Errorf("failed to encode reply: %w", err)
	}
	return buffer.Bytes(), nil
}

// New creates an emitter writing to writer
func New(writer io.Writer) *Emitter {
	return &Emitter{writer: writer}
}
