// Package rpc implements the JSON-RPC 2.0 framing used over the lobby server's
// WebSocket transport: parsing incoming frames, classifying them, and encoding
// outgoing requests, responses, notifications and errors.
package rpc

import (
	"bytes"
	"encoding/json"
)

const Version = "2.0"

// Kind distinguishes the three frame shapes JSON-RPC 2.0 permits on the wire.
type Kind int

const (
	KindCall Kind = iota
	KindResponse
	KindError
)

// Frame is a parsed incoming envelope. Exactly one of Method (Call) or Result/Err
// (Response/Error) is meaningful, selected by Kind.
type Frame struct {
	Kind   Kind
	ID     json.RawMessage // raw to preserve int vs string vs absent(null)
	Method string
	Params json.RawMessage
	Result json.RawMessage
	Err    *WireError
}

// IsNotification reports whether a Call frame carries no id field at all.
// An explicit "id": null is a valid (if unusual) id value per §4.1 and is
// NOT a notification; only the absent id member is.
func (f Frame) IsNotification() bool {
	return f.Kind == KindCall && len(f.ID) == 0
}

type WireError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *WireError      `json:"error,omitempty"`
}

var bom = []byte{0xEF, 0xBB, 0xBF}

// CleanWire strips a leading UTF-8 BOM and a single trailing NUL byte, the two
// tolerances the wire contract requires before a payload reaches the parser.
func CleanWire(b []byte) []byte {
	b = bytes.TrimPrefix(b, bom)
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	return b
}

// Parse decodes a single wire payload into a Frame, or reports a parse/envelope
// error via the second return (never both nil and non-nil together: a non-nil
// error means no usable Frame was produced).
func Parse(raw []byte) (Frame, error) {
	raw = CleanWire(raw)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Frame{}, ErrParse
	}
	if env.JSONRPC != Version {
		return Frame{}, ErrInvalidRequest
	}
	if !validID(env.ID) {
		return Frame{}, ErrInvalidRequest
	}

	switch {
	case env.Method != "":
		return Frame{
			Kind:   KindCall,
			ID:     env.ID,
			Method: env.Method,
			Params: env.Params,
		}, nil
	case env.Result != nil:
		if len(env.ID) == 0 {
			return Frame{}, ErrInvalidRequest
		}
		return Frame{Kind: KindResponse, ID: env.ID, Result: env.Result}, nil
	case env.Error != nil:
		return Frame{Kind: KindError, ID: env.ID, Err: env.Error}, nil
	default:
		return Frame{}, ErrInvalidRequest
	}
}

// validID accepts an absent id, JSON null, a JSON number, or a JSON string.
func validID(id json.RawMessage) bool {
	if len(id) == 0 {
		return true
	}
	var v interface{}
	if err := json.Unmarshal(id, &v); err != nil {
		return false
	}
	switch v.(type) {
	case nil, float64, string:
		return true
	default:
		return false
	}
}

// EncodeRequest encodes a Call frame with an id, expecting a Response/Error back.
func EncodeRequest(id, method string, params interface{}) ([]byte, error) {
	p, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	idRaw, _ := json.Marshal(id)
	return json.Marshal(envelope{JSONRPC: Version, ID: idRaw, Method: method, Params: p})
}

// EncodeNotification encodes a Call frame with no id.
func EncodeNotification(method string, params interface{}) ([]byte, error) {
	p, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{JSONRPC: Version, Method: method, Params: p})
}

// EncodeResult encodes a successful Response for the given raw id.
func EncodeResult(id json.RawMessage, result interface{}) ([]byte, error) {
	r, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{JSONRPC: Version, ID: id, Result: r})
}

// EncodeError encodes an Error frame for the given raw id (id may be nil/null
// when the failure occurred before an id could be associated).
func EncodeError(id json.RawMessage, code int, message string) ([]byte, error) {
	if id == nil {
		id = json.RawMessage("null")
	}
	return json.Marshal(envelope{JSONRPC: Version, ID: id, Error: &WireError{Code: code, Message: message}})
}
