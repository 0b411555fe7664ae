package rpc

import (
	"encoding/json"
	"testing"
)

func TestParseCallWithID(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"ping","params":{}}`)
	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Kind != KindCall {
		t.Fatalf("Kind = %v, want KindCall", f.Kind)
	}
	if f.Method != "ping" {
		t.Fatalf("Method = %q, want ping", f.Method)
	}
	if f.IsNotification() {
		t.Fatalf("IsNotification() = true, want false")
	}
}

func TestParseNotification(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","method":"ping"}`)
	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !f.IsNotification() {
		t.Fatalf("IsNotification() = false, want true")
	}
}

func TestParseTolerance(t *testing.T) {
	cases := map[string][]byte{
		"trailing NUL": append([]byte(`{"jsonrpc":"2.0","method":"ping"}`), 0),
		"leading BOM":  append(bom, []byte(`{"jsonrpc":"2.0","method":"ping"}`)...),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(raw); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"malformed json":  `{"jsonrpc":`,
		"wrong version":   `{"jsonrpc":"1.0","method":"ping"}`,
		"bad id type":     `{"jsonrpc":"2.0","id":true,"method":"ping"}`,
		"empty envelope":  `{"jsonrpc":"2.0"}`,
		"response no id":  `{"jsonrpc":"2.0","result":{}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(raw)); err == nil {
				t.Fatalf("Parse(%q) = nil error, want one", raw)
			}
		})
	}
}

func TestParseResponseAndError(t *testing.T) {
	f, err := Parse([]byte(`{"jsonrpc":"2.0","id":5,"result":{"ok":true}}`))
	if err != nil || f.Kind != KindResponse {
		t.Fatalf("Parse(response) = %+v, %v", f, err)
	}

	f, err = Parse([]byte(`{"jsonrpc":"2.0","id":5,"error":{"code":-32601,"message":"Method not found"}}`))
	if err != nil || f.Kind != KindError || f.Err.Code != -32601 {
		t.Fatalf("Parse(error) = %+v, %v", f, err)
	}
}

func TestEncodeResultRoundTrip(t *testing.T) {
	idRaw := json.RawMessage(`7`)
	wire, err := EncodeResult(idRaw, map[string]string{"code": "pong"})
	if err != nil {
		t.Fatalf("EncodeResult() error = %v", err)
	}
	f, err := Parse(wire)
	if err != nil {
		t.Fatalf("Parse(EncodeResult()) error = %v", err)
	}
	if f.Kind != KindResponse {
		t.Fatalf("Kind = %v, want KindResponse", f.Kind)
	}
	var got map[string]string
	if err := json.Unmarshal(f.Result, &got); err != nil {
		t.Fatalf("Unmarshal(Result) error = %v", err)
	}
	if got["code"] != "pong" {
		t.Fatalf("Result = %v, want code=pong", got)
	}
}

func TestEncodeErrorNullID(t *testing.T) {
	wire, err := EncodeError(nil, -32700, "Parse error")
	if err != nil {
		t.Fatalf("EncodeError() error = %v", err)
	}
	f, err := Parse(wire)
	if err != nil {
		t.Fatalf("Parse(EncodeError()) error = %v", err)
	}
	if f.Kind != KindError || f.Err.Code != -32700 {
		t.Fatalf("f = %+v", f)
	}
	if string(f.ID) != "null" {
		t.Fatalf("ID = %s, want null", f.ID)
	}
}

func TestCodeOf(t *testing.T) {
	code, msg := CodeOf(ErrRoomFull)
	if code != -32000 || msg != "RoomFull" {
		t.Fatalf("CodeOf(ErrRoomFull) = %d,%q", code, msg)
	}
}
