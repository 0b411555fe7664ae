package dispatcher

import (
	"encoding/json"
	"testing"

	"github.com/splkm97/lobbyserver/internal/conn"
	"github.com/splkm97/lobbyserver/internal/roomreg"
	"github.com/splkm97/lobbyserver/internal/rpc"
	"github.com/splkm97/lobbyserver/internal/userreg"
)

func newTestDispatcher() (*Dispatcher, *userreg.Registry, *roomreg.Registry) {
	users := userreg.New(nil)
	rooms := roomreg.New()
	d := New()
	RegisterMethods(d, users, rooms)
	return d, users, rooms
}

func callFrame(id int, method string, params interface{}) rpc.Frame {
	raw, _ := json.Marshal(params)
	idRaw, _ := json.Marshal(id)
	return rpc.Frame{Kind: rpc.KindCall, ID: idRaw, Method: method, Params: raw}
}

func TestOnConnectEmitsWelcome(t *testing.T) {
	d, _, _ := newTestDispatcher()
	wire, err := d.OnConnect()
	if err != nil {
		t.Fatalf("OnConnect() error = %v", err)
	}
	f, err := rpc.Parse(wire)
	if err != nil {
		t.Fatalf("Parse(welcome) error = %v", err)
	}
	if f.Method != "system" || !f.IsNotification() {
		t.Fatalf("welcome frame = %+v, want notification method=system", f)
	}
}

func TestPing(t *testing.T) {
	d, _, _ := newTestDispatcher()
	c := conn.New("s1")
	wire := d.OnCall(c, callFrame(1, "ping", emptyParams{}))
	f, err := rpc.Parse(wire)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	var resp PingResponse
	if err := json.Unmarshal(f.Result, &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if resp.Code != "pong" {
		t.Fatalf("Code = %q, want pong", resp.Code)
	}
}

func TestUnknownMethod(t *testing.T) {
	d, _, _ := newTestDispatcher()
	c := conn.New("s1")
	wire := d.OnCall(c, callFrame(1, "does_not_exist", emptyParams{}))
	f, err := rpc.Parse(wire)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Kind != rpc.KindError || f.Err.Code != -32601 {
		t.Fatalf("f = %+v, want MethodNotFound error", f)
	}
}

func TestNotificationToUnknownMethodIsDropped(t *testing.T) {
	d, _, _ := newTestDispatcher()
	c := conn.New("s1")
	raw, _ := json.Marshal(emptyParams{})
	frame := rpc.Frame{Kind: rpc.KindCall, Method: "does_not_exist", Params: raw}
	if wire := d.OnCall(c, frame); wire != nil {
		t.Fatalf("OnCall(unknown notification) = %s, want nil", wire)
	}
}

func TestLobbyHappyPath(t *testing.T) {
	d, _, _ := newTestDispatcher()
	host := conn.New("host-sess")
	guest := conn.New("guest-sess")

	mustCall(t, d, host, 1, "user_set_name", SetNameParams{Nickname: "Host"})
	mustCall(t, d, guest, 1, "user_set_name", SetNameParams{Nickname: "Guest"})

	createWire := mustCall(t, d, host, 2, "room_create", RoomCreateParams{PlayerLimit: 4})
	var created RoomDetailWire
	mustResult(t, createWire, &created)

	joinWire := mustCall(t, d, guest, 2, "room_join", RoomJoinParams{RoomID: created.ID})
	var joined RoomDetailWire
	mustResult(t, joinWire, &joined)
	if len(joined.Players) != 2 {
		t.Fatalf("Players = %d, want 2", len(joined.Players))
	}

	mustCall(t, d, host, 3, "room_ready", RoomReadyParams{Prepared: true})
	mustCall(t, d, guest, 3, "room_ready", RoomReadyParams{Prepared: true})

	startWire := mustCall(t, d, host, 4, "room_start", emptyParams{})
	var started RoomDetailWire
	mustResult(t, startWire, &started)
	if started.State != "in_game" {
		t.Fatalf("State = %q, want in_game", started.State)
	}
}

func TestInvalidParamsRejected(t *testing.T) {
	d, _, _ := newTestDispatcher()
	c := conn.New("s1")
	idRaw, _ := json.Marshal(1)
	frame := rpc.Frame{Kind: rpc.KindCall, ID: idRaw, Method: "room_create", Params: json.RawMessage(`{"player_limit": "not a number"}`)}
	wire := d.OnCall(c, frame)
	f, err := rpc.Parse(wire)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Kind != rpc.KindError || f.Err.Code != -32602 {
		t.Fatalf("f = %+v, want InvalidParams", f)
	}
}

func mustCall(t *testing.T, d *Dispatcher, c *conn.State, id int, method string, params interface{}) []byte {
	t.Helper()
	return d.OnCall(c, callFrame(id, method, params))
}

func mustResult(t *testing.T, wire []byte, out interface{}) {
	t.Helper()
	f, err := rpc.Parse(wire)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Kind == rpc.KindError {
		t.Fatalf("unexpected error frame: %+v", f.Err)
	}
	if err := json.Unmarshal(f.Result, out); err != nil {
		t.Fatalf("Unmarshal(result) error = %v", err)
	}
}

func TestDisconnectHookRemovesUserAndRoom(t *testing.T) {
	d, users, rooms := newTestDispatcher()
	hook := DisconnectHookFor(users, rooms)
	c := conn.New("s1")

	mustCall(t, d, c, 1, "user_set_name", SetNameParams{Nickname: "Solo"})
	mustCall(t, d, c, 2, "room_create", RoomCreateParams{PlayerLimit: 4})

	userID, _, _ := c.User()
	d.OnDisconnect(c, hook)
	if len(rooms.ListRooms()) != 0 {
		t.Fatalf("room still present after disconnect")
	}
	if _, ok := users.Lookup(userID); ok {
		t.Fatalf("user %d still registered after disconnect", userID)
	}
	// idempotent: second call must not panic or double-free
	d.OnDisconnect(c, hook)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Register(duplicate) did not panic")
		}
	}()
	d := New()
	Register(d, "dup", func(c *conn.State, _ emptyParams) (PingResponse, error) { return PingResponse{}, nil })
	Register(d, "dup", func(c *conn.State, _ emptyParams) (PingResponse, error) { return PingResponse{}, nil })
}
