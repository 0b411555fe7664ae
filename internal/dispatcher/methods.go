package dispatcher

import (
	"github.com/splkm97/lobbyserver/internal/conn"
	"github.com/splkm97/lobbyserver/internal/roomreg"
	"github.com/splkm97/lobbyserver/internal/userreg"
)

// Wire payload shapes exchanged with clients.

type emptyParams struct{}

type PingResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SetNameParams struct {
	Nickname string `json:"nickname"`
}

type SetNameResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type RoomSummaryWire struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	State       string `json:"state"`
	PlayerCount int    `json:"player_count"`
	PlayerLimit int    `json:"player_limit"`
}

type RoomListResponse struct {
	Rooms []RoomSummaryWire `json:"rooms"`
}

type RoomPlayerWire struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	State    string `json:"state"`
	IsHost   bool   `json:"is_host"`
}

type RoomConfigWire struct {
	PlayerLimit int `json:"player_limit"`
}

type RoomDetailWire struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	State       string           `json:"state"`
	HostID      int64            `json:"host_id"`
	PlayerLimit int              `json:"player_limit"`
	Players     []RoomPlayerWire `json:"players"`
	Config      RoomConfigWire   `json:"config"`
}

type RoomCreateParams struct {
	Name        string `json:"name"`
	PlayerLimit int    `json:"player_limit"`
}

type RoomJoinParams struct {
	RoomID int64 `json:"room_id"`
}

type RoomLeaveResponse struct {
	RoomID int64 `json:"room_id"`
}

type RoomReadyParams struct {
	Prepared bool `json:"prepared"`
}

type RoomConfigUpdateParams struct {
	PlayerLimit int `json:"player_limit"`
}

func playerState(prepared bool) string {
	if prepared {
		return "prepared"
	}
	return "not_prepared"
}

func toRoomDetailWire(r roomreg.Room) RoomDetailWire {
	players := make([]RoomPlayerWire, len(r.Players))
	for i, p := range r.Players {
		players[i] = RoomPlayerWire{
			UserID:   p.UserID,
			Username: p.Username,
			State:    playerState(p.Prepared),
			IsHost:   p.IsHost,
		}
	}
	return RoomDetailWire{
		ID:          r.ID,
		Name:        r.Name,
		State:       string(r.State),
		HostID:      r.HostUserID,
		PlayerLimit: r.PlayerLimit,
		Players:     players,
		Config:      RoomConfigWire{PlayerLimit: r.PlayerLimit},
	}
}

// RegisterMethods wires every lobby RPC method onto d, closing over
// the provided registries.
func RegisterMethods(d *Dispatcher, users *userreg.Registry, rooms *roomreg.Registry) {
	Register(d, "ping", func(c *conn.State, _ emptyParams) (PingResponse, error) {
		return PingResponse{Code: "pong", Message: "Heartbeat ok"}, nil
	})

	Register(d, "user_set_name", func(c *conn.State, p SetNameParams) (SetNameResponse, error) {
		u, err := users.SetName(c, p.Nickname)
		if err != nil {
			return SetNameResponse{}, err
		}
		return SetNameResponse{ID: u.ID, Username: u.Nickname}, nil
	})

	Register(d, "room_list", func(c *conn.State, _ emptyParams) (RoomListResponse, error) {
		summaries := rooms.ListRooms()
		wire := make([]RoomSummaryWire, len(summaries))
		for i, s := range summaries {
			wire[i] = RoomSummaryWire{
				ID:          s.ID,
				Name:        s.Name,
				State:       string(s.State),
				PlayerCount: s.PlayerCount,
				PlayerLimit: s.PlayerLimit,
			}
		}
		return RoomListResponse{Rooms: wire}, nil
	})

	Register(d, "room_create", func(c *conn.State, p RoomCreateParams) (RoomDetailWire, error) {
		userID, username, _ := c.User()
		r, err := rooms.CreateRoom(userID, username, p.Name, p.PlayerLimit)
		if err != nil {
			return RoomDetailWire{}, err
		}
		c.BindRoom(r.ID)
		return toRoomDetailWire(r), nil
	})

	Register(d, "room_join", func(c *conn.State, p RoomJoinParams) (RoomDetailWire, error) {
		userID, username, _ := c.User()
		r, err := rooms.JoinRoom(userID, username, p.RoomID)
		if err != nil {
			return RoomDetailWire{}, err
		}
		c.BindRoom(r.ID)
		return toRoomDetailWire(r), nil
	})

	Register(d, "room_leave", func(c *conn.State, _ emptyParams) (RoomLeaveResponse, error) {
		userID, _, _ := c.User()
		roomID, err := rooms.LeaveRoom(userID)
		if err != nil {
			return RoomLeaveResponse{}, err
		}
		c.ClearRoom()
		return RoomLeaveResponse{RoomID: roomID}, nil
	})

	Register(d, "room_ready", func(c *conn.State, p RoomReadyParams) (RoomDetailWire, error) {
		userID, _, _ := c.User()
		r, err := rooms.SetPrepared(userID, p.Prepared)
		if err != nil {
			return RoomDetailWire{}, err
		}
		return toRoomDetailWire(r), nil
	})

	Register(d, "room_start", func(c *conn.State, _ emptyParams) (RoomDetailWire, error) {
		userID, _, _ := c.User()
		r, err := rooms.StartGame(userID)
		if err != nil {
			return RoomDetailWire{}, err
		}
		return toRoomDetailWire(r), nil
	})

	Register(d, "room_config_update", func(c *conn.State, p RoomConfigUpdateParams) (RoomDetailWire, error) {
		userID, _, _ := c.User()
		r, err := rooms.UpdateConfig(userID, p.PlayerLimit)
		if err != nil {
			return RoomDetailWire{}, err
		}
		return toRoomDetailWire(r), nil
	})
}

// DisconnectHookFor builds the OnDisconnect cleanup hook: release the user's
// room membership (with host migration / auto-cleanup) and the identity
// itself.
func DisconnectHookFor(users *userreg.Registry, rooms *roomreg.Registry) DisconnectHook {
	return func(c *conn.State) {
		userID, _, hasUser := c.User()
		if !hasUser {
			return
		}
		rooms.HandleDisconnect(userID)
		users.Remove(userID)
	}
}
