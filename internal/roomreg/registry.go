// Package roomreg is the authoritative in-memory room directory: creation,
// discovery, join/leave/ready/start, host migration and auto-cleanup.
package roomreg

import (
	"fmt"
	"strings"
	"sync"

	"github.com/splkm97/lobbyserver/internal/rpc"
)

const (
	MinPlayerLimit = 2
	MaxPlayerLimit = 8
)

type State string

const (
	StateWaiting State = "waiting"
	StateInGame  State = "in_game"
)

// Player is one member of a room.
type Player struct {
	UserID   int64
	Username string
	Prepared bool
	IsHost   bool
}

// Room is a snapshot-safe value: callers get copies, never pointers into the
// registry's internals, so a caller can't accidentally bypass the mutex.
type Room struct {
	ID          int64
	Name        string
	State       State
	HostUserID  int64
	PlayerLimit int
	Players     []Player
}

type room struct {
	id          int64
	name        string
	state       State
	hostUserID  int64
	playerLimit int
	players     []Player
}

func (r *room) snapshot() Room {
	players := make([]Player, len(r.players))
	copy(players, r.players)
	return Room{
		ID:          r.id,
		Name:        r.name,
		State:       r.state,
		HostUserID:  r.hostUserID,
		PlayerLimit: r.playerLimit,
		Players:     players,
	}
}

// Summary is the compact listing shape used by room_list.
type Summary struct {
	ID          int64
	Name        string
	State       State
	PlayerCount int
	PlayerLimit int
}

// Registry owns every room plus the name-uniqueness and user->room indexes.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[int64]*room
	byName   map[string]int64
	userRoom map[int64]int64
	nextID   int64
}

func New() *Registry {
	return &Registry{
		rooms:    make(map[int64]*room),
		byName:   make(map[string]int64),
		userRoom: make(map[int64]int64),
	}
}

// ListRooms returns a stable-within-call snapshot of every room.
func (r *Registry) ListRooms() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, Summary{
			ID:          rm.id,
			Name:        rm.name,
			State:       rm.state,
			PlayerCount: len(rm.players),
			PlayerLimit: rm.playerLimit,
		})
	}
	return out
}

// CreateRoom creates a room with the caller as sole player and host. name
// may be empty, triggering the "房间 %d" auto-assignment.
func (r *Registry) CreateRoom(userID int64, username, name string, playerLimit int) (Room, error) {
	if userID == 0 {
		return Room{}, rpc.ErrNotLoggedIn
	}
	if username == "" {
		return Room{}, rpc.ErrMissingUsername
	}
	if playerLimit < MinPlayerLimit || playerLimit > MaxPlayerLimit {
		return Room{}, rpc.ErrInvalidPlayerCap
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, inRoom := r.userRoom[userID]; inRoom {
		return Room{}, rpc.ErrAlreadyInRoom
	}

	name = strings.TrimSpace(name)
	if name != "" {
		if _, taken := r.byName[name]; taken {
			return Room{}, rpc.ErrRoomNameExists
		}
	}

	r.nextID++
	id := r.nextID
	if name == "" {
		name = fmt.Sprintf("房间 %d", id)
	}
	if _, taken := r.byName[name]; taken {
		return Room{}, rpc.ErrRoomNameExists
	}

	rm := &room{
		id:          id,
		name:        name,
		state:       StateWaiting,
		hostUserID:  userID,
		playerLimit: playerLimit,
		players:     []Player{{UserID: userID, Username: username, IsHost: true}},
	}
	r.rooms[id] = rm
	r.byName[name] = id
	r.userRoom[userID] = id
	return rm.snapshot(), nil
}

// JoinRoom appends the caller to an existing room.
func (r *Registry) JoinRoom(userID int64, username string, roomID int64) (Room, error) {
	if userID == 0 {
		return Room{}, rpc.ErrNotLoggedIn
	}
	if username == "" {
		return Room{}, rpc.ErrMissingUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, inRoom := r.userRoom[userID]; inRoom {
		return Room{}, rpc.ErrAlreadyInRoom
	}
	rm, ok := r.rooms[roomID]
	if !ok {
		return Room{}, rpc.ErrRoomNotFound
	}
	if rm.state == StateInGame {
		return Room{}, rpc.ErrRoomInProgress
	}
	if len(rm.players) >= rm.playerLimit {
		return Room{}, rpc.ErrRoomFull
	}

	rm.players = append(rm.players, Player{UserID: userID, Username: username})
	r.userRoom[userID] = rm.id
	return rm.snapshot(), nil
}

// LeaveRoom removes the caller from whatever room they occupy, migrating
// the host and/or deleting the room as needed. Permitted in every room
// state, including in_game.
func (r *Registry) LeaveRoom(userID int64) (roomID int64, err error) {
	if userID == 0 {
		return 0, rpc.ErrNotLoggedIn
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rid, inRoom := r.userRoom[userID]
	if !inRoom {
		return 0, rpc.ErrNotInRoom
	}
	rm := r.rooms[rid]
	r.removePlayerLocked(rm, userID)
	delete(r.userRoom, userID)
	return rid, nil
}

// removePlayerLocked removes userID from rm's player slice, migrating the
// host if needed, and deletes the room outright if it's now empty. Caller
// must hold r.mu.
func (r *Registry) removePlayerLocked(rm *room, userID int64) {
	idx := -1
	for i, p := range rm.players {
		if p.UserID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	wasHost := rm.players[idx].IsHost
	rm.players = append(rm.players[:idx], rm.players[idx+1:]...)

	if len(rm.players) == 0 {
		delete(r.rooms, rm.id)
		delete(r.byName, rm.name)
		return
	}

	if wasHost {
		rm.players[0].IsHost = true
		rm.hostUserID = rm.players[0].UserID
	}
}

// SetPrepared toggles the caller's readiness state.
func (r *Registry) SetPrepared(userID int64, prepared bool) (Room, error) {
	if userID == 0 {
		return Room{}, rpc.ErrNotLoggedIn
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, err := r.roomOfLocked(userID)
	if err != nil {
		return Room{}, err
	}
	if rm.state == StateInGame {
		return Room{}, rpc.ErrRoomInProgress
	}
	for i := range rm.players {
		if rm.players[i].UserID == userID {
			rm.players[i].Prepared = prepared
			break
		}
	}
	return rm.snapshot(), nil
}

// StartGame transitions the caller's room to in_game. The caller must be
// host and every player must be prepared.
func (r *Registry) StartGame(userID int64) (Room, error) {
	if userID == 0 {
		return Room{}, rpc.ErrNotLoggedIn
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, err := r.roomOfLocked(userID)
	if err != nil {
		return Room{}, err
	}
	if rm.state == StateInGame {
		return Room{}, rpc.ErrRoomInProgress
	}
	if rm.hostUserID != userID {
		return Room{}, rpc.ErrNotHost
	}
	for _, p := range rm.players {
		if !p.Prepared {
			return Room{}, rpc.ErrPlayersNotReady
		}
	}
	rm.state = StateInGame
	return rm.snapshot(), nil
}

// UpdateConfig changes a waiting room's player limit. The caller must be
// host.
func (r *Registry) UpdateConfig(userID int64, playerLimit int) (Room, error) {
	if userID == 0 {
		return Room{}, rpc.ErrNotLoggedIn
	}
	if playerLimit < MinPlayerLimit || playerLimit > MaxPlayerLimit {
		return Room{}, rpc.ErrInvalidPlayerCap
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, err := r.roomOfLocked(userID)
	if err != nil {
		return Room{}, err
	}
	if rm.state == StateInGame {
		return Room{}, rpc.ErrRoomInProgress
	}
	if rm.hostUserID != userID {
		return Room{}, rpc.ErrNotHost
	}
	if playerLimit < len(rm.players) {
		return Room{}, rpc.ErrInvalidPlayerCap
	}
	rm.playerLimit = playerLimit
	return rm.snapshot(), nil
}

// HandleDisconnect removes userID from any room it occupies, swallowing
// errors, used from connection teardown where there's no caller to report
// to.
func (r *Registry) HandleDisconnect(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rid, ok := r.userRoom[userID]
	if !ok {
		return
	}
	rm, ok := r.rooms[rid]
	if ok {
		r.removePlayerLocked(rm, userID)
	}
	delete(r.userRoom, userID)
}

func (r *Registry) roomOfLocked(userID int64) (*room, error) {
	rid, ok := r.userRoom[userID]
	if !ok {
		return nil, rpc.ErrNotInRoom
	}
	rm, ok := r.rooms[rid]
	if !ok {
		return nil, rpc.ErrNotInRoom
	}
	return rm, nil
}
