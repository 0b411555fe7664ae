// Package conn models the state a single transport connection carries: the
// session identity the server harness assigned it, and the user/room
// identities it has acquired since connecting.
package conn

// State is owned by exactly one handler goroutine per connection; the
// transport's read pump guarantees at most one reader per connection, so
// unlike the registries this struct carries no mutex of its own.
type State struct {
	SessionID string

	hasUser  bool
	userID   int64
	userName string

	hasRoom bool
	roomID  int64

	Disconnected bool
}

// New creates connection state freshly bound to sessionID, with no user or
// room acquired yet.
func New(sessionID string) *State {
	return &State{SessionID: sessionID}
}

// User returns the bound user id and cached nickname, if any.
func (s *State) User() (id int64, nickname string, ok bool) {
	return s.userID, s.userName, s.hasUser
}

// BindUser associates this connection with a user identity.
func (s *State) BindUser(id int64, nickname string) {
	s.hasUser = true
	s.userID = id
	s.userName = nickname
}

// RenameUser updates the cached nickname without changing the bound id.
func (s *State) RenameUser(nickname string) {
	s.userName = nickname
}

// Room returns the bound room id, if any.
func (s *State) Room() (id int64, ok bool) {
	return s.roomID, s.hasRoom
}

// BindRoom associates this connection with a room identity.
func (s *State) BindRoom(id int64) {
	s.hasRoom = true
	s.roomID = id
}

// ClearRoom drops the room association (on leave or disconnect cleanup).
func (s *State) ClearRoom() {
	s.hasRoom = false
	s.roomID = 0
}
