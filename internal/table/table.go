// Package table implements a generic seated-player table, parameterised over
// a caller-supplied phase type. It owns seat occupancy, the dealer and
// current-turn pointers; it has no opinion about what the phase values mean
// or which transitions between them are legal; that's internal/game's job.
package table

import "github.com/splkm97/lobbyserver/internal/rpc"

// Seat holds the occupant of one numbered position, or is empty.
type Seat struct {
	Occupied bool
	UserID   int64
}

// State is a fixed-size seat table plus a phase value of the caller's choice.
// Not safe for concurrent use by itself; callers serialise access (the game
// phase machine built on top does this with its own mutex).
type State[P comparable] struct {
	Seats       []Seat
	SeatedCount int
	Dealer      *int // seat index, nil if unset
	CurrentTurn *int // seat index, nil if unset
	Phase       P
}

// New allocates a table with the given seat count, starting in initialPhase.
func New[P comparable](seatCount int, initialPhase P) *State[P] {
	return &State[P]{
		Seats: make([]Seat, seatCount),
		Phase: initialPhase,
	}
}

func (s *State[P]) validSeat(seat int) bool {
	return seat >= 0 && seat < len(s.Seats)
}

// Seat seats userID at the given index.
func (s *State[P]) Seat(seat int, userID int64) error {
	if !s.validSeat(seat) {
		return rpc.ErrInvalidSeat
	}
	if s.Seats[seat].Occupied {
		return rpc.ErrSeatOccupied
	}
	if s.SeatedCount >= len(s.Seats) {
		return rpc.ErrTableFull
	}
	s.Seats[seat] = Seat{Occupied: true, UserID: userID}
	s.SeatedCount++
	return nil
}

// Unseat clears the given seat, dropping it from Dealer/CurrentTurn if it
// happened to be either.
func (s *State[P]) Unseat(seat int) error {
	if !s.validSeat(seat) {
		return rpc.ErrInvalidSeat
	}
	if !s.Seats[seat].Occupied {
		return rpc.ErrSeatEmpty
	}
	s.Seats[seat] = Seat{}
	s.SeatedCount--
	if s.Dealer != nil && *s.Dealer == seat {
		s.Dealer = nil
	}
	if s.CurrentTurn != nil && *s.CurrentTurn == seat {
		s.CurrentTurn = nil
	}
	return nil
}

// FindSeat returns the seat index occupied by userID, or false.
func (s *State[P]) FindSeat(userID int64) (int, bool) {
	for i, seat := range s.Seats {
		if seat.Occupied && seat.UserID == userID {
			return i, true
		}
	}
	return 0, false
}

// LowestOccupied returns the lowest-indexed occupied seat, or false if none.
func (s *State[P]) LowestOccupied() (int, bool) {
	for i, seat := range s.Seats {
		if seat.Occupied {
			return i, true
		}
	}
	return 0, false
}

// NextOccupiedClockwise returns the nearest occupied seat strictly after
// `from`, wrapping around the table.
func (s *State[P]) NextOccupiedClockwise(from int) (int, bool) {
	n := len(s.Seats)
	for step := 1; step <= n; step++ {
		idx := (from + step) % n
		if s.Seats[idx].Occupied {
			return idx, true
		}
	}
	return 0, false
}
