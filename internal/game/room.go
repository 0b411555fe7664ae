package game

import (
	"math/rand"
	"sync"

	"github.com/splkm97/lobbyserver/internal/rpc"
	"github.com/splkm97/lobbyserver/internal/table"
)

// legalTransitions enumerates, for each phase, the phases it may move to.
// Anything not listed here fails with ErrInvalidPhaseTransition.
var legalTransitions = map[Phase]Phase{
	PhaseSeating:     PhaseDealing,
	PhaseDealing:     PhaseTossing,
	PhaseTossing:     PhaseChallenging,
	PhaseChallenging: PhasePlaying,
	PhasePlaying:     PhaseFinished,
	PhaseFinished:    PhaseSeating,
}

// Machine is a table.State[Phase] plus the round-level operations and
// locking for a single round. Seating itself (adding/removing
// players from the table) is legal only in PhaseSeating, which is enforced by
// each operation individually rather than by the transition graph above.
type Machine struct {
	mu        sync.RWMutex
	table     *table.State[Phase]
	deck      []Card
	tossOwner *int // seat index, set on ResolveToss, cleared on ResetForNextRound
}

// NewMachine builds a phase machine with the given seat count, starting in
// PhaseSeating with a fresh, unshuffled deck.
func NewMachine(seatCount int) *Machine {
	return &Machine{
		table: table.New[Phase](seatCount, PhaseSeating),
		deck:  NewDeck(),
	}
}

func (m *Machine) requirePhase(want Phase) error {
	if m.table.Phase != want {
		return rpc.ErrInvalidPhaseTransition
	}
	return nil
}

func (m *Machine) advance(to Phase) error {
	want, ok := legalTransitions[m.table.Phase]
	if !ok || want != to {
		return rpc.ErrInvalidPhaseTransition
	}
	m.table.Phase = to
	return nil
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.Phase
}

// SeatPlayer seats userID at the given seat. Permitted only during seating.
func (m *Machine) SeatPlayer(seat int, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requirePhase(PhaseSeating); err != nil {
		return err
	}
	return m.table.Seat(seat, userID)
}

// RemovePlayer unseats userID wherever they sit. Permitted only during
// seating.
func (m *Machine) RemovePlayer(userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requirePhase(PhaseSeating); err != nil {
		return err
	}
	seat, ok := m.table.FindSeat(userID)
	if !ok {
		return rpc.ErrPlayerNotFound
	}
	return m.table.Unseat(seat)
}

// StartRound moves seating -> dealing, rotating the dealer to the next
// occupied seat clockwise of the previous dealer (or the lowest-indexed
// occupied seat if there was none yet).
func (m *Machine) StartRound() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requirePhase(PhaseSeating); err != nil {
		return err
	}
	if m.table.SeatedCount < MinPlayersToStart {
		return rpc.ErrNotEnoughPlayers
	}

	var next int
	var ok bool
	if m.table.Dealer != nil {
		next, ok = m.table.NextOccupiedClockwise(*m.table.Dealer)
	} else {
		next, ok = m.table.LowestOccupied()
	}
	if !ok {
		return rpc.ErrNoPlayersSeated
	}
	m.table.Dealer = &next

	if err := m.advance(PhaseDealing); err != nil {
		return err
	}
	current := next
	m.table.CurrentTurn = &current
	return nil
}

// FinishDealing moves dealing -> tossing.
func (m *Machine) FinishDealing() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advance(PhaseTossing)
}

// ResolveToss records the winning seat and moves tossing -> challenging.
func (m *Machine) ResolveToss(seat int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seat < 0 || seat >= len(m.table.Seats) {
		return rpc.ErrInvalidSeat
	}
	if !m.table.Seats[seat].Occupied {
		return rpc.ErrSeatEmpty
	}
	if err := m.advance(PhaseChallenging); err != nil {
		return err
	}
	s := seat
	m.tossOwner = &s
	return nil
}

// ResolveChallenge moves challenging -> playing. challenger, when non-nil,
// reassigns the lead seat; otherwise the toss winner keeps it.
func (m *Machine) ResolveChallenge(challenger *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tossOwner == nil {
		return rpc.ErrMissingTossWinner
	}
	if err := m.advance(PhasePlaying); err != nil {
		return err
	}
	lead := *m.tossOwner
	if challenger != nil {
		lead = *challenger
	}
	m.table.CurrentTurn = &lead
	return nil
}

// FinishRound moves playing -> finished, clearing the current turn.
func (m *Machine) FinishRound() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.advance(PhaseFinished); err != nil {
		return err
	}
	m.table.CurrentTurn = nil
	return nil
}

// ResetForNextRound moves finished -> seating, rebuilding and reshuffling the
// deck and clearing the toss owner.
func (m *Machine) ResetForNextRound() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.advance(PhaseSeating); err != nil {
		return err
	}
	m.tossOwner = nil
	m.deck = NewDeck()
	rand.Shuffle(len(m.deck), func(i, j int) { m.deck[i], m.deck[j] = m.deck[j], m.deck[i] })
	return nil
}

// SeatedCount reports how many seats are currently occupied.
func (m *Machine) SeatedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.SeatedCount
}

// Dealer returns the current dealer seat, if any.
func (m *Machine) Dealer() (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.table.Dealer == nil {
		return 0, false
	}
	return *m.table.Dealer, true
}

// CurrentTurn returns the current-turn seat, if any.
func (m *Machine) CurrentTurn() (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.table.CurrentTurn == nil {
		return 0, false
	}
	return *m.table.CurrentTurn, true
}
