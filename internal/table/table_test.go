package table

import "testing"

type testPhase string

const phaseIdle testPhase = "idle"

func TestSeatAndUnseat(t *testing.T) {
	st := New[testPhase](4, phaseIdle)

	if err := st.Seat(0, 101); err != nil {
		t.Fatalf("Seat() error = %v", err)
	}
	if st.SeatedCount != 1 {
		t.Fatalf("SeatedCount = %d, want 1", st.SeatedCount)
	}
	if err := st.Seat(0, 102); err == nil {
		t.Fatalf("Seat(occupied) = nil, want SeatOccupied")
	}
	if err := st.Seat(9, 102); err == nil {
		t.Fatalf("Seat(out of range) = nil, want InvalidSeat")
	}

	if err := st.Unseat(0); err != nil {
		t.Fatalf("Unseat() error = %v", err)
	}
	if st.SeatedCount != 0 {
		t.Fatalf("SeatedCount = %d, want 0", st.SeatedCount)
	}
	if err := st.Unseat(0); err == nil {
		t.Fatalf("Unseat(empty) = nil, want SeatEmpty")
	}
}

func TestTableFull(t *testing.T) {
	st := New[testPhase](2, phaseIdle)
	if err := st.Seat(0, 1); err != nil {
		t.Fatalf("Seat(0) error = %v", err)
	}
	if err := st.Seat(1, 2); err != nil {
		t.Fatalf("Seat(1) error = %v", err)
	}
	if err := st.Seat(0, 3); err == nil {
		t.Fatalf("Seat() on a full table = nil, want error")
	}
	if err := st.Unseat(0); err != nil {
		t.Fatalf("Unseat(0) error = %v", err)
	}
	if err := st.Seat(0, 3); err != nil {
		t.Fatalf("re-Seat(0) error = %v", err)
	}
}

func TestNextOccupiedClockwise(t *testing.T) {
	st := New[testPhase](4, phaseIdle)
	_ = st.Seat(0, 1)
	_ = st.Seat(2, 2)

	next, ok := st.NextOccupiedClockwise(0)
	if !ok || next != 2 {
		t.Fatalf("NextOccupiedClockwise(0) = %d,%v want 2,true", next, ok)
	}
	next, ok = st.NextOccupiedClockwise(2)
	if !ok || next != 0 {
		t.Fatalf("NextOccupiedClockwise(2) = %d,%v want 0,true (wrap)", next, ok)
	}
}

func TestUnseatingDealerClearsPointer(t *testing.T) {
	st := New[testPhase](4, phaseIdle)
	_ = st.Seat(0, 1)
	dealer := 0
	st.Dealer = &dealer
	if err := st.Unseat(0); err != nil {
		t.Fatalf("Unseat() error = %v", err)
	}
	if st.Dealer != nil {
		t.Fatalf("Dealer = %v, want nil after unseating it", st.Dealer)
	}
}
