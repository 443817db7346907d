package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-inventory-backend/internal/model"
)

func pendingReservation(id, category, pickup, ret string) *model.Reservation {
	return &model.Reservation{
		ID:         id,
		Category:   category,
		PickupDate: day(pickup),
		ReturnDate: day(ret),
		Status:     model.ReservationPending,
	}
}

// The reference scenario: category GP13 has devices {A, B}. R1 is
// pre-assigned A for 02-01..02-03. R2 overlaps it and must land on B; R3
// starts after both are free and gets A back via first-fit.
func TestEngineAllocate_FirstFit(t *testing.T) {
	seeded := []model.Reservation{
		{
			ID:          "r1",
			Category:    "GP13",
			AssignedTag: tagPtr("A"),
			PickupDate:  day("2024-02-01"),
			ReturnDate:  day("2024-02-03"),
			Status:      model.ReservationPending,
		},
	}
	ref := day("2024-02-01")
	idx := BuildConflictIndex(seeded, ref)

	r2 := pendingReservation("r2", "GP13", "2024-02-02", "2024-02-04")
	r3 := pendingReservation("r3", "GP13", "2024-02-05", "2024-02-06")

	eng := &Engine{}
	decisions := eng.Allocate("GP13", []*model.Reservation{r3, r2}, []string{"A", "B"}, idx, ref)
	require.Len(t, decisions, 2)

	// Processing order is ascending pickup date, so r2 comes first.
	assert.Equal(t, "r2", decisions[0].ReservationID)
	assert.Equal(t, OutcomeAssigned, decisions[0].Outcome)
	assert.Equal(t, "B", decisions[0].Tag)
	require.NotNil(t, r2.AssignedTag)
	assert.Equal(t, "B", *r2.AssignedTag)

	assert.Equal(t, "r3", decisions[1].ReservationID)
	assert.Equal(t, "A", decisions[1].Tag)
}

func TestEngineAllocate_NoCapacity(t *testing.T) {
	ref := day("2024-02-01")
	idx := NewConflictIndex()

	r1 := pendingReservation("r1", "GP13", "2024-02-01", "2024-02-03")
	r2 := pendingReservation("r2", "GP13", "2024-02-02", "2024-02-04")

	eng := &Engine{}
	decisions := eng.Allocate("GP13", []*model.Reservation{r1, r2}, []string{"A"}, idx, ref)
	require.Len(t, decisions, 2)

	assert.Equal(t, OutcomeAssigned, decisions[0].Outcome)
	assert.Equal(t, "A", decisions[0].Tag)

	// The second overlapping booking loses; one failed reservation never
	// fails the batch.
	assert.Equal(t, OutcomeNoCapacity, decisions[1].Outcome)
	assert.Empty(t, decisions[1].Tag)
	assert.Nil(t, r2.AssignedTag)
	assert.Contains(t, decisions[1].Reason, "all 1 devices in category GP13")
}

func TestEngineAllocate_NoDevicesInCategory(t *testing.T) {
	idx := NewConflictIndex()
	r := pendingReservation("r1", "GP99", "2024-02-01", "2024-02-03")

	eng := &Engine{}
	decisions := eng.Allocate("GP99", []*model.Reservation{r}, nil, idx, day("2024-02-01"))
	require.Len(t, decisions, 1)
	assert.Equal(t, OutcomeNoCapacity, decisions[0].Outcome)
}

func TestEngineAllocate_TieBreakOnID(t *testing.T) {
	ref := day("2024-02-01")
	idx := NewConflictIndex()

	// Same pickup date: ascending id decides who goes first.
	ra := pendingReservation("aaa", "GP13", "2024-02-01", "2024-02-03")
	rb := pendingReservation("bbb", "GP13", "2024-02-01", "2024-02-03")

	eng := &Engine{}
	decisions := eng.Allocate("GP13", []*model.Reservation{rb, ra}, []string{"A", "B"}, idx, ref)
	require.Len(t, decisions, 2)
	assert.Equal(t, "aaa", decisions[0].ReservationID)
	assert.Equal(t, "A", decisions[0].Tag)
	assert.Equal(t, "bbb", decisions[1].ReservationID)
	assert.Equal(t, "B", decisions[1].Tag)
}

func TestEngineAllocate_Deterministic(t *testing.T) {
	ref := day("2024-02-01")

	run := func() []Decision {
		idx := NewConflictIndex()
		rs := []*model.Reservation{
			pendingReservation("r3", "GP13", "2024-02-03", "2024-02-05"),
			pendingReservation("r1", "GP13", "2024-02-01", "2024-02-02"),
			pendingReservation("r2", "GP13", "2024-02-02", "2024-02-04"),
		}
		eng := &Engine{}
		return eng.Allocate("GP13", rs, []string{"A", "B", "C"}, idx, ref)
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}

// Committing inside the pass means two overlapping bookings can never race
// onto the same tag; the final index must be pairwise overlap-free.
func TestEngineAllocate_NoDoubleBooking(t *testing.T) {
	ref := day("2024-02-01")
	idx := NewConflictIndex()

	rs := []*model.Reservation{
		pendingReservation("r1", "GP13", "2024-02-01", "2024-02-03"),
		pendingReservation("r2", "GP13", "2024-02-02", "2024-02-04"),
		pendingReservation("r3", "GP13", "2024-02-03", "2024-02-05"),
		pendingReservation("r4", "GP13", "2024-02-04", "2024-02-06"),
		pendingReservation("r5", "GP13", "2024-02-07", "2024-02-08"),
	}

	eng := &Engine{}
	eng.Allocate("GP13", rs, []string{"A", "B", "C"}, idx, ref)

	for _, tag := range idx.Tags() {
		ivs := idx.Intervals(tag)
		for i := 0; i < len(ivs); i++ {
			for j := i + 1; j < len(ivs); j++ {
				assert.False(t, ivs[i].Overlaps(ivs[j]),
					"tag %s double-booked: %v overlaps %v", tag, ivs[i], ivs[j])
			}
		}
	}
}

func TestContinuityPreference(t *testing.T) {
	assigned := []model.Reservation{
		{
			ID:          "old",
			RenterID:    "renter-7",
			AssignedTag: tagPtr("B"),
			PickupDate:  day("2024-01-28"),
			ReturnDate:  day("2024-02-01"),
			Status:      model.ReservationReturned,
		},
	}

	pref := ContinuityPreference(assigned)

	// Back-to-back extension by the same renter: keep B.
	next := pendingReservation("new", "GP13", "2024-02-02", "2024-02-04")
	next.RenterID = "renter-7"
	assert.Equal(t, "B", pref(next))

	// A week later is not adjacent.
	later := pendingReservation("later", "GP13", "2024-02-09", "2024-02-10")
	later.RenterID = "renter-7"
	assert.Empty(t, pref(later))

	// Different renter gets no preference.
	other := pendingReservation("other", "GP13", "2024-02-02", "2024-02-04")
	other.RenterID = "renter-9"
	assert.Empty(t, pref(other))
}

func TestEngineAllocate_ContinuityIsSoft(t *testing.T) {
	ref := day("2024-02-01")

	seeded := []model.Reservation{
		{
			ID:          "old",
			RenterID:    "renter-7",
			Category:    "GP13",
			AssignedTag: tagPtr("B"),
			PickupDate:  day("2024-01-28"),
			ReturnDate:  day("2024-02-01"),
			Status:      model.ReservationReturned,
		},
		{
			ID:          "blocker",
			Category:    "GP13",
			AssignedTag: tagPtr("B"),
			PickupDate:  day("2024-02-02"),
			ReturnDate:  day("2024-02-05"),
			Status:      model.ReservationPending,
		},
	}
	idx := BuildConflictIndex(seeded, ref)

	next := pendingReservation("new", "GP13", "2024-02-02", "2024-02-04")
	next.RenterID = "renter-7"

	eng := &Engine{Preference: ContinuityPreference(seeded)}
	decisions := eng.Allocate("GP13", []*model.Reservation{next}, []string{"A", "B"}, idx, ref)
	require.Len(t, decisions, 1)

	// The preferred tag B is busy, so first-fit falls through to A.
	assert.Equal(t, OutcomeAssigned, decisions[0].Outcome)
	assert.Equal(t, "A", decisions[0].Tag)
}

func TestEngineAllocate_ContinuityWins(t *testing.T) {
	ref := day("2024-02-01")

	seeded := []model.Reservation{
		{
			ID:          "old",
			RenterID:    "renter-7",
			Category:    "GP13",
			AssignedTag: tagPtr("B"),
			PickupDate:  day("2024-01-28"),
			ReturnDate:  day("2024-02-01"),
			Status:      model.ReservationReturned,
		},
	}
	idx := BuildConflictIndex(seeded, ref)

	next := pendingReservation("new", "GP13", "2024-02-02", "2024-02-04")
	next.RenterID = "renter-7"

	eng := &Engine{Preference: ContinuityPreference(seeded)}
	decisions := eng.Allocate("GP13", []*model.Reservation{next}, []string{"A", "B"}, idx, ref)
	require.Len(t, decisions, 1)

	// B is free, so continuity overrides the name-ascending first fit.
	assert.Equal(t, "B", decisions[0].Tag)
	assert.Contains(t, decisions[0].Reason, "previous booking")
}
