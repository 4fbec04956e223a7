package edstate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"edsim/models"
)

func newPatient(triage models.TriageLevel) *models.Patient {
	return &models.Patient{ID: "p", Triage: triage}
}

func TestTryAdmitRespectsCapacity(t *testing.T) {
	s := New("ER", 2, 1, nil)
	assert.True(t, s.TryAdmit(newPatient(models.Blue)))
	assert.True(t, s.TryAdmit(newPatient(models.Blue)))
	assert.False(t, s.TryAdmit(newPatient(models.Blue)))
	assert.Equal(t, 2, s.WaitingSize())
}

func TestPriorityOrderingWithFIFOTiebreak(t *testing.T) {
	// S3 — Priority ordering: a RED patient enters treatment before a
	// BLUE patient injected earlier.
	s := New("ER", 10, 1, nil)
	blue := newPatient(models.Blue)
	red := newPatient(models.Red)
	s.TryAdmit(blue)
	s.TryAdmit(red)

	first := s.NextWaiting()
	assert.Same(t, red, first)
	second := s.NextWaiting()
	assert.Same(t, blue, second)
}

func TestFIFOTiebreakSamePriority(t *testing.T) {
	s := New("ER", 10, 1, nil)
	a := newPatient(models.Green)
	b := newPatient(models.Green)
	s.TryAdmit(a)
	s.TryAdmit(b)
	assert.Same(t, a, s.NextWaiting())
	assert.Same(t, b, s.NextWaiting())
}

func TestRoomSaturation(t *testing.T) {
	s := New("ER", 10, 1, nil)
	assert.True(t, s.HasRoom())
	s.OccupyRoom()
	assert.False(t, s.HasRoom())
	s.OccupyRoom() // saturates, no panic
	assert.Equal(t, 1, s.TreatmentRoomsOccupied)
	s.FreeRoom()
	assert.True(t, s.HasRoom())
	s.FreeRoom() // saturates at zero
	assert.Equal(t, 0, s.TreatmentRoomsOccupied)
}

func TestOccupyThenFreeStaffIsIdentity(t *testing.T) {
	// Invariant 7: occupy_staff(g, x) then free_staff(g, x) is identity.
	initial := map[models.PooledGroup]float64{models.PoolNurses: 5.5}
	s := New("ER", 10, 1, initial)
	before := s.AvailableStaff(models.PoolNurses)
	s.OccupyStaff(models.PoolNurses, 2.5)
	s.FreeStaff(models.PoolNurses, 2.5)
	assert.Equal(t, before, s.AvailableStaff(models.PoolNurses))
}

func TestStaffBoundsInvariant(t *testing.T) {
	initial := map[models.PooledGroup]float64{models.PoolPhysician: 2}
	s := New("ER", 10, 1, initial)
	s.FreeStaff(models.PoolPhysician, 100) // saturates at initial total
	assert.Equal(t, 2.0, s.AvailableStaff(models.PoolPhysician))
	s.OccupyStaff(models.PoolPhysician, 100) // saturates at zero
	assert.Equal(t, 0.0, s.AvailableStaff(models.PoolPhysician))
}
