// Package edstate holds the bounded waiting priority queue, treatment-room
// counter, and pooled-staff counters for one emergency department.
package edstate

import (
	"container/heap"

	"edsim/models"
)

// waitingItem wraps a patient with its insertion sequence so the heap can
// break triage-priority ties FIFO.
type waitingItem struct {
	patient *models.Patient
	seq     int64
}

// waitingHeap is a min-heap on triage priority (lower = more urgent),
// FIFO among equal priorities.
type waitingHeap []*waitingItem

func (h waitingHeap) Len() int { return len(h) }
func (h waitingHeap) Less(i, j int) bool {
	if h[i].patient.Triage.Priority != h[j].patient.Triage.Priority {
		return h[i].patient.Triage.Priority < h[j].patient.Triage.Priority
	}
	return h[i].seq < h[j].seq
}
func (h waitingHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *waitingHeap) Push(x any)   { *h = append(*h, x.(*waitingItem)) }
func (h *waitingHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// State is one emergency department's runtime resource state: the
// waiting queue, treatment room counter, and pooled staff counters.
type State struct {
	Name                   string
	WaitingCapacity        int
	waiting                waitingHeap
	nextSeq                int64
	TreatmentRoomsTotal    int
	TreatmentRoomsOccupied int
	availableStaff         map[models.PooledGroup]float64
	initialStaff           map[models.PooledGroup]float64
}

// New constructs an ED state with the given capacities. initialStaff sums
// counts by pooled group: Nurses (all nurse-class roles),
// Physicians (ATTENDING_PHYSICIAN only), Residents (RESIDENT_PHYSICIAN
// only) — matching the source's pooled-staff initialization scope.
func New(name string, waitingCapacity, treatmentRooms int, initialStaff map[models.PooledGroup]float64) *State {
	staff := make(map[models.PooledGroup]float64, len(initialStaff))
	for k, v := range initialStaff {
		staff[k] = v
	}
	available := make(map[models.PooledGroup]float64, len(staff))
	for k, v := range staff {
		available[k] = v
	}
	s := &State{
		Name:                name,
		WaitingCapacity:     waitingCapacity,
		TreatmentRoomsTotal: treatmentRooms,
		availableStaff:      available,
		initialStaff:        staff,
	}
	heap.Init(&s.waiting)
	return s
}

// TryAdmit enqueues patient into the waiting heap iff there is room.
// Returns false with no side effects if the queue is full.
func (s *State) TryAdmit(patient *models.Patient) bool {
	if s.waiting.Len() >= s.WaitingCapacity {
		return false
	}
	heap.Push(&s.waiting, &waitingItem{patient: patient, seq: s.nextSeq})
	s.nextSeq++
	return true
}

// NextWaiting pops and returns the highest-priority patient, or nil if
// the queue is empty.
func (s *State) NextWaiting() *models.Patient {
	if s.waiting.Len() == 0 {
		return nil
	}
	item := heap.Pop(&s.waiting).(*waitingItem)
	return item.patient
}

// PeekWaiting returns the head of the queue without removing it, or nil.
func (s *State) PeekWaiting() *models.Patient {
	if s.waiting.Len() == 0 {
		return nil
	}
	return s.waiting[0].patient
}

// WaitingSize returns the current waiting queue length.
func (s *State) WaitingSize() int { return s.waiting.Len() }

// HasRoom reports whether a treatment room is currently free.
func (s *State) HasRoom() bool {
	return s.TreatmentRoomsOccupied < s.TreatmentRoomsTotal
}

// OccupyRoom increments the occupied-room counter, saturating (no-op) if
// already at capacity.
func (s *State) OccupyRoom() {
	if s.TreatmentRoomsOccupied < s.TreatmentRoomsTotal {
		s.TreatmentRoomsOccupied++
	}
}

// FreeRoom decrements the occupied-room counter, saturating at zero.
func (s *State) FreeRoom() {
	if s.TreatmentRoomsOccupied > 0 {
		s.TreatmentRoomsOccupied--
	}
}

// AvailableStaff returns the current free count for a pooled group.
func (s *State) AvailableStaff(group models.PooledGroup) float64 {
	return s.availableStaff[group]
}

// InitialStaff returns the configured total for a pooled group.
func (s *State) InitialStaff(group models.PooledGroup) float64 {
	return s.initialStaff[group]
}

// OccupyStaff decrements a pooled group's available count by n,
// saturating at zero.
func (s *State) OccupyStaff(group models.PooledGroup, n float64) {
	remaining := s.availableStaff[group] - n
	if remaining < 0 {
		remaining = 0
	}
	s.availableStaff[group] = remaining
}

// FreeStaff increments a pooled group's available count by n, saturating
// at the group's initial total.
func (s *State) FreeStaff(group models.PooledGroup, n float64) {
	restored := s.availableStaff[group] + n
	if max := s.initialStaff[group]; restored > max {
		restored = max
	}
	s.availableStaff[group] = restored
}
