package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sureshk/appointment_api/internal/model"
)

// In-memory реализации хранилищ с той же семантикой, что у Postgres:
// атомарность в пределах записи и compare-and-swap по версии.
// Используются в тестах и фикстурах, где поднимать базу незачем.

type MemoryAvailabilityStore struct {
	mu      sync.Mutex
	records map[string]*model.Availability
}

func NewMemoryAvailabilityStore() *MemoryAvailabilityStore {
	return &MemoryAvailabilityStore{records: make(map[string]*model.Availability)}
}

func (s *MemoryAvailabilityStore) Get(_ context.Context, professorID string) (*model.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[professorID]
	if !ok {
		return nil, nil
	}
	return copyAvailability(record), nil
}

func (s *MemoryAvailabilityStore) Upsert(_ context.Context, availability *model.Availability) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := int64(1)
	if existing, ok := s.records[availability.ProfessorID]; ok {
		version = existing.Version + 1
	}

	availability.Version = version
	availability.UpdatedAt = time.Now()
	s.records[availability.ProfessorID] = copyAvailability(availability)
	return nil
}

func (s *MemoryAvailabilityStore) UpdateSlots(_ context.Context, professorID string, version int64, slots []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[professorID]
	if !ok || record.Version != version {
		return false, nil
	}

	record.Slots = append([]string(nil), slots...)
	record.Version++
	record.UpdatedAt = time.Now()
	return true, nil
}

type MemoryAppointmentStore struct {
	mu      sync.Mutex
	records map[string]*model.Appointment
}

func NewMemoryAppointmentStore() *MemoryAppointmentStore {
	return &MemoryAppointmentStore{records: make(map[string]*model.Appointment)}
}

func (s *MemoryAppointmentStore) Create(_ context.Context, appointment *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appointment.ID = uuid.NewString()
	appointment.CreatedAt = time.Now()

	stored := *appointment
	s.records[appointment.ID] = &stored
	return nil
}

func (s *MemoryAppointmentStore) GetByID(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, nil
	}

	found := *record
	return &found, nil
}

func (s *MemoryAppointmentStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return false, nil
	}

	delete(s.records, id)
	return true, nil
}

func (s *MemoryAppointmentStore) ListByStudentID(_ context.Context, studentID string) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var appointments []*model.Appointment
	for _, record := range s.records {
		if record.StudentID == studentID {
			found := *record
			appointments = append(appointments, &found)
		}
	}
	return appointments, nil
}

type MemoryUserStore struct {
	mu      sync.Mutex
	records map[string]*model.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{records: make(map[string]*model.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()

	stored := *user
	s.records[user.Username] = &stored
	return nil
}

func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[username]
	if !ok {
		return nil, nil
	}

	found := *record
	return &found, nil
}

func copyAvailability(availability *model.Availability) *model.Availability {
	copied := *availability
	copied.Slots = append([]string(nil), availability.Slots...)
	return &copied
}
