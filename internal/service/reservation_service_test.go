package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sureshk/appointment_api/internal/model"
	"github.com/sureshk/appointment_api/internal/repository"
)

func newTestEngine() (*ReservationService, *repository.MemoryAvailabilityStore, *repository.MemoryAppointmentStore) {
	availabilityStore := repository.NewMemoryAvailabilityStore()
	appointmentStore := repository.NewMemoryAppointmentStore()
	engine := NewReservationService(availabilityStore, appointmentStore, zap.NewNop())
	return engine, availabilityStore, appointmentStore
}

var (
	professor = model.Actor{ID: "prof-1", Role: model.RoleProfessor}
	student1  = model.Actor{ID: "stud-1", Role: model.RoleStudent}
	student2  = model.Actor{ID: "stud-2", Role: model.RoleStudent}
)

func TestPublishAvailabilityReplacesSlots(t *testing.T) {
	ctx := context.Background()
	engine, availabilityStore, _ := newTestEngine()

	first, err := engine.PublishAvailability(ctx, professor, []string{"T1", "T2"})
	require.NoError(t, err)
	require.Equal(t, professor.ID, first.ProfessorID)
	require.Equal(t, []string{"T1", "T2"}, first.Slots)

	// Повторная публикация — полная перезапись, не слияние
	second, err := engine.PublishAvailability(ctx, professor, []string{"T3"})
	require.NoError(t, err)
	require.Equal(t, []string{"T3"}, second.Slots)

	stored, err := availabilityStore.Get(ctx, professor.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"T3"}, stored.Slots)
}

func TestPublishAvailabilityDedupesSlots(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine()

	availability, err := engine.PublishAvailability(ctx, professor, []string{"T1", "T2", "T1"})
	require.NoError(t, err)
	require.Equal(t, []string{"T1", "T2"}, availability.Slots)
}

func TestListAvailability(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine()

	_, err := engine.PublishAvailability(ctx, professor, []string{"T1", "T2"})
	require.NoError(t, err)

	slots, err := engine.ListAvailability(ctx, student1, professor.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"T1", "T2"}, slots)
}

func TestListAvailabilityUnknownProfessor(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine()

	_, err := engine.ListAvailability(ctx, student1, "prof-missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBookAppointment(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine()

	_, err := engine.PublishAvailability(ctx, professor, []string{"T1", "T2"})
	require.NoError(t, err)

	appointment, err := engine.BookAppointment(ctx, student1, professor.ID, "T1")
	require.NoError(t, err)
	require.NotEmpty(t, appointment.ID)
	require.Equal(t, professor.ID, appointment.ProfessorID)
	require.Equal(t, student1.ID, appointment.StudentID)
	require.Equal(t, "T1", appointment.Time)

	// Забронированный слот ушёл из доступности
	slots, err := engine.ListAvailability(ctx, student2, professor.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"T2"}, slots)

	// Тот же слот второй раз недоступен
	_, err = engine.BookAppointment(ctx, student2, professor.ID, "T1")
	require.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBookAppointmentUnknownProfessor(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine()

	_, err := engine.BookAppointment(ctx, student1, "prof-missing", "T1")
	require.ErrorIs(t, err, ErrSlotUnavailable)
}

// Ровно один из конкурентных запросов на последний слот выигрывает,
// остальные получают ErrSlotUnavailable, а не испорченный набор.
func TestConcurrentBookingSingleWinner(t *testing.T) {
	ctx := context.Background()
	engine, availabilityStore, appointmentStore := newTestEngine()

	_, err := engine.PublishAvailability(ctx, professor, []string{"T1"})
	require.NoError(t, err)

	const bookers = 16

	var wg sync.WaitGroup
	results := make([]error, bookers)

	for i := 0; i < bookers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := model.Actor{ID: "stud-" + string(rune('a'+i)), Role: model.RoleStudent}
			_, results[i] = engine.BookAppointment(ctx, actor, professor.ID, "T1")
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range results {
		if err == nil {
			won++
			continue
		}
		require.ErrorIs(t, err, ErrSlotUnavailable)
	}
	require.Equal(t, 1, won)

	stored, err := availabilityStore.Get(ctx, professor.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Slots)

	// И ровно одно бронирование в хранилище
	total := 0
	for i := 0; i < bookers; i++ {
		actor := model.Actor{ID: "stud-" + string(rune('a'+i)), Role: model.RoleStudent}
		appointments, err := appointmentStore.ListByStudentID(ctx, actor.ID)
		require.NoError(t, err)
		total += len(appointments)
	}
	require.Equal(t, 1, total)
}

// Бронирование и отмена возвращают набор слотов к исходному состоянию
func TestCancelRestoresSlot(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine()

	_, err := engine.PublishAvailability(ctx, professor, []string{"T1", "T2"})
	require.NoError(t, err)

	appointment, err := engine.BookAppointment(ctx, student1, professor.ID, "T1")
	require.NoError(t, err)

	err = engine.CancelAppointment(ctx, professor, appointment.ID)
	require.NoError(t, err)

	slots, err := engine.ListAvailability(ctx, student1, professor.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"T1", "T2"}, slots)

	appointments, err := engine.ListStudentAppointments(ctx, student1)
	require.NoError(t, err)
	require.Empty(t, appointments)
}

// Повторная отмена получает ErrNotFound, слот не задваивается
func TestCancelTwice(t *testing.T) {
	ctx := context.Background()
	engine, availabilityStore, _ := newTestEngine()

	_, err := engine.PublishAvailability(ctx, professor, []string{"T1"})
	require.NoError(t, err)

	appointment, err := engine.BookAppointment(ctx, student1, professor.ID, "T1")
	require.NoError(t, err)

	require.NoError(t, engine.CancelAppointment(ctx, professor, appointment.ID))

	err = engine.CancelAppointment(ctx, professor, appointment.ID)
	require.ErrorIs(t, err, ErrNotFound)

	stored, err := availabilityStore.Get(ctx, professor.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"T1"}, stored.Slots)
}

func TestCancelForeignAppointmentForbidden(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine()

	_, err := engine.PublishAvailability(ctx, professor, []string{"T1"})
	require.NoError(t, err)

	appointment, err := engine.BookAppointment(ctx, student1, professor.ID, "T1")
	require.NoError(t, err)

	otherProfessor := model.Actor{ID: "prof-2", Role: model.RoleProfessor}
	err = engine.CancelAppointment(ctx, otherProfessor, appointment.ID)
	require.ErrorIs(t, err, ErrForbidden)

	// Бронирование осталось на месте
	appointments, err := engine.ListStudentAppointments(ctx, student1)
	require.NoError(t, err)
	require.Len(t, appointments, 1)
}

func TestCancelUnknownAppointment(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine()

	err := engine.CancelAppointment(ctx, professor, "appt-missing")
	require.ErrorIs(t, err, ErrNotFound)
}

// Несовпадение роли всегда даёт ErrForbidden и не трогает хранилища
func TestRoleGating(t *testing.T) {
	ctx := context.Background()
	engine, availabilityStore, appointmentStore := newTestEngine()

	_, err := engine.PublishAvailability(ctx, professor, []string{"T1"})
	require.NoError(t, err)

	_, err = engine.PublishAvailability(ctx, student1, []string{"X1"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = engine.ListAvailability(ctx, professor, professor.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = engine.BookAppointment(ctx, professor, professor.ID, "T1")
	require.ErrorIs(t, err, ErrForbidden)

	err = engine.CancelAppointment(ctx, student1, "any")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = engine.ListStudentAppointments(ctx, professor)
	require.ErrorIs(t, err, ErrForbidden)

	stored, err := availabilityStore.Get(ctx, professor.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"T1"}, stored.Slots)

	appointments, err := appointmentStore.ListByStudentID(ctx, student1.ID)
	require.NoError(t, err)
	require.Empty(t, appointments)
}

func TestListStudentAppointmentsEmpty(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine()

	appointments, err := engine.ListStudentAppointments(ctx, student1)
	require.NoError(t, err)
	require.Empty(t, appointments)
}

// Хранилище бронирований, которое отказывает на Create
type failingAppointmentStore struct {
	AppointmentStore
}

func (s *failingAppointmentStore) Create(context.Context, *model.Appointment) error {
	return errors.New("insert failed")
}

// Если бронирование не сохранилось после снятия слота,
// слот возвращается, а вызывающий получает ErrStoreUnavailable
func TestBookRestoresSlotWhenCreateFails(t *testing.T) {
	ctx := context.Background()
	availabilityStore := repository.NewMemoryAvailabilityStore()
	appointmentStore := &failingAppointmentStore{AppointmentStore: repository.NewMemoryAppointmentStore()}
	engine := NewReservationService(availabilityStore, appointmentStore, zap.NewNop())

	_, err := engine.PublishAvailability(ctx, professor, []string{"T1", "T2"})
	require.NoError(t, err)

	_, err = engine.BookAppointment(ctx, student1, professor.ID, "T1")
	require.ErrorIs(t, err, ErrStoreUnavailable)

	stored, err := availabilityStore.Get(ctx, professor.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"T1", "T2"}, stored.Slots)
}

// Сквозной сценарий: публикация, бронирование, конкурент, отмена
func TestReservationScenario(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine()

	_, err := engine.PublishAvailability(ctx, professor, []string{"T1", "T2"})
	require.NoError(t, err)

	appointment, err := engine.BookAppointment(ctx, student1, professor.ID, "T1")
	require.NoError(t, err)
	require.Equal(t, "T1", appointment.Time)

	slots, err := engine.ListAvailability(ctx, student2, professor.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"T2"}, slots)

	_, err = engine.BookAppointment(ctx, student2, professor.ID, "T1")
	require.ErrorIs(t, err, ErrSlotUnavailable)

	require.NoError(t, engine.CancelAppointment(ctx, professor, appointment.ID))

	slots, err = engine.ListAvailability(ctx, student1, professor.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"T1", "T2"}, slots)

	appointments, err := engine.ListStudentAppointments(ctx, student1)
	require.NoError(t, err)
	require.Empty(t, appointments)
}
