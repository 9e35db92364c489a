package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/sureshk/appointment_api/internal/model"
)

// Параметры внутреннего retry при конфликте версий. После исчерпания
// попыток операция завершается ErrStoreUnavailable, наружу retry не
// выносится.
const (
	slotRetryAttempts = 3
	slotRetryBackoff  = 10 * time.Millisecond
)

// errVersionConflict — проигранный compare-and-swap, запись нужно перечитать
var errVersionConflict = errors.New("availability version conflict")

// ReservationService — движок бронирования. Единственное место с
// бизнес-логикой: проверяет роль и владельца до любой записи в хранилище
// и выполняет переход между доступностью и бронированиями атомарно
// в пределах записи одного преподавателя.
type ReservationService struct {
	availabilityStore AvailabilityStore
	appointmentStore  AppointmentStore
	logger            *zap.Logger
}

func NewReservationService(
	availabilityStore AvailabilityStore,
	appointmentStore AppointmentStore,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		availabilityStore: availabilityStore,
		appointmentStore:  appointmentStore,
		logger:            logger,
	}
}

// PublishAvailability полностью заменяет набор слотов преподавателя.
// Преподаватель публикует только свою доступность: id берётся из
// проверенной личности, а не из тела запроса.
func (s *ReservationService) PublishAvailability(ctx context.Context, actor model.Actor, slots []string) (*model.Availability, error) {
	if actor.Role != model.RoleProfessor {
		return nil, ErrForbidden
	}

	availability := &model.Availability{
		ProfessorID: actor.ID,
		Slots:       dedupeSlots(slots),
	}

	if err := s.availabilityStore.Upsert(ctx, availability); err != nil {
		return nil, wrapStore("upsert availability", err)
	}

	s.logger.Info("Availability published",
		zap.String("professor_id", actor.ID),
		zap.Int("slot_count", len(availability.Slots)),
	)

	return availability, nil
}

// ListAvailability возвращает снимок открытых слотов преподавателя
func (s *ReservationService) ListAvailability(ctx context.Context, actor model.Actor, professorID string) ([]string, error) {
	if actor.Role != model.RoleStudent {
		return nil, ErrForbidden
	}

	availability, err := s.availabilityStore.Get(ctx, professorID)
	if err != nil {
		return nil, wrapStore("get availability", err)
	}

	if availability == nil {
		return nil, fmt.Errorf("availability for professor %s: %w", professorID, ErrNotFound)
	}

	slots := make([]string, len(availability.Slots))
	copy(slots, availability.Slots)
	return slots, nil
}

// BookAppointment бронирует слот у преподавателя для студента.
// Удаление слота и создание бронирования выглядят атомарно для
// конкурентных операций над той же записью: слот снимается через
// compare-and-swap, проигравший перечитывает запись и видит либо
// новый набор, либо ErrSlotUnavailable.
func (s *ReservationService) BookAppointment(ctx context.Context, actor model.Actor, professorID, slot string) (*model.Appointment, error) {
	if actor.Role != model.RoleStudent {
		return nil, ErrForbidden
	}

	var appointment *model.Appointment

	backoff := retry.WithMaxRetries(slotRetryAttempts, retry.NewConstant(slotRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		availability, err := s.availabilityStore.Get(ctx, professorID)
		if err != nil {
			return wrapStore("get availability", err)
		}

		if availability == nil || !availability.HasSlot(slot) {
			return ErrSlotUnavailable
		}

		ok, err := s.availabilityStore.UpdateSlots(ctx, professorID, availability.Version, removeSlot(availability.Slots, slot))
		if err != nil {
			return wrapStore("remove slot", err)
		}
		if !ok {
			return retry.RetryableError(errVersionConflict)
		}

		appointment = &model.Appointment{
			ProfessorID: professorID,
			StudentID:   actor.ID,
			Time:        slot,
		}

		if err := s.appointmentStore.Create(ctx, appointment); err != nil {
			// Слот уже снят — возвращаем его, чтобы он не потерялся
			if restoreErr := s.restoreSlot(ctx, professorID, slot); restoreErr != nil {
				s.logger.Error("Failed to restore slot after booking failure",
					zap.String("professor_id", professorID),
					zap.String("slot", slot),
					zap.Error(restoreErr),
				)
			}
			return wrapStore("create appointment", err)
		}

		return nil
	})
	if err != nil {
		return nil, translateConflict("book appointment", err)
	}

	s.logger.Info("Appointment booked",
		zap.String("appointment_id", appointment.ID),
		zap.String("professor_id", professorID),
		zap.String("student_id", actor.ID),
		zap.String("slot", slot),
	)

	return appointment, nil
}

// CancelAppointment удаляет бронирование и возвращает его слот
// преподавателю. Отменить бронирование может только его преподаватель.
// Возврат слота идемпотентен: повторная отмена того же бронирования
// получает ErrNotFound и слот не задваивается.
func (s *ReservationService) CancelAppointment(ctx context.Context, actor model.Actor, appointmentID string) error {
	if actor.Role != model.RoleProfessor {
		return ErrForbidden
	}

	appointment, err := s.appointmentStore.GetByID(ctx, appointmentID)
	if err != nil {
		return wrapStore("get appointment", err)
	}

	if appointment == nil {
		return fmt.Errorf("appointment %s: %w", appointmentID, ErrNotFound)
	}

	if appointment.ProfessorID != actor.ID {
		return ErrForbidden
	}

	deleted, err := s.appointmentStore.Delete(ctx, appointmentID)
	if err != nil {
		return wrapStore("delete appointment", err)
	}
	if !deleted {
		// Кто-то успел отменить раньше — слот уже возвращён
		return fmt.Errorf("appointment %s: %w", appointmentID, ErrNotFound)
	}

	if err := s.restoreSlot(ctx, appointment.ProfessorID, appointment.Time); err != nil {
		return translateConflict("restore slot", err)
	}

	s.logger.Info("Appointment canceled",
		zap.String("appointment_id", appointmentID),
		zap.String("professor_id", actor.ID),
		zap.String("slot", appointment.Time),
	)

	return nil
}

// ListStudentAppointments возвращает все бронирования студента.
// Пустой список — не ошибка.
func (s *ReservationService) ListStudentAppointments(ctx context.Context, actor model.Actor) ([]*model.Appointment, error) {
	if actor.Role != model.RoleStudent {
		return nil, ErrForbidden
	}

	appointments, err := s.appointmentStore.ListByStudentID(ctx, actor.ID)
	if err != nil {
		return nil, wrapStore("list appointments", err)
	}

	return appointments, nil
}

// restoreSlot возвращает слот в набор преподавателя, если его там нет.
// Работает тем же compare-and-swap циклом, что и бронирование.
func (s *ReservationService) restoreSlot(ctx context.Context, professorID, slot string) error {
	backoff := retry.WithMaxRetries(slotRetryAttempts, retry.NewConstant(slotRetryBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		availability, err := s.availabilityStore.Get(ctx, professorID)
		if err != nil {
			return wrapStore("get availability", err)
		}

		if availability == nil {
			availability = &model.Availability{
				ProfessorID: professorID,
				Slots:       []string{slot},
			}
			if err := s.availabilityStore.Upsert(ctx, availability); err != nil {
				return wrapStore("upsert availability", err)
			}
			return nil
		}

		if availability.HasSlot(slot) {
			return nil
		}

		ok, err := s.availabilityStore.UpdateSlots(ctx, professorID, availability.Version, append(availability.Slots, slot))
		if err != nil {
			return wrapStore("add slot", err)
		}
		if !ok {
			return retry.RetryableError(errVersionConflict)
		}
		return nil
	})
}

// wrapStore помечает отказ хранилища как ErrStoreUnavailable, сохраняя причину
func wrapStore(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrStoreUnavailable)
}

// translateConflict превращает исчерпанный retry в ErrStoreUnavailable
func translateConflict(op string, err error) error {
	if errors.Is(err, errVersionConflict) {
		return fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
	}
	return err
}

// dedupeSlots убирает дубликаты, сохраняя порядок первого вхождения
func dedupeSlots(slots []string) []string {
	seen := make(map[string]struct{}, len(slots))
	result := make([]string, 0, len(slots))
	for _, slot := range slots {
		if _, ok := seen[slot]; ok {
			continue
		}
		seen[slot] = struct{}{}
		result = append(result, slot)
	}
	return result
}

func removeSlot(slots []string, slot string) []string {
	result := make([]string, 0, len(slots))
	for _, s := range slots {
		if s != slot {
			result = append(result, s)
		}
	}
	return result
}
