package service

import (
	"context"

	"github.com/sureshk/appointment_api/internal/model"
)

// Контракты хранилищ, которые потребляют сервисы. Каждая операция
// затрагивает не больше одной записи и завершается атомарно.

// AvailabilityStore хранит наборы открытых слотов, ключ — преподаватель.
type AvailabilityStore interface {
	// Get возвращает запись преподавателя или nil, если её нет
	Get(ctx context.Context, professorID string) (*model.Availability, error)

	// Upsert полностью заменяет набор слотов (создаёт запись при отсутствии)
	// и заполняет Version/UpdatedAt в переданной модели
	Upsert(ctx context.Context, availability *model.Availability) error

	// UpdateSlots заменяет слоты только если версия записи не изменилась.
	// Возвращает false при конфликте версий — вызывающий перечитывает запись.
	UpdateSlots(ctx context.Context, professorID string, version int64, slots []string) (bool, error)
}

// AppointmentStore хранит забронированные слоты, ключ — id записи.
type AppointmentStore interface {
	// Create сохраняет бронирование и заполняет ID/CreatedAt
	Create(ctx context.Context, appointment *model.Appointment) error

	// GetByID возвращает бронирование или nil, если его нет
	GetByID(ctx context.Context, id string) (*model.Appointment, error)

	// Delete удаляет бронирование, false — если его уже нет
	Delete(ctx context.Context, id string) (bool, error)

	// ListByStudentID возвращает все бронирования студента
	ListByStudentID(ctx context.Context, studentID string) ([]*model.Appointment, error)
}

// UserStore хранит учётные записи.
type UserStore interface {
	// Create сохраняет пользователя и заполняет ID/CreatedAt
	Create(ctx context.Context, user *model.User) error

	// GetByUsername возвращает пользователя или nil, если его нет
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}
