package service

import "errors"

// Ошибки доменного слоя. Контроллер различает их через errors.Is,
// чтобы отдать вызывающему точный код отказа: "запрещено" — это не
// "не найдено" и не "слот занят".
var (
	// ErrUnauthenticated — запрос пришёл без учётных данных
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidCredentials — учётные данные предъявлены, но не прошли проверку
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden — роль или владелец не совпадают
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound — запрошенная запись отсутствует
	ErrNotFound = errors.New("not found")

	// ErrSlotUnavailable — слот не открыт для бронирования
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrStoreUnavailable — хранилище не ответило или операция не завершилась
	ErrStoreUnavailable = errors.New("store unavailable")
)
