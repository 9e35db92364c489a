package model

import "time"

// Availability — набор открытых слотов преподавателя.
// Одна запись на преподавателя, professor_id — естественный ключ.
// Version растёт при каждом изменении слотов и используется для
// compare-and-swap в хранилище.
type Availability struct {
	ProfessorID string    `json:"professor_id"`
	Slots       []string  `json:"slots"`
	Version     int64     `json:"-"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasSlot проверяет наличие слота в наборе
func (a *Availability) HasSlot(slot string) bool {
	for _, s := range a.Slots {
		if s == slot {
			return true
		}
	}
	return false
}
