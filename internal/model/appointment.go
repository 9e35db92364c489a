package model

import "time"

// Appointment — забронированный слот: преподаватель, студент и метка времени.
// Time хранит метку слота, который был забронирован.
type Appointment struct {
	ID          string    `json:"id"`
	ProfessorID string    `json:"professor_id"`
	StudentID   string    `json:"student_id"`
	Time        string    `json:"time"`
	CreatedAt   time.Time `json:"created_at"`
}
