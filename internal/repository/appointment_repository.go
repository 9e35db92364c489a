package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sureshk/appointment_api/internal/model"
	"github.com/sureshk/appointment_api/internal/repository/base"
)

type AppointmentRepository struct {
	*base.Repository
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт новое бронирование
func (r *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	appointment.ID = uuid.NewString()

	query := `
		INSERT INTO appointments (id, professor_id, student_id, time_label)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		appointment.ID,
		appointment.ProfessorID,
		appointment.StudentID,
		appointment.Time,
	).Scan(&appointment.CreatedAt)

	if err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	query := `
		SELECT id, professor_id, student_id, time_label, created_at
		FROM appointments
		WHERE id = $1
	`

	var appointment model.Appointment
	err := r.QueryRow(ctx, query, id).Scan(
		&appointment.ID,
		&appointment.ProfessorID,
		&appointment.StudentID,
		&appointment.Time,
		&appointment.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return &appointment, nil
}

// Delete удаляет бронирование, false — если его уже нет
func (r *AppointmentRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := `
		DELETE FROM appointments
		WHERE id = $1
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete appointment: %w", err)
	}

	return affected > 0, nil
}

// ListByStudentID получает все бронирования студента
func (r *AppointmentRepository) ListByStudentID(ctx context.Context, studentID string) ([]*model.Appointment, error) {
	query := `
		SELECT id, professor_id, student_id, time_label, created_at
		FROM appointments
		WHERE student_id = $1
		ORDER BY created_at
	`

	rows, err := r.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by student: %w", err)
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		var appointment model.Appointment
		err := rows.Scan(
			&appointment.ID,
			&appointment.ProfessorID,
			&appointment.StudentID,
			&appointment.Time,
			&appointment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, &appointment)
	}

	return appointments, nil
}
