package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sureshk/appointment_api/internal/model"
	"github.com/sureshk/appointment_api/internal/repository/base"
)

// AvailabilityRepository хранит наборы открытых слотов в Postgres.
// Колонка version ведёт счётчик изменений для compare-and-swap.
type AvailabilityRepository struct {
	*base.Repository
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{Repository: base.NewRepository(pool)}
}

// Get получает запись преподавателя
func (r *AvailabilityRepository) Get(ctx context.Context, professorID string) (*model.Availability, error) {
	query := `
		SELECT professor_id, slots, version, updated_at
		FROM availability
		WHERE professor_id = $1
	`

	var availability model.Availability
	err := r.QueryRow(ctx, query, professorID).Scan(
		&availability.ProfessorID,
		&availability.Slots,
		&availability.Version,
		&availability.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get availability: %w", err)
	}

	return &availability, nil
}

// Upsert полностью заменяет набор слотов (создаёт запись при отсутствии)
func (r *AvailabilityRepository) Upsert(ctx context.Context, availability *model.Availability) error {
	query := `
		INSERT INTO availability (professor_id, slots)
		VALUES ($1, $2)
		ON CONFLICT (professor_id) DO UPDATE
		SET slots = EXCLUDED.slots, version = availability.version + 1, updated_at = now()
		RETURNING version, updated_at
	`

	err := r.QueryRow(ctx, query, availability.ProfessorID, availability.Slots).Scan(
		&availability.Version,
		&availability.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert availability: %w", err)
	}

	return nil
}

// UpdateSlots заменяет слоты при совпадении версии записи.
// Ноль затронутых строк — проигранный compare-and-swap.
func (r *AvailabilityRepository) UpdateSlots(ctx context.Context, professorID string, version int64, slots []string) (bool, error) {
	query := `
		UPDATE availability
		SET slots = $3, version = version + 1, updated_at = now()
		WHERE professor_id = $1 AND version = $2
	`

	affected, err := r.ExecAffected(ctx, query, professorID, version, slots)
	if err != nil {
		return false, fmt.Errorf("update slots: %w", err)
	}

	return affected > 0, nil
}
