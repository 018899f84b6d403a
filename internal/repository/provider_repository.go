package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/report-accident/internal/models"
)

// ProviderRepository справочники страховых компаний и служб эвакуации.
type ProviderRepository struct {
	db *sqlx.DB
}

// NewProviderRepository создаёт экземпляр репозитория.
func NewProviderRepository(db *sqlx.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// ListByKind возвращает провайдеров заданного вида в порядке id.
func (r *ProviderRepository) ListByKind(ctx context.Context, kind string) ([]models.Provider, error) {
	providers := []models.Provider{}
	err := r.db.SelectContext(ctx, &providers, `
		SELECT id, kind, name, logo, phone, created_at::text AS created_at, updated_at::text AS updated_at
		FROM providers WHERE kind = $1 ORDER BY id
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("provider repository: list %s %w", kind, err)
	}
	return providers, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isInvalidText ошибка 22P02: значение не приводится к типу колонки (например, не UUID).
func isInvalidText(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
