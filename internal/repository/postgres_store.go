package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// PostgresStore объединяет репозитории поверх одного подключения.
type PostgresStore struct {
	*UserRepository
	*ReportRepository
	*ProviderRepository
	db *sqlx.DB
}

// NewPostgresStore создаёт набор репозиториев.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		UserRepository:     NewUserRepository(db),
		ReportRepository:   NewReportRepository(db),
		ProviderRepository: NewProviderRepository(db),
		db:                 db,
	}
}

// Ping проверяет соединение с базой.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
