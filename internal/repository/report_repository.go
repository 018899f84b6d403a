package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
	"github.com/ignatzorin/report-accident/internal/repository/common"
)

// ReportRepository отвечает за таблицу reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository создаёт экземпляр репозитория.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CreateReport сохраняет отчёт. ID задаёт сервис.
func (r *ReportRepository) CreateReport(ctx context.Context, report *models.StoredReport) error {
	query := `
		INSERT INTO reports (id, user_id, name, phone, accident_type, status, location, image_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		report.ID, report.UserID, report.Name, report.Phone,
		report.AccidentType, report.Status, report.Location, report.ImagePath,
	).Scan(&report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("report repository: create %w", err)
	}
	return nil
}

// GetReport возвращает отчёт.
func (r *ReportRepository) GetReport(ctx context.Context, id string) (*models.StoredReport, error) {
	return common.GetByID[models.StoredReport](ctx, r.db, "reports", id, apperror.ErrReportNotFound)
}

// ListByUser возвращает отчёты пользователя, новые первыми.
func (r *ReportRepository) ListByUser(ctx context.Context, userID int64) ([]models.StoredReport, error) {
	reports := []models.StoredReport{}
	err := r.db.SelectContext(ctx, &reports, `
		SELECT * FROM reports WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("report repository: list by user %w", err)
	}
	return reports, nil
}

// ListAll возвращает все отчёты, новые первыми.
func (r *ReportRepository) ListAll(ctx context.Context) ([]models.StoredReport, error) {
	reports := []models.StoredReport{}
	if err := r.db.SelectContext(ctx, &reports, `SELECT * FROM reports ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("report repository: list all %w", err)
	}
	return reports, nil
}

// UpdateStatus меняет код статуса и возвращает обновлённую запись.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id, status string) (*models.StoredReport, error) {
	var report models.StoredReport
	err := r.db.GetContext(ctx, &report, `
		UPDATE reports SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING *
	`, id, status)
	if err != nil {
		if isNoRows(err) || isInvalidText(err) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, fmt.Errorf("report repository: update status %w", err)
	}
	return &report, nil
}

// DeleteUnlessResolved удаляет отчёт, если он не решён. Проверка и удаление
// идут в одной транзакции.
func (r *ReportRepository) DeleteUnlessResolved(ctx context.Context, id string) (*models.StoredReport, error) {
	var report models.StoredReport
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &report, `SELECT * FROM reports WHERE id = $1 FOR UPDATE`, id); err != nil {
			if isNoRows(err) || isInvalidText(err) {
				return apperror.ErrReportNotFound
			}
			return err
		}
		if models.ParseStatus(report.Status) == models.StatusResolved {
			return apperror.ErrDeleteResolved
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// CancelStale переводит в Canceled ожидающие отчёты старше before.
func (r *ReportRepository) CancelStale(ctx context.Context, before time.Time) ([]models.StoredReport, error) {
	reports := []models.StoredReport{}
	err := r.db.SelectContext(ctx, &reports, `
		UPDATE reports SET status = $1, updated_at = NOW()
		WHERE status = $2 AND created_at < $3
		RETURNING *
	`, models.StatusCodeCanceled, models.StatusCodePending, before)
	if err != nil {
		return nil, fmt.Errorf("report repository: cancel stale %w", err)
	}
	return reports, nil
}
