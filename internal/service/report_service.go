package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/report-accident/internal/logger"
	"github.com/ignatzorin/report-accident/internal/media"
	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
	"github.com/ignatzorin/report-accident/internal/storage"
	"github.com/ignatzorin/report-accident/internal/validation"
)

// sniffLen байт, достаточных filetype для определения формата.
const sniffLen = 261

// photoDir подкаталог хранилища для фотографий отчётов.
const photoDir = "reports"

// ReportRepository хранилище отчётов.
type ReportRepository interface {
	CreateReport(ctx context.Context, report *models.StoredReport) error
	GetReport(ctx context.Context, id string) (*models.StoredReport, error)
	ListByUser(ctx context.Context, userID int64) ([]models.StoredReport, error)
	ListAll(ctx context.Context) ([]models.StoredReport, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.StoredReport, error)
	DeleteUnlessResolved(ctx context.Context, id string) (*models.StoredReport, error)
	CancelStale(ctx context.Context, before time.Time) ([]models.StoredReport, error)
}

// PhotoStore файловое хранилище фотографий.
type PhotoStore interface {
	Save(ctx context.Context, dir, originalName string, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, relativePath string) error
}

// ChangeNotifier рассылает событие изменения списка владельцу отчёта.
type ChangeNotifier interface {
	ReportsChanged(userID int64, reportID, action string)
}

// CreateReportInput данные нового отчёта. UserID пуст для анонимной отправки.
type CreateReportInput struct {
	UserID       *int64
	Name         string
	Phone        string
	AccidentType string
	Location     *string
	ImageName    string
	Image        io.Reader
}

// ReportService жизненный цикл отчётов: создание, решение, удаление, отмена устаревших.
type ReportService struct {
	repo       ReportRepository
	photos     PhotoStore
	notifier   ChangeNotifier
	staleAfter time.Duration
	now        func() time.Time
}

// NewReportService создаёт сервис. notifier может быть nil.
func NewReportService(repo ReportRepository, photos PhotoStore, notifier ChangeNotifier, staleAfter time.Duration) *ReportService {
	return &ReportService{
		repo:       repo,
		photos:     photos,
		notifier:   notifier,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Create проверяет поля, сохраняет фото и создаёт отчёт со статусом Pending.
func (s *ReportService) Create(ctx context.Context, in CreateReportInput) (*models.StoredReport, error) {
	if err := validation.ValidateNonEmpty("name", in.Name); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateNonEmpty("phone", in.Phone); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	accidentType, ok := models.ParseAccidentType(in.AccidentType)
	if !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "accident_type must be one of Car, Pedestrian, Bike")
	}
	if in.Image == nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "image is required")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Image, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, apperror.New(apperror.ErrCodeValidation, "image is empty")
	}
	head = head[:n]
	if _, err := media.DetectImageMIME(head); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "image must be a JPEG, PNG, GIF, WEBP or HEIF file")
	}

	rel, _, err := s.photos.Save(ctx, photoDir, in.ImageName, io.MultiReader(bytes.NewReader(head), in.Image))
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, apperror.New(apperror.ErrCodeValidation, "image is too large")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to store image")
	}

	report := &models.StoredReport{
		ID:           uuid.NewString(),
		UserID:       in.UserID,
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		AccidentType: string(accidentType),
		Status:       models.StatusCodePending,
		Location:     in.Location,
		ImagePath:    rel,
	}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		_ = s.photos.Delete(ctx, rel)
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"report_id":     report.ID,
		"accident_type": report.AccidentType,
	}).Info("report service: отчёт создан")

	s.notify(report, models.ReportActionCreated)
	return report, nil
}

// ListForUser возвращает отчёты userID. requesterID должен совпадать с userID.
func (s *ReportService) ListForUser(ctx context.Context, requesterID, userID int64) ([]models.StoredReport, error) {
	if requesterID != userID {
		return nil, apperror.ErrForbidden
	}
	return s.repo.ListByUser(ctx, userID)
}

// ListAll возвращает все отчёты.
func (s *ReportService) ListAll(ctx context.Context) ([]models.StoredReport, error) {
	return s.repo.ListAll(ctx)
}

// MarkSolved переводит отчёт в Resolved.
func (s *ReportService) MarkSolved(ctx context.Context, id string) (*models.StoredReport, error) {
	report, err := s.repo.UpdateStatus(ctx, id, models.StatusCodeResolved)
	if err != nil {
		return nil, err
	}
	s.notify(report, models.ReportActionSolved)
	return report, nil
}

// Delete удаляет нерешённый отчёт вместе с фото.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	report, err := s.repo.DeleteUnlessResolved(ctx, id)
	if err != nil {
		return err
	}
	if err := s.photos.Delete(ctx, report.ImagePath); err != nil {
		logger.Log.WithField("report_id", id).Warnf("report service: фото не удалено: %v", err)
	}
	s.notify(report, models.ReportActionDeleted)
	return nil
}

// CancelStale отменяет ожидающие отчёты старше staleAfter и возвращает их число.
func (s *ReportService) CancelStale(ctx context.Context) (int, error) {
	canceled, err := s.repo.CancelStale(ctx, s.now().Add(-s.staleAfter))
	if err != nil {
		return 0, err
	}
	for i := range canceled {
		s.notify(&canceled[i], models.ReportActionCanceled)
	}
	return len(canceled), nil
}

func (s *ReportService) notify(report *models.StoredReport, action string) {
	if s.notifier == nil || report.UserID == nil {
		return
	}
	s.notifier.ReportsChanged(*report.UserID, report.ID, action)
}
