package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
)

// MemoryStore хранилище в памяти для локального запуска без DATABASE_URL и
// для тестов. Реализует те же методы, что и Postgres репозитории.
type MemoryStore struct {
	mu        sync.RWMutex
	nextUser  int64
	users     map[int64]models.User
	reports   map[string]models.StoredReport
	providers []models.Provider
	now       func() time.Time
}

// NewMemoryStore создаёт хранилище с демонстрационными справочниками.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[int64]models.User),
		reports:   make(map[string]models.StoredReport),
		providers: defaultProviders(),
		now:       time.Now,
	}
}

// Ping всегда успешен.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Create сохраняет пользователя.
func (m *MemoryStore) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, u := range m.users {
		if u.Email == email {
			return apperror.ErrEmailTaken
		}
	}
	m.nextUser++
	user.ID = m.nextUser
	user.Email = email
	user.CreatedAt = m.now()
	m.users[user.ID] = *user
	return nil
}

// GetByEmail возвращает пользователя по email.
func (m *MemoryStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

// GetByID возвращает пользователя по id.
func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	return &u, nil
}

// CreateReport сохраняет отчёт.
func (m *MemoryStore) CreateReport(ctx context.Context, report *models.StoredReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	report.CreatedAt = now
	report.UpdatedAt = now
	m.reports[report.ID] = *report
	return nil
}

// GetReport возвращает отчёт.
func (m *MemoryStore) GetReport(ctx context.Context, id string) (*models.StoredReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[id]
	if !ok {
		return nil, apperror.ErrReportNotFound
	}
	return &r, nil
}

// ListByUser возвращает отчёты пользователя, новые первыми.
func (m *MemoryStore) ListByUser(ctx context.Context, userID int64) ([]models.StoredReport, error) {
	return m.list(func(r models.StoredReport) bool {
		return r.UserID != nil && *r.UserID == userID
	}), nil
}

// ListAll возвращает все отчёты, новые первыми.
func (m *MemoryStore) ListAll(ctx context.Context) ([]models.StoredReport, error) {
	return m.list(func(models.StoredReport) bool { return true }), nil
}

// UpdateStatus меняет код статуса.
func (m *MemoryStore) UpdateStatus(ctx context.Context, id, status string) (*models.StoredReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reports[id]
	if !ok {
		return nil, apperror.ErrReportNotFound
	}
	r.Status = status
	r.UpdatedAt = m.now()
	m.reports[id] = r
	return &r, nil
}

// DeleteUnlessResolved удаляет отчёт, если он не решён.
func (m *MemoryStore) DeleteUnlessResolved(ctx context.Context, id string) (*models.StoredReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reports[id]
	if !ok {
		return nil, apperror.ErrReportNotFound
	}
	if models.ParseStatus(r.Status) == models.StatusResolved {
		return nil, apperror.ErrDeleteResolved
	}
	delete(m.reports, id)
	return &r, nil
}

// CancelStale переводит в Canceled ожидающие отчёты старше before.
func (m *MemoryStore) CancelStale(ctx context.Context, before time.Time) ([]models.StoredReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var canceled []models.StoredReport
	for id, r := range m.reports {
		if r.Status != models.StatusCodePending || !r.CreatedAt.Before(before) {
			continue
		}
		r.Status = models.StatusCodeCanceled
		r.UpdatedAt = m.now()
		m.reports[id] = r
		canceled = append(canceled, r)
	}
	return canceled, nil
}

// ListByKind возвращает провайдеров заданного вида.
func (m *MemoryStore) ListByKind(ctx context.Context, kind string) ([]models.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Provider{}
	for _, p := range m.providers {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryStore) list(match func(models.StoredReport) bool) []models.StoredReport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.StoredReport{}
	for _, r := range m.reports {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// defaultProviders совпадает с начальными данными миграции 001_init.sql.
func defaultProviders() []models.Provider {
	return []models.Provider{
		{ID: 1, Kind: models.ProviderKindCompany, Name: "Atlas Insurance", Logo: "storage/logos/atlas.png", Phone: "+1 (555) 010-0101"},
		{ID: 2, Kind: models.ProviderKindCompany, Name: "Harbor Mutual", Logo: "storage/logos/harbor.png", Phone: "+1 (555) 010-0102"},
		{ID: 3, Kind: models.ProviderKindBreakdown, Name: "Roadside Rescue", Logo: "storage/logos/roadside.png", Phone: "+1 (555) 010-0201"},
		{ID: 4, Kind: models.ProviderKindBreakdown, Name: "City Tow", Logo: "storage/logos/citytow.png", Phone: "+1 (555) 010-0202"},
	}
}
