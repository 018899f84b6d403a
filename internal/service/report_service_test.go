package service

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
	"github.com/ignatzorin/report-accident/internal/repository"
	"github.com/ignatzorin/report-accident/internal/storage"
)

var testJPEG = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x01}, 300)...)

type recordedChange struct {
	userID   int64
	reportID string
	action   string
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []recordedChange
}

func (r *recordingNotifier) ReportsChanged(userID int64, reportID, action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, recordedChange{userID, reportID, action})
}

func (r *recordingNotifier) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.changes))
	for _, c := range r.changes {
		out = append(out, c.action)
	}
	return out
}

func newReportService(t *testing.T) (*ReportService, *recordingNotifier) {
	t.Helper()
	photos, err := storage.NewPhotoStorage(t.TempDir(), 1)
	require.NoError(t, err)
	notifier := &recordingNotifier{}
	return NewReportService(repository.NewMemoryStore(), photos, notifier, time.Hour), notifier
}

func validInput(userID *int64) CreateReportInput {
	return CreateReportInput{
		UserID:       userID,
		Name:         "Jane Doe",
		Phone:        "+1 555 0100",
		AccidentType: "Car",
		ImageName:    "accident.jpg",
		Image:        bytes.NewReader(testJPEG),
	}
}

func TestReportService_CreateAndList(t *testing.T) {
	svc, notifier := newReportService(t)
	ctx := context.Background()
	owner := int64(42)

	report, err := svc.Create(ctx, validInput(&owner))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCodePending, report.Status)
	assert.True(t, strings.HasPrefix(report.ImagePath, "reports/"))

	mine, err := svc.ListForUser(ctx, owner, owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, report.ID, mine[0].ID)

	_, err = svc.ListForUser(ctx, 7, owner)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	assert.Equal(t, []string{models.ReportActionCreated}, notifier.actions())
}

func TestReportService_CreateValidation(t *testing.T) {
	svc, notifier := newReportService(t)
	ctx := context.Background()

	in := validInput(nil)
	in.Name = " "
	_, err := svc.Create(ctx, in)
	assert.True(t, apperror.IsValidation(err))

	in = validInput(nil)
	in.AccidentType = "Boat"
	_, err = svc.Create(ctx, in)
	assert.True(t, apperror.IsValidation(err))

	in = validInput(nil)
	in.Image = strings.NewReader("plain text, not an image")
	_, err = svc.Create(ctx, in)
	assert.True(t, apperror.IsValidation(err))

	in = validInput(nil)
	in.Image = nil
	_, err = svc.Create(ctx, in)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Create(ctx, validInput(nil))
	require.NoError(t, err)
	assert.Empty(t, notifier.actions(), "анонимные отчёты не рассылаются")
}

func TestReportService_SolveThenDeleteRejected(t *testing.T) {
	svc, notifier := newReportService(t)
	ctx := context.Background()
	owner := int64(42)

	report, err := svc.Create(ctx, validInput(&owner))
	require.NoError(t, err)

	solved, err := svc.MarkSolved(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCodeResolved, solved.Status)

	err = svc.Delete(ctx, report.ID)
	assert.ErrorIs(t, err, apperror.ErrDeleteResolved)

	_, err = svc.MarkSolved(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrReportNotFound)

	assert.Equal(t, []string{models.ReportActionCreated, models.ReportActionSolved}, notifier.actions())
}

func TestReportService_DeletePending(t *testing.T) {
	svc, notifier := newReportService(t)
	ctx := context.Background()
	owner := int64(42)

	report, err := svc.Create(ctx, validInput(&owner))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, report.ID))

	mine, err := svc.ListForUser(ctx, owner, owner)
	require.NoError(t, err)
	assert.Empty(t, mine)
	assert.Contains(t, notifier.actions(), models.ReportActionDeleted)
}

func TestJanitor_CancelsStaleReports(t *testing.T) {
	svc, notifier := newReportService(t)
	ctx := context.Background()
	owner := int64(42)

	report, err := svc.Create(ctx, validInput(&owner))
	require.NoError(t, err)

	janitor, err := NewJanitor(svc, NewCacheService(), "@hourly")
	require.NoError(t, err)

	assert.Equal(t, 0, janitor.RunOnce(ctx))

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, janitor.RunOnce(ctx))

	mine, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, report.ID, mine[0].ID)
	assert.Equal(t, models.StatusCodeCanceled, mine[0].Status)
	assert.Contains(t, notifier.actions(), models.ReportActionCanceled)
}

func TestNewJanitor_InvalidSchedule(t *testing.T) {
	svc, _ := newReportService(t)
	_, err := NewJanitor(svc, nil, "not a schedule")
	assert.Error(t, err)
}

type countingProviders struct {
	calls int
}

func (c *countingProviders) ListByKind(ctx context.Context, kind string) ([]models.Provider, error) {
	c.calls++
	return []models.Provider{{ID: 1, Kind: kind, Name: "Atlas"}}, nil
}

func TestDirectoryService_CachesLists(t *testing.T) {
	repo := &countingProviders{}
	cache := NewCacheService()
	svc := NewDirectoryService(repo, cache, time.Minute)

	for i := 0; i < 3; i++ {
		companies, err := svc.Companies(context.Background())
		require.NoError(t, err)
		assert.Len(t, companies, 1)
	}
	assert.Equal(t, 1, repo.calls)

	_, err := svc.Breakdowns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)

	cache.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = svc.Companies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)
}
