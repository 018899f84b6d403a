package report

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/report-accident/internal/dispatch"
	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
	"github.com/ignatzorin/report-accident/internal/session"
)

// blockingListAPI отдаёт список только после сигнала release.
type blockingListAPI struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	reports []models.Report
	err     error
}

func newBlockingListAPI(reports []models.Report) *blockingListAPI {
	return &blockingListAPI{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
		reports: reports,
	}
}

func (b *blockingListAPI) ListUserReports(ctx context.Context, userID int64, token string) ([]models.Report, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.started <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.reports, b.err
}

func (b *blockingListAPI) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// staticListAPI сразу отдаёт заданный результат.
type staticListAPI struct {
	reports []models.Report
	err     error
	userID  int64
	token   string
}

func (s *staticListAPI) ListUserReports(ctx context.Context, userID int64, token string) ([]models.Report, error) {
	s.userID, s.token = userID, token
	return s.reports, s.err
}

func loggedIn() *session.Store {
	s := session.NewStore()
	s.Set("tok", 42)
	return s
}

func TestSynchronizer_ReplacesWholeList(t *testing.T) {
	transport := &staticListAPI{reports: []models.Report{{ID: "a"}, {ID: "b"}}}
	s := NewSynchronizer(transport, loggedIn(), nil)

	require.NoError(t, s.Refresh(context.Background()))
	assert.Len(t, s.Reports(), 2)
	assert.Equal(t, int64(42), transport.userID)
	assert.Equal(t, "tok", transport.token)

	transport.reports = []models.Report{{ID: "c"}}
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, []models.Report{{ID: "c"}}, s.Reports())
	assert.Equal(t, 2, s.Generation())
}

func TestSynchronizer_ConcurrentRefreshAppliesOnce(t *testing.T) {
	transport := newBlockingListAPI([]models.Report{{ID: "a"}})
	s := NewSynchronizer(transport, loggedIn(), nil)

	firstErr := make(chan error, 1)
	go func() { firstErr <- s.Refresh(context.Background()) }()
	<-transport.started

	err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, apperror.ErrRefreshInProgress)
	assert.True(t, s.Refreshing())

	close(transport.release)
	require.NoError(t, <-firstErr)

	assert.Equal(t, 1, transport.callCount())
	assert.Equal(t, 1, s.Generation())
	assert.False(t, s.Refreshing())
}

func TestSynchronizer_ReconcileWaitsForOutstandingRefresh(t *testing.T) {
	transport := newBlockingListAPI([]models.Report{{ID: "a"}})
	s := NewSynchronizer(transport, loggedIn(), nil)

	go func() { _ = s.Refresh(context.Background()) }()
	<-transport.started

	reconciled := make(chan error, 1)
	go func() { reconciled <- s.Reconcile(context.Background()) }()

	close(transport.release)

	select {
	case err := <-reconciled:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reconcile не завершился")
	}
	assert.Equal(t, 2, transport.callCount())
	assert.Equal(t, 2, s.Generation())
}

func TestSynchronizer_RequiresSession(t *testing.T) {
	s := NewSynchronizer(&staticListAPI{}, session.NewStore(), nil)
	err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, apperror.ErrNotLoggedIn)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestSynchronizer_ErrorKeepsPreviousList(t *testing.T) {
	transport := &staticListAPI{reports: []models.Report{{ID: "a"}}}
	s := NewSynchronizer(transport, loggedIn(), nil)
	require.NoError(t, s.Refresh(context.Background()))

	transport.err = apperror.ServerError(http.StatusInternalServerError, "")
	transport.reports = nil
	err := s.Refresh(context.Background())

	assert.Equal(t, http.StatusInternalServerError, apperror.StatusCode(err))
	assert.Len(t, s.Reports(), 1)

	transport.err = apperror.DecodeFailure(errors.New("bad json"))
	assert.True(t, apperror.IsDecodeFailure(s.Refresh(context.Background())))
	assert.Equal(t, 1, s.Generation())
}

func TestSynchronizer_AppliesOnUIScheduler(t *testing.T) {
	loop := dispatch.NewLoop(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	s := NewSynchronizer(&staticListAPI{reports: []models.Report{{ID: "a"}}}, loggedIn(), loop)

	notified := make(chan []models.Report, 1)
	s.OnChange(func(r []models.Report) { notified <- r })

	require.NoError(t, s.Refresh(ctx))
	select {
	case got := <-notified:
		assert.Equal(t, "a", got[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("слушатель не вызван")
	}
}
