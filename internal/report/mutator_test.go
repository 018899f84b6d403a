package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/report-accident/internal/api"
	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
)

// fakeServer минимальная реализация API отчётов на map.
type fakeServer struct {
	mu       sync.Mutex
	statuses map[string]string
	order    []string
	failNext bool
	requests []string
}

func newFakeServer(statuses map[string]string) *fakeServer {
	f := &fakeServer{statuses: statuses}
	for id := range statuses {
		f.order = append(f.order, id)
	}
	return f
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if f.failNext && r.Method != http.MethodGet {
		f.failNext = false
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/reports/42":
		out := []map[string]any{}
		for _, id := range f.order {
			st, ok := f.statuses[id]
			if !ok {
				continue
			}
			out = append(out, map[string]any{
				"uuid": id, "name": "Jane Doe", "status": st,
				"accident_type": "Car", "image": "storage/" + id + ".jpg",
			})
		}
		_ = json.NewEncoder(w).Encode(out)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/reports/solved/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/reports/solved/")
		if _, ok := f.statuses[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.statuses[id] = models.StatusCodeResolved
		_, _ = w.Write([]byte(`{"message":"Report marked as solved"}`))
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/reports/delete/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/reports/delete/")
		delete(f.statuses, id)
		_, _ = w.Write([]byte(`{"message":"Report deleted"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeServer) mutationRequests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		if !strings.HasPrefix(r, http.MethodGet) {
			out = append(out, r)
		}
	}
	return out
}

type pipeline struct {
	server  *fakeServer
	sync    *Synchronizer
	mutator *Mutator
}

func newPipeline(t *testing.T, statuses map[string]string) *pipeline {
	t.Helper()
	fake := newFakeServer(statuses)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, 5*time.Second)
	s := NewSynchronizer(client, loggedIn(), nil)
	m := NewMutator(client, s, nil, nil)
	require.NoError(t, s.Refresh(context.Background()))
	return &pipeline{server: fake, sync: s, mutator: m}
}

func rowFor(t *testing.T, p *pipeline, id string) (Row, bool) {
	t.Helper()
	for _, row := range BuildRows(p.sync.Reports(), p.mutator.Pending()) {
		if row.Report.ID == id {
			return row, true
		}
	}
	return Row{}, false
}

func TestMutator_MarkSolvedScenario(t *testing.T) {
	p := newPipeline(t, map[string]string{"abc-123": models.StatusCodePending})

	row, ok := rowFor(t, p, "abc-123")
	require.True(t, ok)
	assert.True(t, row.CanDelete)

	require.NoError(t, p.mutator.MarkSolved(context.Background(), "abc-123"))

	row, ok = rowFor(t, p, "abc-123")
	require.True(t, ok)
	assert.Equal(t, models.StatusResolved, row.Report.Status)
	assert.Equal(t, "Resolved", row.StatusLabel)
	assert.False(t, row.CanDelete)
	assert.False(t, p.mutator.Pending().Has("abc-123"))
}

func TestMutator_DeleteScenario(t *testing.T) {
	p := newPipeline(t, map[string]string{"abc-123": models.StatusCodePending, "keep": models.StatusCodeCanceled})

	require.NoError(t, p.mutator.Delete(context.Background(), "abc-123"))

	_, ok := rowFor(t, p, "abc-123")
	assert.False(t, ok)
	_, ok = rowFor(t, p, "keep")
	assert.True(t, ok)
	assert.Empty(t, p.mutator.Pending().IDs())
}

func TestMutator_DeleteResolvedIsNeverSent(t *testing.T) {
	p := newPipeline(t, map[string]string{"abc-123": models.StatusCodeResolved})

	err := p.mutator.Delete(context.Background(), "abc-123")
	assert.ErrorIs(t, err, apperror.ErrDeleteResolved)
	assert.Empty(t, p.server.mutationRequests())
}

func TestMutator_FailureReturnsToIdle(t *testing.T) {
	p := newPipeline(t, map[string]string{"abc-123": models.StatusCodePending})
	p.server.failNext = true

	err := p.mutator.MarkSolved(context.Background(), "abc-123")
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusCode(err))
	assert.False(t, p.mutator.Pending().Has("abc-123"))
	assert.Equal(t, 1, p.sync.Generation(), "после ошибки сверка не выполняется")

	require.NoError(t, p.mutator.MarkSolved(context.Background(), "abc-123"))
}

// gatedMutationAPI задерживает мутацию до сигнала.
type gatedMutationAPI struct {
	started chan string
	release chan struct{}
}

func (g *gatedMutationAPI) MarkSolved(ctx context.Context, id string) error {
	g.started <- id
	<-g.release
	return nil
}

func (g *gatedMutationAPI) DeleteReport(ctx context.Context, id string) error {
	g.started <- id
	<-g.release
	return nil
}

func TestMutator_BlocksDuplicateWhilePending(t *testing.T) {
	gate := &gatedMutationAPI{started: make(chan string, 1), release: make(chan struct{})}
	s := NewSynchronizer(&staticListAPI{reports: []models.Report{{ID: "abc-123", Status: models.StatusPending}}}, loggedIn(), nil)
	m := NewMutator(gate, s, nil, nil)
	require.NoError(t, s.Refresh(context.Background()))

	task := m.MarkSolvedAsync(context.Background(), "abc-123")
	<-gate.started

	assert.True(t, m.Pending().Has("abc-123"))
	rows := BuildRows(s.Reports(), m.Pending())
	assert.False(t, rows[0].CanDelete)
	assert.False(t, rows[0].CanMarkSolved)

	assert.ErrorIs(t, m.MarkSolved(context.Background(), "abc-123"), apperror.ErrMutationPending)
	assert.ErrorIs(t, m.Delete(context.Background(), "abc-123"), apperror.ErrMutationPending)

	close(gate.release)
	_, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, m.Pending().Has("abc-123"))
}

// heldListAPI отдаёт первый список сразу, а каждый следующий только после release.
type heldListAPI struct {
	mu      sync.Mutex
	calls   int
	reports []models.Report
	entered chan struct{}
	release chan struct{}
}

func (h *heldListAPI) ListUserReports(ctx context.Context, userID int64, token string) ([]models.Report, error) {
	h.mu.Lock()
	h.calls++
	n, reports := h.calls, h.reports
	h.mu.Unlock()
	if n > 1 {
		h.entered <- struct{}{}
		<-h.release
	}
	return reports, nil
}

func (h *heldListAPI) set(reports []models.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reports = reports
}

// solvingAPI сразу подтверждает мутацию и меняет состояние списка.
type solvingAPI struct {
	list *heldListAPI
}

func (a solvingAPI) MarkSolved(ctx context.Context, id string) error {
	a.list.set([]models.Report{{ID: id, Status: models.StatusResolved}})
	return nil
}

func (a solvingAPI) DeleteReport(ctx context.Context, id string) error {
	a.list.set(nil)
	return nil
}

func TestMutator_KeepsPendingUntilReconciled(t *testing.T) {
	list := &heldListAPI{
		reports: []models.Report{{ID: "abc-123", Status: models.StatusPending}},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s := NewSynchronizer(list, loggedIn(), nil)
	m := NewMutator(solvingAPI{list: list}, s, nil, nil)
	require.NoError(t, s.Refresh(context.Background()))

	task := m.MarkSolvedAsync(context.Background(), "abc-123")

	select {
	case <-list.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("сверка не началась")
	}

	assert.True(t, m.Pending().Has("abc-123"))
	rows := BuildRows(s.Reports(), m.Pending())
	require.Len(t, rows, 1)
	assert.Equal(t, models.StatusPending, rows[0].Report.Status)
	assert.False(t, rows[0].CanDelete)
	assert.False(t, rows[0].CanMarkSolved)

	close(list.release)
	_, err := task.Wait(context.Background())
	require.NoError(t, err)

	assert.False(t, m.Pending().Has("abc-123"))
	rows = BuildRows(s.Reports(), m.Pending())
	require.Len(t, rows, 1)
	assert.Equal(t, models.StatusResolved, rows[0].Report.Status)
	assert.False(t, rows[0].CanDelete)
}

func TestMutator_WithoutSynchronizer(t *testing.T) {
	gate := &gatedMutationAPI{started: make(chan string, 2), release: make(chan struct{})}
	close(gate.release)
	m := NewMutator(gate, nil, nil, nil)

	require.NotPanics(t, func() {
		require.NoError(t, m.Delete(context.Background(), "abc-123"))
		require.NoError(t, m.MarkSolved(context.Background(), "abc-123"))
	})
	assert.Equal(t, "abc-123", <-gate.started)
	assert.Empty(t, m.Pending().IDs())
}
