package manager

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/brand-intel/internal/store"
	"github.com/jonathan/brand-intel/internal/types"
)

// fakeRunner produces canned per-subject data and can be made to fail or
// block until cancellation.
type fakeRunner struct {
	err      error
	blocking bool
	delay    time.Duration
}

func (f *fakeRunner) CollectAll(ctx context.Context, subjectID, areaID string, sources []types.DataSource, onProgress func(types.DataSource)) (*types.BrandData, error) {
	if f.blocking {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	data := &types.BrandData{SubjectID: subjectID}
	for _, s := range sources {
		if f.delay > 0 {
			time.Sleep(f.delay)
		}
		data.Apply(&types.SourceResult{Source: s, Website: &types.WebsiteResult{QualityScore: 0.7}, CollectedAt: time.Now().UTC()})
		if onProgress != nil {
			onProgress(s)
		}
	}
	return data, nil
}

func newTestManager(r SubjectCollector) (*Manager, store.Store) {
	s := store.NewMemory()
	return New(s, r, Config{SourceTimeout: time.Second}), s
}

func validRequest() *types.CollectionRequest {
	return &types.CollectionRequest{
		BrandID:      "acme",
		CompetitorID: "globex",
		AreaID:       "us-west",
		Sources:      []types.DataSource{types.SourceWebsite},
	}
}

func TestStart_InvalidRequest(t *testing.T) {
	m, _ := newTestManager(&fakeRunner{})
	_, err := m.Start(context.Background(), &types.CollectionRequest{BrandID: "acme"})
	require.Error(t, err)
}

func TestStart_UnknownSource(t *testing.T) {
	m, _ := newTestManager(&fakeRunner{})
	req := validRequest()
	req.Sources = []types.DataSource{"carrier_pigeon"}
	_, err := m.Start(context.Background(), req)
	require.Error(t, err)
}

func TestStart_DisallowedSource(t *testing.T) {
	s := store.NewMemory()
	m := New(s, &fakeRunner{}, Config{AllowedSources: []types.DataSource{types.SourceNews}})
	_, err := m.Start(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enabled")
}

func TestStart_DefaultsToAllSources(t *testing.T) {
	m, _ := newTestManager(&fakeRunner{})
	req := validRequest()
	req.Sources = nil

	job, err := m.Start(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, job.Sources, 4)
	assert.NotNil(t, job.EstimatedCompletion)
	assert.True(t, job.EstimatedCompletion.After(job.CreatedAt))
	m.Wait(job.ID)
}

func TestExecute_CompletesJob(t *testing.T) {
	m, _ := newTestManager(&fakeRunner{})
	ctx := context.Background()

	job, err := m.Start(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, types.StatusStarted, job.Status)
	m.Wait(job.ID)

	got, err := m.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Empty(t, got.RemainingSources)
	assert.Equal(t, []types.DataSource{types.SourceWebsite}, got.CompletedSources)
	require.NotNil(t, got.CompletedAt)
	require.NotNil(t, got.Data)
	assert.Equal(t, "acme", got.Data.Brand.SubjectID)
	assert.Equal(t, "globex", got.Data.Competitor.SubjectID)
	require.NotNil(t, got.Data.Brand.WebsiteAnalysis)
	require.NotNil(t, got.Data.Competitor.WebsiteAnalysis)
}

func TestExecute_ProgressMonotonicAndCapped(t *testing.T) {
	s := store.NewMemory()
	var mu sync.Mutex
	var observed []int

	recorder := &progressRecorder{store: s, mu: &mu, observed: &observed}
	m := New(s, recorder, Config{SourceTimeout: time.Second})
	recorder.manager = m

	req := validRequest()
	req.Sources = []types.DataSource{types.SourceNews, types.SourceWebsite}
	job, err := m.Start(context.Background(), req)
	require.NoError(t, err)
	m.Wait(job.ID)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, observed)
	prev := 0
	for _, p := range observed {
		assert.GreaterOrEqual(t, p, 5)
		assert.LessOrEqual(t, p, 95, "progress must hold below 100 until data is persisted")
		assert.GreaterOrEqual(t, p, prev, "progress must be monotonic")
		prev = p
	}

	got, err := m.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
}

// progressRecorder snapshots the stored progress after every step.
type progressRecorder struct {
	store    store.Store
	manager  *Manager
	mu       *sync.Mutex
	observed *[]int
}

func (r *progressRecorder) CollectAll(ctx context.Context, subjectID, areaID string, sources []types.DataSource, onProgress func(types.DataSource)) (*types.BrandData, error) {
	data := &types.BrandData{SubjectID: subjectID}
	for _, s := range sources {
		data.Apply(&types.SourceResult{Source: s, News: &types.NewsResult{}, CollectedAt: time.Now().UTC()})
		onProgress(s)
		jobs, err := r.store.List(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		for _, j := range jobs {
			*r.observed = append(*r.observed, j.Progress)
		}
		r.mu.Unlock()
	}
	return data, nil
}

func TestExecute_FailureRecordsMessage(t *testing.T) {
	m, _ := newTestManager(&fakeRunner{err: fmt.Errorf("upstream exploded")})
	job, err := m.Start(context.Background(), validRequest())
	require.NoError(t, err)
	m.Wait(job.ID)

	got, err := m.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "upstream exploded")
	require.NotNil(t, got.CompletedAt)
	assert.Nil(t, got.Data)
}

func TestCancel_RunningJob(t *testing.T) {
	m, _ := newTestManager(&fakeRunner{blocking: true})
	ctx := context.Background()

	job, err := m.Start(ctx, validRequest())
	require.NoError(t, err)

	cancelled, err := m.Cancel(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, cancelled)
	m.Wait(job.ID)

	got, err := m.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCancelled, got.Status, "cancellation must not be overwritten by the stopping task")

	// Second cancel is a no-op.
	cancelled, err = m.Cancel(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, cancelled)
}

func TestCancel_CompletedJob(t *testing.T) {
	m, _ := newTestManager(&fakeRunner{})
	ctx := context.Background()
	job, err := m.Start(ctx, validRequest())
	require.NoError(t, err)
	m.Wait(job.ID)

	cancelled, err := m.Cancel(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, cancelled)

	got, err := m.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, got.Status)
}

func TestCancel_UnknownJob(t *testing.T) {
	m, _ := newTestManager(&fakeRunner{})
	_, err := m.Cancel(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestData_Lifecycle(t *testing.T) {
	m, _ := newTestManager(&fakeRunner{blocking: true})
	ctx := context.Background()

	_, err := m.Data(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	job, err := m.Start(ctx, validRequest())
	require.NoError(t, err)

	_, err = m.Data(ctx, job.ID)
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = m.Cancel(ctx, job.ID)
	require.NoError(t, err)
	m.Wait(job.ID)

	_, err = m.Data(ctx, job.ID)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestData_Completed(t *testing.T) {
	m, _ := newTestManager(&fakeRunner{})
	ctx := context.Background()
	job, err := m.Start(ctx, validRequest())
	require.NoError(t, err)
	m.Wait(job.ID)

	data, err := m.Data(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", data.Brand.SubjectID)
}

func TestGetStats(t *testing.T) {
	m, _ := newTestManager(&fakeRunner{})
	ctx := context.Background()

	empty, err := m.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, empty.SuccessRate)
	assert.Zero(t, empty.TotalJobs)

	j1, err := m.Start(ctx, validRequest())
	require.NoError(t, err)
	m.Wait(j1.ID)

	stats, err := m.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalJobs)
	assert.Equal(t, 1.0, stats.SuccessRate)
	assert.Equal(t, 1, stats.ByStatus[string(types.StatusCompleted)])
	assert.Zero(t, stats.ActiveJobs)
}

func TestGetStats_SuccessRate(t *testing.T) {
	s := store.NewMemory()
	ok := New(s, &fakeRunner{}, Config{})
	j1, err := ok.Start(context.Background(), validRequest())
	require.NoError(t, err)
	ok.Wait(j1.ID)

	bad := New(s, &fakeRunner{err: fmt.Errorf("boom")}, Config{})
	j2, err := bad.Start(context.Background(), validRequest())
	require.NoError(t, err)
	bad.Wait(j2.ID)

	stats, err := ok.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalJobs)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-9)
}

func TestDelete_RemovesJob(t *testing.T) {
	m, s := newTestManager(&fakeRunner{})
	ctx := context.Background()
	job, err := m.Start(ctx, validRequest())
	require.NoError(t, err)
	m.Wait(job.ID)

	require.NoError(t, m.Delete(ctx, job.ID))
	_, err = s.Get(ctx, job.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReap_RemovesOldTerminalJobs(t *testing.T) {
	m, s := newTestManager(&fakeRunner{})
	ctx := context.Background()
	job, err := m.Start(ctx, validRequest())
	require.NoError(t, err)
	m.Wait(job.ID)

	m.reap(ctx, 0)

	_, err = s.Get(ctx, job.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
