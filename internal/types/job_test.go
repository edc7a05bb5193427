package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionRequest_Validate(t *testing.T) {
	req := &CollectionRequest{
		BrandID:      "acme",
		CompetitorID: "globex",
		AreaID:       "us-west",
	}
	require.NoError(t, req.Validate())
}

func TestCollectionRequest_Validate_MissingFields(t *testing.T) {
	req := &CollectionRequest{BrandID: "acme"}
	require.Error(t, req.Validate())
}

func TestCollectionRequest_Validate_EmptyExplicitSources(t *testing.T) {
	req := &CollectionRequest{
		BrandID:      "acme",
		CompetitorID: "globex",
		AreaID:       "us-west",
		Sources:      []DataSource{},
	}
	// Empty slice means "defaults", nil-or-absent and empty are equivalent.
	require.NoError(t, req.Validate())
	assert.Len(t, req.EffectiveSources(), 4)
}

func TestCollectionRequest_Validate_UnknownSource(t *testing.T) {
	req := &CollectionRequest{
		BrandID:      "acme",
		CompetitorID: "globex",
		AreaID:       "us-west",
		Sources:      []DataSource{"tiktok"},
	}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tiktok")
}

func TestCollectionRequest_EffectiveSources_Explicit(t *testing.T) {
	req := &CollectionRequest{Sources: []DataSource{SourceWebsite}}
	sources := req.EffectiveSources()
	assert.Equal(t, []DataSource{SourceWebsite}, sources)

	// Returned slice is a copy.
	sources[0] = SourceNews
	assert.Equal(t, SourceWebsite, req.Sources[0])
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, StatusStarted.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestJob_MarkSourceDone(t *testing.T) {
	job := &Job{
		Sources:          []DataSource{SourceNews, SourceWebsite},
		RemainingSources: []DataSource{SourceNews, SourceWebsite},
	}

	job.MarkSourceDone(SourceNews)
	assert.Equal(t, []DataSource{SourceNews}, job.CompletedSources)
	assert.Equal(t, []DataSource{SourceWebsite}, job.RemainingSources)

	// Second call is a no-op.
	job.MarkSourceDone(SourceNews)
	assert.Len(t, job.CompletedSources, 1)
	assert.Len(t, job.RemainingSources, 1)

	job.MarkSourceDone(SourceWebsite)
	assert.Empty(t, job.RemainingSources)
	assert.ElementsMatch(t, job.Sources, job.CompletedSources)
}

func TestJob_MarkSourceDone_Unrequested(t *testing.T) {
	job := &Job{
		Sources:          []DataSource{SourceNews},
		RemainingSources: []DataSource{SourceNews},
	}
	job.MarkSourceDone(SourceGlassdoor)
	assert.Empty(t, job.CompletedSources)
	assert.Equal(t, []DataSource{SourceNews}, job.RemainingSources)
}

func TestJob_Clone_Independent(t *testing.T) {
	job := &Job{
		ID:               "j1",
		Sources:          []DataSource{SourceNews},
		RemainingSources: []DataSource{SourceNews},
		Status:           StatusStarted,
	}
	cp := job.Clone()
	cp.MarkSourceDone(SourceNews)
	cp.Status = StatusCompleted

	assert.Equal(t, StatusStarted, job.Status)
	assert.Equal(t, []DataSource{SourceNews}, job.RemainingSources)
	assert.Empty(t, job.CompletedSources)
}
