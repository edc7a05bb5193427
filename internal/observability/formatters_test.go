package observability

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/brand-intel/internal/types"
)

func TestPrintJob(t *testing.T) {
	var sb strings.Builder
	p := NewPrinter(&sb)

	p.PrintJob(&types.Job{
		ID:               "j1",
		BrandID:          "acme",
		CompetitorID:     "globex",
		AreaID:           "us-west",
		Status:           types.StatusInProgress,
		Progress:         45,
		CurrentStep:      "collecting brand data for acme",
		CompletedSources: []types.DataSource{types.SourceNews},
		RemainingSources: []types.DataSource{types.SourceWebsite},
		CreatedAt:        time.Now().UTC(),
	})

	out := sb.String()
	assert.Contains(t, out, "Job j1")
	assert.Contains(t, out, "acme")
	assert.Contains(t, out, "in_progress (45%)")
	assert.Contains(t, out, "1 done, 1 remaining")
}

func TestPrintJob_Nil(t *testing.T) {
	var sb strings.Builder
	NewPrinter(&sb).PrintJob(nil)
	assert.Empty(t, sb.String())
}

func TestPrintBrandData(t *testing.T) {
	var sb strings.Builder
	p := NewPrinter(&sb)

	p.PrintBrandData(&types.BrandData{
		SubjectID:       "acme",
		NewsSentiment:   &types.NewsResult{ArticleCount: 3, OverallSentiment: 0.5, SentimentLabel: "positive"},
		WebsiteAnalysis: &types.WebsiteResult{QualityScore: 0.8, WordCount: 500, LinkCount: 20},
		FallbackSources: []types.DataSource{types.SourceGlassdoor},
	})

	out := sb.String()
	assert.Contains(t, out, "Subject acme")
	assert.Contains(t, out, "3 articles")
	assert.Contains(t, out, "quality 0.80")
	assert.Contains(t, out, "Fallbacks: glassdoor")
}

func TestPrintBrandData_Empty(t *testing.T) {
	var sb strings.Builder
	NewPrinter(&sb).PrintBrandData(&types.BrandData{SubjectID: "acme"})
	assert.Contains(t, sb.String(), "no data collected")
}
