// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/brand-intel/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJob outputs a human-readable summary of a collection job.
func (p *Printer) PrintJob(job *types.Job) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Brand:      %s\n", job.BrandID))
	sb.WriteString(fmt.Sprintf("Competitor: %s\n", job.CompetitorID))
	sb.WriteString(fmt.Sprintf("Area:       %s\n", job.AreaID))
	sb.WriteString(fmt.Sprintf("Status:     %s (%d%%)\n", job.Status, job.Progress))
	if job.CurrentStep != "" {
		sb.WriteString(fmt.Sprintf("Step:       %s\n", job.CurrentStep))
	}
	if job.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Error:      %s\n", job.ErrorMessage))
	}
	sb.WriteString(fmt.Sprintf("Sources:    %d done, %d remaining",
		len(job.CompletedSources), len(job.RemainingSources)))

	p.printBox(fmt.Sprintf("Job %s", job.ID), sb.String())
}

// PrintBrandData outputs the collected metrics for one subject.
func (p *Printer) PrintBrandData(data *types.BrandData) {
	if data == nil {
		return
	}

	var sb strings.Builder
	if data.NewsSentiment != nil {
		sb.WriteString(fmt.Sprintf("News:      %d articles, sentiment %.2f (%s)\n",
			data.NewsSentiment.ArticleCount, data.NewsSentiment.OverallSentiment, data.NewsSentiment.SentimentLabel))
	}
	if data.SocialSentiment != nil {
		sb.WriteString(fmt.Sprintf("Social:    %d mentions, engagement %.3f\n",
			data.SocialSentiment.MentionCount, data.SocialSentiment.EngagementRate))
	}
	if data.EmployerReviews != nil {
		sb.WriteString(fmt.Sprintf("Reviews:   %.1f stars over %d reviews\n",
			data.EmployerReviews.OverallRating, data.EmployerReviews.ReviewCount))
	}
	if data.WebsiteAnalysis != nil {
		sb.WriteString(fmt.Sprintf("Website:   quality %.2f, %d words, %d links\n",
			data.WebsiteAnalysis.QualityScore, data.WebsiteAnalysis.WordCount, data.WebsiteAnalysis.LinkCount))
	}
	if len(data.FallbackSources) > 0 {
		names := make([]string, len(data.FallbackSources))
		for i, s := range data.FallbackSources {
			names[i] = string(s)
		}
		sb.WriteString(fmt.Sprintf("Fallbacks: %s\n", strings.Join(names, ", ")))
	}
	if sb.Len() == 0 {
		sb.WriteString("no data collected")
	}

	p.printBox(fmt.Sprintf("Subject %s", data.SubjectID), strings.TrimRight(sb.String(), "\n"))
}

// PrintCacheStats outputs cache occupancy.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCacheStats(total, active int, efficiency float64) {
	fmt.Fprintf(p.out, "Cache: %d entries (%d active), %.1f%% efficiency\n", total, active, efficiency)
}
