package collector

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Discoverer locates collection targets through programmable search when a
// source has no configured endpoint.
type Discoverer struct {
	svc *customsearch.Service
	cx  string
}

// NewDiscoverer creates a Discoverer backed by the Custom Search API.
func NewDiscoverer(ctx context.Context, apiKey, cx string) (*Discoverer, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &Discoverer{svc: svc, cx: cx}, nil
}

// FindNewsURLs returns up to limit recent article links about the subject in
// the given market area. Failed queries are skipped; the result set is
// best-effort.
func (d *Discoverer) FindNewsURLs(ctx context.Context, subjectID, areaID string, limit int) ([]string, error) {
	queries := []string{
		fmt.Sprintf("%s news %s", subjectID, areaID),
		fmt.Sprintf("%s announcement", subjectID),
	}

	var urls []string
	seen := make(map[string]bool)
	for _, q := range queries {
		resp, err := d.svc.Cse.List().Context(ctx).Cx(d.cx).Q(q).Num(int64(limit)).Do()
		if err != nil {
			continue // Skip failed queries gracefully
		}
		for _, item := range resp.Items {
			if seen[item.Link] {
				continue
			}
			seen[item.Link] = true
			urls = append(urls, item.Link)
			if len(urls) >= limit {
				return urls, nil
			}
		}
	}
	return urls, nil
}

// FindReviewPage returns the best candidate employer-review page for the
// subject.
func (d *Discoverer) FindReviewPage(ctx context.Context, subjectID string) (string, error) {
	query := fmt.Sprintf("%s employee reviews", subjectID)
	resp, err := d.svc.Cse.List().Context(ctx).Cx(d.cx).Q(query).Num(1).Do()
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("no review page found for %s", subjectID)
	}
	return resp.Items[0].Link, nil
}
