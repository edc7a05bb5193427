package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/brand-intel/internal/fetch"
	"github.com/jonathan/brand-intel/internal/schemas"
	"github.com/jonathan/brand-intel/internal/types"
)

// endpointURL renders the configured URL template for a source.
func (c *Collector) endpointURL(source types.DataSource, subjectID, areaID string) string {
	template := c.cfg.Endpoints[source]
	if template == "" {
		return ""
	}
	return fmt.Sprintf(template, url.QueryEscape(subjectID), url.QueryEscape(areaID))
}

// rawNewsPayload mirrors the news aggregator wire shape. Mapping happens
// immediately after the fetch so the raw API shape never leaks upward.
type rawNewsPayload struct {
	Articles []struct {
		Title     string   `json:"title"`
		Sentiment *float64 `json:"sentiment"`
		URL       string   `json:"url"`
	} `json:"articles"`
	OverallSentiment *float64 `json:"overall_sentiment"`
}

// rawSocialPayload mirrors the social mention aggregator wire shape.
type rawSocialPayload struct {
	MentionCount     int      `json:"mention_count"`
	EngagementRate   float64  `json:"engagement_rate"`
	OverallSentiment *float64 `json:"overall_sentiment"`
}

func (c *Collector) fetchNews(ctx context.Context, subjectID, areaID string) (*types.SourceResult, error) {
	endpoint := c.endpointURL(types.SourceNews, subjectID, areaID)
	if endpoint == "" {
		return c.discoverNews(ctx, subjectID, areaID)
	}

	result, err := fetch.URL(ctx, endpoint, c.fetchOptions())
	if err != nil {
		return nil, err
	}
	if err := schemas.ValidateNewsPayload(result.Body); err != nil {
		return nil, fmt.Errorf("news payload rejected: %w", err)
	}

	var raw rawNewsPayload
	if err := json.Unmarshal([]byte(result.Body), &raw); err != nil {
		return nil, fmt.Errorf("news payload unmarshal: %w", err)
	}

	news := &types.NewsResult{ArticleCount: len(raw.Articles)}
	if len(raw.Articles) > 0 {
		news.TopHeadline = raw.Articles[0].Title
	}
	if raw.OverallSentiment != nil {
		news.OverallSentiment = *raw.OverallSentiment
	} else {
		sum, n := 0.0, 0
		for _, a := range raw.Articles {
			if a.Sentiment != nil {
				sum += *a.Sentiment
				n++
			}
		}
		if n > 0 {
			news.OverallSentiment = sum / float64(n)
		}
	}
	news.SentimentLabel = sentimentLabel(news.OverallSentiment)

	return &types.SourceResult{News: news}, nil
}

// discoverNews finds recent articles through search and scores their text.
func (c *Collector) discoverNews(ctx context.Context, subjectID, areaID string) (*types.SourceResult, error) {
	if c.discoverer == nil {
		return nil, fmt.Errorf("news source has no endpoint and discovery is not configured")
	}

	urls, err := c.discoverer.FindNewsURLs(ctx, subjectID, areaID, 3)
	if err != nil {
		return nil, fmt.Errorf("news discovery failed: %w", err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("news discovery found no articles for %s", subjectID)
	}

	news := &types.NewsResult{}
	sum := 0.0
	for _, articleURL := range urls {
		page, err := fetch.URL(ctx, articleURL, c.fetchOptions())
		if err != nil {
			continue // Skip unreachable articles, the search result set is best-effort
		}
		text, err := fetch.ExtractMainText(page.Body, fetch.NewsArticleSelectors())
		if err != nil || text == "" {
			continue
		}
		if news.TopHeadline == "" {
			news.TopHeadline = firstLine(text)
		}
		sum += lexiconSentiment(text)
		news.ArticleCount++
	}
	if news.ArticleCount == 0 {
		return nil, fmt.Errorf("no readable articles for %s", subjectID)
	}
	news.OverallSentiment = sum / float64(news.ArticleCount)
	news.SentimentLabel = sentimentLabel(news.OverallSentiment)

	return &types.SourceResult{News: news}, nil
}

func (c *Collector) fetchSocial(ctx context.Context, subjectID, areaID string) (*types.SourceResult, error) {
	endpoint := c.endpointURL(types.SourceSocialMedia, subjectID, areaID)
	if endpoint == "" {
		return nil, fmt.Errorf("social media source has no endpoint configured")
	}

	result, err := fetch.URL(ctx, endpoint, c.fetchOptions())
	if err != nil {
		return nil, err
	}
	if err := schemas.ValidateSocialPayload(result.Body); err != nil {
		return nil, fmt.Errorf("social payload rejected: %w", err)
	}

	var raw rawSocialPayload
	if err := json.Unmarshal([]byte(result.Body), &raw); err != nil {
		return nil, fmt.Errorf("social payload unmarshal: %w", err)
	}

	social := &types.SocialMediaResult{
		MentionCount:   raw.MentionCount,
		EngagementRate: raw.EngagementRate,
	}
	if raw.OverallSentiment != nil {
		social.OverallSentiment = *raw.OverallSentiment
	}
	social.SentimentLabel = sentimentLabel(social.OverallSentiment)

	return &types.SourceResult{SocialMedia: social}, nil
}

func (c *Collector) fetchGlassdoor(ctx context.Context, subjectID, areaID string) (*types.SourceResult, error) {
	endpoint := c.endpointURL(types.SourceGlassdoor, subjectID, areaID)
	if endpoint == "" {
		if c.discoverer == nil {
			return nil, fmt.Errorf("glassdoor source has no endpoint and discovery is not configured")
		}
		discovered, err := c.discoverer.FindReviewPage(ctx, subjectID)
		if err != nil {
			return nil, fmt.Errorf("review page discovery failed: %w", err)
		}
		endpoint = discovered
	}

	page, err := fetch.URL(ctx, endpoint, c.fetchOptions())
	if err != nil {
		return nil, err
	}
	return parseReviewPage(page.Body)
}

// parseReviewPage extracts rating metrics from an employer-review page.
func parseReviewPage(html string) (*types.SourceResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("review page parse: %w", err)
	}

	rating, ok := firstFloat(doc, "[data-test='rating']", ".rating", ".overall-rating")
	if !ok {
		return nil, fmt.Errorf("review page has no recognizable rating")
	}

	glassdoor := &types.GlassdoorResult{OverallRating: rating}
	if count, ok := firstFloat(doc, "[data-test='review-count']", ".review-count"); ok {
		glassdoor.ReviewCount = int(count)
	}
	if rec, ok := firstFloat(doc, "[data-test='recommend']", ".recommend-percent"); ok {
		glassdoor.RecommendPercent = rec
	}
	if ceo, ok := firstFloat(doc, "[data-test='ceo-approval']", ".ceo-approval"); ok {
		glassdoor.CEOApproval = ceo
	}

	return &types.SourceResult{Glassdoor: glassdoor}, nil
}

func (c *Collector) fetchWebsite(ctx context.Context, subjectID, areaID string) (*types.SourceResult, error) {
	endpoint := c.endpointURL(types.SourceWebsite, subjectID, areaID)
	if endpoint == "" {
		return nil, fmt.Errorf("website source has no endpoint configured")
	}

	page, err := fetch.URL(ctx, endpoint, c.fetchOptions())
	if err != nil {
		return nil, err
	}

	html := page.Body
	text, _ := fetch.ExtractMainText(html, fetch.BrandPageSelectors())
	if c.cfg.UseBrowser && fetch.ShouldUseBrowser(text) {
		rendered, err := fetch.WithBrowser(ctx, endpoint, c.cfg.AttemptTimeout, c.cfg.Verbose)
		if err == nil {
			html = rendered
			text, _ = fetch.ExtractMainText(html, fetch.BrandPageSelectors())
		}
	}

	return analyzeWebsite(html, text)
}

// analyzeWebsite computes the deterministic quality metrics for a brand
// site: presence of title and meta description, main-text word count, and
// outbound link count.
func analyzeWebsite(html, text string) (*types.SourceResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("website parse: %w", err)
	}

	website := &types.WebsiteResult{
		HasTitle:  strings.TrimSpace(doc.Find("title").First().Text()) != "",
		WordCount: len(strings.Fields(text)),
		LinkCount: doc.Find("a[href]").Length(),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && strings.TrimSpace(desc) != "" {
		website.HasDescription = true
	}

	score := 0.3
	if website.HasTitle {
		score += 0.2
	}
	if website.HasDescription {
		score += 0.2
	}
	if website.WordCount >= 300 {
		score += 0.2
	}
	if website.LinkCount >= 10 {
		score += 0.1
	}
	website.QualityScore = score

	return &types.SourceResult{Website: website}, nil
}

// firstFloat returns the first selector whose text parses as a float.
func firstFloat(doc *goquery.Document, selectors ...string) (float64, bool) {
	for _, sel := range selectors {
		raw := strings.TrimSpace(doc.Find(sel).First().Text())
		raw = strings.TrimSuffix(raw, "%")
		if raw == "" {
			continue
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i > 0 {
		return text[:i]
	}
	return text
}

// sentimentLabel buckets a [-1, 1] score.
func sentimentLabel(score float64) string {
	switch {
	case score > 0.2:
		return "positive"
	case score < -0.2:
		return "negative"
	default:
		return "neutral"
	}
}

var positiveWords = []string{"growth", "record", "award", "launch", "expand", "success", "innovative", "strong"}
var negativeWords = []string{"lawsuit", "recall", "layoff", "decline", "scandal", "breach", "loss", "weak"}

// lexiconSentiment is a crude polarity score for discovered article text.
// The real scoring lives in the downstream analysis service; this only has
// to be deterministic and directionally sane.
func lexiconSentiment(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.0
	for _, w := range positiveWords {
		score += 0.1 * float64(strings.Count(lower, w))
	}
	for _, w := range negativeWords {
		score -= 0.1 * float64(strings.Count(lower, w))
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}
