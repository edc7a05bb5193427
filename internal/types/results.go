package types

import "time"

// NewsResult summarizes press sentiment for a subject.
type NewsResult struct {
	ArticleCount     int     `json:"article_count"`
	OverallSentiment float64 `json:"overall_sentiment"`
	SentimentLabel   string  `json:"sentiment_label"`
	TopHeadline      string  `json:"top_headline,omitempty"`
}

// SocialMediaResult summarizes social-media presence for a subject.
type SocialMediaResult struct {
	MentionCount     int     `json:"mention_count"`
	EngagementRate   float64 `json:"engagement_rate"`
	OverallSentiment float64 `json:"overall_sentiment"`
	SentimentLabel   string  `json:"sentiment_label"`
}

// GlassdoorResult summarizes employer reviews for a subject.
type GlassdoorResult struct {
	OverallRating    float64 `json:"overall_rating"`
	ReviewCount      int     `json:"review_count"`
	RecommendPercent float64 `json:"recommend_percent"`
	CEOApproval      float64 `json:"ceo_approval,omitempty"`
}

// WebsiteResult summarizes website quality for a subject.
type WebsiteResult struct {
	QualityScore   float64 `json:"quality_score"`
	HasTitle       bool    `json:"has_title"`
	HasDescription bool    `json:"has_description"`
	WordCount      int     `json:"word_count"`
	LinkCount      int     `json:"link_count"`
}

// SourceResult is the tagged result produced by a collector for one source.
// Exactly one of the typed payload fields is set, matching Source.
// Fallback marks deterministic mock data served in place of a live fetch.
type SourceResult struct {
	Source         DataSource         `json:"source"`
	News           *NewsResult        `json:"news,omitempty"`
	SocialMedia    *SocialMediaResult `json:"social_media,omitempty"`
	Glassdoor      *GlassdoorResult   `json:"glassdoor,omitempty"`
	Website        *WebsiteResult     `json:"website,omitempty"`
	Fallback       bool               `json:"fallback,omitempty"`
	FallbackReason string             `json:"fallback_reason,omitempty"`
	CollectedAt    time.Time          `json:"collected_at"`
}

// BrandData holds up to one result per requested source for one subject.
type BrandData struct {
	SubjectID       string             `json:"subject_id"`
	NewsSentiment   *NewsResult        `json:"news_sentiment,omitempty"`
	SocialSentiment *SocialMediaResult `json:"social_sentiment,omitempty"`
	EmployerReviews *GlassdoorResult   `json:"employer_reviews,omitempty"`
	WebsiteAnalysis *WebsiteResult     `json:"website_analysis,omitempty"`
	FallbackSources []DataSource       `json:"fallback_sources,omitempty"`
}

// Apply merges one source result into the subject record.
func (b *BrandData) Apply(res *SourceResult) {
	if res == nil {
		return
	}
	switch res.Source {
	case SourceNews:
		b.NewsSentiment = res.News
	case SourceSocialMedia:
		b.SocialSentiment = res.SocialMedia
	case SourceGlassdoor:
		b.EmployerReviews = res.Glassdoor
	case SourceWebsite:
		b.WebsiteAnalysis = res.Website
	}
	if res.Fallback {
		b.FallbackSources = append(b.FallbackSources, res.Source)
	}
}

// Has reports whether a result for the source is present.
func (b *BrandData) Has(source DataSource) bool {
	switch source {
	case SourceNews:
		return b.NewsSentiment != nil
	case SourceSocialMedia:
		return b.SocialSentiment != nil
	case SourceGlassdoor:
		return b.EmployerReviews != nil
	case SourceWebsite:
		return b.WebsiteAnalysis != nil
	}
	return false
}
