package collector

import "github.com/jonathan/brand-intel/internal/types"

// MockResult returns the deterministic fallback for a source. Values are
// fixed, plausible defaults so demo runs stay coherent and tests can assert
// exact content.
func MockResult(source types.DataSource) *types.SourceResult {
	result := &types.SourceResult{
		Source:   source,
		Fallback: true,
	}
	switch source {
	case types.SourceNews:
		result.News = &types.NewsResult{
			ArticleCount:     5,
			OverallSentiment: 0.62,
			SentimentLabel:   "positive",
			TopHeadline:      "Company announces regional expansion",
		}
	case types.SourceSocialMedia:
		result.SocialMedia = &types.SocialMediaResult{
			MentionCount:     150,
			EngagementRate:   0.034,
			OverallSentiment: 0.55,
			SentimentLabel:   "positive",
		}
	case types.SourceGlassdoor:
		result.Glassdoor = &types.GlassdoorResult{
			OverallRating:    3.9,
			ReviewCount:      412,
			RecommendPercent: 78,
			CEOApproval:      0.81,
		}
	case types.SourceWebsite:
		result.Website = &types.WebsiteResult{
			QualityScore:   0.78,
			HasTitle:       true,
			HasDescription: true,
			WordCount:      1200,
			LinkCount:      42,
		}
	}
	return result
}
