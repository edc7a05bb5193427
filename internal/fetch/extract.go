// Package fetch - extract.go provides HTML text extraction with
// source-specific content selectors.
package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractMainText parses HTML and returns the main body text.
// It removes noise elements using noiseSelectors, then finds content using
// contentSelectors. If no content selectors match, it falls back to the
// body element.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Remove common unwanted elements (nav, footer, scripts, ads, etc.)
	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup").Remove()

	if len(noiseSelectors) > 0 {
		noiseSelector := strings.Join(noiseSelectors, ", ")
		if noiseSelector != "" {
			doc.Find(noiseSelector).Remove()
		}
	}

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}

	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	text := mainContent.Text()
	text = cleanWhitespace(text)

	return text, nil
}

// BrandPageSelectors returns selectors for brand website pages.
func BrandPageSelectors() []string {
	return []string{
		"main",
		"article",
		".content",
		"#content",
		".main-content",
		"#main-content",
	}
}

// NewsArticleSelectors returns selectors optimized for news article pages.
func NewsArticleSelectors() []string {
	return []string{
		".article-body",
		".article-content",
		"#article-body",
		".story-body",
		"[itemprop='articleBody']",
		"article",
		"main",
		".content",
	}
}

// ReviewPageSelectors returns selectors for employer-review pages.
func ReviewPageSelectors() []string {
	return []string{
		".review-list",
		".reviews",
		"#reviews",
		"[data-test='reviews']",
		".employer-overview",
		"main",
		".content",
	}
}

// ReviewNoiseSelectors returns noise exclusions for employer-review pages.
func ReviewNoiseSelectors() []string {
	return []string{
		"form",
		".apply-button-container",
		".salary-widget",
		".social-share",
		".share-buttons",
		".cookie-consent",
		".gdpr-notice",
	}
}

// cleanWhitespace normalizes whitespace in text.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
